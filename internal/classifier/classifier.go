// Package classifier stands in for an image model: it picks a waste category
// from keywords in the uploaded file name.
package classifier

import (
	"math/rand"
	"strings"

	"github.com/isdelr/ewaste-ai-be/internal/models"
)

// ModelName identifies the matcher in recorded analyses.
const ModelName = "filename-keyword-matcher v1"

const (
	minConfidence = 80
	maxConfidence = 100
)

// keywordGroup maps filename substrings to a category. Groups are checked in order.
type keywordGroup struct {
	categoryID int
	keywords   []string
}

var priority = []keywordGroup{
	{LithiumBattery, []string{"battery", "bat"}},
	{CircuitBoard, []string{"circuit", "board", "pcb"}},
	{LCDScreen, []string{"screen", "lcd", "display"}},
	{CopperWires, []string{"wire", "cable"}},
	{Smartphone, []string{"phone", "mobile"}},
	{Laptop, []string{"laptop", "notebook"}},
}

const fallbackCategory = PlasticCasing

// Source yields integers in [0, n). *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.Intn(n) }

// Classifier maps file names to categories with a pseudo-random confidence.
type Classifier struct {
	src Source
}

// New creates a Classifier. A nil src uses the goroutine-safe global generator,
// so confidences are not reproducible unless a source is injected.
func New(src Source) *Classifier {
	if src == nil {
		src = globalSource{}
	}
	return &Classifier{src: src}
}

// Classify returns the category for fileName and a confidence in [80, 100].
func (c *Classifier) Classify(fileName string) (models.Category, int) {
	category, ok := CategoryByID(Match(fileName))
	if !ok {
		category, _ = CategoryByID(fallbackCategory)
	}
	confidence := minConfidence + c.src.IntN(maxConfidence-minConfidence+1)
	return category, confidence
}

// Match returns the category id of the first keyword group found in fileName.
func Match(fileName string) int {
	name := strings.ToLower(fileName)
	for _, group := range priority {
		for _, kw := range group.keywords {
			if strings.Contains(name, kw) {
				return group.categoryID
			}
		}
	}
	return fallbackCategory
}
