package services

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/ewaste-ai-be/internal/classifier"
	"github.com/isdelr/ewaste-ai-be/internal/database"
	"github.com/isdelr/ewaste-ai-be/internal/metrics"
	"github.com/isdelr/ewaste-ai-be/internal/models"
	"github.com/rs/zerolog/log"
)

const (
	disposalWarning = "Do not dispose in regular trash"
	disposalTip     = "Check local regulations for e-waste disposal"
)

// Classifier picks a category and confidence for an uploaded file name.
type Classifier interface {
	Classify(fileName string) (models.Category, int)
}

// AnalysisNotifier is told about every recorded analysis.
type AnalysisNotifier interface {
	AnalysisRecorded(analysis models.Analysis, stats models.UserStats)
}

// AnalysisServiceProvider defines the interface for the analysis ledger.
type AnalysisServiceProvider interface {
	Record(userID int64, fileName string, fileSize int64) (models.Analysis, models.UserStats, error)
	ListForUser(userID int64, page, limit int) ([]models.Analysis, int, error)
	GetByID(userID, id int64) (models.Analysis, error)
}

// AnalysisService classifies uploads and keeps the per-user history.
type AnalysisService struct {
	repo       database.AnalysisRepository
	classifier Classifier
	notifier   AnalysisNotifier
	metrics    metrics.Recorder
	now        func() time.Time
}

// NewAnalysisService creates a new AnalysisService. notifier and rec may be nil.
func NewAnalysisService(repo database.AnalysisRepository, cls Classifier, notifier AnalysisNotifier, rec metrics.Recorder) *AnalysisService {
	if rec == nil {
		rec = metrics.Noop{}
	}
	return &AnalysisService{
		repo:       repo,
		classifier: cls,
		notifier:   notifier,
		metrics:    rec,
		now:        time.Now,
	}
}

// Record classifies the file and appends a new analysis owned by userID.
// Every call creates a new record, even for an identical file.
func (s *AnalysisService) Record(userID int64, fileName string, fileSize int64) (models.Analysis, models.UserStats, error) {
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return models.Analysis{}, models.UserStats{}, invalid("No image file provided")
	}
	if fileSize < 0 {
		return models.Analysis{}, models.UserStats{}, invalid("Invalid file size")
	}

	category, confidence := s.classifier.Classify(fileName)

	analysis := models.Analysis{
		UserID:     userID,
		FileName:   fileName,
		FileSize:   fileSize,
		Prediction: snapshot(category, confidence),
		Guidance: models.Guidance{
			Action:  category.Recycle,
			Warning: disposalWarning,
			Tip:     disposalTip,
		},
		FileInfo: models.FileInfo{
			OriginalName: fileName,
			Size:         FormatKB(fileSize),
			SavedAs:      uuid.NewString() + strings.ToLower(filepath.Ext(fileName)),
		},
		Timestamp: s.now().UTC(),
		AIModel:   classifier.ModelName,
	}

	stored, owner, err := s.repo.AppendAnalysis(analysis)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return models.Analysis{}, models.UserStats{}, ErrUserNotFound
		}
		return models.Analysis{}, models.UserStats{}, fmt.Errorf("appending analysis: %w", err)
	}

	s.metrics.ObserveAnalysis(stored.Prediction.WasteType)
	log.Info().
		Int64("user_id", userID).
		Int64("analysis_id", stored.ID).
		Str("file_name", fileName).
		Str("waste_type", stored.Prediction.WasteType).
		Int("confidence", confidence).
		Msg("Analysis recorded")

	if s.notifier != nil {
		s.notifier.AnalysisRecorded(stored, owner.Stats)
	}
	return stored, owner.Stats, nil
}

// ListForUser returns a page of the user's analyses newest first, and the total count.
// Pages past the end come back empty.
func (s *AnalysisService) ListForUser(userID int64, page, limit int) ([]models.Analysis, int, error) {
	if page < 1 || limit < 1 {
		return nil, 0, invalid("page and limit must be positive integers")
	}
	offset := (page - 1) * limit
	return s.repo.ListAnalyses(userID, offset, limit)
}

// GetByID returns the analysis if userID owns it. Someone else's analysis looks
// exactly like a missing one.
func (s *AnalysisService) GetByID(userID, id int64) (models.Analysis, error) {
	analysis, err := s.repo.GetAnalysis(userID, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return models.Analysis{}, ErrAnalysisNotFound
		}
		return models.Analysis{}, err
	}
	return analysis, nil
}

// snapshot copies the category by value into the record.
func snapshot(c models.Category, confidence int) models.Prediction {
	return models.Prediction{
		CategoryID:          c.ID,
		WasteType:           c.Name,
		Icon:                c.Icon,
		Confidence:          confidence,
		RiskLevel:           c.Risk,
		Materials:           append([]string(nil), c.Materials...),
		EnvironmentalImpact: c.Impact,
		RecyclingValue:      c.Value,
		CO2Saved:            c.CO2Saved,
	}
}

// FormatKB renders a byte count as "12.34 KB".
func FormatKB(bytes int64) string {
	return fmt.Sprintf("%.2f KB", float64(bytes)/1024)
}
