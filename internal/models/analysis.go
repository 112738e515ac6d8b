package models

import "time"

// Prediction is a snapshot of the matched category taken when the analysis was recorded.
// It is copied by value so later table changes never rewrite history.
type Prediction struct {
	CategoryID          int            `json:"categoryId"`
	WasteType           string         `json:"wasteType"`
	Icon                string         `json:"icon"`
	Confidence          int            `json:"confidence"`
	RiskLevel           RiskLevel      `json:"riskLevel"`
	Materials           []string       `json:"materials"`
	EnvironmentalImpact string         `json:"environmentalImpact"`
	RecyclingValue      RecyclingValue `json:"recyclingValue"`
	CO2Saved            float64        `json:"co2Saved"`
}

// Guidance tells the user what to do with the item.
type Guidance struct {
	Action  string `json:"action"`
	Warning string `json:"warning"`
	Tip     string `json:"tip"`
}

// FileInfo describes the uploaded image.
type FileInfo struct {
	OriginalName string `json:"originalName"`
	Size         string `json:"size"`
	SavedAs      string `json:"savedAs"`
}

// Analysis is one immutable entry of the analysis ledger.
type Analysis struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"userId"`
	FileName   string     `json:"filename"`
	FileSize   int64      `json:"fileSize"`
	Prediction Prediction `json:"prediction"`
	Guidance   Guidance   `json:"guidance"`
	FileInfo   FileInfo   `json:"fileInfo"`
	Timestamp  time.Time  `json:"timestamp"`
	AIModel    string     `json:"aiModel"`
}

// Clone returns a deep copy so callers cannot mutate stored history.
func (a Analysis) Clone() Analysis {
	a.Prediction.Materials = append([]string(nil), a.Prediction.Materials...)
	return a
}
