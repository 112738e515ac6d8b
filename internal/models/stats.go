package models

import "time"

// CategoryCount is one row of a user's most frequent categories.
type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ActivityItem summarizes a recent analysis for the dashboard.
type ActivityItem struct {
	ID         int64     `json:"id"`
	WasteType  string    `json:"wasteType"`
	Icon       string    `json:"icon"`
	Confidence int       `json:"confidence"`
	Timestamp  time.Time `json:"timestamp"`
}

// EnvironmentalImpact expresses saved CO2 in everyday equivalents.
type EnvironmentalImpact struct {
	TreesSaved         float64 `json:"treesSaved"`
	CarsOffRoad        float64 `json:"carsOffRoad"`
	SmartphonesCharged float64 `json:"smartphonesCharged"`
}

// DashboardStats is the per-user rollup shown on the dashboard.
type DashboardStats struct {
	TotalAnalyses       int                 `json:"totalAnalyses"`
	TotalCO2Saved       float64             `json:"totalCO2Saved"`
	LastAnalysis        *time.Time          `json:"lastAnalysis"`
	TopCategories       []CategoryCount     `json:"topCategories"`
	RecentActivity      []ActivityItem      `json:"recentActivity"`
	EnvironmentalImpact EnvironmentalImpact `json:"environmentalImpact"`
}
