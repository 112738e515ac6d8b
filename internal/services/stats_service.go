package services

import (
	"errors"
	"sort"

	"github.com/isdelr/ewaste-ai-be/internal/database"
	"github.com/isdelr/ewaste-ai-be/internal/models"
)

// Conversion factors for the environmental equivalence figures.
const (
	CO2PerTreeYear  = 21.77 // kg absorbed by a tree per year
	CO2PerCarYear   = 4600  // kg emitted by a car per year
	ChargesPerKgCO2 = 1000  // smartphone charges per kg

	topCategoryLimit    = 5
	recentActivityLimit = 5
)

// StatsServiceProvider defines the interface for dashboard statistics.
type StatsServiceProvider interface {
	Dashboard(userID int64) (models.DashboardStats, error)
}

// StatsService derives dashboard figures from user counters and the ledger.
type StatsService struct {
	analyses database.AnalysisRepository
}

// NewStatsService creates a new StatsService.
func NewStatsService(analyses database.AnalysisRepository) *StatsService {
	return &StatsService{analyses: analyses}
}

// Dashboard computes the user's rollup. Totals come from the user's maintained
// counters; category and recent-activity figures come from a scan of the ledger.
func (s *StatsService) Dashboard(userID int64) (models.DashboardStats, error) {
	user, records, err := s.analyses.UserWithAnalyses(userID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return models.DashboardStats{}, ErrUserNotFound
		}
		return models.DashboardStats{}, err
	}

	co2 := user.Stats.TotalCO2Saved
	return models.DashboardStats{
		TotalAnalyses:  user.Stats.TotalAnalyses,
		TotalCO2Saved:  co2,
		LastAnalysis:   user.Stats.LastAnalysis,
		TopCategories:  TopCategories(records, topCategoryLimit),
		RecentActivity: RecentActivity(records, recentActivityLimit),
		EnvironmentalImpact: models.EnvironmentalImpact{
			TreesSaved:         co2 / CO2PerTreeYear,
			CarsOffRoad:        co2 / CO2PerCarYear,
			SmartphonesCharged: co2 * ChargesPerKgCO2,
		},
	}, nil
}

// TopCategories counts waste types and returns the n most frequent. Ties keep
// the order in which the categories were first seen.
func TopCategories(records []models.Analysis, n int) []models.CategoryCount {
	counts := []models.CategoryCount{}
	index := make(map[string]int)
	for _, r := range records {
		name := r.Prediction.WasteType
		if i, ok := index[name]; ok {
			counts[i].Count++
			continue
		}
		index[name] = len(counts)
		counts = append(counts, models.CategoryCount{Name: name, Count: 1})
	}

	sort.SliceStable(counts, func(i, j int) bool { return counts[i].Count > counts[j].Count })
	if len(counts) > n {
		counts = counts[:n]
	}
	return counts
}

// RecentActivity returns the n records with the highest ids, newest first.
// records must be in ascending id order.
func RecentActivity(records []models.Analysis, n int) []models.ActivityItem {
	out := []models.ActivityItem{}
	for i := len(records) - 1; i >= 0 && len(out) < n; i-- {
		r := records[i]
		out = append(out, models.ActivityItem{
			ID:         r.ID,
			WasteType:  r.Prediction.WasteType,
			Icon:       r.Prediction.Icon,
			Confidence: r.Prediction.Confidence,
			Timestamp:  r.Timestamp,
		})
	}
	return out
}
