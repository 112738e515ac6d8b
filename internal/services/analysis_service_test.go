package services

import (
	"strings"
	"testing"
	"time"

	"github.com/isdelr/ewaste-ai-be/internal/classifier"
	"github.com/isdelr/ewaste-ai-be/internal/database"
	"github.com/isdelr/ewaste-ai-be/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedSource int

func (f fixedSource) IntN(int) int { return int(f) }

type recordingNotifier struct {
	analyses []models.Analysis
	stats    []models.UserStats
}

func (n *recordingNotifier) AnalysisRecorded(a models.Analysis, s models.UserStats) {
	n.analyses = append(n.analyses, a)
	n.stats = append(n.stats, s)
}

type ledgerFixture struct {
	store    *database.Store
	svc      *AnalysisService
	notifier *recordingNotifier
	user     models.User
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	store := database.New()
	user, err := store.CreateUser(models.User{Name: "Jane", Email: "jane@x.com", Type: models.AccountIndividual})
	require.NoError(t, err)

	n := &recordingNotifier{}
	svc := NewAnalysisService(store, classifier.New(fixedSource(7)), n, nil)
	svc.now = func() time.Time { return time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC) }
	return &ledgerFixture{store: store, svc: svc, notifier: n, user: user}
}

func TestRecord(t *testing.T) {
	f := newLedgerFixture(t)

	a, stats, err := f.svc.Record(f.user.ID, "old_battery.JPG", 2048)
	require.NoError(t, err)

	assert.Equal(t, int64(1), a.ID)
	assert.Equal(t, f.user.ID, a.UserID)
	assert.Equal(t, "Lithium Battery", a.Prediction.WasteType)
	assert.Equal(t, classifier.LithiumBattery, a.Prediction.CategoryID)
	assert.Equal(t, models.RiskCritical, a.Prediction.RiskLevel)
	assert.Equal(t, 87, a.Prediction.Confidence)
	assert.Equal(t, 15.2, a.Prediction.CO2Saved)
	assert.Equal(t, "Special battery recycling facility required", a.Guidance.Action)
	assert.Equal(t, "2.00 KB", a.FileInfo.Size)
	assert.True(t, strings.HasSuffix(a.FileInfo.SavedAs, ".jpg"))
	assert.Equal(t, classifier.ModelName, a.AIModel)

	assert.Equal(t, 1, stats.TotalAnalyses)
	assert.Equal(t, 15.2, stats.TotalCO2Saved)
	require.NotNil(t, stats.LastAnalysis)
	assert.True(t, a.Timestamp.Equal(*stats.LastAnalysis))

	require.Len(t, f.notifier.analyses, 1)
	assert.Equal(t, a.ID, f.notifier.analyses[0].ID)
}

func TestRecordTotalsMatchLedger(t *testing.T) {
	f := newLedgerFixture(t)
	files := []string{"battery.png", "pcb.png", "lcd.png", "cable.png", "phone.png", "laptop.png", "thing.png", "battery2.png"}

	var want float64
	for _, name := range files {
		a, _, err := f.svc.Record(f.user.ID, name, 10)
		require.NoError(t, err)
		want += a.Prediction.CO2Saved
	}

	user, err := f.store.GetUserByID(f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, len(files), user.Stats.TotalAnalyses)
	assert.InDelta(t, want, user.Stats.TotalCO2Saved, 1e-9)
}

func TestRecordErrors(t *testing.T) {
	f := newLedgerFixture(t)

	_, _, err := f.svc.Record(999, "battery.png", 1)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, _, err = f.svc.Record(f.user.ID, "  ", 1)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	assert.Empty(t, f.notifier.analyses)
}

func TestSnapshotIsDetachedFromCategoryTable(t *testing.T) {
	f := newLedgerFixture(t)
	a, _, err := f.svc.Record(f.user.ID, "laptop.png", 1)
	require.NoError(t, err)

	a.Prediction.Materials[0] = "Changed"
	cat, _ := classifier.CategoryByID(classifier.Laptop)
	assert.Equal(t, "Battery", cat.Materials[0])

	stored, err := f.svc.GetByID(f.user.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Battery", stored.Prediction.Materials[0])
}

func TestListForUser(t *testing.T) {
	f := newLedgerFixture(t)
	for i := 0; i < 3; i++ {
		_, _, err := f.svc.Record(f.user.ID, "wire.png", 1)
		require.NoError(t, err)
	}

	page, total, err := f.svc.ListForUser(f.user.ID, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page, 2)
	assert.Greater(t, page[0].ID, page[1].ID)

	page, total, err = f.svc.ListForUser(f.user.ID, 5, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Empty(t, page)

	_, _, err = f.svc.ListForUser(f.user.ID, 0, 2)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestGetByIDHidesOtherUsersRecords(t *testing.T) {
	f := newLedgerFixture(t)
	other, err := f.store.CreateUser(models.User{Name: "Other", Email: "o@x.com"})
	require.NoError(t, err)

	a, _, err := f.svc.Record(f.user.ID, "pcb.png", 1)
	require.NoError(t, err)

	_, err = f.svc.GetByID(other.ID, a.ID)
	assert.ErrorIs(t, err, ErrAnalysisNotFound)
	_, err = f.svc.GetByID(f.user.ID, a.ID+100)
	assert.ErrorIs(t, err, ErrAnalysisNotFound)
}

func TestFormatKB(t *testing.T) {
	assert.Equal(t, "0.00 KB", FormatKB(0))
	assert.Equal(t, "1.50 KB", FormatKB(1536))
}
