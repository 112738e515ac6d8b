package monitoring

import (
	"fmt"
	"sync"
	"time"

	"github.com/isdelr/ewaste-ai-be/internal/database"
	"github.com/isdelr/ewaste-ai-be/internal/metrics"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const (
	highCPUThreshold = 90.0
	alertCooldown    = 15 * time.Minute
)

// TotalsSource reports platform-wide counters.
type TotalsSource interface {
	Totals() database.Totals
}

// CPUSampler reports the CPU usage of this process in percent.
type CPUSampler interface {
	CPUPercent() (float64, error)
}

// Reporter periodically logs platform totals and refreshes the metric gauges.
type Reporter struct {
	totals  TotalsSource
	metrics metrics.Recorder
	cpu     CPUSampler
	cron    *cron.Cron

	mu        sync.Mutex
	lastAlert time.Time
	now       func() time.Time
}

// NewReporter creates a Reporter running on the given cron spec. cpu may be nil.
func NewReporter(spec string, totals TotalsSource, rec metrics.Recorder, cpu CPUSampler) (*Reporter, error) {
	if rec == nil {
		rec = metrics.Noop{}
	}
	r := &Reporter{
		totals:  totals,
		metrics: rec,
		cpu:     cpu,
		cron:    cron.New(),
		now:     time.Now,
	}
	if _, err := r.cron.AddFunc(spec, r.Report); err != nil {
		return nil, fmt.Errorf("scheduling stats report %q: %w", spec, err)
	}
	return r, nil
}

// Start reports once immediately, then on every tick of the schedule.
func (r *Reporter) Start() {
	log.Info().Msg("Starting background stats reporter...")
	r.Report()
	r.cron.Start()
}

// Stop halts the schedule and waits for a running report to finish.
func (r *Reporter) Stop() {
	<-r.cron.Stop().Done()
	log.Info().Msg("Stopped background stats reporter.")
}

// Report takes one snapshot of the platform totals.
func (r *Reporter) Report() {
	t := r.totals.Totals()
	r.metrics.SetPlatformTotals(t.Users, t.Analyses, t.CO2Saved)

	log.Info().
		Int("users", t.Users).
		Int("analyses", t.Analyses).
		Float64("co2_saved_kg", t.CO2Saved).
		Int("categories_seen", len(t.ByCategory)).
		Msg("Platform stats")

	r.checkCPU()
}

func (r *Reporter) checkCPU() {
	if r.cpu == nil {
		return
	}
	pct, err := r.cpu.CPUPercent()
	if err != nil {
		log.Warn().Err(err).Msg("StatsReporter: Failed to sample process CPU")
		return
	}
	if pct <= highCPUThreshold {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	if !r.lastAlert.IsZero() && now.Sub(r.lastAlert) < alertCooldown {
		return
	}
	r.lastAlert = now
	log.Warn().Float64("cpu_percent", pct).Msg("High CPU usage detected")
}
