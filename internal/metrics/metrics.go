// Package metrics records service counters for Prometheus.
package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder is what services report to.
type Recorder interface {
	IncRegistration()
	IncLoginFailure()
	ObserveAnalysis(category string)
	SetPlatformTotals(users, analyses int, co2SavedKg float64)
}

// Noop discards everything.
type Noop struct{}

func (Noop) IncRegistration() {}
func (Noop) IncLoginFailure() {}
func (Noop) ObserveAnalysis(string) {}
func (Noop) SetPlatformTotals(int, int, float64) {}

// Prometheus implements Recorder on client_golang collectors.
type Prometheus struct {
	registrations prometheus.Counter
	loginFailures prometheus.Counter
	analyses      *prometheus.CounterVec
	users         prometheus.Gauge
	stored        prometheus.Gauge
	co2Saved      prometheus.Gauge
}

// NewPrometheus registers the collectors on reg.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	p := &Prometheus{
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ewaste_registrations_total",
			Help: "Accounts registered since start.",
		}),
		loginFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ewaste_login_failures_total",
			Help: "Rejected login attempts.",
		}),
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ewaste_analyses_total",
			Help: "Recorded analyses by predicted category.",
		}, []string{"category"}),
		users: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ewaste_users",
			Help: "Registered users, as of the last stats report.",
		}),
		stored: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ewaste_analyses_stored",
			Help: "Analyses held in the ledger, as of the last stats report.",
		}),
		co2Saved: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ewaste_co2_saved_kg",
			Help: "CO2 saved across all users in kg, as of the last stats report.",
		}),
	}
	reg.MustRegister(p.registrations, p.loginFailures, p.analyses, p.users, p.stored, p.co2Saved)
	return p
}

func (p *Prometheus) IncRegistration() { p.registrations.Inc() }

func (p *Prometheus) IncLoginFailure() { p.loginFailures.Inc() }

func (p *Prometheus) ObserveAnalysis(category string) {
	p.analyses.WithLabelValues(normalizeLabel(category)).Inc()
}

func (p *Prometheus) SetPlatformTotals(users, analyses int, co2SavedKg float64) {
	p.users.Set(float64(users))
	p.stored.Set(float64(analyses))
	p.co2Saved.Set(co2SavedKg)
}

func normalizeLabel(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "unknown"
	}
	return v
}
