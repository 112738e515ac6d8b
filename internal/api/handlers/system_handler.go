package handlers

import (
	"net/http"
	"os"
	"time"

	"github.com/isdelr/ewaste-ai-be/internal/classifier"
	"github.com/isdelr/ewaste-ai-be/internal/database"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/process"
)

const (
	ServiceName = "E-Waste AI Backend"
	Version     = "3.0"
)

// TotalsSource reports platform-wide counters.
type TotalsSource interface {
	Totals() database.Totals
}

// CenterCounter reports the size of the recycling center directory.
type CenterCounter interface {
	Count() int
}

// SystemHandler serves the public index, health and category endpoints.
type SystemHandler struct {
	totals  TotalsSource
	centers CenterCounter
	port    int
	started time.Time
	proc    *process.Process
}

// NewSystemHandler creates a new SystemHandler.
func NewSystemHandler(totals TotalsSource, centers CenterCounter, port int) *SystemHandler {
	h := &SystemHandler{
		totals:  totals,
		centers: centers,
		port:    port,
		started: time.Now(),
	}
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		log.Warn().Err(err).Msg("Process stats unavailable")
	} else {
		h.proc = proc
	}
	return h
}

// Index lists the service's features and endpoints.
func (h *SystemHandler) Index(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, envelope{
		"message": ServiceName + " is running",
		"version": Version,
		"features": []string{
			"User Authentication & Registration",
			"AI-Powered E-Waste Classification",
			"User Dashboard with Statistics",
			"Recycling Center Locator",
			"Environmental Impact Tracking",
			"Live Analysis Feed",
		},
		"endpoints": map[string]map[string]string{
			"Public": {
				"GET /":                           "This message",
				"GET /health":                     "Health check",
				"GET /categories":                 "List all e-waste categories",
				"GET /metrics":                    "Prometheus metrics",
				"POST /api/auth/register":         "Register new user",
				"POST /api/auth/login":            "Login user",
				"GET /api/recycling/centers":      "Find recycling centers",
				"GET /api/recycling/centers/{id}": "Recycling center details",
			},
			"Protected (Requires Auth Token)": {
				"GET /api/auth/profile":    "Get user profile",
				"PUT /api/auth/profile":    "Update profile",
				"POST /api/predict":        "Upload image for AI analysis",
				"GET /api/analyses":        "Get user analysis history",
				"GET /api/analyses/{id}":   "Get a single analysis",
				"GET /api/dashboard/stats": "Get user dashboard",
				"GET /api/ws?token=":       "Live feed of new analyses",
			},
		},
	})
}

// Health reports liveness, process usage and platform counters.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	totals := h.totals.Totals()

	proc := envelope{}
	if h.proc != nil {
		if mem, err := h.proc.MemoryInfo(); err == nil {
			proc["memoryRss"] = mem.RSS
		} else {
			log.Debug().Err(err).Msg("Failed to read process memory")
		}
		if cpu, err := h.proc.CPUPercent(); err == nil {
			proc["cpuPercent"] = cpu
		} else {
			log.Debug().Err(err).Msg("Failed to read process cpu")
		}
	}

	respondJSON(w, http.StatusOK, envelope{
		"status":    "OK",
		"service":   ServiceName,
		"version":   Version,
		"port":      h.port,
		"uptime":    time.Since(h.started).Seconds(),
		"timestamp": time.Now().UTC(),
		"process":   proc,
		"stats": envelope{
			"totalUsers":      totals.Users,
			"totalAnalyses":   totals.Analyses,
			"totalCategories": len(classifier.Categories()),
			"totalCenters":    h.centers.Count(),
		},
	})
}

// Categories lists the waste categories the classifier can produce.
func (h *SystemHandler) Categories(w http.ResponseWriter, r *http.Request) {
	cats := classifier.Categories()
	out := make([]envelope, 0, len(cats))
	for _, c := range cats {
		out = append(out, envelope{
			"id":       c.ID,
			"name":     c.Name,
			"icon":     c.Icon,
			"risk":     c.Risk,
			"value":    c.Value,
			"co2Saved": c.CO2Saved,
		})
	}
	respondJSON(w, http.StatusOK, envelope{"success": true, "count": len(out), "categories": out})
}

// NotFound answers unknown routes.
func (h *SystemHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusNotFound, envelope{
		"success":       false,
		"error":         "Endpoint not found",
		"documentation": "Check the home endpoint (GET /) for available endpoints",
	})
}

// MethodNotAllowed answers known routes hit with the wrong method.
func (h *SystemHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusMethodNotAllowed, envelope{
		"success":       false,
		"error":         "Method not allowed",
		"documentation": "Check the home endpoint (GET /) for available endpoints",
	})
}
