package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/isdelr/ewaste-ai-be/internal/api/handlers"
	"github.com/isdelr/ewaste-ai-be/internal/auth"
	"github.com/isdelr/ewaste-ai-be/internal/services"
	"github.com/isdelr/ewaste-ai-be/internal/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies are the services the HTTP layer is built on.
type Dependencies struct {
	Tokens   *auth.TokenManager
	Users    services.UserServiceProvider
	Analyses services.AnalysisServiceProvider
	Stats    services.StatsServiceProvider
	Centers  services.CenterServiceProvider
	Totals   handlers.TotalsSource
	Hub      *websocket.Hub
	Gatherer prometheus.Gatherer

	Port           int
	AllowedOrigins []string
	MaxUploadBytes int64
}

// NewRouter creates and configures a new Chi router.
func NewRouter(deps Dependencies) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	systemHandler := handlers.NewSystemHandler(deps.Totals, deps.Centers, deps.Port)
	userHandler := handlers.NewUserHandler(deps.Users, deps.Tokens)
	analysisHandler := handlers.NewAnalysisHandler(deps.Analyses, deps.MaxUploadBytes)
	dashboardHandler := handlers.NewDashboardHandler(deps.Stats)
	recyclingHandler := handlers.NewRecyclingHandler(deps.Centers)
	wsHandler := handlers.NewWebSocketHandler(deps.Hub, deps.Tokens, deps.Users, deps.AllowedOrigins)

	r.NotFound(systemHandler.NotFound)
	r.MethodNotAllowed(systemHandler.MethodNotAllowed)

	// Public endpoints
	r.Get("/", systemHandler.Index)
	r.Get("/health", systemHandler.Health)
	r.Get("/categories", systemHandler.Categories)
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", userHandler.Register)
		r.Post("/auth/login", userHandler.Login)

		r.Get("/recycling/centers", recyclingHandler.ListCenters)
		r.Get("/recycling/centers/{id}", recyclingHandler.GetCenter)

		// The live feed authenticates itself so the token can travel in the query.
		r.Get("/ws", wsHandler.Serve)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(deps.Tokens.JWTMiddleware())

			r.Get("/auth/profile", userHandler.GetProfile)
			r.Put("/auth/profile", userHandler.UpdateProfile)

			r.Post("/predict", analysisHandler.Predict)
			r.Get("/analyses", analysisHandler.List)
			r.Get("/analyses/{id}", analysisHandler.Get)

			r.Get("/dashboard/stats", dashboardHandler.Stats)
		})
	})

	return r
}
