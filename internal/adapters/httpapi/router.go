package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/Guilhem-Bonnet/streamplan/internal/app"
	"github.com/Guilhem-Bonnet/streamplan/internal/ports"
)

type Server struct {
	logger  zerolog.Logger
	planner *app.PlannerService
	bus     ports.EventBus
	// corsOrigins vide: toutes les origines sont acceptées.
	corsOrigins []string
}

func NewServer(logger zerolog.Logger, planner *app.PlannerService, bus ports.EventBus, corsOrigins []string) *Server {
	return &Server{logger: logger, planner: planner, bus: bus, corsOrigins: corsOrigins}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(hlog.NewHandler(s.logger))
	r.Use(hlog.RequestIDHandler("request_id", "Request-Id"))
	r.Use(hlog.RemoteAddrHandler("remote_ip"))
	r.Use(hlog.UserAgentHandler("user_agent"))
	r.Use(hlog.AccessHandler(accessLogFn))
	r.Use(s.corsHandler().Handler)

	plans := NewPlanHandler(s.planner)
	lookups := NewCatalogHandler(s.planner.Catalog())

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(defaultRequestTimeout))
		// Forme historique: plan sur "/" et listes à la racine.
		r.Get("/", plans.get)
		lookups.Routes(r)
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Flux SSE: pas de timeout.
		if s.bus != nil {
			r.Get("/events", s.handleEvents)
		}

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(defaultRequestTimeout))
			r.Get("/health", s.handleHealth)
			r.Get("/version", s.handleVersion)
			r.Get("/openapi.json", s.handleOpenAPI)
			r.Get("/stats", s.handleStats)
			r.Get("/packages", lookups.packages)

			lookups.Routes(r)
			plans.Routes(r)
			NewSettingsHandler(s.planner).Routes(r)
		})
	})

	return r
}

func (s *Server) corsHandler() *cors.Cors {
	origins := s.corsOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"ETag", "Request-Id"},
		MaxAge:         600,
	})
}
