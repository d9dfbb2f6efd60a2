package http

import (
	"context"
	"net/http"
	"time"

	"Process_Insights/internal/logger"
	"Process_Insights/internal/metrics"
	"Process_Insights/internal/ratelimit"

	"github.com/gorilla/mux"
)

// Server represents the HTTP server with all dependencies
type Server struct {
	handler *Handler
	logger  logger.Service
	metrics *metrics.Metrics
	server  *http.Server
}

// NewServer creates a new HTTP server. metrics may be nil, in which case /metrics is not served.
func NewServer(
	addr string,
	handler *Handler,
	logger logger.Service,
	rateLimiter ratelimit.Service,
	m *metrics.Metrics,
	readTimeout, writeTimeout time.Duration,
) *Server {
	router := mux.NewRouter()

	srv := &Server{
		handler: handler,
		logger:  logger,
		metrics: m,
		server: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
		},
	}

	// Order matters: logging -> metrics -> rate limiting -> cors -> recovery
	router.Use(loggingMiddleware(logger))
	router.Use(metricsMiddleware(m))
	router.Use(rateLimitingMiddleware(rateLimiter, logger))
	router.Use(corsMiddleware())
	router.Use(recoveryMiddleware(logger))

	srv.registerRoutes(router)

	return srv
}

// registerRoutes sets up all API routes
func (s *Server) registerRoutes(router *mux.Router) {
	router.HandleFunc("/health", s.handler.HealthCheck).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/processes", s.handler.GetProcesses).Methods(http.MethodGet)
	api.HandleFunc("/metrics", s.handler.GetMetrics).Methods(http.MethodGet)
	api.HandleFunc("/history", s.handler.GetHistory).Methods(http.MethodGet)
	api.HandleFunc("/overview", s.handler.GetOverview).Methods(http.MethodGet)
	api.HandleFunc("/cache/{dataset}", s.handler.InvalidateCache).Methods(http.MethodDelete)

	if s.metrics != nil {
		router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}

	// Preflight requests match no route by method, so they land here
	router.MethodNotAllowedHandler = corsMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusMethodNotAllowed)
	}))

	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"message":"Process Insights API","version":"1.0.0","endpoints":["/health","/api/processes","/api/metrics","/api/history","/api/overview","/api/cache/{dataset}","/metrics"]}`))
	}).Methods(http.MethodGet)
}

// Handler returns the root HTTP handler with all middleware applied
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.LogInfo(context.Background(), logger.OpServerStart, "Starting HTTP server", map[string]interface{}{
		"addr": s.server.Addr,
	})

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.LogInfo(ctx, logger.OpServerShutdown, "Shutting down HTTP server", nil)
	return s.server.Shutdown(ctx)
}
