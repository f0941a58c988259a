package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/AayushRajthala99/phishing-email-detection-system/internal/config"
	"github.com/AayushRajthala99/phishing-email-detection-system/internal/ratelimit"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// Server hosts the REST surface.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
}

// NewRouter builds the route table with the middleware chain: request
// logging, security headers, rate limiting.
func NewRouter(handler *Handler, limiter *ratelimit.FixedWindow, logger *zap.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(RequestLoggingMiddleware(logger))
	r.Use(SecurityHeadersMiddleware)
	r.Use(RateLimitMiddleware(limiter))

	r.HandleFunc("/health", handler.HandleHealth).Methods(http.MethodGet)
	r.HandleFunc("/predict", handler.HandlePredict).Methods(http.MethodPost)
	r.HandleFunc("/reports", handler.HandleReports).Methods(http.MethodGet)
	r.HandleFunc("/report", handler.HandleReport).Methods(http.MethodGet)

	return r
}

// NewServer creates the HTTP server around the router.
func NewServer(cfg config.ServerConfig, router *mux.Router, logger *zap.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.ListenAddress,
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		logger: logger,
	}
}

// Start begins serving in the background.
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", zap.String("address", s.httpServer.Addr))

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	return nil
}

// Stop drains in-flight requests and shuts the server down.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info("Stopping HTTP server")
	return s.httpServer.Shutdown(ctx)
}
