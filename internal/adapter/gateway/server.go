// Package gateway exposes the compliance pipeline over a small HTTP
// REST API.
package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"ftcguard/internal/domain"
	"ftcguard/internal/infra/config"
	"ftcguard/internal/infra/middleware"
	"ftcguard/internal/usecase"
)

// Server is the HTTP gateway.
type Server struct {
	pipeline *usecase.Pipeline
	ledger   *usecase.Ledger
	reports  *usecase.ReportScheduler
	products domain.ProductProvider
	cfg      config.ServerConfig
	logger   *slog.Logger

	httpSrv   *http.Server
	boundAddr string
}

// NewServer creates a gateway server.
func NewServer(pipeline *usecase.Pipeline, ledger *usecase.Ledger, reports *usecase.ReportScheduler, products domain.ProductProvider, cfg config.ServerConfig, logger *slog.Logger) *Server {
	return &Server{
		pipeline: pipeline,
		ledger:   ledger,
		reports:  reports,
		products: products,
		cfg:      cfg,
		logger:   logger,
	}
}

// Start begins serving. Blocks until ctx is cancelled or the listener
// fails.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/validate", s.handleValidate)
	mux.HandleFunc("/v1/disclose", s.handleDisclose)
	mux.HandleFunc("/v1/generate", s.handleGenerate)
	mux.HandleFunc("/v1/report", s.handleReport)
	mux.HandleFunc("/v1/costs", s.handleCosts)
	mux.HandleFunc("/v1/products", s.handleProducts)

	rateLimit := middleware.RateLimit(ctx, middleware.RateLimitConfig{
		RequestsPerMin: s.cfg.RequestsPerMin,
		BurstSize:      s.cfg.Burst,
		TrustedProxies: s.cfg.TrustedProxies,
	})
	handler := middleware.SecurityHeaders(rateLimit(mux))

	listener, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("gateway listen: %w", err)
	}
	s.boundAddr = listener.Addr().String()

	s.httpSrv = &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("gateway started", "addr", s.boundAddr)

	go func() {
		<-ctx.Done()
		s.Stop(context.Background())
	}()

	if err := s.httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("gateway serve: %w", err)
	}
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) {
	if s.httpSrv == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("gateway shutdown", "error", err)
	}
}

// Addr returns the bound listen address, valid after Start.
func (s *Server) Addr() string { return s.boundAddr }
