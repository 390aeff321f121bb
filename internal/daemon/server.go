package daemon

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/weaver-labs/weaver/internal/agent"
	"github.com/weaver-labs/weaver/internal/config"
	"github.com/weaver-labs/weaver/internal/llm/configbuilder"
	"github.com/weaver-labs/weaver/internal/observability"
	agentrpc "github.com/weaver-labs/weaver/internal/rpc/agent"
	toolrpc "github.com/weaver-labs/weaver/internal/rpc/tools"
)

// Server exposes the agent over HTTP and Connect, plus health and metrics.
type Server struct {
	cfg     *config.Config
	logger  *zap.Logger
	asker   agentrpc.Asker
	metrics *observability.Metrics
}

// NewServer constructs a daemon instance.
func NewServer(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	registry, err := configbuilder.BuildRegistryFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("build registry: %w", err)
	}

	metrics := observability.NewMetrics()
	core, err := agent.New(registry, cfg.Agent,
		agent.WithLogger(logger),
		agent.WithMetrics(metrics),
		agent.WithRequestTimeout(cfg.Backend.RequestTimeout),
	)
	if err != nil {
		return nil, err
	}

	return &Server{cfg: cfg, logger: logger, asker: core, metrics: metrics}, nil
}

// Handler returns the routed, h2c-capable handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/metrics", s.metricsHandler)
	mux.Handle("/tools/schemas", toolrpc.NewSchemaHandler())
	mux.Handle("/agent/ask", agentrpc.NewHandler(s.asker, s.logger))

	path, handler := agentrpc.NewConnectHandler(s.asker, s.logger)
	mux.Handle(path, handler)

	return h2c.NewHandler(mux, &http2.Server{})
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting weaver daemon", zap.String("addr", s.cfg.Server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down weaver daemon")
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) metricsHandler(w http.ResponseWriter, r *http.Request) {
	if !s.cfg.Server.MetricsEnabled {
		http.NotFound(w, r)
		return
	}

	promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}).ServeHTTP(w, r)
}
