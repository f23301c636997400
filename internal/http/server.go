package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"musicpin/internal/core"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	config *core.ServerConfig
	logger *zap.Logger
	server *http.Server
}

// NewServer creates the HTTP server. api may be nil, in which case only the
// operational endpoints are served. gatherer backs /metrics.
func NewServer(config *core.ServerConfig, api *API, gatherer prometheus.Gatherer, logger *zap.Logger) *Server {
	logger = logger.Named("http")
	mux := setupRoutes(gatherer, logger)
	if api != nil {
		api.Register(mux)
	}

	return &Server{
		config: config,
		logger: logger,
		server: createHTTPServer(config, mux),
	}
}

func createHTTPServer(config *core.ServerConfig, mux *http.ServeMux) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      mux,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}
}

func setupRoutes(gatherer prometheus.Gatherer, logger *zap.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", statusHandler(`{"status":"ok","service":"musicpin"}`, logger))
	mux.HandleFunc("GET /readyz", statusHandler(`{"status":"ready","service":"musicpin"}`, logger))
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /{$}", homeHandler(logger))

	return mux
}

func statusHandler(body string, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(body)); err != nil {
			logger.Debug("Failed to write status response", zap.Error(err))
		}
	}
}

func homeHandler(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`<!DOCTYPE html>
<html>
<head>
    <title>musicpin</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 40px; }
        .header { color: #333; }
        .endpoint { margin: 10px 0; }
        .endpoint a { text-decoration: none; color: #0066cc; }
        .endpoint a:hover { text-decoration: underline; }
        code { background: #f4f4f4; padding: 1px 4px; }
    </style>
</head>
<body>
    <h1 class="header">🎵 musicpin</h1>
    <p>Federated song search with relevance-checked playable results</p>

    <h2>API</h2>
    <div class="endpoint">🔎 <code>/api/search?song=&amp;artist=</code> or <code>/api/search?q=</code> - Resolve a playable track</div>
    <div class="endpoint">🎯 <code>/api/search?q=&amp;platform=&amp;source=&amp;page=</code> - Search a single interface</div>
    <div class="endpoint">🎧 <code>/api/detail?key=</code> - Re-resolve a continuation key</div>
    <div class="endpoint">📝 <code>/api/lyrics?key=</code> - Lyrics for a continuation key</div>
    <div class="endpoint">📋 <a href="/api/interfaces">Interfaces</a> - Enablement table</div>

    <h2>Operations</h2>
    <div class="endpoint">📊 <a href="/metrics">Metrics</a> - Prometheus metrics</div>
    <div class="endpoint">💚 <a href="/healthz">Health</a> - Health check</div>
    <div class="endpoint">✅ <a href="/readyz">Ready</a> - Readiness check</div>
</body>
</html>`)); err != nil {
			logger.Debug("Failed to write home page", zap.Error(err))
		}
	}
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP server",
		zap.String("addr", s.server.Addr))

	go func() {
		<-ctx.Done()
		s.logger.Info("Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Failed to shutdown HTTP server gracefully", zap.Error(err))
		}
	}()

	if err := s.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	return nil
}
