// Package server exposes the scan pipeline over HTTP: multipart image and
// PDF scanning, a WebSocket stream for per-frame scanning, health and
// Prometheus metrics endpoints.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/scanforge/dmscan/internal/scanner"
)

// Config holds server configuration.
type Config struct {
	Host        string
	Port        int
	CORSOrigin  string
	MaxUploadMB int64
	TimeoutSec  int
	Scanner     scanner.Config
}

// Server holds the HTTP server state and dependencies.
type Server struct {
	scanner     *scanner.Scanner
	corsOrigin  string
	maxUploadMB int64
	timeoutSec  int
}

// NewServer creates a scan server instance.
func NewServer(config Config) (*Server, error) {
	if config.MaxUploadMB <= 0 {
		return nil, fmt.Errorf("server: max upload size must be positive, got %d", config.MaxUploadMB)
	}
	return &Server{
		scanner:     scanner.New(config.Scanner),
		corsOrigin:  config.CORSOrigin,
		maxUploadMB: config.MaxUploadMB,
		timeoutSec:  config.TimeoutSec,
	}, nil
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/scan/image", s.corsMiddleware(s.scanImageHandler))
	mux.HandleFunc("/scan/pdf", s.corsMiddleware(s.scanPDFHandler))
	mux.HandleFunc("/scan/ws", s.scanWebSocketHandler)
	mux.Handle("/metrics", promhttp.Handler())
}

// Serve runs the server until the context is canceled, then shuts down
// gracefully within the given timeout.
func (s *Server) Serve(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	mux := http.NewServeMux()
	s.SetupRoutes(mux)

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Duration(s.timeoutSec) * time.Second,
		WriteTimeout:      time.Duration(s.timeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding response: %v\n", err)
	}
}

func (s *Server) writeErrorResponse(w http.ResponseWriter, message string, status int) {
	s.writeJSON(w, status, ScanResponse{Success: false, Error: message})
}
