package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/scanforge/dmscan/internal/scanner"
	"github.com/scanforge/dmscan/internal/server"
)

// serveCmd starts the HTTP scan server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP scan server",
	Long: `Start an HTTP server exposing the scan pipeline.

Endpoints:
  GET  /health      health check
  POST /scan/image  scan an uploaded image (multipart field "image")
  POST /scan/pdf    scan images embedded in an uploaded PDF (field "pdf")
  GET  /scan/ws     WebSocket stream of per-frame scan results
  GET  /metrics     Prometheus metrics

Examples:
  dmscan serve
  dmscan serve --host 0.0.0.0 --port 9000`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		scCfg := scanner.DefaultConfig()
		scCfg.Threshold = byte(cfg.Scanner.Threshold)
		scCfg.TryPure = cfg.Scanner.TryPure
		scCfg.Logger = slog.Default()

		srv, err := server.NewServer(server.Config{
			Host:        cfg.Server.Host,
			Port:        cfg.Server.Port,
			CORSOrigin:  cfg.Server.CORSOrigin,
			MaxUploadMB: int64(cfg.Server.MaxUploadMB),
			TimeoutSec:  cfg.Server.TimeoutSec,
			Scanner:     scCfg,
		})
		if err != nil {
			return fmt.Errorf("failed to create server: %w", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		shutdownTimeout := time.Duration(cfg.Server.ShutdownTimeout) * time.Second
		return srv.Serve(ctx, addr, shutdownTimeout)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "localhost", "host to bind to")
	serveCmd.Flags().Int("port", 8080, "port to listen on")
	serveCmd.Flags().String("cors-origin", "*", "CORS allowed origin")
	serveCmd.Flags().Int("max-upload-mb", 50, "maximum upload size in MB")
	serveCmd.Flags().Int("timeout-sec", 30, "request timeout in seconds")

	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("server.cors_origin", serveCmd.Flags().Lookup("cors-origin"))
	_ = viper.BindPFlag("server.max_upload_mb", serveCmd.Flags().Lookup("max-upload-mb"))
	_ = viper.BindPFlag("server.timeout_sec", serveCmd.Flags().Lookup("timeout-sec"))
}
