package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/lehigh-university-libraries/omniscan/internal/capture"
	"github.com/lehigh-university-libraries/omniscan/internal/config"
	"github.com/lehigh-university-libraries/omniscan/internal/cue"
	"github.com/lehigh-university-libraries/omniscan/internal/decoder"
	"github.com/lehigh-university-libraries/omniscan/internal/enrichment"
	"github.com/lehigh-university-libraries/omniscan/internal/export"
	"github.com/lehigh-university-libraries/omniscan/internal/handlers"
	"github.com/lehigh-university-libraries/omniscan/internal/scanner"
	"github.com/lehigh-university-libraries/omniscan/internal/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(v *viper.Viper, configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the scanner and its HTTP interface",
		Long: `Starts the capture loop and the HTTP interface on the specified port.

Frames come either from a directory that a capture tool writes snapshots to
(--frames-dir) or from a client posting snapshots to /api/frames. Manual
entry is always available through /api/scan.`,
		Example: `  # Accept frames over HTTP on the default port 8888
  omniscan serve

  # Sample snapshots written by a webcam tool
  omniscan serve --frames-dir /var/run/omniscan/frames

  # Manual entry only, export the session when stopping
  omniscan serve --decoder none --export history.parquet`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, v, *configPath,
				"port", "frames-dir", "decoder", "cue", "provider", "model",
				"sample-interval", "cooldown", "export")
			if err != nil {
				return err
			}

			var source capture.Source
			var frames *capture.PushSource
			if cfg.FramesDir != "" {
				source = capture.NewDirectorySource(cfg.FramesDir)
			} else {
				frames = capture.NewPushSource()
				source = frames
			}

			return runServe(cmd.Context(), cfg, source, frames)
		},
	}

	cmd.Flags().StringP("port", "p", "8888", "Port to listen on")
	cmd.Flags().String("frames-dir", "", "Directory of camera snapshots (default: frames posted to /api/frames)")
	cmd.Flags().String("decoder", "zxing", "Barcode decoder (zxing, none)")
	cmd.Flags().String("cue", "bell", "Sound played when a scan is accepted (bell, silent)")
	cmd.Flags().String("provider", "gemini", "LLM provider (gemini, openai, ollama)")
	cmd.Flags().String("model", "", "Model name (defaults to provider's default)")
	cmd.Flags().Duration("sample-interval", capture.DefaultInterval, "Frame sampling interval")
	cmd.Flags().Duration("cooldown", scanner.DefaultCooldown, "Cooldown after a scan settles")
	cmd.Flags().String("export", "", "Write the session history to this .yaml or .parquet file on shutdown")

	return cmd
}

// runServe serves until ctx is done or the listener fails. The camera stream
// is released before it returns on every path. frames is nil unless the
// source accepts frames over HTTP.
func runServe(ctx context.Context, cfg config.Config, source capture.Source, frames *capture.PushSource) error {
	history := storage.New()

	client, err := enrichment.NewClientFromConfig(cfg)
	if err != nil {
		return err
	}

	coordinator := scanner.New(history, client,
		scanner.WithCooldown(cfg.Cooldown),
		scanner.WithCue(cue.New(cfg.Cue, os.Stderr)),
	)
	defer coordinator.Close()

	loop := capture.NewLoop(source, decoder.New(cfg.Decoder), coordinator,
		capture.WithInterval(cfg.SampleInterval),
	)

	loopCtx, stopLoop := context.WithCancel(ctx)
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		if err := loop.Run(loopCtx); err != nil {
			slog.Error("Camera unavailable, manual entry only", "err", err)
		}
	}()
	stopCapture := func() {
		stopLoop()
		<-loopDone
	}
	defer stopCapture()

	handler := handlers.New(history, coordinator, loop, frames)

	addr := ":" + cfg.Port
	server := &http.Server{
		Addr:    addr,
		Handler: handler.Router(),
		// event streams end with the command instead of holding up Shutdown
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		slog.Info("OmniScan interface available", "addr", addr, "url", "http://localhost"+addr,
			"provider", cfg.Provider, "model", cfg.Model)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for context cancellation (Ctrl+C) or server error
	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	shutdownErr := server.Shutdown(shutdownCtx)
	if shutdownErr != nil {
		slog.Error("Server shutdown failed", "err", shutdownErr)
	}

	stopCapture()
	coordinator.Close()

	if cfg.Export != "" {
		if err := export.Save(cfg.Export, history.List()); err != nil {
			slog.Error("Unable to export history", "path", cfg.Export, "err", err)
			return errors.Join(shutdownErr, err)
		}
	}

	slog.Info("Server stopped")
	return shutdownErr
}
