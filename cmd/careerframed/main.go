// Command careerframed serves the career-assessment interview engine over
// HTTP. Configuration comes from a YAML file plus environment variables; a
// .env file is honored for local development.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	careerframe "github.com/goksnair/careerframe"
	"github.com/goksnair/careerframe/config"
	"github.com/goksnair/careerframe/httpapi"
	"github.com/goksnair/careerframe/obs"
	"github.com/goksnair/careerframe/store"
	"github.com/goksnair/careerframe/textgen"

	// Registered text-generation providers.
	_ "github.com/goksnair/careerframe/textgen/coachapi"
	_ "github.com/goksnair/careerframe/textgen/scripted"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "careerframed:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "careerframe.yaml", "path to YAML configuration")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownObs, err := obs.Init(ctx, obs.Options{
		ServiceName: "careerframed",
		Environment: cfg.Telemetry.Environment,
		Exporter:    obs.ExporterType(cfg.Telemetry.Exporter),
		Endpoint:    cfg.Telemetry.Endpoint,
		Insecure:    cfg.Telemetry.Insecure,
		SampleRatio: 1,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownObs(shutdownCtx); err != nil {
			log.Warn("telemetry shutdown", "err", err)
		}
	}()

	sessions, err := store.NewSQLite(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer sessions.Close()

	provider, err := textgen.New(cfg.Provider.Name, textgen.Config{
		BaseURL: cfg.Provider.BaseURL,
		APIKey:  cfg.Provider.APIKey,
		Timeout: cfg.Provider.Timeout(),
	})
	if err != nil {
		return err
	}

	mgr := careerframe.New(provider,
		careerframe.WithStore(sessions),
		careerframe.WithMaxTurns(cfg.Retention.MaxTurns),
		careerframe.WithProviderTimeout(cfg.Provider.Timeout()),
	)

	server := &http.Server{
		Addr:              cfg.Listen,
		Handler:           httpapi.New(mgr, log).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.Listen, "provider", provider.Name(), "db", cfg.DatabasePath)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
