// Package server parses server flags and launches the activities service.
package server

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/mergington/activities/internal/activities/seed"
	"github.com/mergington/activities/internal/activities/service"
	"github.com/mergington/activities/internal/activities/storage/sqlite"
	"github.com/mergington/activities/internal/api"
	"github.com/mergington/activities/internal/platform/config"
	"github.com/mergington/activities/internal/platform/httpx"
	"github.com/mergington/activities/internal/platform/otel"
	"github.com/mergington/activities/internal/staffauth"
	"github.com/mergington/activities/internal/web"
)

// Config holds server command configuration.
type Config struct {
	Port   int    `env:"MERGINGTON_PORT" envDefault:"8000"`
	DBPath string `env:"MERGINGTON_DB_PATH"`
	Seed   bool
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join("data", "activities.db")
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The HTTP server port")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "The SQLite database path")
	fs.BoolVar(&cfg.Seed, "seed", false, "Force seeding the default activities")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the activities HTTP service and blocks until ctx is canceled.
func Run(ctx context.Context, cfg Config) error {
	shutdownTelemetry, err := otel.Setup(ctx, "activities-server")
	if err != nil {
		return fmt.Errorf("setup telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Printf("telemetry shutdown: %v", err)
		}
	}()

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
	}
	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	if err := seed.Run(ctx, store, cfg.Seed); err != nil {
		return fmt.Errorf("seed activities: %w", err)
	}

	staff, err := staffauth.LoadConfigFromEnv(nil)
	if err != nil {
		return fmt.Errorf("load staff auth: %w", err)
	}
	if staff.Enabled() {
		log.Printf("staff sessions enabled issuer=%s", staff.Issuer)
	}

	svc := service.New(store)
	mux := http.NewServeMux()
	api.New(svc, staff).Register(mux)
	web.New(svc, staff).Register(mux)

	handler := httpx.Chain(mux,
		httpx.RequestID(),
		httpx.RecoverPanic(),
	)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", httpServer.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
