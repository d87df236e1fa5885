package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/abdullahzubairwan/waktu-solat-ampang/internal/app"
	"github.com/abdullahzubairwan/waktu-solat-ampang/internal/config"
	"github.com/abdullahzubairwan/waktu-solat-ampang/internal/logging"
	"github.com/abdullahzubairwan/waktu-solat-ampang/internal/web"
	"github.com/abdullahzubairwan/waktu-solat-ampang/internal/zone"
)

func main() {
	// Overload lets a local .env win over the shell environment.
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"zone", cfg.Source.Zone,
		"data_dir", cfg.Source.DataDir,
		"use_api", cfg.Source.UseAPI,
		"timezone", cfg.Clock.Timezone,
		"database", cfg.Database.Enabled(),
		"mqtt", cfg.MQTT.Enabled(),
		"rate_limit_enabled", cfg.Rate.Enabled,
	)
	slog.Debug("configuration", "config", cfg.String())
	slog.Info("zones registered", "count", zone.Count(), "states", len(zone.States()))

	ctx := context.Background()

	client := app.NewClient(cfg)
	service, err := app.NewService(cfg, app.NewLoader(cfg, client))
	if err != nil {
		slog.Error("failed to create service", "error", err)
		os.Exit(1)
	}

	deps := web.Deps{Service: service}
	if cfg.Source.UseAPI {
		deps.Fetcher = client
	}

	// Background jobs stop when jobCtx is cancelled.
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	defer cancelJobs()

	st, err := app.OpenStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open lookup log", "error", err)
		os.Exit(1)
	}
	if st != nil {
		defer st.Close()
		service.SetRecorder(st)
		deps.Lookups = st
		deps.DB = st
		go st.StartRetention(jobCtx, app.Retention(cfg))
	}

	pub, err := app.ConnectPublisher(cfg)
	if err != nil {
		// Displays are optional; the API still serves without them.
		slog.Error("failed to connect MQTT publisher", "broker", cfg.MQTT.Broker, "error", err)
	}
	if pub != nil {
		defer pub.Close()
		go service.StartPublisher(jobCtx, pub, cfg.MQTT.Interval)
	}

	server := web.NewServer(cfg, deps)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
