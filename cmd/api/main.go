package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/fleetyard/fleetyard/internal/config"
	"github.com/fleetyard/fleetyard/internal/db"
	"github.com/fleetyard/fleetyard/internal/scheduler"
	"github.com/fleetyard/fleetyard/internal/service"
	"github.com/fleetyard/fleetyard/internal/storage"
)

func main() {
	cfg := config.Load()

	var handler slog.Handler = slog.NewTextHandler(os.Stdout, nil)
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, nil)
	}
	log := slog.New(handler)
	slog.SetDefault(log)

	if cfg.Env == "prod" && (cfg.JWTSecret == "" || cfg.JWTSecret == "supersecretkey") {
		log.Error("JWT_SECRET must be set in prod")
		os.Exit(1)
	}

	database, err := db.Connect(cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBUser, cfg.DBPass,
		cfg.DBMaxOpenConns, cfg.DBMaxIdleConns)
	if err != nil {
		log.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer database.Close()
	log.Info("connected to database", "host", cfg.DBHost, "name", cfg.DBName)

	if err := db.Run(db.URL(cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBUser, cfg.DBPass)); err != nil {
		log.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	store, err := storage.NewS3Store(ctx, cfg)
	if err != nil {
		log.Error("object store init failed", "error", err)
		os.Exit(1)
	}

	loc, err := time.LoadLocation(cfg.ReportTimezone)
	if err != nil {
		log.Error("invalid report timezone", "tz", cfg.ReportTimezone, "error", err)
		os.Exit(1)
	}

	reports := service.NewReportService(database, store,
		loc, time.Duration(cfg.ReportURLTTLHours)*time.Hour, log)

	stopCron, err := scheduler.Run(cfg.ReportCron, loc, reports, log)
	if err != nil {
		log.Error("scheduler start failed", "error", err)
		os.Exit(1)
	}
	defer stopCron()

	r := newRouter(database, store, reports, cfg, log)

	addr := ":" + cfg.Port
	if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
		log.Info("starting server with TLS", "addr", addr)
		err = http.ListenAndServeTLS(addr, cfg.TLSCertFile, cfg.TLSKeyFile, r)
	} else {
		log.Info("starting server", "addr", addr)
		err = http.ListenAndServe(addr, r)
	}
	if err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
