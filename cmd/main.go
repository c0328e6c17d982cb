package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"natours-api/configs"
	"natours-api/internal/app"
	"natours-api/internal/apperror"
	"natours-api/internal/daemon"
	"natours-api/internal/db"
	"natours-api/internal/handlers"
	"natours-api/internal/metrics"
	"natours-api/internal/middleware"
	"natours-api/internal/models"
	"natours-api/internal/repository"
	"natours-api/internal/utils"
)

func main() {
	envFile := "config.env"
	if v := os.Getenv("CONFIG_FILE"); v != "" {
		envFile = v
	}

	cfg, err := configs.LoadConfig(envFile)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := db.Connect(ctx, cfg.DatabaseURI())
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	toursColl := db.GetCollection(client, cfg.DBName, "tours")
	if err := db.EnsureTourIndexes(ctx, toursColl); err != nil {
		log.Printf("ensure indexes: %v", err)
	}

	auditColl := db.GetCollection(client, cfg.DBName, "audit_logs")
	auditLogger := &utils.Logger{Collection: auditColl}
	registry := metrics.NewRegistry()

	exporter := &daemon.LogExporter{
		Coll:     auditColl,
		Out:      os.Stdout,
		Interval: cfg.AuditExportEvery,
		OnExport: registry.RecordAuditExport,
	}
	exporterCtx, stopExporter := context.WithCancel(context.Background())
	exporterDone := exporter.Start(exporterCtx)

	limiter := middleware.NewRateLimiter(&middleware.RateLimitConfig{
		Max:             cfg.RateLimitMax,
		Window:          cfg.RateLimitWindow,
		CleanupInterval: 10 * time.Minute,
		PathPrefix:      "/api",
	})
	tokens := utils.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiresIn)

	deps := app.Deps{
		Errors:  apperror.NewHandler(cfg.Development(), log.Default()),
		Limiter: limiter,
		Metrics: registry,
		Tokens:  tokens,
		Tours:   handlers.NewTourHandler(repository.NewTourRepository(toursColl), auditLogger, registry),
		Auth: &handlers.AuthHandler{
			Operator: handlers.OperatorCredentials{
				UserID:       cfg.OperatorID,
				Email:        cfg.OperatorEmail,
				PasswordHash: cfg.OperatorPasswordHash,
				Role:         models.Role(cfg.OperatorRole),
			},
			Tokens: tokens,
		},
		Health: &handlers.HealthHandler{
			Ping: func(ctx context.Context) error { return client.Ping(ctx, nil) },
		},
		AccessLog: os.Stdout,
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.NewHandler(cfg, deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("App running on port %s (%s)...", cfg.Port, cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	exitCode := 0
	select {
	case <-ctx.Done():
		log.Println("Shutting down gracefully...")
	case err := <-serverErr:
		log.Printf("UNHANDLED ERROR 💥 Shutting down... %v", err)
		exitCode = 1
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
		exitCode = 1
	}
	limiter.Stop()
	stopExporter()
	<-exporterDone
	db.Disconnect(shutdownCtx, client)
	log.Println("Server shut down.")

	if exitCode != 0 {
		cancel()
		stop()
		os.Exit(exitCode)
	}
}
