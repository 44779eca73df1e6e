package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medtrack/internal/adapters/auth/token"
	pg "medtrack/internal/adapters/storage/postgres"
	"medtrack/internal/config"
	"medtrack/internal/platform/logger"
	"medtrack/internal/router"

	"go.uber.org/zap"
)

// @title MedTrack API
// @version 1.0
// @description API REST para el tracking de medicamentos: auth, CRUD y historial de tomas.
// @BasePath /
func main() {
	log, err := logger.NewFromEnv()
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load(log)
	if err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	provider, err := token.NewProvider(token.Config{
		Secret: cfg.JWTSecret,
		TTL:    cfg.TokenTTL,
	})
	if err != nil {
		log.Fatal("token provider", zap.Error(err))
	}

	var db *sql.DB
	if cfg.DBDSN != "" {
		db, err = pg.Open(cfg.DBDSN)
		if err != nil {
			log.Warn("postgres unavailable, falling back to in-memory store", zap.Error(err))
		} else {
			defer func() { _ = db.Close() }()
			log.Info("connected to postgres")
		}
	} else {
		log.Info("no DB_DSN configured, using in-memory store")
	}

	r := router.NewRouter(router.Options{
		Issuer:         provider,
		Verifier:       provider,
		DB:             db,
		Logger:         log,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	// Apagado prolijo con SIGTERM/SIGINT
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	case sig := <-stop:
		log.Info("shutting down", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("shutdown error", zap.Error(err))
		}
	}
}
