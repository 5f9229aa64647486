package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"provender/internal/config"
	"provender/internal/db"
	"provender/internal/db/mock"
	applog "provender/internal/log"
	"provender/internal/server"
)

func main() {
	if err := run(); err != nil {
		applog.Error(context.Background(), "server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Missing .env is fine; real deployments configure the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	applog.SetLevel(cfg.Log.Level)

	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}

	srv, err := server.New(server.Config{
		Addr: cfg.Server.Addr,
		Session: server.SessionConfig{
			Lifetime:     cfg.Session.Lifetime,
			CookieName:   cfg.Session.CookieName,
			CookieDomain: cfg.Session.CookieDomain,
			CookieSecure: cfg.Session.CookieSecure,
		},
		Database: database,
		Tax:      cfg.Tax,
		Currency: cfg.Currency,
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		applog.Info(context.Background(), "starting http server", "addr", cfg.Server.Addr)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		applog.Info(context.Background(), "shutting down http server", "signal", sig.String())
	}

	return srv.Stop()
}

func openDatabase(cfg config.Config) (*gorm.DB, error) {
	if cfg.Database.UseMock {
		applog.Warn(context.Background(), "using in-memory mock database, data will not persist")
		return mock.New(context.Background())
	}
	return db.Configure(cfg.Database)
}
