// Package main Account Service API
//
// @title           Account Service API
// @version         1.0
// @description     Регистрация, вход и сброс пароля пользователей, отчёты по активности.

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	accountservice "github.com/magabrotheeeer/account-service/internal/app/account-service"
	"github.com/magabrotheeeer/account-service/internal/config"
	"github.com/magabrotheeeer/account-service/internal/lib/sl"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	cfg := config.MustLoad()
	logger := setupLogger(cfg.Env)

	logger.Info("starting account-service", slog.String("env", cfg.Env))
	logger.Debug("config loaded", slog.String("config", cfg.String()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := accountservice.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize app", sl.Err(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("app stopped with error", sl.Err(err))
		os.Exit(1)
	}

	logger.Info("account-service stopped gracefully")
}

func setupLogger(env string) *slog.Logger {
	level := slog.LevelInfo
	switch env {
	case envLocal, envDev:
		level = slog.LevelDebug
	case envProd:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
