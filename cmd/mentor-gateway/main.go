// Package main Finance Career Mentor API
//
// @title           Finance Career Mentor API
// @version         1.0
// @description     Чат с наставником по карьере в финансах: бесплатное первое сообщение, подписка Stripe, вебхуки биллинга.

// @contact.name   API Support
// @contact.email  support@financecareermentor.com

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the identity provider session token.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/magabrotheeeer/mentor-gateway/docs"
	mentorgateway "github.com/magabrotheeeer/mentor-gateway/internal/app/mentor-gateway"
	"github.com/magabrotheeeer/mentor-gateway/internal/config"
	"github.com/magabrotheeeer/mentor-gateway/internal/lib/logger"
)

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env)

	log.Info("starting mentor-gateway", slog.String("env", cfg.Env))
	log.Debug("configuration loaded", slog.String("config", cfg.String()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := mentorgateway.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize app", slog.Any("err", err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("app stopped with error", slog.Any("err", err))
		os.Exit(1)
	}

	log.Info("mentor-gateway stopped gracefully")
}
