package mentorgateway

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/mentor-gateway/internal/billingevent"
	"github.com/magabrotheeeer/mentor-gateway/internal/cache"
	"github.com/magabrotheeeer/mentor-gateway/internal/config"
	"github.com/magabrotheeeer/mentor-gateway/internal/http/handlers/contact"
	"github.com/magabrotheeeer/mentor-gateway/internal/http/handlers/health"
	"github.com/magabrotheeeer/mentor-gateway/internal/http/middlewarectx"
	"github.com/magabrotheeeer/mentor-gateway/internal/identity"
	"github.com/magabrotheeeer/mentor-gateway/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/mentor-gateway/internal/lib/sl"
	"github.com/magabrotheeeer/mentor-gateway/internal/llm/openai"
	"github.com/magabrotheeeer/mentor-gateway/internal/migrations"
	"github.com/magabrotheeeer/mentor-gateway/internal/paymentprovider"
	billingservice "github.com/magabrotheeeer/mentor-gateway/internal/services/billing"
	"github.com/magabrotheeeer/mentor-gateway/internal/services/completion"
	"github.com/magabrotheeeer/mentor-gateway/internal/services/entitlement"
	"github.com/magabrotheeeer/mentor-gateway/internal/storage/repository"
)

const shutdownTimeout = 15 * time.Second

// App: HTTP-сервер шлюза и его соединения.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// New подключает хранилище, применяет миграции и собирает маршруты.
// Redis, RabbitMQ и провайдер идентификации необязательны: без них
// отключаются дедупликация вебхуков, уведомления и вход соответственно.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, err
	}

	app := &App{logger: logger, db: db}
	checks := map[string]health.Pinger{"postgres": db}

	var events billingservice.EventLog
	if cfg.RedisConnection.AddressRedis != "" {
		c, err := cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			app.close()
			return nil, err
		}
		app.cache = c
		events = c
		checks["redis"] = c
	} else {
		logger.Warn("redis is not configured, webhook events will not be deduplicated")
	}

	var notices billingservice.NoticePublisher
	var contactPublisher contact.Publisher
	if cfg.RabbitMQ.URL != "" {
		conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.Retries, cfg.RabbitMQ.RetryDelay)
		if err != nil {
			app.close()
			return nil, err
		}
		app.conn = conn
		ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
		if err != nil {
			app.close()
			return nil, err
		}
		app.ch = ch
		publisher := rabbitmq.NewPublisher(ch)
		notices = publisher
		contactPublisher = publisher
	} else {
		logger.Warn("rabbitmq is not configured, notifications are disabled")
	}

	var tokenVerifier middlewarectx.TokenVerifier
	if cfg.Identity.Issuer != "" {
		v, err := identity.NewVerifier(cfg.Identity.Issuer, cfg.Identity.Audience, cfg.Identity.JWKSURL)
		if err != nil {
			app.close()
			return nil, err
		}
		tokenVerifier = v
	} else {
		logger.Warn("identity issuer is not configured, all requests are anonymous")
	}

	stripeClient := paymentprovider.NewClient(cfg.Stripe.SecretKey)
	checkout := billingservice.NewCheckoutService(stripeClient, db, billingservice.CheckoutConfig{
		PriceID: cfg.Stripe.PriceID,
		AppURL:  cfg.Stripe.AppURL,
	}, logger)
	reconciler := billingservice.NewReconciler(db, db, stripeClient, notices, events, logger).
		WithEventTTL(cfg.RedisConnection.EventTTL)

	llm := openai.NewClient(cfg.Completion.APIKey, cfg.Completion.Model, cfg.Completion.BaseURL, cfg.Completion.Temperature)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, Deps{
		Evaluator:     entitlement.NewEvaluator(db, logger).WithLinker(billingservice.NewLinker(db, logger)),
		Completer:     completion.NewService(llm, cfg.Completion.Timeout, logger),
		Billing:       checkout,
		EventVerifier: billingevent.NewVerifier(cfg.Stripe.WebhookSecret),
		Reconciler:    reconciler,
		Contact:       contactPublisher,
		TokenVerifier: tokenVerifier,
		Limiter:       middlewarectx.NewClientLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
		HealthChecks:  checks,
		SignInURL:     cfg.Stripe.AppURL + "/sign-in",
	})

	app.server = &http.Server{
		Addr:         cfg.HTTPServer.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.TimeoutHTTP,
		WriteTimeout: cfg.HTTPServer.TimeoutHTTP,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}
	return app, nil
}

// Run запускает сервер и останавливает его при отмене ctx.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if a.ch != nil {
		if err := a.ch.Close(); err != nil {
			a.logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if a.conn != nil {
		if err := a.conn.Close(); err != nil {
			a.logger.Error("failed to close connection", sl.Err(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("failed to close redis", sl.Err(err))
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database", sl.Err(err))
	}
}
