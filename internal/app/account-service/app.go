// Package accountservice собирает зависимости сервиса аккаунтов и запускает HTTP-сервер.
package accountservice

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/account-service/internal/cache"
	"github.com/magabrotheeeer/account-service/internal/config"
	"github.com/magabrotheeeer/account-service/internal/events"
	"github.com/magabrotheeeer/account-service/internal/lib/jwt"
	"github.com/magabrotheeeer/account-service/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/account-service/internal/lib/sl"
	"github.com/magabrotheeeer/account-service/internal/metrics"
	"github.com/magabrotheeeer/account-service/internal/migrations"
	accountsvc "github.com/magabrotheeeer/account-service/internal/services/account"
	statsservice "github.com/magabrotheeeer/account-service/internal/services/stats"
	"github.com/magabrotheeeer/account-service/internal/storage"
)

type App struct {
	server *http.Server
	logger *slog.Logger
	db     *storage.Storage
	cache  *cache.Cache
	amqp   *amqp.Connection
}

// New подключает хранилище, применяет миграции и собирает сервисы.
// Redis и RabbitMQ необязательны: пустой адрес в конфиге отключает их.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, err
	}

	app := &App{
		logger: logger,
		db:     db,
	}

	var reportCache statsservice.Cache
	var reportInvalidator accountsvc.ReportCache
	if cfg.AddressRedis != "" {
		app.cache, err = cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			app.close()
			return nil, err
		}
		reportCache = app.cache
		reportInvalidator = app.cache
	} else {
		logger.Info("redis address is empty, report cache disabled")
	}

	var publisher accountsvc.Publisher = events.Noop{}
	if cfg.RabbitURL != "" {
		app.amqp, err = rabbitmq.Connect(cfg.RabbitURL, cfg.RabbitRetries, cfg.RabbitRetryDelay)
		if err != nil {
			app.close()
			return nil, err
		}
		ch, err := rabbitmq.SetupExchange(app.amqp, cfg.RabbitExchange)
		if err != nil {
			app.close()
			return nil, err
		}
		publisher = events.NewPublisher(ch, cfg.RabbitExchange)
	} else {
		logger.Info("rabbitmq url is empty, account events disabled")
	}

	counters := metrics.New(cfg.PerUserLabels)
	accounts := accountsvc.NewAccountService(db, counters, publisher, reportInvalidator, logger)
	stats := statsservice.NewAggregator(db, reportCache, cfg.ActivityCacheTTL, counters, logger)
	tokens := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	router := chi.NewRouter()
	RegisterRoutes(router, Deps{
		Logger:   logger,
		Accounts: accounts,
		Stats:    stats,
		Counters: counters,
		Tokens:   tokens,
		TokenTTL: cfg.TokenTTL,
		DB:       db,
		Limiter:  cfg.RateLimit,
	})

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return app, nil
}

// Run обслуживает запросы до отмены ctx, затем корректно останавливает сервер.
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
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if a.amqp != nil {
		if err := a.amqp.Close(); err != nil {
			a.logger.Warn("failed to close rabbitmq connection", sl.Err(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Warn("failed to close redis client", sl.Err(err))
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn("failed to close storage", sl.Err(err))
	}
}
