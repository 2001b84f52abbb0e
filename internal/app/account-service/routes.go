package accountservice

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/account-service/internal/config"
	"github.com/magabrotheeeer/account-service/internal/http/handlers/auth/forgot"
	"github.com/magabrotheeeer/account-service/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/account-service/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/account-service/internal/http/handlers/auth/reset"
	"github.com/magabrotheeeer/account-service/internal/http/handlers/health"
	"github.com/magabrotheeeer/account-service/internal/http/handlers/stats/activity"
	"github.com/magabrotheeeer/account-service/internal/http/handlers/stats/counters"
	"github.com/magabrotheeeer/account-service/internal/http/handlers/stats/registrations"
	"github.com/magabrotheeeer/account-service/internal/http/handlers/welcome"
	"github.com/magabrotheeeer/account-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/account-service/internal/lib/jwt"
	"github.com/magabrotheeeer/account-service/internal/metrics"
	accountsvc "github.com/magabrotheeeer/account-service/internal/services/account"
	statsservice "github.com/magabrotheeeer/account-service/internal/services/stats"

	// Регистрация swagger-спецификации для /docs.
	_ "github.com/magabrotheeeer/account-service/docs"
)

// Deps зависимости, которые нужны маршрутам.
type Deps struct {
	Logger   *slog.Logger
	Accounts *accountsvc.AccountService
	Stats    *statsservice.Aggregator
	Counters *metrics.Counters
	Tokens   jwt.Maker
	TokenTTL time.Duration
	DB       health.Pinger
	Limiter  config.RateLimit
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, d Deps) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
	)

	limiter := middlewarectx.NewIPLimiter(d.Limiter.RPS, d.Limiter.Burst)

	// Формы аккаунта
	r.Group(func(r chi.Router) {
		r.Use(middlewarectx.RateLimitMiddleware(d.Logger, limiter))
		r.Post("/register", register.New(d.Logger, d.Accounts).ServeHTTP)
		r.Post("/login", login.New(d.Logger, d.Accounts, d.Tokens, d.TokenTTL).ServeHTTP)
		r.Post("/forgot-password", forgot.New(d.Logger, d.Accounts).ServeHTTP)
		r.Post("/reset-password", reset.New(d.Logger, d.Accounts).ServeHTTP)
	})

	r.Group(func(r chi.Router) {
		r.Use(middlewarectx.SessionMiddleware(d.Tokens, d.Logger))
		r.Get("/welcome/{username}", welcome.New(d.Logger).ServeHTTP)
	})

	r.Route("/api/v1/stats", func(r chi.Router) {
		r.Get("/registrations", registrations.New(d.Logger, d.Stats).ServeHTTP)
		r.Get("/activity", activity.New(d.Logger, d.Stats).ServeHTTP)
		r.Get("/counters", counters.New(d.Logger, d.Stats).ServeHTTP)
	})

	r.Get("/health", health.New(d.Logger, d.DB).ServeHTTP)
	r.Handle("/metrics", d.Counters.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
