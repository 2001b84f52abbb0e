// Package middlewarectx содержит HTTP middleware: ограничение частоты запросов
// и проверку токена сессии.
//
// SessionMiddleware ищет токен в cookie session или в заголовке Authorization,
// проверяет его и кладёт имя пользователя в контекст запроса.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/account-service/internal/http/response"
	"github.com/magabrotheeeer/account-service/internal/lib/jwt"
	"github.com/magabrotheeeer/account-service/internal/lib/sl"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// User — ключ для имени пользователя в контексте
const User Key = "username"

// SessionCookie имя cookie с токеном сессии.
const SessionCookie = "session"

// TokenParser проверяет токен сессии.
type TokenParser interface {
	ParseToken(tokenStr string) (*jwt.SessionClaims, error)
}

// SessionMiddleware возвращает 401, если токена нет или он недействителен.
func SessionMiddleware(parser TokenParser, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.SessionMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			tokenStr := sessionToken(r)
			if tokenStr == "" {
				log.Info("missing session token")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing session token"))
				return
			}

			claims, err := parser.ParseToken(tokenStr)
			if err != nil {
				log.Info("invalid session token", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired session"))
				return
			}

			ctx := context.WithValue(r.Context(), User, claims.Username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UsernameFrom возвращает имя пользователя, положенное SessionMiddleware.
func UsernameFrom(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(User).(string)
	return username, ok && username != ""
}

func sessionToken(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}
