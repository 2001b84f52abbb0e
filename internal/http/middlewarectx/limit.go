package middlewarectx

import (
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/account-service/internal/http/response"
)

// minSweepSize размер таблицы, с которого начинается удаление простаивающих клиентов.
const minSweepSize = 1024

// IPLimiter хранит отдельный token bucket на каждый IP клиента.
// Клиенты, чей bucket снова полон, удаляются: для них новый bucket ведёт себя так же.
type IPLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*rate.Limiter
	rps       rate.Limit
	burst     int
	nextSweep int
	now       func() time.Time
}

// NewIPLimiter создаёт ограничитель с rps запросов в секунду и запасом burst.
func NewIPLimiter(rps float64, burst int) *IPLimiter {
	return &IPLimiter{
		limiters:  make(map[string]*rate.Limiter),
		rps:       rate.Limit(rps),
		burst:     burst,
		nextSweep: minSweepSize,
		now:       time.Now,
	}
}

// Allow сообщает, можно ли обслужить ещё один запрос с адреса ip.
func (l *IPLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if len(l.limiters) >= l.nextSweep {
		l.sweep(now)
	}
	lim, ok := l.limiters[ip]
	if !ok {
		lim = rate.NewLimiter(l.rps, l.burst)
		l.limiters[ip] = lim
	}
	return lim.AllowN(now, 1)
}

// sweep удаляет клиентов с полным bucket. Следующий проход откладывается
// до удвоения таблицы, поэтому в среднем Allow остаётся O(1).
func (l *IPLimiter) sweep(now time.Time) {
	for ip, lim := range l.limiters {
		if lim.TokensAt(now) >= float64(l.burst) {
			delete(l.limiters, ip)
		}
	}
	l.nextSweep = max(minSweepSize, 2*len(l.limiters))
}

// RateLimitMiddleware отвечает 429, когда клиент исчерпал свой лимит.
// Адрес берётся из RemoteAddr, поэтому middleware.RealIP должен стоять раньше.
func RateLimitMiddleware(log *slog.Logger, limiter *IPLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r.RemoteAddr)
			if !limiter.Allow(ip) {
				log.Warn("too many requests",
					slog.String("ip", ip),
					slog.String("request_id", middleware.GetReqID(r.Context())),
				)
				render.Status(r, http.StatusTooManyRequests)
				render.JSON(w, r, response.Error("too many requests"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
