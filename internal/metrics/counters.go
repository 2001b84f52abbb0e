// Package metrics содержит счётчики действий с аккаунтами на весь срок жизни процесса
// и их выгрузку в текстовом формате Prometheus.
package metrics

import (
	"fmt"
	"io"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"
)

const namespace = "account"

// Counters монотонные счётчики регистраций, входов и смен пароля.
// Значения сбрасываются только при перезапуске процесса.
type Counters struct {
	registry        *prometheus.Registry
	registrations   prometheus.Counter
	logins          *prometheus.CounterVec
	passwordChanges *prometheus.CounterVec
	perUser         bool
}

// New создаёт счётчики в собственном реестре. При perUser счётчики входов
// и смен пароля получают метку username, иначе ведутся глобально.
func New(perUser bool) *Counters {
	var labels []string
	if perUser {
		labels = []string{"username"}
	}

	c := &Counters{
		registry: prometheus.NewRegistry(),
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Total number of successful registrations.",
		}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Total number of successful logins.",
		}, labels),
		passwordChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "password_changes_total",
			Help:      "Total number of completed password resets.",
		}, labels),
		perUser: perUser,
	}
	c.registry.MustRegister(c.registrations, c.logins, c.passwordChanges)
	if !perUser {
		// Без меток серии создаются сразу, чтобы до первого входа отдавался 0.
		c.logins.WithLabelValues()
		c.passwordChanges.WithLabelValues()
	}
	return c
}

// RegistrationObserved учитывает успешную регистрацию.
func (c *Counters) RegistrationObserved() {
	c.registrations.Inc()
}

// LoginObserved учитывает успешный вход пользователя.
func (c *Counters) LoginObserved(username string) {
	c.logins.WithLabelValues(c.labelValues(username)...).Inc()
}

// PasswordChangeObserved учитывает смену пароля пользователя.
func (c *Counters) PasswordChangeObserved(username string) {
	c.passwordChanges.WithLabelValues(c.labelValues(username)...).Inc()
}

func (c *Counters) labelValues(username string) []string {
	if c.perUser {
		return []string{username}
	}
	return nil
}

// Handler возвращает обработчик для сбора метрик внешним коллектором.
func (c *Counters) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// WriteText пишет текущие значения счётчиков в текстовом формате экспозиции.
func (c *Counters) WriteText(w io.Writer) error {
	const op = "metrics.WriteText"

	families, err := c.registry.Gather()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return nil
}
