// Package events публикует события жизненного цикла аккаунта в RabbitMQ.
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/account-service/internal/lib/rabbitmq"
)

// Типы событий, они же ключи маршрутизации.
const (
	TypeRegistered      = "account.registered"
	TypeLoggedIn        = "account.logged_in"
	TypePasswordChanged = "account.password_changed"
)

// Event сообщение о действии с аккаунтом.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Username   string    `json:"username"`
	OccurredAt time.Time `json:"occurred_at"`
}

// New создаёт событие с уникальным идентификатором.
func New(eventType, username string) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		Username:   username,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher публикует события в exchange брокера.
type Publisher struct {
	ch       rabbitmq.Channel
	exchange string
}

// NewPublisher создаёт Publisher поверх открытого канала.
func NewPublisher(ch rabbitmq.Channel, exchange string) *Publisher {
	return &Publisher{ch: ch, exchange: exchange}
}

// Publish отправляет событие с ключом маршрутизации, равным его типу.
func (p *Publisher) Publish(ctx context.Context, ev Event) error {
	const op = "events.Publish"
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := rabbitmq.PublishMessage(p.ch, p.exchange, ev.Type, ev); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Noop отбрасывает события, используется когда брокер не настроен.
type Noop struct{}

// Publish ничего не делает.
func (Noop) Publish(context.Context, Event) error { return nil }
