package rabbitmq

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"
)

// Channel часть *amqp.Channel, нужная для публикации.
// Через него events.Publisher тестируется без брокера.
type Channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// PublishMessage публикует message в exchange как persistent JSON-сообщение.
// Без mandatory: событие без подписчиков на ключ просто отбрасывается брокером.
func PublishMessage(ch Channel, exchange, routingKey string, message any) error {
	const op = "rabbitmq.PublishMessage"

	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("%s: marshal: %w", op, err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         routingKey,
		Body:         body,
	}
	if err = ch.Publish(exchange, routingKey, false, false, msg); err != nil {
		return fmt.Errorf("%s: publish to %s/%s: %w", op, exchange, routingKey, err)
	}
	return nil
}
