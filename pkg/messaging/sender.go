package messaging

import (
	"context"
	"fmt"

	"github.com/matst80/slask-catalog/pkg/common/jsoncompat"
	amqp "github.com/rabbitmq/amqp091-go"
)

// DefineTopic declares the topic exchange for prefix and topic.
func DefineTopic(ch *amqp.Channel, prefix string, topic ChangeTopic) error {
	name := getName(prefix, topic)
	if err := ch.ExchangeDeclare(
		name,    // name
		"topic", // type
		true,    // durable
		false,   // auto-delete
		false,   // internal
		false,   // noWait
		nil,     // arguments
	); err != nil {
		return err
	}
	return nil
}

func getName(prefix string, topic ChangeTopic) string {
	return fmt.Sprintf("%s_%s", prefix, topic)
}

// SendChange publishes data as JSON. A nil data sends an empty body.
func SendChange[V any](ctx context.Context, c *amqp.Connection, prefix string, topic ChangeTopic, data *V) error {
	var body []byte
	if data != nil {
		bytes, err := jsoncompat.Marshal(data)
		if err != nil {
			return err
		}
		body = bytes
	}
	ch, err := c.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()
	if err = DefineTopic(ch, prefix, topic); err != nil {
		return err
	}
	name := getName(prefix, topic)
	return ch.PublishWithContext(
		ctx,
		name,
		name,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}
