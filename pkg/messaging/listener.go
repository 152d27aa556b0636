package messaging

import (
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

func DeclareBindAndConsume(ch *amqp.Channel, prefix string, topic ChangeTopic) (<-chan amqp.Delivery, error) {
	if err := DefineTopic(ch, prefix, topic); err != nil {
		return nil, err
	}
	name := getName(prefix, topic)
	q, err := ch.QueueDeclare(
		"",    // name
		false, // durable
		false, // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return nil, err
	}
	err = ch.QueueBind(q.Name, name, name, false, nil)
	if err != nil {
		return nil, err
	}
	return ch.Consume(
		q.Name,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
}

// ListenToTopic consumes topic until the channel closes. Deliveries that
// fail processing are rejected without requeue, the listener keeps going.
func ListenToTopic(ch *amqp.Channel, prefix string, topic ChangeTopic, logger *zap.Logger, handle func(amqp.Delivery) error) error {
	fc, err := DeclareBindAndConsume(ch, prefix, topic)
	if err != nil {
		return err
	}

	go func(msgs <-chan amqp.Delivery) {
		defer ch.Close()
		for d := range msgs {
			if err := handle(d); err != nil {
				logger.Error("failed to process message", zap.String("topic", string(topic)), zap.Error(err))
				if nackErr := d.Nack(false, false); nackErr != nil {
					logger.Warn("nack failed", zap.Error(nackErr))
				}
				continue
			}
			if ackErr := d.Ack(false); ackErr != nil {
				logger.Warn("ack failed", zap.Error(ackErr))
			}
		}
		logger.Info("stopped listening", zap.String("topic", string(topic)))
	}(fc)
	return nil
}
