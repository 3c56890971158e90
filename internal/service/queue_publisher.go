// Package queue_publisher publishes reservation lifecycle events to
// RabbitMQ.  Errors are logged and returned so callers can ignore failures
// without interrupting the main request flow.
package queue_publisher

import (
    "context"
    "encoding/json"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"

    q "github.com/iliyamo/gear-reservation/internal/queue"
)

// Publisher dials the broker per message.  Lifecycle events are rare
// (human-driven), so a long-lived channel is not worth its reconnect logic.
type Publisher struct {
    url string
    log *zap.Logger
}

// NewPublisher returns a publisher for the broker at url.
func NewPublisher(url string, log *zap.Logger) *Publisher {
    if log == nil {
        log = zap.NewNop()
    }
    return &Publisher{url: url, log: log}
}

// PublishReservationEvent sends event to the reservation.events queue as
// a persistent JSON message.
func (p *Publisher) PublishReservationEvent(ctx context.Context, event q.ReservationEvent) error {
    conn, err := amqp.Dial(p.url)
    if err != nil {
        p.log.Warn("rabbitmq: dial failed", zap.Error(err))
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        p.log.Warn("rabbitmq: channel open failed", zap.Error(err))
        return err
    }
    defer func() { _ = ch.Close() }()

    // Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(
        q.ReservationEventsQueue, // name
        true,                     // durable
        false,                    // autoDelete
        false,                    // exclusive
        false,                    // noWait
        nil,                      // args
    ); err != nil {
        p.log.Warn("rabbitmq: queue declare failed", zap.Error(err))
        return err
    }

    body, err := json.Marshal(event)
    if err != nil {
        p.log.Warn("rabbitmq: marshal event failed", zap.Error(err))
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Timestamp:    time.Now().UTC(),
        Type:         event.Type,
        MessageId:    event.OrderID + ":" + event.Type + ":" + event.OccurredAt,
        Body:         body,
    }

    if err := ch.PublishWithContext(ctx,
        "",                       // default exchange
        q.ReservationEventsQueue, // routing key = queue name
        false,                    // mandatory
        false,                    // immediate
        pub,
    ); err != nil {
        p.log.Warn("rabbitmq: publish failed", zap.Error(err), zap.String("order_id", event.OrderID))
        return err
    }
    return nil
}
