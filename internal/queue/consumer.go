package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "strings"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"
)

// AuditLogName is the file, under the consumer's log directory, that
// receives one line per lifecycle event.
const AuditLogName = "reservation.log"

// StartAuditConsumer connects to the broker at url, declares the
// reservation.events queue (durable) and appends every message to
// dir/reservation.log.  It reconnects with exponential backoff and returns
// only when ctx is cancelled.  Malformed messages are logged and rejected
// without requeue so they cannot block the queue.
func StartAuditConsumer(ctx context.Context, url, dir string, log *zap.Logger) error {
    backoff := time.Second
    for {
        if ctx.Err() != nil {
            return ctx.Err()
        }
        conn, err := amqp.Dial(url)
        if err != nil {
            log.Warn("audit-consumer: failed to dial broker", zap.Error(err), zap.Duration("retry_in", backoff))
            if !sleepCtx(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second

        err = consumeLoop(ctx, conn, dir, log)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        log.Warn("audit-consumer: consume loop ended; reconnecting", zap.Error(err))
        if !sleepCtx(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, dir string, log *zap.Logger) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        log.Warn("audit-consumer: set QoS failed", zap.Error(err))
    }
    if _, err := ch.QueueDeclare(ReservationEventsQueue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.Consume(ReservationEventsQueue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case d, ok := <-msgs:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            if err := HandleMessage(dir, d.Body); err != nil {
                log.Warn("audit-consumer: handle message failed", zap.Error(err))
                _ = d.Nack(false, false)
                continue
            }
            _ = d.Ack(false)
        }
    }
}

// HandleMessage decodes one ReservationEvent and appends its audit line to
// dir/reservation.log, creating the directory when needed.
func HandleMessage(dir string, body []byte) error {
    var ev ReservationEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if ev.Type == "" || ev.OrderID == "" {
        return errors.New("event without type or order_id")
    }
    if err := os.MkdirAll(dir, 0o755); err != nil {
        return fmt.Errorf("mkdir %s: %w", dir, err)
    }
    f, err := os.OpenFile(filepath.Join(dir, AuditLogName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    if _, err := f.WriteString(FormatAuditLine(ev)); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

// FormatAuditLine renders ev as a single human-readable line.
func FormatAuditLine(ev ReservationEvent) string {
    rows := make([]string, 0, len(ev.Rows))
    for _, r := range ev.Rows {
        rows = append(rows, fmt.Sprintf("%s@%s=%s", r.Resource, r.Slot, r.Status))
    }
    return fmt.Sprintf("[%s] %s | order_id=%s | requester=%q | department=%q | date=%s | rows=[%s]\n",
        ev.OccurredAt, ev.Type, ev.OrderID, ev.RequesterName, ev.Department, ev.Date, strings.Join(rows, ","))
}
