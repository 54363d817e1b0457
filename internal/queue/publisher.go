package queue

import (
    "context"
    "encoding/json"
    "sync"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "github.com/sirupsen/logrus"

    "github.com/iliyamo/theater-reservation/internal/config"
)

// Publisher sends events to a durable queue over one long-lived channel,
// reconnecting lazily when the broker drops the connection.
type Publisher struct {
    cfg config.BrokerConfig
    log *logrus.Logger

    mu   sync.Mutex
    conn *amqp.Connection
    ch   *amqp.Channel
}

func NewPublisher(cfg config.BrokerConfig, log *logrus.Logger) *Publisher {
    return &Publisher{cfg: cfg, log: log}
}

// ensureChannel must be called with mu held.
func (p *Publisher) ensureChannel() error {
    if p.conn != nil && !p.conn.IsClosed() && p.ch != nil && !p.ch.IsClosed() {
        return nil
    }
    if p.conn == nil || p.conn.IsClosed() {
        conn, err := amqp.Dial(p.cfg.URL)
        if err != nil {
            return err
        }
        p.conn = conn
    }
    ch, err := p.conn.Channel()
    if err != nil {
        return err
    }
    if _, err := ch.QueueDeclare(p.cfg.Queue, true, false, false, false, nil); err != nil {
        _ = ch.Close()
        return err
    }
    p.ch = ch
    return nil
}

// Publish sends ev as a persistent JSON message. Errors are logged and
// returned; callers treat publishing as best effort.
func (p *Publisher) Publish(ctx context.Context, ev Event) error {
    body, err := json.Marshal(ev)
    if err != nil {
        return err
    }
    ctx, cancel := context.WithTimeout(ctx, p.cfg.PublishTimeout)
    defer cancel()

    p.mu.Lock()
    defer p.mu.Unlock()
    if err := p.ensureChannel(); err != nil {
        p.log.WithError(err).WithField("event", ev.Type).Warn("rabbitmq: connect failed")
        return err
    }
    err = p.ch.PublishWithContext(ctx, "", p.cfg.Queue, false, false, amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        MessageId:    ev.ID,
        Type:         ev.Type,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    })
    if err != nil {
        p.log.WithError(err).WithField("event", ev.Type).Warn("rabbitmq: publish failed")
        _ = p.ch.Close()
        p.ch = nil
        return err
    }
    return nil
}

// Close releases the channel and connection.
func (p *Publisher) Close() error {
    p.mu.Lock()
    defer p.mu.Unlock()
    if p.ch != nil {
        _ = p.ch.Close()
        p.ch = nil
    }
    if p.conn != nil {
        err := p.conn.Close()
        p.conn = nil
        return err
    }
    return nil
}
