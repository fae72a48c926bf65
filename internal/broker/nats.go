package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"admissions/internal/config"
	"admissions/internal/constants"
	"admissions/internal/logger"
	"admissions/pkg/logging"
	"admissions/pkg/models"
	"admissions/pkg/tracing"
)

func connectNATS(cfg config.NATSConfig, name string, log logger.Logger) (*nats.Conn, error) {
	nc, err := nats.Connect(cfg.URL,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warnw("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Infow("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", cfg.URL, err)
	}
	return nc, nil
}

type NATSProducer struct {
	conn   *nats.Conn
	logger logger.Logger
}

func NewNATSProducer(cfg config.NATSConfig, log logger.Logger) (*NATSProducer, error) {
	nc, err := connectNATS(cfg, constants.ServiceName+"-producer", log)
	if err != nil {
		return nil, err
	}
	return &NATSProducer{conn: nc, logger: log}, nil
}

func (p *NATSProducer) Publish(ctx context.Context, topic string, msg models.MessageEnvelope) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	out := nats.NewMsg(topic)
	out.Data = body
	tracing.InjectHeader(ctx, http.Header(out.Header))

	if err := p.conn.PublishMsg(out); err != nil {
		return fmt.Errorf("failed to publish nats message: %w", err)
	}
	return nil
}

func (p *NATSProducer) Close() error {
	return p.conn.Drain()
}

// NATSConsumer joins a queue group so each event is handled by one replica.
type NATSConsumer struct {
	conn        *nats.Conn
	queue       string
	retry       config.RetryConfig
	logger      logger.Logger
	serviceName string
	wg          sync.WaitGroup
}

func NewNATSConsumer(cfg config.NATSConfig, retry config.RetryConfig, log logger.Logger) (*NATSConsumer, error) {
	nc, err := connectNATS(cfg, constants.ServiceName+"-consumer", log)
	if err != nil {
		return nil, err
	}
	queue := cfg.Queue
	if queue == "" {
		queue = constants.DefaultRelayGroup
	}
	return &NATSConsumer{
		conn:        nc,
		queue:       queue,
		retry:       retry,
		logger:      log,
		serviceName: "unknown",
	}, nil
}

func (c *NATSConsumer) SetServiceName(name string) {
	c.serviceName = name
}

func (c *NATSConsumer) Consume(ctx context.Context, topic string, handler HandlerFunc) error {
	consumeCtx := logging.WithServiceName(ctx, c.serviceName)
	policy := retryPolicy(c.retry)

	sub, err := c.conn.QueueSubscribe(topic, c.queue, func(m *nats.Msg) {
		c.wg.Add(1)
		defer c.wg.Done()

		msgCtx, span := tracing.StartSpanFromHeader(consumeCtx, "nats.consume", http.Header(m.Header))
		defer span.End()

		var envelope models.MessageEnvelope
		if err := json.Unmarshal(m.Data, &envelope); err != nil {
			c.logger.ErrorwCtx(msgCtx, "Failed to unmarshal message",
				"error", err,
				"topic", topic,
			)
			return
		}
		if envelope.TraceID != "" {
			msgCtx = logging.WithTraceID(msgCtx, envelope.TraceID)
		}

		if err := handleWithRetry(msgCtx, c.logger, policy, topic, envelope, handler); err != nil {
			c.logger.ErrorwCtx(msgCtx, "Failed to process message after retries, skipping",
				"error", err,
				"topic", topic,
				"message_id", envelope.ID,
			)
		}
	})
	if err != nil {
		return fmt.Errorf("subscribing to %s: %w", topic, err)
	}
	if err := c.conn.Flush(); err != nil {
		_ = sub.Unsubscribe()
		return fmt.Errorf("flushing subscription: %w", err)
	}

	c.logger.InfowCtx(consumeCtx, "Started consuming", "topic", topic, "queue", c.queue)

	<-ctx.Done()
	_ = sub.Drain()
	c.logger.InfowCtx(consumeCtx, "Stopped consuming", "topic", topic, "reason", "context canceled")
	return ctx.Err()
}

func (c *NATSConsumer) Close() error {
	c.wg.Wait()
	c.conn.Close()
	return nil
}
