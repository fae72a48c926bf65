// Package events publishes entity change events to the broker and relays them
// back out as notifications.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"admissions/internal/broker"
	"admissions/internal/constants"
	"admissions/pkg/logging"
	"admissions/pkg/metrics"
	"admissions/pkg/models"
	"admissions/pkg/tracing"
)

type Publisher struct {
	producer   broker.Producer
	topic      string
	brokerType string
}

func NewPublisher(producer broker.Producer, brokerType, topic string) *Publisher {
	if topic == "" {
		topic = constants.DefaultEventTopic
	}
	return &Publisher{producer: producer, topic: topic, brokerType: brokerType}
}

func (p *Publisher) PublishChange(ctx context.Context, event models.EntityChangeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode change event: %w", err)
	}

	traceID := tracing.TraceID(ctx)
	if traceID == "" {
		traceID = logging.GetTraceID(ctx)
	}

	envelope := models.MessageEnvelope{
		ID:        uuid.New().String(),
		Source:    constants.ServiceName,
		Type:      models.EventTypeEntityChanged,
		Timestamp: event.Timestamp,
		Payload:   payload,
		TraceID:   traceID,
	}

	if err := p.producer.Publish(ctx, p.topic, envelope); err != nil {
		metrics.IncEventPublished(p.brokerType, "error")
		return err
	}
	metrics.IncEventPublished(p.brokerType, "success")
	return nil
}
