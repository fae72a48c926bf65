package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admissions/internal/entities"
	"admissions/internal/logger"
	"admissions/internal/notify"
	"admissions/internal/rules"
	"admissions/pkg/models"
	"admissions/pkg/retry"
)

type fakeProducer struct {
	topic string
	sent  []models.MessageEnvelope
	err   error
}

func (f *fakeProducer) Publish(_ context.Context, topic string, msg models.MessageEnvelope) error {
	f.topic = topic
	f.sent = append(f.sent, msg)
	return f.err
}

func (f *fakeProducer) Close() error { return nil }

var created = models.EntityChangeEvent{
	Entity:    "program",
	Title:     "Program",
	Action:    models.ActionCreate,
	ID:        "p-1",
	Name:      "Data Science BSc",
	ChangedBy: "user-1",
	Timestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
}

func TestPublisher_WrapsEventInEnvelope(t *testing.T) {
	producer := &fakeProducer{}
	pub := NewPublisher(producer, "kafka", "")

	require.NoError(t, pub.PublishChange(context.Background(), created))

	require.Len(t, producer.sent, 1)
	assert.Equal(t, "console.entity_changes", producer.topic)
	env := producer.sent[0]
	require.NoError(t, env.Validate())
	assert.Equal(t, models.EventTypeEntityChanged, env.Type)
	assert.Equal(t, created.Timestamp, env.Timestamp)

	var back models.EntityChangeEvent
	require.NoError(t, env.Decode(&back))
	assert.Equal(t, created, back)
}

func TestPublisher_PropagatesProducerError(t *testing.T) {
	pub := NewPublisher(&fakeProducer{err: errors.New("down")}, "nats", "topic")
	assert.Error(t, pub.PublishChange(context.Background(), created))
}

func envelopeFor(t *testing.T, event models.EntityChangeEvent) models.MessageEnvelope {
	t.Helper()
	producer := &fakeProducer{}
	require.NoError(t, NewPublisher(producer, "test", "t").PublishChange(context.Background(), event))
	return producer.sent[0]
}

func newRelay(t *testing.T, opts ...RelayOption) *Relay {
	t.Helper()
	eval, err := rules.DefaultEvaluator()
	require.NoError(t, err)
	return NewRelay(eval, logger.NopLogger(), opts...)
}

func TestRelay_DefaultChannelsWithoutFilters(t *testing.T) {
	inApp := &notify.Recorder{}
	relay := newRelay(t, WithChannel("in_app", inApp))

	require.NoError(t, relay.Handle(context.Background(), envelopeFor(t, created)))

	last, ok := inApp.Last()
	require.True(t, ok)
	assert.Equal(t, notify.Notification{
		Title:       "Program created",
		Description: `"Data Science BSc" was created by user-1`,
		Variant:     notify.VariantSuccess,
	}, last)
}

func TestRelay_FiltersSelectChannels(t *testing.T) {
	inApp, webhook := &notify.Recorder{}, &notify.Recorder{}
	filters := []entities.NotificationFilter{
		{Name: "deletes to webhook", IsActive: true, EventTypes: []string{"program.delete"}, Channels: []string{"webhook"}},
		{
			Name: "campus changes", IsActive: true, Channels: []string{"in_app"},
			Conditions: rules.Conditions{{Type: rules.TypeEquals, Field: "entity", Value: "campus"}},
		},
	}
	relay := newRelay(t,
		WithChannel("in_app", inApp),
		WithChannel("webhook", webhook),
		WithFilters(func(context.Context) ([]entities.NotificationFilter, error) { return filters, nil }),
	)

	deleted := created
	deleted.Action = models.ActionDelete
	require.NoError(t, relay.Handle(context.Background(), envelopeFor(t, deleted)))
	require.NoError(t, relay.Handle(context.Background(), envelopeFor(t, created)))

	assert.Empty(t, inApp.Sent())
	require.Len(t, webhook.Sent(), 1)
	assert.Equal(t, "Program deleted", webhook.Sent()[0].Title)
	assert.Equal(t, notify.VariantDefault, webhook.Sent()[0].Variant)

	campus := created
	campus.Entity, campus.Title = "campus", "Campus"
	require.NoError(t, relay.Handle(context.Background(), envelopeFor(t, campus)))
	assert.Len(t, inApp.Sent(), 1)
}

func TestRelay_InactiveFiltersFallBackToDefaults(t *testing.T) {
	inApp := &notify.Recorder{}
	relay := newRelay(t,
		WithChannel("in_app", inApp),
		WithFilters(func(context.Context) ([]entities.NotificationFilter, error) {
			return []entities.NotificationFilter{{Name: "off", Channels: []string{"email"}}}, nil
		}),
	)

	require.NoError(t, relay.Handle(context.Background(), envelopeFor(t, created)))
	assert.Len(t, inApp.Sent(), 1)
}

func TestRelay_FailingChannelDoesNotRepeatOthers(t *testing.T) {
	inApp := &notify.Recorder{}
	webhookCalls := 0
	relay := newRelay(t,
		WithChannel("in_app", inApp),
		WithChannel("webhook", notify.Func(func(context.Context, notify.Notification) error {
			webhookCalls++
			return errors.New("503 service unavailable")
		})),
		WithDefaultChannels("in_app", "webhook"),
	)

	msg := envelopeFor(t, created)
	policy := retry.Policy{MaxAttempts: 3, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond}
	err := retry.Do(context.Background(), policy, func() error {
		return relay.Handle(context.Background(), msg)
	}, nil)

	require.NoError(t, err)
	assert.Len(t, inApp.Sent(), 1)
	assert.Equal(t, 1, webhookCalls)
}

func TestRelay_IgnoresOtherTypes(t *testing.T) {
	relay := newRelay(t)
	assert.NoError(t, relay.Handle(context.Background(), models.MessageEnvelope{ID: "1", Type: "other", Payload: []byte(`{}`)}))
}
