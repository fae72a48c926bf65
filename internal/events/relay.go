package events

import (
	"context"
	"fmt"
	"strings"

	"admissions/internal/entities"
	"admissions/internal/logger"
	"admissions/internal/notify"
	"admissions/internal/rules"
	"admissions/pkg/cel"
	"admissions/pkg/models"
)

// FilterSource returns the configured notification filters.
type FilterSource func(ctx context.Context) ([]entities.NotificationFilter, error)

// Relay turns change events into notifications. With no active filters every
// event goes to the default channels; otherwise an event is delivered on the
// channels of each filter that accepts it.
type Relay struct {
	channels        map[string]notify.Notifier
	defaultChannels []string
	filters         FilterSource
	eval            *cel.Evaluator
	log             logger.Logger
}

type RelayOption func(*Relay)

func WithChannel(name string, n notify.Notifier) RelayOption {
	return func(r *Relay) {
		r.channels[name] = n
	}
}

func WithFilters(source FilterSource) RelayOption {
	return func(r *Relay) {
		r.filters = source
	}
}

func WithDefaultChannels(names ...string) RelayOption {
	return func(r *Relay) {
		r.defaultChannels = names
	}
}

func NewRelay(eval *cel.Evaluator, log logger.Logger, opts ...RelayOption) *Relay {
	r := &Relay{
		channels:        make(map[string]notify.Notifier),
		defaultChannels: []string{"in_app"},
		eval:            eval,
		log:             log,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Handle is the broker handler for the change event topic.
func (r *Relay) Handle(ctx context.Context, msg models.MessageEnvelope) error {
	if msg.Type != models.EventTypeEntityChanged {
		r.log.DebugwCtx(ctx, "Ignoring message", "type", msg.Type, "id", msg.ID)
		return nil
	}

	var event models.EntityChangeEvent
	if err := msg.Decode(&event); err != nil {
		return err
	}

	channels, err := r.route(ctx, event)
	if err != nil {
		return err
	}

	r.deliver(ctx, msg.ID, channels, NotificationFor(event))
	return nil
}

// deliver sends n once on every channel. A failing channel is logged and
// does not fail the message.
func (r *Relay) deliver(ctx context.Context, msgID string, channels []string, n notify.Notification) {
	for _, name := range channels {
		notifier, ok := r.channels[name]
		if !ok {
			r.log.DebugwCtx(ctx, "No notifier for channel", "channel", name)
			continue
		}
		if err := notifier.Notify(ctx, n); err != nil {
			r.log.ErrorwCtx(ctx, "Notification delivery failed",
				"channel", name,
				"message_id", msgID,
				"error", err,
			)
		}
	}
}

func (r *Relay) route(ctx context.Context, event models.EntityChangeEvent) ([]string, error) {
	if r.filters == nil {
		return r.defaultChannels, nil
	}
	filters, err := r.filters(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load notification filters: %w", err)
	}

	eventType := EventType(event)
	subject := Subject(event)
	active := 0
	seen := make(map[string]struct{})
	var channels []string
	for _, f := range filters {
		if !f.IsActive {
			continue
		}
		active++
		if !f.AcceptsEvent(eventType) {
			continue
		}
		ok, err := f.Conditions.Match(ctx, r.eval, subject)
		if err != nil {
			r.log.WarnwCtx(ctx, "Notification filter condition failed",
				"filter", f.Name,
				"error", err,
			)
			continue
		}
		if !ok {
			continue
		}
		for _, ch := range f.Channels {
			if _, dup := seen[ch]; !dup {
				seen[ch] = struct{}{}
				channels = append(channels, ch)
			}
		}
	}
	if active == 0 {
		return r.defaultChannels, nil
	}
	return channels, nil
}

// EventType is the filter key for an event, e.g. "program.create".
func EventType(event models.EntityChangeEvent) string {
	return event.Entity + "." + event.Action
}

func Subject(event models.EntityChangeEvent) rules.EventSubject {
	return rules.EventSubject{
		"entity":     event.Entity,
		"action":     event.Action,
		"id":         event.ID,
		"name":       event.Name,
		"changed_by": event.ChangedBy,
		"type":       EventType(event),
	}
}

var pastTense = map[string]string{
	models.ActionCreate: "created",
	models.ActionUpdate: "updated",
	models.ActionDelete: "deleted",
}

func NotificationFor(event models.EntityChangeEvent) notify.Notification {
	verb, ok := pastTense[event.Action]
	if !ok {
		verb = event.Action
	}
	title := event.Title
	if title == "" {
		title = strings.ReplaceAll(event.Entity, "_", " ")
	}
	name := event.Name
	if name == "" {
		name = event.ID
	}

	n := notify.Success(
		fmt.Sprintf("%s %s", title, verb),
		fmt.Sprintf("%q was %s by %s", name, verb, event.ChangedBy),
	)
	if event.Action == models.ActionDelete {
		n.Variant = notify.VariantDefault
	}
	return n
}
