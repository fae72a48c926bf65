package entities

import (
	"errors"

	"github.com/lib/pq"

	"admissions/internal/crud"
	"admissions/internal/rules"
	"admissions/internal/table"
)

var NotificationChannels = []string{"email", "sms", "in_app", "webhook"}

type NotificationFilter struct {
	crud.Meta
	Name       string           `json:"name"`
	EventTypes []string         `json:"event_types"`
	Channels   []string         `json:"channels"`
	Conditions rules.Conditions `json:"conditions"`
	IsActive   bool             `json:"is_active"`
}

var NotificationFilterSchema = crud.Schema[NotificationFilter]{
	Name:    "notification_filter",
	Path:    "notification-filters",
	Title:   "Notification filter",
	Table:   "notification_filters",
	Columns: []string{"name", "event_types", "channels", "conditions", "is_active"},
	Values: func(n *NotificationFilter) []any {
		return []any{n.Name, array(n.EventTypes), array(n.Channels), n.Conditions, n.IsActive}
	},
	Targets: func(n *NotificationFilter) []any {
		return []any{&n.Name, pq.Array(&n.EventTypes), pq.Array(&n.Channels), &n.Conditions, &n.IsActive}
	},
	Meta:  func(n *NotificationFilter) *crud.Meta { return &n.Meta },
	Label: func(n *NotificationFilter) string { return n.Name },
	Validate: func(n *NotificationFilter) error {
		if err := required("name", n.Name); err != nil {
			return err
		}
		if len(n.Channels) == 0 {
			return errors.New("at least one channel is required")
		}
		for _, ch := range n.Channels {
			if err := oneOf("channels", ch, NotificationChannels...); err != nil {
				return err
			}
		}
		return n.Conditions.Validate()
	},
	Defaults: func() NotificationFilter {
		return NotificationFilter{
			EventTypes: []string{},
			Channels:   []string{"in_app"},
			Conditions: rules.Conditions{},
			IsActive:   true,
		}
	},
	OrderBy: "name ASC",
	View: []table.Column{
		{Key: "name", Label: "Name", Sortable: true},
		{Key: "event_types", Label: "Events", Type: table.TypeArray, Filterable: true},
		{Key: "channels", Label: "Channels", Type: table.TypeArray, Filterable: true},
		{Key: "is_active", Label: "Active", Type: table.TypeBoolean, Sortable: true, Filterable: true},
	},
}

// AcceptsEvent reports whether the filter applies to an entity change event.
// An empty EventTypes list accepts every event type.
func (n NotificationFilter) AcceptsEvent(eventType string) bool {
	if !n.IsActive {
		return false
	}
	if len(n.EventTypes) == 0 {
		return true
	}
	for _, et := range n.EventTypes {
		if et == eventType {
			return true
		}
	}
	return false
}
