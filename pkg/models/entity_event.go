package models

import "time"

const EventTypeEntityChanged = "entity_changed"

const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// EntityChangeEvent is published after every successful mutation.
type EntityChangeEvent struct {
	Entity    string    `json:"entity"`
	Title     string    `json:"title"`
	Action    string    `json:"action"`
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	ChangedBy string    `json:"changed_by"`
	Timestamp time.Time `json:"timestamp"`
}
