package entities

import (
	"errors"
	"fmt"

	"github.com/lib/pq"

	"admissions/internal/crud"
	"admissions/internal/table"
	"admissions/internal/templating"
)

type CommunicationTemplate struct {
	crud.Meta
	Name      string   `json:"name"`
	Channel   string   `json:"channel"`
	Subject   *string  `json:"subject"`
	Body      string   `json:"body"`
	Variables []string `json:"variables"`
	IsActive  bool     `json:"is_active"`
}

var CommunicationTemplateSchema = crud.Schema[CommunicationTemplate]{
	Name:    "communication_template",
	Path:    "communication-templates",
	Title:   "Communication template",
	Table:   "communication_templates",
	Columns: []string{"name", "channel", "subject", "body", "variables", "is_active"},
	Values: func(c *CommunicationTemplate) []any {
		return []any{c.Name, c.Channel, c.Subject, c.Body, array(c.Variables), c.IsActive}
	},
	Targets: func(c *CommunicationTemplate) []any {
		return []any{&c.Name, &c.Channel, &c.Subject, &c.Body, pq.Array(&c.Variables), &c.IsActive}
	},
	Meta:  func(c *CommunicationTemplate) *crud.Meta { return &c.Meta },
	Label: func(c *CommunicationTemplate) string { return c.Name },
	Validate: func(c *CommunicationTemplate) error {
		if err := firstError(
			required("name", c.Name),
			oneOf("channel", c.Channel, "email", "sms", "whatsapp"),
			required("body", c.Body),
		); err != nil {
			return err
		}
		if c.Channel == "email" && (c.Subject == nil || *c.Subject == "") {
			return errors.New("subject is required for email templates")
		}
		if c.Subject != nil {
			if err := templating.Parse(*c.Subject); err != nil {
				return fmt.Errorf("subject: %w", err)
			}
		}
		if err := templating.Parse(c.Body); err != nil {
			return fmt.Errorf("body: %w", err)
		}
		return nil
	},
	Defaults: func() CommunicationTemplate {
		return CommunicationTemplate{Channel: "email", Variables: []string{}, IsActive: true}
	},
	OrderBy: "name ASC",
	View: []table.Column{
		{Key: "name", Label: "Name", Sortable: true},
		{Key: "channel", Label: "Channel", Type: table.TypeBadge, Sortable: true, Filterable: true},
		{Key: "subject", Label: "Subject"},
		{Key: "variables", Label: "Variables", Type: table.TypeArray},
		{Key: "is_active", Label: "Active", Type: table.TypeBoolean, Sortable: true, Filterable: true},
	},
}
