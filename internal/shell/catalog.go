package shell

import (
	"admissions/internal/crud"
	"admissions/internal/entities"
	"admissions/internal/logger"
	"admissions/internal/notify"
	"admissions/internal/screen"
	"admissions/internal/table"
)

// Backends supplies one data source per entity. A nil backend leaves its
// section out of the catalog.
type Backends struct {
	Programs               screen.Backend[entities.Program]
	Campuses               screen.Backend[entities.Campus]
	Requirements           screen.Backend[entities.Requirement]
	DocumentTemplates      screen.Backend[entities.DocumentTemplate]
	LeadStatuses           screen.Backend[entities.LeadStatus]
	LeadPriorities         screen.Backend[entities.LeadPriority]
	MarketingSources       screen.Backend[entities.MarketingSource]
	CommunicationTemplates screen.Backend[entities.CommunicationTemplate]
	CallTypes              screen.Backend[entities.CallType]
	NotificationFilters    screen.Backend[entities.NotificationFilter]
	Teams                  screen.Backend[entities.Team]
	RoutingRules           screen.Backend[entities.RoutingRule]

	Stripe RunsSource
}

// Capabilities are handed to every mounted screen.
type Capabilities struct {
	Identity  screen.Identity
	Notifier  notify.Notifier
	Logger    logger.Logger
	Formatter *table.Formatter
}

// Catalog builds the static section registry in display order.
func Catalog(b Backends, caps Capabilities) Registry {
	var r Registry
	r = appendEntity(r, b.Programs, entities.ProgramSchema, caps, CategoryAcademic,
		"Degree programs offered to applicants", "courses", "degrees", "tuition")
	r = appendEntity(r, b.Campuses, entities.CampusSchema, caps, CategoryAcademic,
		"Campus locations and facilities", "locations", "facilities")
	r = appendEntity(r, b.Requirements, entities.RequirementSchema, caps, CategoryAcademic,
		"Admission requirements per program", "prerequisites", "documents")
	r = appendEntity(r, b.DocumentTemplates, entities.DocumentTemplateSchema, caps, CategoryAcademic,
		"Forms and files applicants must submit", "files", "uploads")
	r = appendEntity(r, b.LeadStatuses, entities.LeadStatusSchema, caps, CategoryLeads,
		"Pipeline stages a lead moves through", "pipeline", "stages")
	r = appendEntity(r, b.LeadPriorities, entities.LeadPrioritySchema, caps, CategoryLeads,
		"Priority levels and response SLAs", "sla", "urgency")
	r = appendEntity(r, b.MarketingSources, entities.MarketingSourceSchema, caps, CategoryLeads,
		"Channels leads are acquired from", "utm", "campaigns", "attribution")
	r = appendEntity(r, b.CommunicationTemplates, entities.CommunicationTemplateSchema, caps, CategoryCommunication,
		"Email, SMS and WhatsApp message templates", "email", "sms", "messages")
	r = appendEntity(r, b.CallTypes, entities.CallTypeSchema, caps, CategoryCommunication,
		"Kinds of calls logged by counselors", "phone", "follow-up")
	r = appendEntity(r, b.NotificationFilters, entities.NotificationFilterSchema, caps, CategoryCommunication,
		"Which events notify whom", "alerts", "events")
	r = appendEntity(r, b.Teams, entities.TeamSchema, caps, CategoryTeam,
		"Counselor teams and capacity", "counselors", "members")
	r = appendEntity(r, b.RoutingRules, entities.RoutingRuleSchema, caps, CategoryTeam,
		"Rules assigning new leads to teams", "assignment", "lead routing")

	if b.Stripe != nil {
		r = append(r, Section{
			ID:          "stripe",
			Title:       "Stripe sync",
			Description: "Payment sync runs",
			Category:    CategoryIntegrations,
			Path:        "/integrations/stripe",
			Keywords:    []string{"payments", "billing"},
			Mount: func() Component {
				return NewStripeRuns(b.Stripe, caps.Notifier, caps.Logger)
			},
		})
	}
	return r
}

func appendEntity[T any](r Registry, backend screen.Backend[T], schema crud.Schema[T], caps Capabilities, category Category, description string, keywords ...string) Registry {
	if backend == nil {
		return r
	}
	return append(r, Section{
		ID:          schema.Path,
		Title:       pluralTitle(schema),
		Description: description,
		Category:    category,
		Path:        "/" + schema.Path,
		Keywords:    keywords,
		Mount: func() Component {
			opts := []screen.Option[T]{screen.WithLogger[T](caps.Logger)}
			if caps.Formatter != nil {
				opts = append(opts, screen.WithFormatter[T](caps.Formatter))
			}
			return screen.New(schema, backend, caps.Identity, caps.Notifier, opts...)
		},
	})
}

func pluralTitle[T any](schema crud.Schema[T]) string {
	words := []rune(schema.Path)
	for i, c := range words {
		if c == '-' {
			words[i] = ' '
		}
	}
	if len(words) > 0 && words[0] >= 'a' && words[0] <= 'z' {
		words[0] -= 'a' - 'A'
	}
	return string(words)
}
