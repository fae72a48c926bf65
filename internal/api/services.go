package api

import (
	"database/sql"

	"admissions/internal/crud"
	"admissions/internal/entities"
	"admissions/internal/logger"
)

// Services holds one crud service per configuration entity.
type Services struct {
	Programs               *crud.Service[entities.Program]
	Campuses               *crud.Service[entities.Campus]
	CallTypes              *crud.Service[entities.CallType]
	DocumentTemplates      *crud.Service[entities.DocumentTemplate]
	LeadPriorities         *crud.Service[entities.LeadPriority]
	LeadStatuses           *crud.Service[entities.LeadStatus]
	MarketingSources       *crud.Service[entities.MarketingSource]
	NotificationFilters    *crud.Service[entities.NotificationFilter]
	Teams                  *crud.Service[entities.Team]
	CommunicationTemplates *crud.Service[entities.CommunicationTemplate]
	Requirements           *crud.Service[entities.Requirement]
	RoutingRules           *crud.Service[entities.RoutingRule]
}

func service[T any](db *sql.DB, schema crud.Schema[T], pub crud.EventPublisher, log logger.Logger) *crud.Service[T] {
	var repo crud.Repository[T]
	if db != nil {
		repo = crud.NewRepository(db, schema)
	} else {
		repo = crud.NewMemoryRepository(schema)
	}
	opts := []crud.ServiceOption[T]{crud.WithLogger[T](log)}
	if pub != nil {
		opts = append(opts, crud.WithEvents[T](pub))
	}
	return crud.NewService[T](repo, schema, opts...)
}

// NewServices binds every entity schema to db. A nil db keeps records in memory.
func NewServices(db *sql.DB, pub crud.EventPublisher, log logger.Logger) *Services {
	return &Services{
		Programs:               service(db, entities.ProgramSchema, pub, log),
		Campuses:               service(db, entities.CampusSchema, pub, log),
		CallTypes:              service(db, entities.CallTypeSchema, pub, log),
		DocumentTemplates:      service(db, entities.DocumentTemplateSchema, pub, log),
		LeadPriorities:         service(db, entities.LeadPrioritySchema, pub, log),
		LeadStatuses:           service(db, entities.LeadStatusSchema, pub, log),
		MarketingSources:       service(db, entities.MarketingSourceSchema, pub, log),
		NotificationFilters:    service(db, entities.NotificationFilterSchema, pub, log),
		Teams:                  service(db, entities.TeamSchema, pub, log),
		CommunicationTemplates: service(db, entities.CommunicationTemplateSchema, pub, log),
		Requirements:           service(db, entities.RequirementSchema, pub, log),
		RoutingRules:           service(db, entities.RoutingRuleSchema, pub, log),
	}
}
