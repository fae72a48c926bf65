package api

import (
	"github.com/gin-gonic/gin"

	"admissions/internal/documents"
	"admissions/internal/logger"
	"admissions/internal/rules"
	"admissions/pkg/cel"
)

type Deps struct {
	Services  *Services
	Evaluator *cel.Evaluator
	Linker    documents.Linker
	Syncer    Syncer
	Logger    logger.Logger
}

type registrar interface {
	RegisterRoutes(v1 *gin.RouterGroup) *gin.RouterGroup
}

// RegisterRoutes mounts every entity resource and integration endpoint under
// /api/v1 and returns the group.
func RegisterRoutes(router gin.IRouter, deps Deps) (*gin.RouterGroup, error) {
	log := deps.Logger
	if log == nil {
		log = logger.NopLogger()
	}
	eval := deps.Evaluator
	if eval == nil {
		var err error
		if eval, err = rules.DefaultEvaluator(); err != nil {
			return nil, err
		}
	}
	s := deps.Services
	v1 := router.Group("/api/v1")

	for _, r := range []registrar{
		NewResource(s.Programs, log),
		NewResource(s.Campuses, log),
		NewResource(s.CallTypes, log),
		NewResource(s.LeadPriorities, log),
		NewResource(s.LeadStatuses, log),
		NewResource(s.MarketingSources, log),
		NewResource(s.NotificationFilters, log),
		NewResource(s.Teams, log),
		NewResource(s.Requirements, log),
	} {
		r.RegisterRoutes(v1)
	}

	routing := NewResource(s.RoutingRules, log).RegisterRoutes(v1)
	NewRoutingHandler(s.RoutingRules, eval, log).RegisterRoutes(routing)

	templates := NewResource(s.CommunicationTemplates, log).RegisterRoutes(v1)
	NewTemplateHandler(s.CommunicationTemplates, log).RegisterRoutes(templates)

	docs := NewResource(s.DocumentTemplates, log).RegisterRoutes(v1)
	NewDocumentHandler(s.DocumentTemplates, deps.Linker, log).RegisterRoutes(docs)

	NewStripeHandler(deps.Syncer, log).RegisterRoutes(v1)
	return v1, nil
}
