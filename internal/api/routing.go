package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"admissions/internal/crud"
	"admissions/internal/entities"
	"admissions/internal/logger"
	"admissions/internal/rules"
	"admissions/pkg/cel"
)

type RoutingHandler struct {
	BaseHandler
	rules  *crud.Service[entities.RoutingRule]
	router *rules.Router
}

func NewRoutingHandler(svc *crud.Service[entities.RoutingRule], eval *cel.Evaluator, log logger.Logger) *RoutingHandler {
	return &RoutingHandler{
		BaseHandler: BaseHandler{Logger: log},
		rules:       svc,
		router:      rules.NewRouter(eval),
	}
}

type RouteResponse struct {
	Matched  bool   `json:"matched"`
	RuleID   string `json:"rule_id,omitempty"`
	RuleName string `json:"rule_name,omitempty"`
	TeamID   string `json:"team_id,omitempty"`
}

func (h *RoutingHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("/evaluate", h.Evaluate)
}

// Evaluate godoc
// @Summary      Route a lead
// @Description  Returns the first active routing rule, by priority descending, whose conditions all match the lead
// @Tags         routing-rules
// @Accept       json
// @Produce      json
// @Param        lead  body      rules.Lead  true  "Lead to route"
// @Success      200   {object}  RouteResponse
// @Failure      400   {object}  errors.ErrorResponse
// @Failure      500   {object}  errors.ErrorResponse
// @Router       /routing-rules/evaluate [post]
func (h *RoutingHandler) Evaluate(c *gin.Context) {
	var lead rules.Lead
	if err := c.ShouldBindJSON(&lead); err != nil {
		h.BindError(c, err)
		return
	}

	ctx := c.Request.Context()
	stored, err := h.rules.List(ctx, crud.ListParams{})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	match, err := h.router.Evaluate(ctx, entities.Routes(stored), lead)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if match == nil {
		c.JSON(http.StatusOK, RouteResponse{})
		return
	}
	c.JSON(http.StatusOK, RouteResponse{
		Matched:  true,
		RuleID:   match.RuleID,
		RuleName: match.RuleName,
		TeamID:   match.TeamID,
	})
}
