package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"

	"admissions/internal/crud"
	"admissions/internal/entities"
	"admissions/internal/logger"
	"admissions/internal/templating"
	"admissions/pkg/errors"
)

type TemplateHandler struct {
	BaseHandler
	templates *crud.Service[entities.CommunicationTemplate]
}

func NewTemplateHandler(svc *crud.Service[entities.CommunicationTemplate], log logger.Logger) *TemplateHandler {
	return &TemplateHandler{BaseHandler: BaseHandler{Logger: log}, templates: svc}
}

type PreviewRequest struct {
	Variables map[string]interface{} `json:"variables"`
}

func (h *TemplateHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("/:id/preview", h.Preview)
}

// locale picks the casing rules for title/upper/lower helpers from ?locale or
// Accept-Language, defaulting to English.
func locale(c *gin.Context) language.Tag {
	if v := c.Query("locale"); v != "" {
		if tag, err := language.Parse(v); err == nil {
			return tag
		}
	}
	if tags, _, err := language.ParseAcceptLanguage(c.GetHeader("Accept-Language")); err == nil && len(tags) > 0 {
		return tags[0]
	}
	return language.English
}

// Preview godoc
// @Summary      Preview a communication template
// @Description  Renders subject and body with the given variables layered over sample values
// @Tags         communication-templates
// @Accept       json
// @Produce      json
// @Param        id       path      string          true   "Template ID"
// @Param        locale   query     string          false  "BCP 47 tag for casing helpers"
// @Param        request  body      PreviewRequest  false  "Variables"
// @Success      200      {object}  templating.Rendered
// @Failure      400      {object}  errors.ErrorResponse
// @Failure      404      {object}  errors.ErrorResponse
// @Router       /communication-templates/{id}/preview [post]
func (h *TemplateHandler) Preview(c *gin.Context) {
	var req PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		h.BindError(c, err)
		return
	}

	tmpl, err := h.templates.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	subject := ""
	if tmpl.Subject != nil {
		subject = *tmpl.Subject
	}
	rendered, err := templating.NewRenderer(locale(c)).Render(subject, tmpl.Body, req.Variables)
	if err != nil {
		h.HandleError(c, errors.ErrValidation.WithCause(err).WithMessage(err.Error()))
		return
	}
	c.JSON(http.StatusOK, rendered)
}
