package api

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"admissions/internal/crud"
	"admissions/internal/documents"
	"admissions/internal/entities"
	"admissions/internal/logger"
	"admissions/pkg/errors"
)

type DocumentHandler struct {
	BaseHandler
	templates *crud.Service[entities.DocumentTemplate]
	linker    documents.Linker
}

// NewDocumentHandler accepts a nil linker when object storage is not configured.
func NewDocumentHandler(svc *crud.Service[entities.DocumentTemplate], linker documents.Linker, log logger.Logger) *DocumentHandler {
	return &DocumentHandler{BaseHandler: BaseHandler{Logger: log}, templates: svc, linker: linker}
}

func (h *DocumentHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/:id/download-url", h.DownloadURL)
}

// DownloadURL godoc
// @Summary      Presigned download link
// @Description  Returns a short-lived URL for the file attached to a document template
// @Tags         document-templates
// @Produce      json
// @Param        id   path      string  true  "Document template ID"
// @Success      200  {object}  documents.Link
// @Failure      400  {object}  errors.ErrorResponse
// @Failure      404  {object}  errors.ErrorResponse
// @Failure      503  {object}  errors.ErrorResponse
// @Router       /document-templates/{id}/download-url [get]
func (h *DocumentHandler) DownloadURL(c *gin.Context) {
	if h.linker == nil {
		h.HandleError(c, errors.ErrServiceUnavailable.WithMessage(documents.ErrNotConfigured.Error()))
		return
	}

	doc, err := h.templates.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if doc.FileKey == nil || *doc.FileKey == "" {
		h.HandleError(c, errors.ErrValidation.WithMessage("document template has no file attached"))
		return
	}

	link, err := h.linker.DownloadURL(c.Request.Context(), *doc.FileKey)
	if err != nil {
		if stderrors.Is(err, documents.ErrNotConfigured) {
			err = errors.ErrServiceUnavailable.WithCause(err).WithMessage(err.Error())
		}
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, link)
}
