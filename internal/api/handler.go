// Package api exposes the console entities and integrations over REST.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"admissions/internal/logger"
	"admissions/pkg/errors"
)

type BaseHandler struct {
	Logger logger.Logger
}

func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	status := errors.ToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.Logger.ErrorwCtx(c.Request.Context(), "Request error", "error", err, "path", c.Request.URL.Path)
	} else {
		h.Logger.DebugwCtx(c.Request.Context(), "Request rejected", "error", err, "path", c.Request.URL.Path)
	}
	_ = c.Error(err)
	c.JSON(status, errors.ToErrorResponse(err))
}

func (h *BaseHandler) BindError(c *gin.Context, err error) {
	h.HandleError(c, errors.ErrValidation.WithCause(err).WithMessage("invalid request body: "+err.Error()))
}
