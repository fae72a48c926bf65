package api

import (
	"context"
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"admissions/internal/logger"
	"admissions/internal/stripesync"
	"admissions/pkg/ctxutil"
	"admissions/pkg/errors"
)

type Syncer interface {
	Run(ctx context.Context, trigger string) (*stripesync.Run, error)
	Runs(ctx context.Context, limit int) ([]stripesync.Run, error)
}

type StripeHandler struct {
	BaseHandler
	syncer Syncer
}

// NewStripeHandler accepts a nil syncer when the integration is disabled.
func NewStripeHandler(syncer Syncer, log logger.Logger) *StripeHandler {
	return &StripeHandler{BaseHandler: BaseHandler{Logger: log}, syncer: syncer}
}

func (h *StripeHandler) RegisterRoutes(v1 *gin.RouterGroup) {
	group := v1.Group("/integrations/stripe")
	{
		group.GET("/runs", h.ListRuns)
		group.POST("/sync", h.Sync)
	}
}

var errStripeDisabled = errors.ErrServiceUnavailable.WithMessage("stripe sync is not enabled")

// ListRuns godoc
// @Summary      Stripe sync history
// @Tags         integrations
// @Produce      json
// @Param        limit  query     int  false  "Maximum runs returned"
// @Success      200    {array}   stripesync.Run
// @Failure      503    {object}  errors.ErrorResponse
// @Router       /integrations/stripe/runs [get]
func (h *StripeHandler) ListRuns(c *gin.Context) {
	if h.syncer == nil {
		h.HandleError(c, errStripeDisabled)
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	runs, err := h.syncer.Runs(c.Request.Context(), limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, runs)
}

// Sync godoc
// @Summary      Run a Stripe sync now
// @Tags         integrations
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  stripesync.Run
// @Failure      401  {object}  errors.ErrorResponse
// @Failure      409  {object}  errors.ErrorResponse
// @Failure      502  {object}  errors.ErrorResponse
// @Failure      503  {object}  errors.ErrorResponse
// @Router       /integrations/stripe/sync [post]
func (h *StripeHandler) Sync(c *gin.Context) {
	if h.syncer == nil {
		h.HandleError(c, errStripeDisabled)
		return
	}
	if _, err := ctxutil.RequireUserID(c.Request.Context()); err != nil {
		h.HandleError(c, err)
		return
	}

	run, err := h.syncer.Run(c.Request.Context(), stripesync.TriggerManual)
	switch {
	case stderrors.Is(err, stripesync.ErrAlreadyRunning):
		h.HandleError(c, errors.ErrConflict.WithCause(err).WithMessage(err.Error()))
		return
	case err != nil && run != nil:
		// The run was recorded as failed; report it with the upstream failure.
		h.Logger.WarnwCtx(c.Request.Context(), "Manual stripe sync failed", "run_id", run.ID, "error", err)
		c.JSON(http.StatusBadGateway, run)
		return
	case err != nil:
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}
