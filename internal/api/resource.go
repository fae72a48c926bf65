package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"admissions/internal/crud"
	"admissions/internal/logger"
	"admissions/internal/table"
)

// Resource serves list/get/create/update/delete for one entity under
// /api/v1/<path>.
type Resource[T any] struct {
	BaseHandler
	svc *crud.Service[T]
}

func NewResource[T any](svc *crud.Service[T], log logger.Logger) *Resource[T] {
	return &Resource[T]{BaseHandler: BaseHandler{Logger: log}, svc: svc}
}

func (h *Resource[T]) Path() string {
	return h.svc.Schema().Path
}

func (h *Resource[T]) RegisterRoutes(v1 *gin.RouterGroup) *gin.RouterGroup {
	group := v1.Group("/" + h.Path())
	{
		group.GET("", h.List)
		group.POST("", h.Create)
		group.GET("/:id", h.Get)
		group.PUT("/:id", h.Update)
		group.DELETE("/:id", h.Delete)
	}
	return group
}

// ListParams reads q, sort, dir, limit and filter[<column>] from the query string.
func ListParams(c *gin.Context) crud.ListParams {
	params := crud.ListParams{
		Query:   c.Query("q"),
		Filters: c.QueryMap("filter"),
	}
	if key := c.Query("sort"); key != "" {
		params.Sort = table.SortState{Key: key, Direction: table.ParseDirection(c.Query("dir"))}
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil {
		params.Limit = limit
	}
	return params
}

// List godoc
// @Summary      List records
// @Description  List records of an entity with optional search, single-column sort (nulls last) and column filters
// @Tags         entities
// @Produce      json
// @Param        entity  path      string  true   "Entity path, e.g. programs"
// @Param        q       query     string  false  "Case-insensitive search over visible columns"
// @Param        sort    query     string  false  "Column key to sort by"
// @Param        dir     query     string  false  "asc or desc"
// @Param        limit   query     int     false  "Maximum rows read"
// @Success      200     {array}   object
// @Failure      400     {object}  errors.ErrorResponse
// @Failure      500     {object}  errors.ErrorResponse
// @Router       /{entity} [get]
func (h *Resource[T]) List(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context(), ListParams(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// Get godoc
// @Summary      Get a record
// @Tags         entities
// @Produce      json
// @Param        entity  path      string  true  "Entity path"
// @Param        id      path      string  true  "Record ID"
// @Success      200     {object}  object
// @Failure      404     {object}  errors.ErrorResponse
// @Router       /{entity}/{id} [get]
func (h *Resource[T]) Get(c *gin.Context) {
	item, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// Create godoc
// @Summary      Create a record
// @Description  Fields missing from the body take the entity defaults. user_id is stamped from the caller.
// @Tags         entities
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        entity  path      string  true  "Entity path"
// @Param        record  body      object  true  "Record fields"
// @Success      201     {object}  object
// @Failure      400     {object}  errors.ErrorResponse
// @Failure      401     {object}  errors.ErrorResponse
// @Failure      409     {object}  errors.ErrorResponse
// @Router       /{entity} [post]
func (h *Resource[T]) Create(c *gin.Context) {
	item := h.svc.Schema().New()
	if err := c.ShouldBindJSON(&item); err != nil {
		h.BindError(c, err)
		return
	}

	created, err := h.svc.Create(c.Request.Context(), &item)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// Update godoc
// @Summary      Update a record
// @Description  Fields missing from the body keep their stored values.
// @Tags         entities
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        entity  path      string  true  "Entity path"
// @Param        id      path      string  true  "Record ID"
// @Param        record  body      object  true  "Record fields"
// @Success      200     {object}  object
// @Failure      400     {object}  errors.ErrorResponse
// @Failure      401     {object}  errors.ErrorResponse
// @Failure      404     {object}  errors.ErrorResponse
// @Router       /{entity}/{id} [put]
func (h *Resource[T]) Update(c *gin.Context) {
	id := c.Param("id")
	existing, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	body, err := c.GetRawData()
	if err != nil {
		h.BindError(c, err)
		return
	}
	next, err := overlay(existing, body)
	if err != nil {
		h.BindError(c, err)
		return
	}

	updated, err := h.svc.Update(c.Request.Context(), id, next)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Delete godoc
// @Summary      Delete a record
// @Tags         entities
// @Security     BearerAuth
// @Param        entity  path      string  true  "Entity path"
// @Param        id      path      string  true  "Record ID"
// @Success      204     "No Content"
// @Failure      401     {object}  errors.ErrorResponse
// @Failure      404     {object}  errors.ErrorResponse
// @Router       /{entity}/{id} [delete]
func (h *Resource[T]) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// overlay replaces the top-level fields of stored that body names and decodes
// the result into a fresh value, so nested lists are taken whole from body.
func overlay[T any](stored *T, body []byte) (*T, error) {
	patch := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &patch); err != nil {
		return nil, err
	}
	raw, err := json.Marshal(stored)
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	for key, value := range patch {
		fields[key] = value
	}

	raw, err = json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	var next T
	if err := json.Unmarshal(raw, &next); err != nil {
		return nil, err
	}
	return &next, nil
}
