// Package client talks to the console API over HTTP.
package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"admissions/internal/constants"
	"admissions/internal/crud"
	"admissions/pkg/errors"
)

type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

type Client struct {
	http *resty.Client
}

func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = constants.DefaultHTTPTimeout
	}
	rc := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	if cfg.Token != "" {
		rc.SetAuthToken(cfg.Token)
	}
	return &Client{http: rc}
}

// request executes one call and decodes the API error envelope on failure.
func (c *Client) request(ctx context.Context, method, path string, body, result interface{}, query url.Values) error {
	var apiErr errors.ErrorResponse
	req := c.http.R().SetContext(ctx).SetError(&apiErr)
	if body != nil {
		req.SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}
	if len(query) > 0 {
		req.SetQueryParamsFromValues(query)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return errors.ErrServiceUnavailable.WithCause(err).WithMessage(fmt.Sprintf("%s %s failed: %v", method, path, err))
	}
	if resp.IsError() {
		return errors.FromResponse(resp.StatusCode(), apiErr)
	}
	return nil
}

// Resource is the typed client for one entity path.
type Resource[T any] struct {
	c    *Client
	path string
}

func NewResource[T any](c *Client, schema crud.Schema[T]) *Resource[T] {
	return &Resource[T]{c: c, path: "/api/v1/" + schema.Path}
}

func (r *Resource[T]) List(ctx context.Context, params crud.ListParams) ([]T, error) {
	query := url.Values{}
	if params.Query != "" {
		query.Set("q", params.Query)
	}
	if params.Sort.Key != "" {
		query.Set("sort", params.Sort.Key)
		query.Set("dir", string(params.Sort.Direction))
	}
	if params.Limit > 0 {
		query.Set("limit", strconv.Itoa(params.Limit))
	}
	for k, v := range params.Filters {
		query.Set("filter["+k+"]", v)
	}

	var items []T
	if err := r.c.request(ctx, http.MethodGet, r.path, nil, &items, query); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *Resource[T]) Get(ctx context.Context, id string) (*T, error) {
	var item T
	if err := r.c.request(ctx, http.MethodGet, r.path+"/"+url.PathEscape(id), nil, &item, nil); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *Resource[T]) Create(ctx context.Context, item *T) (*T, error) {
	var created T
	if err := r.c.request(ctx, http.MethodPost, r.path, item, &created, nil); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *Resource[T]) Update(ctx context.Context, id string, item *T) (*T, error) {
	var updated T
	if err := r.c.request(ctx, http.MethodPut, r.path+"/"+url.PathEscape(id), item, &updated, nil); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	return r.c.request(ctx, http.MethodDelete, r.path+"/"+url.PathEscape(id), nil, nil, nil)
}
