package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"admissions/internal/stripesync"
)

func (c *Client) StripeRuns(ctx context.Context, limit int) ([]stripesync.Run, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	var runs []stripesync.Run
	if err := c.request(ctx, http.MethodGet, "/api/v1/integrations/stripe/runs", nil, &runs, query); err != nil {
		return nil, err
	}
	return runs, nil
}

func (c *Client) StripeSync(ctx context.Context) (*stripesync.Run, error) {
	var run stripesync.Run
	if err := c.request(ctx, http.MethodPost, "/api/v1/integrations/stripe/sync", nil, &run, nil); err != nil {
		return nil, err
	}
	return &run, nil
}
