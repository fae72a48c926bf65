package stripesync

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"admissions/internal/constants"
	pkgerrors "admissions/pkg/errors"
	"admissions/pkg/retry"
)

type charge struct {
	ID            string  `json:"id"`
	Amount        int64   `json:"amount"`
	Currency      string  `json:"currency"`
	Status        string  `json:"status"`
	Customer      *string `json:"customer"`
	ReceiptEmail  *string `json:"receipt_email"`
	Description   *string `json:"description"`
	Created       int64   `json:"created"`
	BillingDetail struct {
		Email *string `json:"email"`
	} `json:"billing_details"`
}

type chargeList struct {
	Data    []charge `json:"data"`
	HasMore bool     `json:"has_more"`
}

type apiError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Page is one page of charges, oldest last as returned by the API.
type Page struct {
	Payments []Payment
	HasMore  bool
	LastID   string
}

type ChargeLister interface {
	ListCharges(ctx context.Context, createdAfter time.Time, startingAfter string) (*Page, error)
}

type Client struct {
	http     *resty.Client
	pageSize int
}

func NewClient(baseURL, secretKey string, pageSize int, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = constants.DefaultStripeBaseURL
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = constants.DefaultStripePageSize
	}
	if timeout <= 0 {
		timeout = constants.DefaultHTTPTimeout
	}
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetBasicAuth(secretKey, "").
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
		pageSize: pageSize,
	}
}

// ListCharges returns charges created strictly after createdAfter. Client
// errors (4xx other than 429) are marked fatal so they are not retried.
func (c *Client) ListCharges(ctx context.Context, createdAfter time.Time, startingAfter string) (*Page, error) {
	var (
		list   chargeList
		apiErr apiError
	)
	req := c.http.R().
		SetContext(ctx).
		SetQueryParam("limit", strconv.Itoa(c.pageSize)).
		SetResult(&list).
		SetError(&apiErr)
	if !createdAfter.IsZero() {
		req.SetQueryParam("created[gt]", strconv.FormatInt(createdAfter.Unix(), 10))
	}
	if startingAfter != "" {
		req.SetQueryParam("starting_after", startingAfter)
	}

	resp, err := req.Get("/v1/charges")
	if err != nil {
		return nil, pkgerrors.ErrServiceUnavailable.WithCause(err)
	}
	if resp.IsError() {
		msg := apiErr.Error.Message
		if msg == "" {
			msg = resp.Status()
		}
		err := fmt.Errorf("stripe returned %d: %s", resp.StatusCode(), msg)
		if resp.StatusCode() < 500 && resp.StatusCode() != 429 {
			return nil, retry.Fatal(err)
		}
		return nil, err
	}

	page := &Page{HasMore: list.HasMore, Payments: make([]Payment, 0, len(list.Data))}
	for _, ch := range list.Data {
		email := ch.ReceiptEmail
		if email == nil {
			email = ch.BillingDetail.Email
		}
		page.Payments = append(page.Payments, Payment{
			ID:          ch.ID,
			Amount:      ch.Amount,
			Currency:    ch.Currency,
			Status:      ch.Status,
			CustomerID:  ch.Customer,
			Email:       email,
			Description: ch.Description,
			CreatedAt:   time.Unix(ch.Created, 0).UTC(),
		})
		page.LastID = ch.ID
	}
	return page, nil
}
