// Package stripesync copies Stripe charges into the stripe_payments table on a
// fixed schedule, one replica at a time.
package stripesync

import "time"

const (
	StatusRunning = "running"
	StatusSuccess = "success"
	StatusFailed  = "failed"

	TriggerSchedule = "schedule"
	TriggerManual   = "manual"
)

type Payment struct {
	ID          string    `json:"id"`
	Amount      int64     `json:"amount"`
	Currency    string    `json:"currency"`
	Status      string    `json:"status"`
	CustomerID  *string   `json:"customer_id"`
	Email       *string   `json:"email"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	SyncedAt    time.Time `json:"synced_at"`
}

type Run struct {
	ID         string     `json:"id"`
	Trigger    string     `json:"trigger"`
	Status     string     `json:"status"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at"`
	Since      time.Time  `json:"since"`
	Payments   int        `json:"payments"`
	Error      *string    `json:"error"`
}
