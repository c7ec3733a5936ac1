package domain

import (
	"time"
)

// Balance is the read-only view of an account's funds pushed to clients.
type Balance struct {
	AccountID   string    `json:"account_id"`
	Currency    string    `json:"currency"`
	AmountMinor int64     `json:"amount_minor"`
	Amount      float64   `json:"amount"`
	UpdatedAt   time.Time `json:"updated_at"`
}
