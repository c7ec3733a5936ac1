package domain

import (
	"time"
)

// TransferCompleted is emitted once a transfer has been committed.
type TransferCompleted struct {
	Reference        string    `json:"reference"`
	TransactionID    string    `json:"transaction_id"`
	SenderID         string    `json:"sender_id"`
	SenderName       string    `json:"sender_name"`
	RecipientID      string    `json:"recipient_id"`
	RecipientName    string    `json:"recipient_name"`
	Amount           int64     `json:"amount"`
	Currency         string    `json:"currency"`
	Description      string    `json:"description,omitempty"`
	SenderBalance    int64     `json:"-"`
	RecipientBalance int64     `json:"-"`
	OccurredAt       time.Time `json:"occurred_at"`
}
