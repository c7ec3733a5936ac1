package domain

import (
	"encoding/json"
	"time"
)

type TransactionType string
type TransactionStatus string

const (
	TypeSend    TransactionType = "send"
	TypeReceive TransactionType = "receive"
	TypeDeposit TransactionType = "deposit"
)

const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusFailed    TransactionStatus = "failed"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TypeSend, TypeReceive, TypeDeposit:
		return true
	}
	return false
}

func (s TransactionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// TransactionRecord is an append-only ledger entry on one account. Amount is
// always positive; Type carries the direction.
type TransactionRecord struct {
	ID                    string            `json:"id" db:"id"`
	AccountID             string            `json:"account_id" db:"account_id"`
	CounterpartyAccountID string            `json:"counterparty_account_id,omitempty" db:"counterparty_account_id"`
	Counterparty          string            `json:"counterparty" db:"counterparty"`
	CounterpartyName      string            `json:"counterparty_name" db:"counterparty_name"`
	Type                  TransactionType   `json:"type" db:"type"`
	Amount                int64             `json:"amount" db:"amount"`
	Currency              string            `json:"currency" db:"currency"`
	Description           string            `json:"description" db:"description"`
	Status                TransactionStatus `json:"status" db:"status"`
	Reference             string            `json:"reference" db:"reference"`
	Metadata              json.RawMessage   `json:"metadata,omitempty" db:"metadata"`
	CreatedAt             time.Time         `json:"created_at" db:"created_at"`
}
