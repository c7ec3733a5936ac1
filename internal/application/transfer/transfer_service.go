package transfer

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Khin-96/pochi-sub000/internal/domain"
	"github.com/Khin-96/pochi-sub000/pkg/identifier"
)

type ITransferService interface {
	Send(ctx context.Context, callerID string, req SendRequest) (*SendResult, error)
	VerifyRecipient(ctx context.Context, id identifier.Identifier) (*RecipientView, error)
	FrequentRecipients(ctx context.Context, callerID string, limit int) ([]FrequentRecipient, error)
	History(ctx context.Context, callerID string, limit, offset int) (*History, error)
	Balance(ctx context.Context, callerID string) (*domain.Balance, error)
}

// SendRequest carries exactly one of RecipientPhone or RecipientEmail,
// matching RecipientType.
type SendRequest struct {
	RecipientType  string
	RecipientPhone string
	RecipientEmail string
	Amount         decimal.Decimal
	Description    string
}

type SendResult struct {
	Transaction   *domain.TransactionRecord
	RecipientName string
	// Balance is the sender's balance after the transfer, in minor units.
	Balance int64
}

// RecipientView is all a caller learns about a resolved recipient.
type RecipientView struct {
	Name       string
	Type       identifier.Kind
	Identifier string
}

type FrequentRecipient struct {
	Identifier  string
	Name        string
	Count       int
	TotalAmount int64
	LastSentAt  time.Time
}

type History struct {
	Transactions []domain.TransactionRecord
	Total        int
	Limit        int
	Offset       int
}

const (
	DefaultFrequentLimit = 5
	MaxFrequentLimit     = 50
	DefaultHistoryLimit  = 20
	MaxHistoryLimit      = 100
)
