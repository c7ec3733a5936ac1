// Package recorder appends transaction records once balance changes are
// durable. It trusts its callers to have enforced business rules.
package recorder

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Khin-96/pochi-sub000/internal/domain"
	"github.com/Khin-96/pochi-sub000/internal/repositories/transactionrepo"
)

type Recorder struct {
	currency string
	logger   zerolog.Logger
	now      func() time.Time
}

func New(currency string, logger zerolog.Logger) *Recorder {
	return &Recorder{
		currency: currency,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (r *Recorder) Record(ctx context.Context, transactions transactionrepo.ITransactionRepository, record *domain.TransactionRecord) (*domain.TransactionRecord, error) {
	fields := map[string]string{}
	if strings.TrimSpace(record.AccountID) == "" {
		fields["account_id"] = "is required"
	}
	if !record.Type.Valid() {
		fields["type"] = "is required"
	}
	if record.Amount <= 0 {
		fields["amount"] = "must be greater than zero"
	}
	if !record.Status.Valid() {
		fields["status"] = "is required"
	}
	if len(fields) > 0 {
		return nil, domain.NewValidationError(fields)
	}

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = r.now()
	}
	if record.Currency == "" {
		record.Currency = r.currency
	}
	if record.Reference == "" {
		record.Reference = record.ID
	}

	if err := transactions.Create(ctx, record); err != nil {
		return nil, domain.NewPersistenceError(err)
	}
	r.logger.Debug().
		Str("transaction_id", record.ID).
		Str("account_id", record.AccountID).
		Str("type", string(record.Type)).
		Int64("amount", record.Amount).
		Msg("Transaction recorded")
	return record, nil
}

// Transfer describes both sides of a completed money movement.
type Transfer struct {
	Reference   string
	Sender      *domain.Account
	Recipient   *domain.Account
	Identifier  string
	Amount      int64
	Description string
}

// RecordTransfer writes the sender's send record and the recipient's
// receive record under one reference and returns the sender's record.
func (r *Recorder) RecordTransfer(ctx context.Context, transactions transactionrepo.ITransactionRepository, t Transfer) (*domain.TransactionRecord, error) {
	if t.Reference == "" {
		t.Reference = uuid.NewString()
	}
	now := r.now()

	sent, err := r.Record(ctx, transactions, &domain.TransactionRecord{
		AccountID:             t.Sender.ID,
		CounterpartyAccountID: t.Recipient.ID,
		Counterparty:          t.Identifier,
		CounterpartyName:      t.Recipient.Name,
		Type:                  domain.TypeSend,
		Amount:                t.Amount,
		Description:           t.Description,
		Status:                domain.StatusCompleted,
		Reference:             t.Reference,
		CreatedAt:             now,
	})
	if err != nil {
		return nil, err
	}

	senderIdentifier := t.Sender.Phone
	if senderIdentifier == "" {
		senderIdentifier = t.Sender.Email
	}
	if _, err := r.Record(ctx, transactions, &domain.TransactionRecord{
		AccountID:             t.Recipient.ID,
		CounterpartyAccountID: t.Sender.ID,
		Counterparty:          senderIdentifier,
		CounterpartyName:      t.Sender.Name,
		Type:                  domain.TypeReceive,
		Amount:                t.Amount,
		Description:           t.Description,
		Status:                domain.StatusCompleted,
		Reference:             t.Reference,
		CreatedAt:             now,
	}); err != nil {
		return nil, err
	}
	return sent, nil
}
