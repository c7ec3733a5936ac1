// Package ledger is the only code allowed to change account balances.
package ledger

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/Khin-96/pochi-sub000/internal/domain"
	"github.com/Khin-96/pochi-sub000/internal/repositories/accountrepo"
)

type Ledger struct {
	logger zerolog.Logger
}

func New(logger zerolog.Logger) *Ledger {
	return &Ledger{logger: logger}
}

// Adjust applies delta to the account balance through accounts, which may be
// bound to an open transaction. It never lets the balance go negative.
func (l *Ledger) Adjust(ctx context.Context, accounts accountrepo.IAccountRepository, accountID string, delta int64) (int64, error) {
	if delta == 0 {
		return 0, domain.NewValidationError(map[string]string{"amount": "must not be zero"})
	}

	balance, err := accounts.AdjustBalance(ctx, accountID, delta)
	switch {
	case err == nil:
		l.logger.Debug().Str("account_id", accountID).Int64("delta", delta).Int64("balance", balance).Msg("Balance adjusted")
		return balance, nil
	case errors.Is(err, domain.ErrInsufficientFunds), errors.Is(err, domain.ErrAccountNotFound):
		return 0, err
	default:
		return 0, domain.NewPersistenceError(err)
	}
}

func (l *Ledger) Debit(ctx context.Context, accounts accountrepo.IAccountRepository, accountID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, domain.NewValidationError(map[string]string{"amount": "must be greater than zero"})
	}
	return l.Adjust(ctx, accounts, accountID, -amount)
}

func (l *Ledger) Credit(ctx context.Context, accounts accountrepo.IAccountRepository, accountID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, domain.NewValidationError(map[string]string{"amount": "must be greater than zero"})
	}
	return l.Adjust(ctx, accounts, accountID, amount)
}
