package accountrepo

import (
	"context"

	"github.com/Khin-96/pochi-sub000/internal/domain"
)

type IAccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	// FindByPhone and FindByEmail match stored values exactly; callers pass
	// every spelling they want tried.
	FindByPhone(ctx context.Context, phones ...string) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	// AdjustBalance adds delta to the balance and returns the new value. A
	// change that would take the balance below zero leaves it untouched and
	// returns domain.ErrInsufficientFunds.
	AdjustBalance(ctx context.Context, id string, delta int64) (int64, error)
	TotalBalance(ctx context.Context) (int64, error)
}
