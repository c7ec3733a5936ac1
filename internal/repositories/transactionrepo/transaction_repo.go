package transactionrepo

import (
	"context"

	"github.com/Khin-96/pochi-sub000/internal/domain"
)

type ITransactionRepository interface {
	Create(ctx context.Context, record *domain.TransactionRecord) error
	GetByID(ctx context.Context, id string) (*domain.TransactionRecord, error)
	// ListByAccount returns records newest first.
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]domain.TransactionRecord, error)
	CountByAccount(ctx context.Context, accountID string) (int, error)
	// ListByType returns every record of the given type for the account,
	// newest first.
	ListByType(ctx context.Context, accountID string, txType domain.TransactionType) ([]domain.TransactionRecord, error)
	ListByReference(ctx context.Context, reference string) ([]domain.TransactionRecord, error)
}
