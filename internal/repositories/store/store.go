package store

import (
	"context"
	"errors"

	"github.com/Khin-96/pochi-sub000/internal/repositories/accountrepo"
	"github.com/Khin-96/pochi-sub000/internal/repositories/idempotencyrepo"
	"github.com/Khin-96/pochi-sub000/internal/repositories/transactionrepo"
)

var ErrNestedTx = errors.New("store is already in a transaction")

// Store groups the repositories that a transfer touches. Repositories
// obtained from the Store passed to ExecTx's callback share one transaction.
type Store interface {
	Accounts() accountrepo.IAccountRepository
	Transactions() transactionrepo.ITransactionRepository
	Idempotency() idempotencyrepo.IIdempotencyRepository
	// ExecTx runs fn atomically: every write made through the callback's
	// Store is committed together or not at all.
	ExecTx(ctx context.Context, fn func(Store) error) error
	Ping(ctx context.Context) error
}
