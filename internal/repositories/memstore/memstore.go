// Package memstore is an in-process implementation of store.Store used by
// the memory database driver and by tests.
package memstore

import (
	"context"
	"sync"

	"github.com/Khin-96/pochi-sub000/internal/domain"
	"github.com/Khin-96/pochi-sub000/internal/repositories/accountrepo"
	"github.com/Khin-96/pochi-sub000/internal/repositories/idempotencyrepo"
	"github.com/Khin-96/pochi-sub000/internal/repositories/store"
	"github.com/Khin-96/pochi-sub000/internal/repositories/transactionrepo"
)

type state struct {
	accounts map[string]domain.Account
	records  []domain.TransactionRecord
	keys     map[idemKey]domain.IdempotencyEntry
}

type idemKey struct {
	accountID string
	key       string
}

func (s *state) clone() *state {
	c := &state{
		accounts: make(map[string]domain.Account, len(s.accounts)),
		records:  make([]domain.TransactionRecord, len(s.records)),
		keys:     make(map[idemKey]domain.IdempotencyEntry, len(s.keys)),
	}
	for k, v := range s.accounts {
		c.accounts[k] = v
	}
	copy(c.records, s.records)
	for k, v := range s.keys {
		c.keys[k] = v
	}
	return c
}

// Store keeps everything behind one mutex. ExecTx holds the mutex for the
// whole callback, so transactions are serialised and see no interleaving.
type Store struct {
	mu   *sync.Mutex
	st   *state
	inTx bool
}

func New() *Store {
	return &Store{
		mu: &sync.Mutex{},
		st: &state{
			accounts: make(map[string]domain.Account),
			keys:     make(map[idemKey]domain.IdempotencyEntry),
		},
	}
}

func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) Accounts() accountrepo.IAccountRepository {
	return &accountRepository{s: s}
}

func (s *Store) Transactions() transactionrepo.ITransactionRepository {
	return &transactionRepository{s: s}
}

func (s *Store) Idempotency() idempotencyrepo.IIdempotencyRepository {
	return &idempotencyRepository{s: s}
}

func (s *Store) ExecTx(ctx context.Context, fn func(store.Store) error) error {
	if s.inTx {
		return store.ErrNestedTx
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	err := fn(&Store{mu: s.mu, st: s.st, inTx: true})
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		*s.st = *snapshot
		return err
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

var _ store.Store = (*Store)(nil)
