package memstore

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Khin-96/pochi-sub000/internal/domain"
)

type transactionRepository struct {
	s *Store
}

func (r *transactionRepository) Create(ctx context.Context, record *domain.TransactionRecord) error {
	defer r.s.lock()()

	if _, ok := r.s.st.accounts[record.AccountID]; !ok {
		return domain.ErrAccountNotFound
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	r.s.st.records = append(r.s.st.records, *record)
	return nil
}

func (r *transactionRepository) GetByID(ctx context.Context, id string) (*domain.TransactionRecord, error) {
	defer r.s.lock()()

	for _, rec := range r.s.st.records {
		if rec.ID == id {
			return &rec, nil
		}
	}
	return nil, domain.ErrRecordNotFound
}

// newestFirst walks records in reverse insertion order, which is also
// reverse creation order.
func (r *transactionRepository) newestFirst(match func(domain.TransactionRecord) bool) []domain.TransactionRecord {
	var out []domain.TransactionRecord
	for i := len(r.s.st.records) - 1; i >= 0; i-- {
		if rec := r.s.st.records[i]; match(rec) {
			out = append(out, rec)
		}
	}
	return out
}

func (r *transactionRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]domain.TransactionRecord, error) {
	defer r.s.lock()()

	all := r.newestFirst(func(rec domain.TransactionRecord) bool {
		return rec.AccountID == accountID
	})
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *transactionRepository) CountByAccount(ctx context.Context, accountID string) (int, error) {
	defer r.s.lock()()

	count := 0
	for _, rec := range r.s.st.records {
		if rec.AccountID == accountID {
			count++
		}
	}
	return count, nil
}

func (r *transactionRepository) ListByType(ctx context.Context, accountID string, txType domain.TransactionType) ([]domain.TransactionRecord, error) {
	defer r.s.lock()()

	return r.newestFirst(func(rec domain.TransactionRecord) bool {
		return rec.AccountID == accountID && rec.Type == txType
	}), nil
}

func (r *transactionRepository) ListByReference(ctx context.Context, reference string) ([]domain.TransactionRecord, error) {
	defer r.s.lock()()

	var out []domain.TransactionRecord
	for _, rec := range r.s.st.records {
		if rec.Reference == reference {
			out = append(out, rec)
		}
	}
	return out, nil
}
