package memstore

import (
	"context"
	"time"

	"github.com/Khin-96/pochi-sub000/internal/domain"
)

type idempotencyRepository struct {
	s *Store
}

func (r *idempotencyRepository) Claim(ctx context.Context, accountID, key, requestHash string, staleBefore time.Time) (*domain.IdempotencyEntry, bool, error) {
	defer r.s.lock()()

	k := idemKey{accountID: accountID, key: key}
	if e, ok := r.s.st.keys[k]; ok {
		abandoned := !e.Completed() && !staleBefore.IsZero() && e.CreatedAt.Before(staleBefore)
		if !abandoned {
			return &e, false, nil
		}
	}
	e := domain.IdempotencyEntry{AccountID: accountID, Key: key, RequestHash: requestHash, CreatedAt: time.Now().UTC()}
	r.s.st.keys[k] = e
	return &e, true, nil
}

func (r *idempotencyRepository) Complete(ctx context.Context, accountID, key string, status int, body []byte) error {
	defer r.s.lock()()

	k := idemKey{accountID: accountID, key: key}
	e, ok := r.s.st.keys[k]
	if !ok {
		return domain.ErrRecordNotFound
	}
	now := time.Now().UTC()
	e.ResponseStatus = status
	e.ResponseBody = append([]byte(nil), body...)
	e.CompletedAt = &now
	r.s.st.keys[k] = e
	return nil
}

func (r *idempotencyRepository) Release(ctx context.Context, accountID, key string) error {
	defer r.s.lock()()

	k := idemKey{accountID: accountID, key: key}
	if e, ok := r.s.st.keys[k]; ok && !e.Completed() {
		delete(r.s.st.keys, k)
	}
	return nil
}
