package idempotencyrepo

import (
	"context"
	"time"

	"github.com/Khin-96/pochi-sub000/internal/domain"
)

type IIdempotencyRepository interface {
	// Claim reserves key for the account and remembers requestHash. When the
	// key is already known it returns the stored entry and claimed=false,
	// except that an unfinished claim created before staleBefore is taken
	// over. A zero staleBefore never takes over.
	Claim(ctx context.Context, accountID, key, requestHash string, staleBefore time.Time) (entry *domain.IdempotencyEntry, claimed bool, err error)
	Complete(ctx context.Context, accountID, key string, status int, body []byte) error
	// Release forgets an unfinished claim so the client may retry.
	Release(ctx context.Context, accountID, key string) error
}
