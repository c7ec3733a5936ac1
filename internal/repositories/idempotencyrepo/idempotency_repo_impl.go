package idempotencyrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Khin-96/pochi-sub000/internal/domain"
	"github.com/Khin-96/pochi-sub000/internal/infrastructure/database"
)

type idempotencyRepositoryImpl struct {
	db     database.DBTX
	logger zerolog.Logger
}

func New(db database.DBTX, logger zerolog.Logger) IIdempotencyRepository {
	return &idempotencyRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

func (r *idempotencyRepositoryImpl) Claim(ctx context.Context, accountID, key, requestHash string, staleBefore time.Time) (*domain.IdempotencyEntry, bool, error) {
	id, err := uuid.Parse(accountID)
	if err != nil {
		return nil, false, fmt.Errorf("invalid account_id format: %v", err)
	}

	stale := sql.NullTime{Time: staleBefore, Valid: !staleBefore.IsZero()}
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO idempotency_keys (account_id, key_id, request_hash, created_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (account_id, key_id) DO UPDATE
		 SET request_hash = EXCLUDED.request_hash,
		     created_at = EXCLUDED.created_at,
		     response_status = NULL,
		     response_body = NULL
		 WHERE idempotency_keys.completed_at IS NULL
		   AND idempotency_keys.created_at < $5`,
		id, key, requestHash, now, stale,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("account_id", accountID).Str("key", key).Msg("Failed to claim idempotency key")
		return nil, false, fmt.Errorf("failed to claim idempotency key: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 1 {
		return &domain.IdempotencyEntry{AccountID: accountID, Key: key, RequestHash: requestHash, CreatedAt: now}, true, nil
	}

	var (
		entry  = domain.IdempotencyEntry{AccountID: accountID, Key: key}
		status sql.NullInt32
		done   sql.NullTime
	)
	err = r.db.QueryRowContext(ctx,
		`SELECT request_hash, response_status, response_body, created_at, completed_at
		 FROM idempotency_keys WHERE account_id = $1 AND key_id = $2`,
		id, key,
	).Scan(&entry.RequestHash, &status, &entry.ResponseBody, &entry.CreatedAt, &done)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Released between the insert and the read; treat as in flight.
			return &entry, false, nil
		}
		return nil, false, fmt.Errorf("failed to load idempotency key: %w", err)
	}
	entry.ResponseStatus = int(status.Int32)
	if done.Valid {
		entry.CompletedAt = &done.Time
	}
	return &entry, false, nil
}

func (r *idempotencyRepositoryImpl) Complete(ctx context.Context, accountID, key string, status int, body []byte) error {
	id, err := uuid.Parse(accountID)
	if err != nil {
		return fmt.Errorf("invalid account_id format: %v", err)
	}
	_, err = r.db.ExecContext(ctx,
		`UPDATE idempotency_keys
		 SET response_status = $3, response_body = $4, completed_at = NOW()
		 WHERE account_id = $1 AND key_id = $2`,
		id, key, status, body,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("account_id", accountID).Str("key", key).Msg("Failed to store idempotent response")
		return fmt.Errorf("failed to complete idempotency key: %w", err)
	}
	return nil
}

func (r *idempotencyRepositoryImpl) Release(ctx context.Context, accountID, key string) error {
	id, err := uuid.Parse(accountID)
	if err != nil {
		return fmt.Errorf("invalid account_id format: %v", err)
	}
	_, err = r.db.ExecContext(ctx,
		`DELETE FROM idempotency_keys WHERE account_id = $1 AND key_id = $2 AND completed_at IS NULL`,
		id, key,
	)
	if err != nil {
		return fmt.Errorf("failed to release idempotency key: %w", err)
	}
	return nil
}
