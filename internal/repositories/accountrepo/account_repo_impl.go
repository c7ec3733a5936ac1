package accountrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/Khin-96/pochi-sub000/internal/domain"
	"github.com/Khin-96/pochi-sub000/internal/infrastructure/database"
)

const accountColumns = `id, name, COALESCE(phone, ''), COALESCE(email, ''), balance, created_at, updated_at`

type accountRepositoryImpl struct {
	db     database.DBTX
	logger zerolog.Logger
}

func New(db database.DBTX, logger zerolog.Logger) IAccountRepository {
	return &accountRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

func (r *accountRepositoryImpl) Create(ctx context.Context, account *domain.Account) error {
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (id, name, phone, email, balance, created_at, updated_at)
		 VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6, $7)`,
		account.ID, account.Name, account.Phone, account.Email, account.Balance, account.CreatedAt, account.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return domain.ErrDuplicateAccount
		}
		r.logger.Error().Err(err).Str("account_id", account.ID).Msg("Failed to create account")
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (r *accountRepositoryImpl) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	accountID, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.ErrAccountNotFound
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, accountID)
	return r.scan(row)
}

func (r *accountRepositoryImpl) FindByPhone(ctx context.Context, phones ...string) (*domain.Account, error) {
	if len(phones) == 0 {
		return nil, domain.ErrAccountNotFound
	}
	// Several spellings can be stored for legacy rows; the first candidate
	// wins so the canonical form takes precedence.
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts
		 WHERE phone = ANY($1)
		 ORDER BY array_position($1, phone)
		 LIMIT 1`,
		pq.Array(phones),
	)
	return r.scan(row)
}

func (r *accountRepositoryImpl) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email)
	return r.scan(row)
}

func (r *accountRepositoryImpl) AdjustBalance(ctx context.Context, id string, delta int64) (int64, error) {
	accountID, err := uuid.Parse(id)
	if err != nil {
		return 0, domain.ErrAccountNotFound
	}

	var balance int64
	err = r.db.QueryRowContext(ctx,
		`UPDATE accounts SET balance = balance + $2, updated_at = NOW()
		 WHERE id = $1 AND balance + $2 >= 0
		 RETURNING balance`,
		accountID, delta,
	).Scan(&balance)
	switch {
	case err == nil:
		return balance, nil
	case errors.Is(err, sql.ErrNoRows):
		// Either the account is gone or the guard rejected the change.
		var exists bool
		if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`, accountID).Scan(&exists); err != nil {
			return 0, fmt.Errorf("failed to check account: %w", err)
		}
		if !exists {
			return 0, domain.ErrAccountNotFound
		}
		return 0, domain.ErrInsufficientFunds
	case database.IsCheckViolation(err):
		return 0, domain.ErrInsufficientFunds
	default:
		r.logger.Error().Err(err).Str("account_id", id).Int64("delta", delta).Msg("Failed to adjust balance")
		return 0, fmt.Errorf("failed to adjust balance: %w", err)
	}
}

func (r *accountRepositoryImpl) TotalBalance(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(balance), 0) FROM accounts`).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum balances: %w", err)
	}
	return total, nil
}

func (r *accountRepositoryImpl) scan(row *sql.Row) (*domain.Account, error) {
	var (
		a  domain.Account
		id uuid.UUID
	)
	err := row.Scan(&id, &a.Name, &a.Phone, &a.Email, &a.Balance, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to scan account: %w", err)
	}
	a.ID = id.String()
	return &a, nil
}
