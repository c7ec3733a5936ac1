package transactionrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sqlc-dev/pqtype"

	"github.com/Khin-96/pochi-sub000/internal/domain"
	"github.com/Khin-96/pochi-sub000/internal/infrastructure/database"
)

const recordColumns = `id, account_id, counterparty_account_id, counterparty, counterparty_name,
	type, amount, currency, description, status, reference, metadata, created_at`

type transactionRepositoryImpl struct {
	db     database.DBTX
	logger zerolog.Logger
}

func New(db database.DBTX, logger zerolog.Logger) ITransactionRepository {
	return &transactionRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

func (r *transactionRepositoryImpl) Create(ctx context.Context, record *domain.TransactionRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	accountID, err := uuid.Parse(record.AccountID)
	if err != nil {
		return fmt.Errorf("invalid account_id format: %v", err)
	}
	counterpartyID := uuid.NullUUID{}
	if record.CounterpartyAccountID != "" {
		id, err := uuid.Parse(record.CounterpartyAccountID)
		if err != nil {
			return fmt.Errorf("invalid counterparty_account_id format: %v", err)
		}
		counterpartyID = uuid.NullUUID{UUID: id, Valid: true}
	}

	metadata := pqtype.NullRawMessage{}
	if len(record.Metadata) > 0 {
		metadata = pqtype.NullRawMessage{RawMessage: record.Metadata, Valid: true}
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO transactions (`+recordColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		record.ID, accountID, counterpartyID, record.Counterparty, record.CounterpartyName,
		string(record.Type), record.Amount, record.Currency, record.Description,
		string(record.Status), record.Reference, metadata, record.CreatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).
			Str("account_id", record.AccountID).
			Str("reference", record.Reference).
			Msg("Failed to insert transaction record")
		return fmt.Errorf("failed to create transaction record: %w", err)
	}
	return nil
}

func (r *transactionRepositoryImpl) GetByID(ctx context.Context, id string) (*domain.TransactionRecord, error) {
	recordID, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.ErrRecordNotFound
	}
	rows, err := r.db.QueryContext(ctx, `SELECT `+recordColumns+` FROM transactions WHERE id = $1`, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction record: %w", err)
	}
	records, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, domain.ErrRecordNotFound
	}
	return &records[0], nil
}

func (r *transactionRepositoryImpl) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]domain.TransactionRecord, error) {
	id, err := uuid.Parse(accountID)
	if err != nil {
		return nil, fmt.Errorf("invalid account_id format: %v", err)
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM transactions
		 WHERE account_id = $1
		 ORDER BY created_at DESC, id
		 LIMIT $2 OFFSET $3`,
		id, limit, offset,
	)
	if err != nil {
		r.logger.Err(err).Str("account_id", accountID).Msg("Failed to list transaction records")
		return nil, fmt.Errorf("failed to list transaction records: %w", err)
	}
	return scanRecords(rows)
}

func (r *transactionRepositoryImpl) CountByAccount(ctx context.Context, accountID string) (int, error) {
	id, err := uuid.Parse(accountID)
	if err != nil {
		return 0, fmt.Errorf("invalid account_id format: %v", err)
	}
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions WHERE account_id = $1`, id).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count transaction records: %w", err)
	}
	return count, nil
}

func (r *transactionRepositoryImpl) ListByType(ctx context.Context, accountID string, txType domain.TransactionType) ([]domain.TransactionRecord, error) {
	id, err := uuid.Parse(accountID)
	if err != nil {
		return nil, fmt.Errorf("invalid account_id format: %v", err)
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM transactions
		 WHERE account_id = $1 AND type = $2
		 ORDER BY created_at DESC, id`,
		id, string(txType),
	)
	if err != nil {
		r.logger.Err(err).Str("account_id", accountID).Str("type", string(txType)).Msg("Failed to list transaction records")
		return nil, fmt.Errorf("failed to list transaction records: %w", err)
	}
	return scanRecords(rows)
}

func (r *transactionRepositoryImpl) ListByReference(ctx context.Context, reference string) ([]domain.TransactionRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM transactions WHERE reference = $1 ORDER BY type DESC`,
		reference,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list transaction records: %w", err)
	}
	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]domain.TransactionRecord, error) {
	defer rows.Close()

	var result []domain.TransactionRecord
	for rows.Next() {
		var (
			rec            domain.TransactionRecord
			id, accountID  uuid.UUID
			counterpartyID uuid.NullUUID
			txType, status string
			metadata       pqtype.NullRawMessage
		)
		if err := rows.Scan(
			&id, &accountID, &counterpartyID, &rec.Counterparty, &rec.CounterpartyName,
			&txType, &rec.Amount, &rec.Currency, &rec.Description, &status,
			&rec.Reference, &metadata, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction record: %w", err)
		}
		rec.ID = id.String()
		rec.AccountID = accountID.String()
		if counterpartyID.Valid {
			rec.CounterpartyAccountID = counterpartyID.UUID.String()
		}
		rec.Type = domain.TransactionType(txType)
		rec.Status = domain.TransactionStatus(status)
		if metadata.Valid {
			rec.Metadata = json.RawMessage(metadata.RawMessage)
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transaction records: %w", err)
	}
	return result, nil
}
