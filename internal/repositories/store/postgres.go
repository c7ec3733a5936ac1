package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Khin-96/pochi-sub000/internal/infrastructure/database"
	"github.com/Khin-96/pochi-sub000/internal/repositories/accountrepo"
	"github.com/Khin-96/pochi-sub000/internal/repositories/idempotencyrepo"
	"github.com/Khin-96/pochi-sub000/internal/repositories/transactionrepo"
)

type pgStore struct {
	db     database.DBTX
	logger zerolog.Logger

	accounts     accountrepo.IAccountRepository
	transactions transactionrepo.ITransactionRepository
	idempotency  idempotencyrepo.IIdempotencyRepository
}

func NewPostgres(dm *database.DBManager, logger zerolog.Logger) Store {
	return newPgStore(dm.Db, logger)
}

func newPgStore(db database.DBTX, logger zerolog.Logger) *pgStore {
	return &pgStore{
		db:           db,
		logger:       logger,
		accounts:     accountrepo.New(db, logger),
		transactions: transactionrepo.New(db, logger),
		idempotency:  idempotencyrepo.New(db, logger),
	}
}

func (s *pgStore) Accounts() accountrepo.IAccountRepository {
	return s.accounts
}

func (s *pgStore) Transactions() transactionrepo.ITransactionRepository {
	return s.transactions
}

func (s *pgStore) Idempotency() idempotencyrepo.IIdempotencyRepository {
	return s.idempotency
}

func (s *pgStore) ExecTx(ctx context.Context, fn func(Store) error) error {
	db, ok := s.db.(*sql.DB)
	if !ok {
		return ErrNestedTx
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(newPgStore(tx, s.logger)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error().Err(rbErr).Msg("Failed to roll back transaction")
			return fmt.Errorf("tx err: %w, rb err: %v", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *pgStore) Ping(ctx context.Context) error {
	db, ok := s.db.(*sql.DB)
	if !ok {
		return nil
	}
	return db.PingContext(ctx)
}
