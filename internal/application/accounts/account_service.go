// Package accounts opens new member accounts. Signup itself lives outside
// this service; the CLI uses it to provision accounts.
package accounts

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/Khin-96/pochi-sub000/internal/application/ledger"
	"github.com/Khin-96/pochi-sub000/internal/application/recorder"
	"github.com/Khin-96/pochi-sub000/internal/domain"
	"github.com/Khin-96/pochi-sub000/internal/repositories/store"
	"github.com/Khin-96/pochi-sub000/pkg/config"
	"github.com/Khin-96/pochi-sub000/pkg/identifier"
)

type OpenRequest struct {
	Name  string `validate:"required,max=100"`
	Phone string `validate:"required_without=Email"`
	Email string `validate:"omitempty,email"`
}

type AccountService struct {
	store      store.Store
	ledger     *ledger.Ledger
	recorder   *recorder.Recorder
	normalizer *identifier.Normalizer
	config     config.TransferConfig
	validate   *validator.Validate
	logger     zerolog.Logger
}

func NewAccountService(st store.Store, ledger *ledger.Ledger, recorder *recorder.Recorder, normalizer *identifier.Normalizer, cfg config.TransferConfig, logger zerolog.Logger) *AccountService {
	return &AccountService{
		store:      st,
		ledger:     ledger,
		recorder:   recorder,
		normalizer: normalizer,
		config:     cfg,
		validate:   validator.New(),
		logger:     logger,
	}
}

// Open creates an account holding the configured opening balance. The
// opening credit and its deposit record are written with the account.
func (s *AccountService) Open(ctx context.Context, req OpenRequest) (*domain.Account, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Email = strings.TrimSpace(req.Email)

	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[strings.ToLower(fe.Field())] = "failed " + fe.Tag() + " check"
			}
			return nil, domain.NewValidationError(fields)
		}
		return nil, err
	}

	account := &domain.Account{
		Name: req.Name,
	}
	if req.Phone != "" {
		account.Phone = s.normalizer.NormalizePhone(req.Phone)
	}
	if req.Email != "" {
		account.Email = identifier.NormalizeEmail(req.Email)
	}

	err := s.store.ExecTx(ctx, func(tx store.Store) error {
		if err := tx.Accounts().Create(ctx, account); err != nil {
			return err
		}
		if s.config.InitialBalance <= 0 {
			return nil
		}
		balance, err := s.ledger.Credit(ctx, tx.Accounts(), account.ID, s.config.InitialBalance)
		if err != nil {
			return err
		}
		account.Balance = balance
		_, err = s.recorder.Record(ctx, tx.Transactions(), &domain.TransactionRecord{
			AccountID:   account.ID,
			Type:        domain.TypeDeposit,
			Amount:      s.config.InitialBalance,
			Description: "Opening balance",
			Status:      domain.StatusCompleted,
		})
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateAccount) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("name", account.Name).Msg("Failed to open account")
		return nil, err
	}

	s.logger.Info().Str("account_id", account.ID).Int64("balance", account.Balance).Msg("Account opened")
	return account, nil
}
