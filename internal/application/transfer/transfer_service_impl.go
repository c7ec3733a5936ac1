package transfer

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Khin-96/pochi-sub000/internal/application/ledger"
	"github.com/Khin-96/pochi-sub000/internal/application/recorder"
	"github.com/Khin-96/pochi-sub000/internal/application/resolver"
	"github.com/Khin-96/pochi-sub000/internal/domain"
	"github.com/Khin-96/pochi-sub000/internal/domain/interfaces"
	"github.com/Khin-96/pochi-sub000/internal/repositories/store"
	"github.com/Khin-96/pochi-sub000/pkg/config"
	"github.com/Khin-96/pochi-sub000/pkg/currency"
	"github.com/Khin-96/pochi-sub000/pkg/identifier"
)

const publishTimeout = 5 * time.Second

type TransferService struct {
	store      store.Store
	ledger     *ledger.Ledger
	recorder   *recorder.Recorder
	resolver   *resolver.Resolver
	config     config.TransferConfig
	validate   *validator.Validate
	publishers []interfaces.TransferEventPublisher
	logger     zerolog.Logger
}

func NewTransferService(
	st store.Store,
	ledger *ledger.Ledger,
	recorder *recorder.Recorder,
	resolver *resolver.Resolver,
	cfg config.TransferConfig,
	logger zerolog.Logger,
	publishers ...interfaces.TransferEventPublisher,
) *TransferService {
	return &TransferService{
		store:      st,
		ledger:     ledger,
		recorder:   recorder,
		resolver:   resolver,
		config:     cfg,
		validate:   validator.New(),
		publishers: publishers,
		logger:     logger,
	}
}

func (s *TransferService) Send(ctx context.Context, callerID string, req SendRequest) (*SendResult, error) {
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	sender, err := s.caller(ctx, callerID)
	if err != nil {
		return nil, err
	}

	recipientID, amount, description, err := s.validateSend(req)
	if err != nil {
		return nil, err
	}

	// Fast path only; the conditional debit below is authoritative.
	if sender.Balance < amount {
		s.logger.Info().Str("account_id", sender.ID).Int64("amount", amount).Msg("Transfer rejected: insufficient funds")
		return nil, domain.ErrInsufficientFunds
	}

	recipient, err := s.resolver.Resolve(ctx, s.store.Accounts(), recipientID)
	if err != nil {
		if errors.Is(err, domain.ErrRecipientNotFound) {
			s.logger.Info().Str("account_id", sender.ID).Str("recipient_type", string(recipientID.Kind)).Msg("Transfer rejected: recipient not found")
		}
		return nil, err
	}
	if recipient.ID == sender.ID {
		s.logger.Info().Str("account_id", sender.ID).Msg("Transfer rejected: self transfer")
		return nil, domain.ErrInvalidRecipient
	}

	var (
		sent             *domain.TransactionRecord
		senderBalance    int64
		recipientBalance int64
		reference        = uuid.NewString()
	)
	err = s.store.ExecTx(ctx, func(tx store.Store) error {
		// Lock rows in id order so opposing transfers cannot deadlock.
		debit := func() error {
			b, err := s.ledger.Debit(ctx, tx.Accounts(), sender.ID, amount)
			if errors.Is(err, domain.ErrAccountNotFound) {
				return domain.NewPersistenceError(err)
			}
			senderBalance = b
			return err
		}
		credit := func() error {
			b, err := s.ledger.Credit(ctx, tx.Accounts(), recipient.ID, amount)
			if errors.Is(err, domain.ErrAccountNotFound) {
				return domain.ErrRecipientNotFound
			}
			recipientBalance = b
			return err
		}
		first, second := debit, credit
		if recipient.ID < sender.ID {
			first, second = credit, debit
		}
		if err := first(); err != nil {
			return err
		}
		if err := second(); err != nil {
			return err
		}

		rec, err := s.recorder.RecordTransfer(ctx, tx.Transactions(), recorder.Transfer{
			Reference:   reference,
			Sender:      sender,
			Recipient:   recipient,
			Identifier:  strings.TrimSpace(recipientID.Raw),
			Amount:      amount,
			Description: description,
		})
		if err != nil {
			return err
		}
		sent = rec
		return nil
	})
	if err != nil {
		err = asDomainError(err)
		if domain.CodeOf(err) == domain.CodePersistence {
			s.logger.Error().Err(err).Str("account_id", sender.ID).Str("reference", reference).Msg("Transfer failed")
		} else {
			s.logger.Info().Str("account_id", sender.ID).Str("code", string(domain.CodeOf(err))).Msg("Transfer rejected")
		}
		return nil, err
	}

	s.logger.Info().
		Str("reference", reference).
		Str("sender_id", sender.ID).
		Str("recipient_id", recipient.ID).
		Int64("amount", amount).
		Msg("Transfer completed")

	s.publish(ctx, &domain.TransferCompleted{
		Reference:        reference,
		TransactionID:    sent.ID,
		SenderID:         sender.ID,
		SenderName:       sender.Name,
		RecipientID:      recipient.ID,
		RecipientName:    recipient.Name,
		Amount:           amount,
		Currency:         sent.Currency,
		Description:      description,
		SenderBalance:    senderBalance,
		RecipientBalance: recipientBalance,
		OccurredAt:       sent.CreatedAt,
	})

	return &SendResult{
		Transaction:   sent,
		RecipientName: recipient.Name,
		Balance:       senderBalance,
	}, nil
}

func (s *TransferService) VerifyRecipient(ctx context.Context, id identifier.Identifier) (*RecipientView, error) {
	raw := strings.TrimSpace(id.Raw)
	if raw == "" {
		return nil, domain.NewValidationError(map[string]string{"identifier": "is required"})
	}
	account, err := s.resolver.Resolve(ctx, s.store.Accounts(), id)
	if err != nil {
		return nil, err
	}
	return &RecipientView{
		Name:       account.Name,
		Type:       id.Kind,
		Identifier: raw,
	}, nil
}

func (s *TransferService) Balance(ctx context.Context, callerID string) (*domain.Balance, error) {
	account, err := s.caller(ctx, callerID)
	if err != nil {
		return nil, err
	}
	return &domain.Balance{
		AccountID:   account.ID,
		Currency:    s.config.Currency,
		AmountMinor: account.Balance,
		Amount:      currency.ToMajorFloat(account.Balance),
		UpdatedAt:   account.UpdatedAt,
	}, nil
}

func (s *TransferService) caller(ctx context.Context, callerID string) (*domain.Account, error) {
	if callerID == "" {
		return nil, domain.ErrUnauthenticated
	}
	account, err := s.store.Accounts().GetByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		s.logger.Error().Err(err).Str("account_id", callerID).Msg("Failed to load caller account")
		return nil, domain.NewPersistenceError(err)
	}
	return account, nil
}

func (s *TransferService) validateSend(req SendRequest) (identifier.Identifier, int64, string, error) {
	fields := map[string]string{}

	kind, err := identifier.ParseKind(req.RecipientType)
	if err != nil {
		fields["recipientType"] = "must be phone or email"
	}
	phone := strings.TrimSpace(req.RecipientPhone)
	email := strings.TrimSpace(req.RecipientEmail)

	var id identifier.Identifier
	switch kind {
	case identifier.KindPhone:
		id = identifier.Phone(phone)
		if phone == "" {
			fields["recipientPhone"] = "is required when recipientType is phone"
		}
		if email != "" {
			fields["recipientEmail"] = "must be empty when recipientType is phone"
		}
	case identifier.KindEmail:
		id = identifier.Email(email)
		if email == "" {
			fields["recipientEmail"] = "is required when recipientType is email"
		} else if s.validate.Var(email, "email") != nil {
			fields["recipientEmail"] = "must be a valid email address"
		}
		if phone != "" {
			fields["recipientPhone"] = "must be empty when recipientType is email"
		}
	}

	amount, err := currency.ToMinorUnits(req.Amount)
	switch {
	case err != nil:
		fields["amount"] = err.Error()
	case s.config.MaxAmount > 0 && amount > s.config.MaxAmount:
		fields["amount"] = "must not exceed " + currency.Format(s.config.Currency, s.config.MaxAmount)
	}

	description := strings.TrimSpace(req.Description)
	if limit := s.config.MaxDescriptionLength; limit > 0 && utf8.RuneCountInString(description) > limit {
		fields["description"] = "is too long"
	}

	if len(fields) > 0 {
		return identifier.Identifier{}, 0, "", domain.NewValidationError(fields)
	}
	return id, amount, description, nil
}

func (s *TransferService) publish(ctx context.Context, event *domain.TransferCompleted) {
	if len(s.publishers) == 0 {
		return
	}
	// The transfer is committed; a caller hanging up must not cancel delivery.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	for _, p := range s.publishers {
		if err := p.PublishTransferCompleted(ctx, event); err != nil {
			s.logger.Warn().Err(err).Str("reference", event.Reference).Msg("Failed to publish transfer event")
		}
	}
}

// asDomainError keeps typed errors as they are and hides anything else
// behind a persistence failure.
func asDomainError(err error) error {
	var derr *domain.Error
	if errors.As(err, &derr) {
		return derr
	}
	return domain.NewPersistenceError(err)
}
