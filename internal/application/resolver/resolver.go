// Package resolver maps a recipient identifier to an existing account,
// tolerating the legacy phone formats older rows are stored under.
package resolver

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/Khin-96/pochi-sub000/internal/domain"
	"github.com/Khin-96/pochi-sub000/internal/repositories/accountrepo"
	"github.com/Khin-96/pochi-sub000/pkg/identifier"
)

type Resolver struct {
	normalizer *identifier.Normalizer
	logger     zerolog.Logger
}

func New(normalizer *identifier.Normalizer, logger zerolog.Logger) *Resolver {
	return &Resolver{
		normalizer: normalizer,
		logger:     logger,
	}
}

// Resolve returns the account the identifier refers to, or
// domain.ErrRecipientNotFound.
func (r *Resolver) Resolve(ctx context.Context, accounts accountrepo.IAccountRepository, id identifier.Identifier) (*domain.Account, error) {
	candidates := r.normalizer.Candidates(id)
	if len(candidates) == 0 || candidates[0] == "" {
		return nil, domain.ErrRecipientNotFound
	}

	var (
		account *domain.Account
		err     error
	)
	switch id.Kind {
	case identifier.KindEmail:
		account, err = accounts.FindByEmail(ctx, candidates[0])
	case identifier.KindPhone:
		account, err = accounts.FindByPhone(ctx, candidates...)
	default:
		return nil, domain.NewValidationError(map[string]string{"type": "must be phone or email"})
	}
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			r.logger.Debug().Str("kind", string(id.Kind)).Strs("candidates", candidates).Msg("Recipient not found")
			return nil, domain.ErrRecipientNotFound
		}
		r.logger.Error().Err(err).Str("kind", string(id.Kind)).Msg("Failed to resolve recipient")
		return nil, domain.NewPersistenceError(err)
	}

	r.logger.Debug().
		Str("kind", string(id.Kind)).
		Str("account_id", account.ID).
		Str("matched", matched(account, id.Kind)).
		Msg("Recipient resolved")
	return account, nil
}

func matched(a *domain.Account, kind identifier.Kind) string {
	if kind == identifier.KindEmail {
		return a.Email
	}
	return a.Phone
}
