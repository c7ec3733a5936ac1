package transfer

import (
	"context"
	"sort"

	"github.com/Khin-96/pochi-sub000/internal/domain"
)

// FrequentRecipients aggregates the caller's completed sends by recipient
// account, most frequent first.
func (s *TransferService) FrequentRecipients(ctx context.Context, callerID string, limit int) ([]FrequentRecipient, error) {
	account, err := s.caller(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultFrequentLimit
	}
	if limit > MaxFrequentLimit {
		limit = MaxFrequentLimit
	}

	records, err := s.store.Transactions().ListByType(ctx, account.ID, domain.TypeSend)
	if err != nil {
		s.logger.Error().Err(err).Str("account_id", account.ID).Msg("Failed to load send history")
		return nil, domain.NewPersistenceError(err)
	}

	byRecipient := make(map[string]*FrequentRecipient)
	var order []string
	// records arrive newest first, so the first sighting holds the most
	// recent identifier and name.
	for _, rec := range records {
		if rec.Status != domain.StatusCompleted {
			continue
		}
		key := rec.CounterpartyAccountID
		if key == "" {
			key = rec.Counterparty
		}
		fr, ok := byRecipient[key]
		if !ok {
			fr = &FrequentRecipient{
				Identifier: rec.Counterparty,
				Name:       rec.CounterpartyName,
				LastSentAt: rec.CreatedAt,
			}
			byRecipient[key] = fr
			order = append(order, key)
		}
		fr.Count++
		fr.TotalAmount += rec.Amount
	}

	out := make([]FrequentRecipient, 0, len(order))
	for _, key := range order {
		out = append(out, *byRecipient[key])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if out[i].TotalAmount != out[j].TotalAmount {
			return out[i].TotalAmount > out[j].TotalAmount
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *TransferService) History(ctx context.Context, callerID string, limit, offset int) (*History, error) {
	account, err := s.caller(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if offset < 0 {
		return nil, domain.NewValidationError(map[string]string{"offset": "must not be negative"})
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	records, err := s.store.Transactions().ListByAccount(ctx, account.ID, limit, offset)
	if err != nil {
		return nil, domain.NewPersistenceError(err)
	}
	total, err := s.store.Transactions().CountByAccount(ctx, account.ID)
	if err != nil {
		return nil, domain.NewPersistenceError(err)
	}
	if records == nil {
		records = []domain.TransactionRecord{}
	}
	return &History{
		Transactions: records,
		Total:        total,
		Limit:        limit,
		Offset:       offset,
	}, nil
}
