package memstore

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Khin-96/pochi-sub000/internal/domain"
)

type accountRepository struct {
	s *Store
}

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	defer r.s.lock()()

	for _, a := range r.s.st.accounts {
		if (account.Phone != "" && a.Phone == account.Phone) || (account.Email != "" && a.Email == account.Email) {
			return domain.ErrDuplicateAccount
		}
	}
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	if _, ok := r.s.st.accounts[account.ID]; ok {
		return domain.ErrDuplicateAccount
	}
	now := time.Now().UTC()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now
	r.s.st.accounts[account.ID] = *account
	return nil
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	defer r.s.lock()()

	a, ok := r.s.st.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return &a, nil
}

func (r *accountRepository) FindByPhone(ctx context.Context, phones ...string) (*domain.Account, error) {
	defer r.s.lock()()

	for _, phone := range phones {
		if phone == "" {
			continue
		}
		for _, a := range r.s.st.accounts {
			if a.Phone == phone {
				return &a, nil
			}
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *accountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	defer r.s.lock()()

	if email == "" {
		return nil, domain.ErrAccountNotFound
	}
	for _, a := range r.s.st.accounts {
		if a.Email == email {
			return &a, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *accountRepository) AdjustBalance(ctx context.Context, id string, delta int64) (int64, error) {
	defer r.s.lock()()

	a, ok := r.s.st.accounts[id]
	if !ok {
		return 0, domain.ErrAccountNotFound
	}
	if a.Balance+delta < 0 {
		return 0, domain.ErrInsufficientFunds
	}
	a.Balance += delta
	a.UpdatedAt = time.Now().UTC()
	r.s.st.accounts[id] = a
	return a.Balance, nil
}

func (r *accountRepository) TotalBalance(ctx context.Context) (int64, error) {
	defer r.s.lock()()

	var total int64
	for _, a := range r.s.st.accounts {
		total += a.Balance
	}
	return total, nil
}
