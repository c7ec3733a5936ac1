package ledger

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Khin-96/pochi-sub000/internal/domain"
	"github.com/Khin-96/pochi-sub000/internal/repositories/memstore"
)

func TestDebitAndCredit(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	a := &domain.Account{Name: "A", Phone: "+254700000001", Balance: 1000}
	_ = s.Accounts().Create(ctx, a)
	l := New(zerolog.Nop())

	if got, err := l.Debit(ctx, s.Accounts(), a.ID, 400); err != nil || got != 600 {
		t.Fatalf("debit = %d, %v; want 600", got, err)
	}
	if got, err := l.Credit(ctx, s.Accounts(), a.ID, 50); err != nil || got != 650 {
		t.Fatalf("credit = %d, %v; want 650", got, err)
	}
	if _, err := l.Debit(ctx, s.Accounts(), a.ID, 651); !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	got, _ := s.Accounts().GetByID(ctx, a.ID)
	if got.Balance != 650 {
		t.Fatalf("failed debit mutated balance: %d", got.Balance)
	}
}

func TestAdjustRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	l := New(zerolog.Nop())

	for _, amount := range []int64{0, -5} {
		if _, err := l.Debit(ctx, s.Accounts(), "x", amount); domain.CodeOf(err) != domain.CodeValidation {
			t.Errorf("Debit(%d): expected validation error, got %v", amount, err)
		}
	}
	if _, err := l.Adjust(ctx, s.Accounts(), "missing", 10); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected account not found, got %v", err)
	}
}

func TestConcurrentDebitsRespectBalance(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	a := &domain.Account{Name: "A", Phone: "+254700000001", Balance: 1000}
	_ = s.Accounts().Create(ctx, a)
	l := New(zerolog.Nop())

	amounts := []int64{300, 300, 300, 300, 250, 250, 100, 100, 50}
	var (
		wg        sync.WaitGroup
		succeeded atomic.Int64
	)
	for _, amount := range amounts {
		wg.Add(1)
		go func(amount int64) {
			defer wg.Done()
			if _, err := l.Debit(ctx, s.Accounts(), a.ID, amount); err == nil {
				succeeded.Add(amount)
			} else if !errors.Is(err, domain.ErrInsufficientFunds) {
				t.Errorf("unexpected error: %v", err)
			}
		}(amount)
	}
	wg.Wait()

	got, _ := s.Accounts().GetByID(ctx, a.ID)
	if got.Balance < 0 {
		t.Fatalf("balance went negative: %d", got.Balance)
	}
	if got.Balance+succeeded.Load() != 1000 {
		t.Fatalf("balance %d + debited %d != 1000", got.Balance, succeeded.Load())
	}
}
