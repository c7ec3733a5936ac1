package memstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Khin-96/pochi-sub000/internal/domain"
	"github.com/Khin-96/pochi-sub000/internal/repositories/store"
)

func seed(t *testing.T, s *Store, phone string, balance int64) *domain.Account {
	t.Helper()
	a := &domain.Account{Name: phone, Phone: phone, Balance: balance}
	if err := s.Accounts().Create(context.Background(), a); err != nil {
		t.Fatalf("create account: %v", err)
	}
	return a
}

func TestAdjustBalanceRejectsOverdraft(t *testing.T) {
	ctx := context.Background()
	s := New()
	a := seed(t, s, "+254700000001", 100)

	if _, err := s.Accounts().AdjustBalance(ctx, a.ID, -101); !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	got, err := s.Accounts().AdjustBalance(ctx, a.ID, -100)
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if got != 0 {
		t.Fatalf("balance = %d, want 0", got)
	}
	if _, err := s.Accounts().AdjustBalance(ctx, "missing", 1); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected account not found, got %v", err)
	}
}

func TestCreateRejectsDuplicatePhone(t *testing.T) {
	s := New()
	seed(t, s, "+254700000001", 0)
	err := s.Accounts().Create(context.Background(), &domain.Account{Name: "dup", Phone: "+254700000001"})
	if !errors.Is(err, domain.ErrDuplicateAccount) {
		t.Fatalf("expected duplicate, got %v", err)
	}
}

func TestFindByPhoneTriesCandidatesInOrder(t *testing.T) {
	s := New()
	legacy := seed(t, s, "0712345678", 0)
	canonical := seed(t, s, "+254712345678", 0)

	got, err := s.Accounts().FindByPhone(context.Background(), "+254712345678", "0712345678")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.ID != canonical.ID {
		t.Fatalf("got %s, want canonical account", got.ID)
	}
	got, err = s.Accounts().FindByPhone(context.Background(), "+254799999999", "0712345678")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.ID != legacy.ID {
		t.Fatalf("got %s, want legacy account", got.ID)
	}
}

func TestExecTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := New()
	a := seed(t, s, "+254700000001", 500)
	boom := errors.New("boom")

	err := s.ExecTx(ctx, func(tx store.Store) error {
		if _, err := tx.Accounts().AdjustBalance(ctx, a.ID, -200); err != nil {
			return err
		}
		if err := tx.Transactions().Create(ctx, &domain.TransactionRecord{AccountID: a.ID, Type: domain.TypeSend, Amount: 200}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	got, _ := s.Accounts().GetByID(ctx, a.ID)
	if got.Balance != 500 {
		t.Fatalf("balance = %d, want 500 after rollback", got.Balance)
	}
	if n, _ := s.Transactions().CountByAccount(ctx, a.ID); n != 0 {
		t.Fatalf("records = %d, want 0 after rollback", n)
	}
}

func TestExecTxRejectsNesting(t *testing.T) {
	ctx := context.Background()
	s := New()
	err := s.ExecTx(ctx, func(tx store.Store) error {
		return tx.ExecTx(ctx, func(store.Store) error { return nil })
	})
	if !errors.Is(err, store.ErrNestedTx) {
		t.Fatalf("expected nested tx error, got %v", err)
	}
}

func TestConcurrentDebitsNeverOverdraw(t *testing.T) {
	ctx := context.Background()
	s := New()
	a := seed(t, s, "+254700000001", 1000)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Accounts().AdjustBalance(ctx, a.ID, -100); err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if success != 10 {
		t.Fatalf("successful debits = %d, want 10", success)
	}
	got, _ := s.Accounts().GetByID(ctx, a.ID)
	if got.Balance != 0 {
		t.Fatalf("balance = %d, want 0", got.Balance)
	}
}

func TestIdempotencyClaim(t *testing.T) {
	ctx := context.Background()
	repo := New().Idempotency()

	_, claimed, err := repo.Claim(ctx, "acc", "k1", "h1", time.Time{})
	if err != nil || !claimed {
		t.Fatalf("first claim: claimed=%v err=%v", claimed, err)
	}
	entry, claimed, _ := repo.Claim(ctx, "acc", "k1", "h1", time.Time{})
	if claimed || entry.Completed() {
		t.Fatalf("second claim should see an in-flight entry")
	}
	if err := repo.Complete(ctx, "acc", "k1", 200, []byte(`{"ok":true}`)); err != nil {
		t.Fatalf("complete: %v", err)
	}
	entry, claimed, _ = repo.Claim(ctx, "acc", "k1", "h1", time.Time{})
	if claimed || !entry.Completed() || entry.ResponseStatus != 200 {
		t.Fatalf("expected completed entry, got %+v", entry)
	}

	_, _, _ = repo.Claim(ctx, "acc", "k2", "h2", time.Time{})
	_ = repo.Release(ctx, "acc", "k2")
	if _, claimed, _ := repo.Claim(ctx, "acc", "k2", "h2", time.Time{}); !claimed {
		t.Fatalf("released key should be claimable again")
	}
}

func TestIdempotencyClaimTakesOverAbandonedEntries(t *testing.T) {
	ctx := context.Background()
	repo := New().Idempotency()

	if _, claimed, _ := repo.Claim(ctx, "acc", "k1", "h1", time.Time{}); !claimed {
		t.Fatal("first claim should succeed")
	}
	if _, claimed, _ := repo.Claim(ctx, "acc", "k1", "h1", time.Now().Add(-time.Minute)); claimed {
		t.Fatal("a fresh in-flight claim must not be taken over")
	}

	entry, claimed, err := repo.Claim(ctx, "acc", "k1", "h2", time.Now().Add(time.Second))
	if err != nil || !claimed {
		t.Fatalf("stale claim: claimed=%v err=%v", claimed, err)
	}
	if entry.RequestHash != "h2" {
		t.Fatalf("RequestHash = %q, want h2", entry.RequestHash)
	}

	if err := repo.Complete(ctx, "acc", "k1", 200, []byte(`{}`)); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, claimed, _ := repo.Claim(ctx, "acc", "k1", "h2", time.Now().Add(time.Hour)); claimed {
		t.Fatal("completed entries never expire into a new claim")
	}
}

func TestExecTxRollsBackWhenContextEnds(t *testing.T) {
	s := New()
	a := seed(t, s, "+254700000001", 1000)

	ctx, cancel := context.WithCancel(context.Background())
	err := s.ExecTx(ctx, func(tx store.Store) error {
		if _, err := tx.Accounts().AdjustBalance(ctx, a.ID, -400); err != nil {
			return err
		}
		cancel()
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}

	got, _ := s.Accounts().GetByID(context.Background(), a.ID)
	if got.Balance != 1000 {
		t.Fatalf("balance = %d, want 1000", got.Balance)
	}
}
