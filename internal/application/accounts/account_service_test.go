package accounts

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Khin-96/pochi-sub000/internal/application/ledger"
	"github.com/Khin-96/pochi-sub000/internal/application/recorder"
	"github.com/Khin-96/pochi-sub000/internal/domain"
	"github.com/Khin-96/pochi-sub000/internal/repositories/memstore"
	"github.com/Khin-96/pochi-sub000/pkg/config"
	"github.com/Khin-96/pochi-sub000/pkg/identifier"
)

func newService(initial int64) (*AccountService, *memstore.Store) {
	s := memstore.New()
	cfg := config.Default().Transfer
	cfg.InitialBalance = initial
	logger := zerolog.Nop()
	return NewAccountService(s, ledger.New(logger), recorder.New(cfg.Currency, logger), identifier.Default(), cfg, logger), s
}

func TestOpenNormalizesAndFunds(t *testing.T) {
	svc, s := newService(500000)
	ctx := context.Background()

	a, err := svc.Open(ctx, OpenRequest{Name: " Wanjiru ", Phone: "0712 345 678", Email: "Wanjiru@Example.com"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if a.Name != "Wanjiru" || a.Phone != "+254712345678" || a.Email != "wanjiru@example.com" || a.Balance != 500000 {
		t.Fatalf("unexpected account: %+v", a)
	}

	recs, _ := s.Transactions().ListByAccount(ctx, a.ID, 10, 0)
	if len(recs) != 1 || recs[0].Type != domain.TypeDeposit || recs[0].Amount != 500000 {
		t.Fatalf("unexpected opening records: %+v", recs)
	}
}

func TestOpenWithoutInitialBalance(t *testing.T) {
	svc, s := newService(0)
	a, err := svc.Open(context.Background(), OpenRequest{Name: "Otieno", Email: "otieno@example.com"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if n, _ := s.Transactions().CountByAccount(context.Background(), a.ID); n != 0 || a.Balance != 0 {
		t.Fatalf("expected empty account, got balance=%d records=%d", a.Balance, n)
	}
}

func TestOpenRejects(t *testing.T) {
	svc, _ := newService(100)
	ctx := context.Background()
	if _, err := svc.Open(ctx, OpenRequest{Name: "A", Phone: "0712345678"}); err != nil {
		t.Fatalf("open: %v", err)
	}

	if _, err := svc.Open(ctx, OpenRequest{Name: "B", Phone: "+254712345678"}); !errors.Is(err, domain.ErrDuplicateAccount) {
		t.Fatalf("expected duplicate account, got %v", err)
	}
	for _, req := range []OpenRequest{
		{Phone: "0722000000"},
		{Name: "No contact"},
		{Name: "Bad email", Email: "nope"},
	} {
		if _, err := svc.Open(ctx, req); domain.CodeOf(err) != domain.CodeValidation {
			t.Errorf("Open(%+v): expected validation error, got %v", req, err)
		}
	}
}
