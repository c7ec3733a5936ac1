package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Khin-96/pochi-sub000/internal/domain"
	"github.com/Khin-96/pochi-sub000/internal/repositories/memstore"
	"github.com/Khin-96/pochi-sub000/pkg/identifier"
)

func TestResolvePhoneAcrossStoredFormats(t *testing.T) {
	ctx := context.Background()
	r := New(identifier.Default(), zerolog.Nop())

	for _, stored := range []string{"+254712345678", "254712345678", "0712345678"} {
		t.Run(stored, func(t *testing.T) {
			s := memstore.New()
			want := &domain.Account{Name: "Baraka", Phone: stored}
			if err := s.Accounts().Create(ctx, want); err != nil {
				t.Fatalf("create: %v", err)
			}
			for _, input := range []string{"+254712345678", "254712345678", "0712345678", "712345678", "0712 345 678"} {
				got, err := r.Resolve(ctx, s.Accounts(), identifier.Phone(input))
				if err != nil {
					t.Fatalf("Resolve(%q): %v", input, err)
				}
				if got.ID != want.ID {
					t.Fatalf("Resolve(%q) = %s, want %s", input, got.ID, want.ID)
				}
			}
		})
	}
}

func TestResolveEmailIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	want := &domain.Account{Name: "User", Email: "user@example.com"}
	_ = s.Accounts().Create(ctx, want)

	r := New(identifier.Default(), zerolog.Nop())
	got, err := r.Resolve(ctx, s.Accounts(), identifier.Email("  User@Example.com "))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.ID != want.ID {
		t.Fatalf("got %s, want %s", got.ID, want.ID)
	}
}

func TestResolveNotFound(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	_ = s.Accounts().Create(ctx, &domain.Account{Name: "B", Phone: "+254712345678"})
	r := New(identifier.Default(), zerolog.Nop())

	for _, id := range []identifier.Identifier{
		identifier.Phone("0799999999"),
		identifier.Phone(""),
		identifier.Email("nobody@example.com"),
	} {
		if _, err := r.Resolve(ctx, s.Accounts(), id); !errors.Is(err, domain.ErrRecipientNotFound) {
			t.Errorf("Resolve(%+v): expected recipient not found, got %v", id, err)
		}
	}
}
