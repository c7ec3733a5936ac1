package authservice

import (
	"context"

	"github.com/Khin-96/pochi-sub000/internal/domain"
)

type IAuthService interface {
	// VerifyToken validates a session token and returns the caller's account.
	VerifyToken(ctx context.Context, tokenString string) (*domain.Account, error)
	GenerateToken(ctx context.Context, accountID string) (string, error)
}
