package authservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/Khin-96/pochi-sub000/internal/domain"
	"github.com/Khin-96/pochi-sub000/internal/repositories/accountrepo"
	"github.com/Khin-96/pochi-sub000/pkg/config"
)

type AuthService struct {
	config   config.JWTConfig
	logger   zerolog.Logger
	accounts accountrepo.IAccountRepository
	now      func() time.Time
}

func NewAuthService(cfg config.JWTConfig, logger zerolog.Logger, accounts accountrepo.IAccountRepository) *AuthService {
	return &AuthService{
		config:   cfg,
		logger:   logger,
		accounts: accounts,
		now:      time.Now,
	}
}

func (s *AuthService) VerifyToken(ctx context.Context, tokenString string) (*domain.Account, error) {
	if tokenString == "" {
		return nil, domain.ErrUnauthenticated
	}
	if s.config.Secret == "" {
		s.logger.Error().Msg("JWT secret not configured")
		return nil, fmt.Errorf("JWT secret not configured")
	}

	claims := &domain.Claim{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	},
		jwt.WithIssuer(s.config.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		s.logger.Debug().Err(err).Msg("Rejected session token")
		return nil, domain.ErrUnauthenticated
	}

	accountID := claims.AccountID
	if accountID == "" {
		accountID = claims.Subject
	}

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			s.logger.Debug().Str("account_id", accountID).Msg("Token refers to unknown account")
			return nil, domain.ErrUnauthenticated
		}
		return nil, domain.NewPersistenceError(err)
	}
	return account, nil
}

func (s *AuthService) GenerateToken(ctx context.Context, accountID string) (string, error) {
	if s.config.Secret == "" {
		s.logger.Error().Msg("JWT secret not configured")
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := s.now()
	claim := &domain.Claim{
		AccountID: accountID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.config.Issuer,
			Subject:   accountID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claim)
	tokenString, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		s.logger.Error().Err(err).Str("account_id", accountID).Msg("Failed to sign token")
		return "", fmt.Errorf("failed to sign token: %v", err)
	}
	return tokenString, nil
}
