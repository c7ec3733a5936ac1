package domain

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claim identifies the caller. Subject carries the account id.
type Claim struct {
	AccountID string `json:"account_id"`
	jwt.RegisteredClaims
}
