package driven

import "github.com/campushq/campuschat-core/internal/core/domain"

// AuthAdapter is the cryptographic half of authentication: password
// hashing and JWT signing. Session persistence lives in SessionStore.
type AuthAdapter interface {
	HashPassword(password string) (string, error)
	VerifyPassword(password, hash string) bool

	GenerateToken(claims *domain.TokenClaims) (string, error)
	ParseToken(token string) (*domain.TokenClaims, error)
}
