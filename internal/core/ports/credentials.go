package ports

import (
	"context"
	"time"

	"github.com/sirpyerre/task-manager/internal/core/domain"
)

// TokenClaims is the verified content of an access or refresh token.
type TokenClaims struct {
	Subject   string
	Role      domain.Role
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Principal returns the identity the token is bound to.
func (c *TokenClaims) Principal() domain.Principal {
	return domain.Principal{UserID: c.Subject, Role: c.Role}
}

// TokenService issues and verifies signed tokens. Verification failures are
// always domain.ErrInvalidToken.
type TokenService interface {
	IssueAccess(p domain.Principal) (string, error)
	IssueRefresh(p domain.Principal) (string, error)
	VerifyAccess(token string) (*TokenClaims, error)
	VerifyRefresh(token string) (*TokenClaims, error)
}

type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// RevocationStore remembers refresh tokens that must no longer be honoured.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
