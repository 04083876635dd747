// Package auth holds the credential primitives: bcrypt password hashing
// and HS256 access/refresh tokens.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/sirpyerre/task-manager/internal/core/domain"
	"github.com/sirpyerre/task-manager/internal/core/ports"
)

const (
	typeAccess  = "access"
	typeRefresh = "refresh"

	defaultIssuer = "task-manager-api"
)

// TokenConfig holds secrets and lifetimes for both token types.
type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
	// Now overrides the clock. Nil means time.Now.
	Now func() time.Time
}

type claims struct {
	Role string `json:"role"`
	Type string `json:"typ"`
	jwt.RegisteredClaims
}

// JWTService implements ports.TokenService.
type JWTService struct {
	cfg TokenConfig
}

var _ ports.TokenService = (*JWTService)(nil)

func NewJWTService(cfg TokenConfig) (*JWTService, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, errors.New("auth: token secrets must not be empty")
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, errors.New("auth: access and refresh secrets must differ")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("auth: token lifetimes must be positive")
	}
	if cfg.Issuer == "" {
		cfg.Issuer = defaultIssuer
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &JWTService{cfg: cfg}, nil
}

func (s *JWTService) IssueAccess(p domain.Principal) (string, error) {
	return s.issue(p, typeAccess, s.cfg.AccessSecret, s.cfg.AccessTTL)
}

func (s *JWTService) IssueRefresh(p domain.Principal) (string, error) {
	return s.issue(p, typeRefresh, s.cfg.RefreshSecret, s.cfg.RefreshTTL)
}

func (s *JWTService) VerifyAccess(token string) (*ports.TokenClaims, error) {
	return s.verify(token, typeAccess, s.cfg.AccessSecret)
}

func (s *JWTService) VerifyRefresh(token string) (*ports.TokenClaims, error) {
	return s.verify(token, typeRefresh, s.cfg.RefreshSecret)
}

func (s *JWTService) issue(p domain.Principal, typ, secret string, ttl time.Duration) (string, error) {
	if p.UserID == "" || !p.Role.Valid() {
		return "", errors.New("auth: principal requires a user id and a known role")
	}

	now := s.cfg.Now().UTC()
	c := claims{
		Role: string(p.Role),
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			Issuer:    s.cfg.Issuer,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
}

func (s *JWTService) verify(token, typ, secret string) (*ports.TokenClaims, error) {
	if token == "" {
		return nil, domain.ErrInvalidToken
	}

	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithTimeFunc(s.cfg.Now),
	)
	if err != nil || !parsed.Valid {
		return nil, domain.ErrInvalidToken
	}
	if c.Type != typ || c.Subject == "" {
		return nil, domain.ErrInvalidToken
	}
	role, ok := domain.ParseRole(c.Role)
	if !ok || string(role) != c.Role {
		return nil, domain.ErrInvalidToken
	}

	out := &ports.TokenClaims{
		Subject: c.Subject,
		Role:    role,
		TokenID: c.ID,
	}
	if c.IssuedAt != nil {
		out.IssuedAt = c.IssuedAt.Time
	}
	out.ExpiresAt = c.ExpiresAt.Time
	return out, nil
}
