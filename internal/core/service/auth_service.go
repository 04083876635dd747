package service

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/sirpyerre/task-manager/internal/core/domain"
	"github.com/sirpyerre/task-manager/internal/core/ports"
)

// timingPassword is hashed at construction and compared against on unknown
// emails so a miss costs the same as a wrong password.
const timingPassword = "task-manager-timing-equaliser"

// AuthService implements registration, login, token refresh and logout.
type AuthService struct {
	users   ports.UserRepository
	hasher  ports.PasswordHasher
	tokens  ports.TokenService
	revoked ports.RevocationStore
	audit   ports.AuditRecorder
	counter ports.OperationCounter
	log     zerolog.Logger
	now     func() time.Time

	dummyHash string
}

var _ ports.AuthService = (*AuthService)(nil)

func NewAuthService(
	users ports.UserRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenService,
	revoked ports.RevocationStore,
	audit ports.AuditRecorder,
	counter ports.OperationCounter,
	log zerolog.Logger,
) (*AuthService, error) {
	dummy, err := hasher.Hash(timingPassword)
	if err != nil {
		return nil, errors.Wrap(err, "auth service: timing hash")
	}
	return &AuthService{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		revoked:   revoked,
		audit:     audit,
		counter:   counter,
		log:       log,
		now:       time.Now,
		dummyHash: dummy,
	}, nil
}

// Register creates an ACTIVE identity with role USER.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	email := domain.NormalizeEmail(in.Email)

	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		s.outcome(ctx, domain.AuditRegister, "register", "", "email_taken")
		return nil, domain.ErrEmailTaken
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, errors.Wrap(err, "register: lookup email")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, errors.Wrap(err, "register: hash password")
	}

	now := s.now().UTC()
	created, err := s.users.Create(ctx, &domain.User{
		FullName:     strings.TrimSpace(in.FullName),
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		Status:       domain.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			s.outcome(ctx, domain.AuditRegister, "register", "", "email_taken")
			return nil, domain.ErrEmailTaken
		}
		return nil, errors.Wrap(err, "register: create user")
	}

	s.outcome(ctx, domain.AuditRegister, "register", created.ID, domain.OutcomeSuccess)
	s.log.Info().Str("user_id", created.ID).Msg("user registered")
	return created, nil
}

// Login verifies credentials and issues an access/refresh pair. Unknown
// email and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	user, err := s.users.FindByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.hasher.Verify(password, s.dummyHash)
			s.outcome(ctx, domain.AuditLogin, "login", "", "invalid_credentials")
			return nil, domain.ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, "login: lookup email")
	}

	if !user.Active() {
		s.outcome(ctx, domain.AuditLogin, "login", user.ID, "inactive")
		return nil, domain.ErrAccountInactive
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		s.outcome(ctx, domain.AuditLogin, "login", user.ID, "invalid_credentials")
		return nil, domain.ErrInvalidCredentials
	}

	p := domain.Principal{UserID: user.ID, Role: user.Role}
	access, err := s.tokens.IssueAccess(p)
	if err != nil {
		return nil, errors.Wrap(err, "login: issue access token")
	}
	refresh, err := s.tokens.IssueRefresh(p)
	if err != nil {
		return nil, errors.Wrap(err, "login: issue refresh token")
	}

	user.PasswordHash = ""
	s.outcome(ctx, domain.AuditLogin, "login", user.ID, domain.OutcomeSuccess)
	return &ports.LoginResult{AccessToken: access, RefreshToken: refresh, User: user}, nil
}

// Refresh exchanges a valid refresh token for a new access token bound to
// the identity's current role. The refresh token itself is not rotated.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*ports.RefreshResult, error) {
	if refreshToken == "" {
		s.outcome(ctx, domain.AuditRefresh, "refresh", "", "missing_token")
		return nil, domain.ErrRefreshTokenRequired
	}

	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		s.outcome(ctx, domain.AuditRefresh, "refresh", "", "invalid_token")
		return nil, domain.ErrInvalidRefreshToken
	}

	revoked, err := s.revoked.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		return nil, errors.Wrap(err, "refresh: revocation check")
	}
	if revoked {
		s.outcome(ctx, domain.AuditRefresh, "refresh", claims.Subject, "revoked")
		return nil, domain.ErrInvalidRefreshToken
	}

	user, err := s.users.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.outcome(ctx, domain.AuditRefresh, "refresh", claims.Subject, "user_gone")
			return nil, domain.ErrRefreshSubjectGone
		}
		return nil, errors.Wrap(err, "refresh: lookup user")
	}
	if !user.Active() {
		s.outcome(ctx, domain.AuditRefresh, "refresh", user.ID, "inactive")
		return nil, domain.ErrAccountInactive
	}

	p := domain.Principal{UserID: user.ID, Role: user.Role}
	access, err := s.tokens.IssueAccess(p)
	if err != nil {
		return nil, errors.Wrap(err, "refresh: issue access token")
	}

	s.outcome(ctx, domain.AuditRefresh, "refresh", user.ID, domain.OutcomeSuccess)
	return &ports.RefreshResult{AccessToken: access, Principal: p}, nil
}

// Logout revokes the refresh token for the rest of its lifetime. Tokens
// that do not verify are ignored.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		s.log.Debug().Msg("logout with unverifiable refresh token ignored")
		return nil
	}

	ttl := claims.ExpiresAt.Sub(s.now())
	if err := s.revoked.Revoke(ctx, claims.TokenID, ttl); err != nil {
		return errors.Wrap(err, "logout: revoke refresh token")
	}

	s.outcome(ctx, domain.AuditLogout, "logout", claims.Subject, domain.OutcomeSuccess)
	return nil
}

// outcome counts the operation and records an audit event for it.
func (s *AuthService) outcome(ctx context.Context, action domain.AuditAction, op, userID, outcome string) {
	if s.counter != nil {
		s.counter.AuthAttempt(op, outcome)
	}

	result := domain.OutcomeSuccess
	detail := ""
	if outcome != domain.OutcomeSuccess {
		result = domain.OutcomeFailure
		detail = outcome
	}
	record(ctx, s.audit, domain.AuditEvent{
		Action:   action,
		ActorID:  userID,
		TargetID: userID,
		Outcome:  result,
		Detail:   detail,
	})
}

func record(ctx context.Context, audit ports.AuditRecorder, event domain.AuditEvent) {
	if audit == nil {
		return
	}
	audit.Record(ctx, event)
}
