package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirpyerre/task-manager/internal/core/domain"
	"github.com/sirpyerre/task-manager/internal/core/ports"
)

type stubUserRepo struct {
	mu      sync.Mutex
	users   map[string]*domain.User
	nextID  int
	findErr error
	// createErr simulates the unique index rejecting a concurrent insert.
	createErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) add(u domain.User) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == "" {
		r.nextID++
		u.ID = fmt.Sprintf("%024d", r.nextID)
	}
	r.users[u.ID] = cloneUser(&u)
	return cloneUser(&u)
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.mu.Lock()
	for _, u := range r.users {
		if u.Email == user.Email {
			r.mu.Unlock()
			return nil, domain.ErrEmailTaken
		}
	}
	r.mu.Unlock()
	created := r.add(*user)
	created.PasswordHash = ""
	return created, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := cloneUser(u)
	clone.PasswordHash = ""
	return clone, nil
}

func (r *stubUserRepo) List(_ context.Context, f ports.UserFilter) ([]domain.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []domain.User
	for _, u := range r.users {
		if f.Role != nil && u.Role != *f.Role {
			continue
		}
		if f.Status != nil && u.Status != *f.Status {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(u.Email+u.FullName), strings.ToLower(f.Search)) {
			continue
		}
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	start := (f.Page - 1) * f.Limit
	if start > len(all) {
		start = len(all)
	}
	end := start + f.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

func (r *stubUserRepo) Update(_ context.Context, id string, upd ports.UserUpdate) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if upd.FullName != nil {
		u.FullName = *upd.FullName
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	if upd.Status != nil {
		u.Status = *upd.Status
	}
	clone := cloneUser(u)
	clone.PasswordHash = ""
	return clone, nil
}

// plainHasher keeps tests fast; it is not a real hash.
type plainHasher struct {
	verified int
	lastHash string
	hashErr  error
}

func (h *plainHasher) Hash(p string) (string, error) {
	if h.hashErr != nil {
		return "", h.hashErr
	}
	return "hashed:" + p, nil
}

func (h *plainHasher) Verify(p, hash string) bool {
	h.verified++
	h.lastHash = hash
	return hash == "hashed:"+p
}

type countingMetrics struct {
	mu    sync.Mutex
	auth  map[string]int
	tasks map[string]int
}

func (m *countingMetrics) AuthAttempt(operation, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.auth == nil {
		m.auth = make(map[string]int)
	}
	m.auth[operation+"/"+outcome]++
}

func (m *countingMetrics) TaskOperation(operation string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tasks == nil {
		m.tasks = make(map[string]int)
	}
	m.tasks[operation]++
}

type fakeTokens struct {
	mu     sync.Mutex
	seq    int
	claims map[string]ports.TokenClaims
	kinds  map[string]string
	now    time.Time
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{
		claims: make(map[string]ports.TokenClaims),
		kinds:  make(map[string]string),
		now:    time.Now(),
	}
}

func (f *fakeTokens) issue(p domain.Principal, kind string, ttl time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	tok := fmt.Sprintf("%s-%d", kind, f.seq)
	f.claims[tok] = ports.TokenClaims{
		Subject:   p.UserID,
		Role:      p.Role,
		TokenID:   fmt.Sprintf("jti-%d", f.seq),
		IssuedAt:  f.now,
		ExpiresAt: f.now.Add(ttl),
	}
	f.kinds[tok] = kind
	return tok, nil
}

func (f *fakeTokens) verify(tok, kind string) (*ports.TokenClaims, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.claims[tok]
	if !ok || f.kinds[tok] != kind {
		return nil, domain.ErrInvalidToken
	}
	return &c, nil
}

func (f *fakeTokens) IssueAccess(p domain.Principal) (string, error) {
	return f.issue(p, "access", 15*time.Minute)
}

func (f *fakeTokens) IssueRefresh(p domain.Principal) (string, error) {
	return f.issue(p, "refresh", 7*24*time.Hour)
}

func (f *fakeTokens) VerifyAccess(tok string) (*ports.TokenClaims, error) {
	return f.verify(tok, "access")
}

func (f *fakeTokens) VerifyRefresh(tok string) (*ports.TokenClaims, error) {
	return f.verify(tok, "refresh")
}

type stubRevocations struct {
	revoked map[string]time.Duration
	err     error
}

func newStubRevocations() *stubRevocations {
	return &stubRevocations{revoked: make(map[string]time.Duration)}
}

func (s *stubRevocations) Revoke(_ context.Context, id string, ttl time.Duration) error {
	if s.err != nil {
		return s.err
	}
	s.revoked[id] = ttl
	return nil
}

func (s *stubRevocations) IsRevoked(_ context.Context, id string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	_, ok := s.revoked[id]
	return ok, nil
}

type recordingAudit struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func (a *recordingAudit) Record(_ context.Context, e domain.AuditEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
}

func (a *recordingAudit) last() domain.AuditEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.events) == 0 {
		return domain.AuditEvent{}
	}
	return a.events[len(a.events)-1]
}
