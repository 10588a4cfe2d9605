package auth

import (
	"context"
	"errors"
	"strings"
	"time"
)

// IdentityStore describes the persistence the auth subsystem needs. The
// password hash travels separately from Identity so it can never leak into
// a JSON response by accident.
type IdentityStore interface {
	CreateIdentity(ctx context.Context, ident *Identity, passwordHash string) (int64, error)
	FindByUsername(ctx context.Context, username string) (Identity, string, error)
	FindByID(ctx context.Context, id int64) (Identity, error)
	ListIdentities(ctx context.Context) ([]Identity, error)
	UpdateRole(ctx context.Context, id int64, role string) error
	UpdatePermisos(ctx context.Context, id int64, permisos []string) error
}

// AuditFunc receives structured auth events (login, failed_login, register,
// register_failed). Writing them anywhere is the sink's problem.
type AuditFunc func(ctx context.Context, event string, fields map[string]any)

// Service implements registration and login on top of an IdentityStore.
type Service struct {
	store    IdentityStore
	tokenTTL time.Duration
	now      func() time.Time
	audit    AuditFunc
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithTokenTTL overrides the session token lifetime.
func WithTokenTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

// WithAuditFunc installs the audit event sink.
func WithAuditFunc(fn AuditFunc) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.audit = fn
		}
	}
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs Service with optional configuration.
func NewService(store IdentityStore, opts ...ServiceOption) *Service {
	svc := &Service{
		store:    store,
		tokenTTL: DefaultTokenTTL,
		now:      time.Now,
		audit:    func(context.Context, string, map[string]any) {},
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// TokenTTL returns the configured session lifetime.
func (s *Service) TokenTTL() time.Duration { return s.tokenTTL }

// Register creates a new identity. Username and email must both be unique;
// the role defaults to the non-privileged "user".
func (s *Service) Register(ctx context.Context, in RegisterInput) (int64, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.Role = strings.ToLower(strings.TrimSpace(in.Role))

	if in.FullName == "" || in.Username == "" || in.Email == "" || in.Password == "" {
		s.audit(ctx, "register_failed", map[string]any{
			"username": in.Username,
			"reason":   "missing_fields",
		})
		return 0, ErrInvalidInput
	}
	if !strings.Contains(in.Email, "@") {
		s.audit(ctx, "register_failed", map[string]any{
			"username": in.Username,
			"reason":   "invalid_email",
		})
		return 0, ErrInvalidInput
	}
	if in.Role == "" {
		in.Role = "user"
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return 0, err
	}

	ident := Identity{
		FullName: in.FullName,
		Username: in.Username,
		Email:    in.Email,
		Role:     in.Role,
	}
	id, err := s.store.CreateIdentity(ctx, &ident, hash)
	if err != nil {
		reason := "server_error"
		if errors.Is(err, ErrConflict) {
			reason = "duplicate_user_or_email"
		}
		s.audit(ctx, "register_failed", map[string]any{
			"username": in.Username,
			"reason":   reason,
		})
		return 0, err
	}

	s.audit(ctx, "register", map[string]any{
		"user_id":  id,
		"username": in.Username,
		"role":     in.Role,
	})
	return id, nil
}

// Login verifies credentials and mints a session token. The caller-visible
// error never reveals which half of the credential pair was wrong; the
// audit event carries the real reason.
func (s *Service) Login(ctx context.Context, username, password string) (LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return LoginResult{}, ErrInvalidCredentials
	}

	ident, hash, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.audit(ctx, "failed_login", map[string]any{
				"username": username,
				"reason":   "user_not_found",
			})
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}

	if err := VerifyPassword(hash, password); err != nil {
		s.audit(ctx, "failed_login", map[string]any{
			"user_id":  ident.ID,
			"username": username,
			"reason":   "bad_password",
		})
		return LoginResult{}, ErrInvalidCredentials
	}

	token, expiresAt, err := IssueToken(ident, s.tokenTTL)
	if err != nil {
		return LoginResult{}, err
	}

	s.audit(ctx, "login", map[string]any{
		"user_id":  ident.ID,
		"username": ident.Username,
		"role":     ident.Role,
	})
	return LoginResult{Token: token, ExpiresAt: expiresAt, User: ident}, nil
}

// Identities lists every account without password material.
func (s *Service) Identities(ctx context.Context) ([]Identity, error) {
	return s.store.ListIdentities(ctx)
}

// SetRole changes an identity's role. Only reachable through admin-gated
// transport paths.
func (s *Service) SetRole(ctx context.Context, id int64, role string) error {
	role = strings.ToLower(strings.TrimSpace(role))
	if id <= 0 || role == "" {
		return ErrInvalidInput
	}
	return s.store.UpdateRole(ctx, id, role)
}

// SetPermisos replaces an identity's permission tags with the normalized
// comma-joined form.
func (s *Service) SetPermisos(ctx context.Context, id int64, permisos []string) error {
	if id <= 0 {
		return ErrInvalidInput
	}
	return s.store.UpdatePermisos(ctx, id, permisos)
}
