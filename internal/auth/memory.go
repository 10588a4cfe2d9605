package auth

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// InMemoryIdentities is an IdentityStore kept in process memory. It backs
// the HTTP tests and local development without a database.
type InMemoryIdentities struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]*memIdentity
}

type memIdentity struct {
	ident Identity
	hash  string
}

// NewInMemoryIdentities creates an empty identity store.
func NewInMemoryIdentities() *InMemoryIdentities {
	return &InMemoryIdentities{byID: make(map[int64]*memIdentity)}
}

func (s *InMemoryIdentities) CreateIdentity(ctx context.Context, ident *Identity, passwordHash string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.byID {
		if rec.ident.Username == ident.Username || strings.EqualFold(rec.ident.Email, ident.Email) {
			return 0, ErrConflict
		}
	}
	s.nextID++
	ident.ID = s.nextID
	if ident.CreatedAt.IsZero() {
		ident.CreatedAt = time.Now().UTC()
	}
	copied := *ident
	s.byID[ident.ID] = &memIdentity{ident: copied, hash: passwordHash}
	return ident.ID, nil
}

func (s *InMemoryIdentities) FindByUsername(ctx context.Context, username string) (Identity, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// username matching is case-sensitive, exactly as stored
	for _, rec := range s.byID {
		if rec.ident.Username == username {
			return rec.ident, rec.hash, nil
		}
	}
	return Identity{}, "", ErrNotFound
}

func (s *InMemoryIdentities) FindByID(ctx context.Context, id int64) (Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byID[id]
	if !ok {
		return Identity{}, ErrNotFound
	}
	return rec.ident, nil
}

func (s *InMemoryIdentities) ListIdentities(ctx context.Context) ([]Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Identity, 0, len(s.byID))
	for _, rec := range s.byID {
		out = append(out, rec.ident)
	}
	// ordered by username, matching the SQL listing
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (s *InMemoryIdentities) UpdateRole(ctx context.Context, id int64, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	rec.ident.Role = role
	return nil
}

func (s *InMemoryIdentities) UpdatePermisos(ctx context.Context, id int64, permisos []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	rec.ident.Permisos = PermisoList(permisos)
	return nil
}
