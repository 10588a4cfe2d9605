package pg

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"flotanet.org/internal/auth"
)

var _ auth.IdentityStore = (*Store)(nil)

// Create inserts a new account. The permisos column holds the tags as a
// comma separated string, the shape the token layer accepts as-is.
func (s *Store) CreateIdentity(ctx context.Context, ident *auth.Identity, passwordHash string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		insert into usuarios (full_name, username, email, password_hash, area, role, permisos)
		values ($1, $2, $3, $4, $5, $6, $7)
		returning id
	`, ident.FullName, ident.Username, ident.Email, passwordHash,
		nullArea(ident.Area), ident.Role, joinCSV(ident.Permisos)).Scan(&id)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
			return 0, auth.ErrConflict
		}
		return 0, err
	}
	return id, nil
}

// FindByUsername returns the identity and its password hash. Lookups are
// exact; usernames are stored as entered.
func (s *Store) FindByUsername(ctx context.Context, username string) (auth.Identity, string, error) {
	row := s.db.QueryRowContext(ctx, `
		select id, full_name, username, email, password_hash, area, role, permisos, created_at
		from usuarios
		where username = $1
	`, username)
	return scanIdentityWithHash(row)
}

func (s *Store) FindByID(ctx context.Context, id int64) (auth.Identity, error) {
	row := s.db.QueryRowContext(ctx, `
		select id, full_name, username, email, password_hash, area, role, permisos, created_at
		from usuarios
		where id = $1
	`, id)
	ident, _, err := scanIdentityWithHash(row)
	return ident, err
}

func (s *Store) ListIdentities(ctx context.Context) ([]auth.Identity, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, full_name, username, email, area, role, permisos, created_at
		from usuarios
		order by username
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var idents []auth.Identity
	for rows.Next() {
		var (
			ident    auth.Identity
			area     sql.NullString
			permisos sql.NullString
		)
		if err := rows.Scan(&ident.ID, &ident.FullName, &ident.Username, &ident.Email,
			&area, &ident.Role, &permisos, &ident.CreatedAt); err != nil {
			return nil, err
		}
		if area.Valid {
			ident.Area = &area.String
		}
		ident.Permisos = splitCSV(permisos.String)
		idents = append(idents, ident)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return idents, nil
}

func (s *Store) UpdateRole(ctx context.Context, id int64, role string) error {
	res, err := s.db.ExecContext(ctx, `update usuarios set role = $2 where id = $1`, id, role)
	if err != nil {
		return err
	}
	return requireAffected(res, auth.ErrNotFound)
}

func (s *Store) UpdatePermisos(ctx context.Context, id int64, permisos []string) error {
	res, err := s.db.ExecContext(ctx, `update usuarios set permisos = $2 where id = $1`,
		id, joinCSV(permisos))
	if err != nil {
		return err
	}
	return requireAffected(res, auth.ErrNotFound)
}

func scanIdentityWithHash(row *sql.Row) (auth.Identity, string, error) {
	var (
		ident    auth.Identity
		hash     string
		area     sql.NullString
		permisos sql.NullString
	)
	err := row.Scan(&ident.ID, &ident.FullName, &ident.Username, &ident.Email,
		&hash, &area, &ident.Role, &permisos, &ident.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.Identity{}, "", auth.ErrNotFound
	}
	if err != nil {
		return auth.Identity{}, "", err
	}
	if area.Valid {
		ident.Area = &area.String
	}
	ident.Permisos = splitCSV(permisos.String)
	return ident, hash, nil
}

func nullArea(area *string) sql.NullString {
	if area == nil {
		return sql.NullString{}
	}
	return nullIfEmpty(*area)
}

func joinCSV(tags []string) string { return strings.Join(tags, ",") }

func splitCSV(raw string) auth.PermisoList {
	var out auth.PermisoList
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
