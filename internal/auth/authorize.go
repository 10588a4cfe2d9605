package auth

import "strings"

// RoleAdmin is the administrator role label. Comparison is always
// case-insensitive and whitespace-trimmed.
const RoleAdmin = "admin"

// permAdmin is the permission tag that grants the same reach as the role.
const permAdmin = "admin"

// Action identifies a gated operation.
type Action string

// ActionOrdersList governs row visibility when listing service orders.
const ActionOrdersList Action = "ordenes:listar"

// grantAll maps each action to the permission tag that widens it to every
// row. Future gated actions register here instead of growing ad hoc
// isAdmin checks in handlers.
var grantAll = map[Action]string{
	ActionOrdersList: "ordenes:ver_todas",
}

// Scope is the row-visibility half of an authorization decision.
type Scope int

const (
	// ScopeOwn limits the operation to rows owned by the caller.
	ScopeOwn Scope = iota
	// ScopeAll allows the operation over every row.
	ScopeAll
)

// Decision is the outcome of evaluating claims against an action.
type Decision struct {
	Scope   Scope
	OwnerID int64
}

// ViewAll reports whether the decision covers every row.
func (d Decision) ViewAll() bool { return d.Scope == ScopeAll }

// Decide evaluates the canonical rule: full scope when the role is admin,
// or the normalized permission set carries the admin tag or the action's
// grant-all tag. Everything else narrows to the caller's own rows.
func Decide(claims *Claims, action Action) Decision {
	if claims == nil {
		return Decision{Scope: ScopeOwn}
	}
	role := strings.ToLower(strings.TrimSpace(claims.Role))
	permisos := NormalizePermisos(claims.Permisos)

	if role == RoleAdmin {
		return Decision{Scope: ScopeAll}
	}
	if _, ok := permisos[permAdmin]; ok {
		return Decision{Scope: ScopeAll}
	}
	if tag := grantAll[action]; tag != "" {
		if _, ok := permisos[tag]; ok {
			return Decision{Scope: ScopeAll}
		}
	}
	return Decision{Scope: ScopeOwn, OwnerID: claims.UserID}
}

// IsAdmin reports whether the claims carry administrator reach, by role or
// by permission tag.
func IsAdmin(claims *Claims) bool {
	if claims == nil {
		return false
	}
	if strings.ToLower(strings.TrimSpace(claims.Role)) == RoleAdmin {
		return true
	}
	_, ok := NormalizePermisos(claims.Permisos)[permAdmin]
	return ok
}
