package auth

import "time"

// Identity represents one account that can authenticate against the API:
// an operator ("maquinista"), a regular user or an administrator.
type Identity struct {
	ID        int64       `json:"id"`
	FullName  string      `json:"full_name"`
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	Area      *string     `json:"area,omitempty"`
	Role      string      `json:"role"`
	Permisos  PermisoList `json:"permisos"`
	CreatedAt time.Time   `json:"created_at"`
}

// RegisterInput carries the fields accepted by the registration endpoint.
// Role is optional and defaults to the non-privileged "user".
type RegisterInput struct {
	FullName string `json:"full_name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// LoginResult is what a successful login hands back to the transport layer.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      Identity
}
