package auth

import (
	"errors"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	issuer            = "flotanet"
	secretEnvVariable = "FLOTANET_AUTH_SECRET"

	// DefaultTokenTTL is the canonical session length. The legacy flows
	// disagreed between 4h and 12h; a single configurable value replaces
	// both.
	DefaultTokenTTL = 8 * time.Hour
)

var (
	errMissingSecret = errors.New("auth secret is not configured")

	secretMu sync.Mutex
	secret   cachedSecret
)

type cachedSecret struct {
	value []byte
	err   error
	ready bool
}

// Classified token failures. The HTTP layer maps all three to 401 but the
// client-visible wording differs for expiry.
var (
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenInvalid   = errors.New("invalid token")
)

// Claims is the payload embedded in every session token. Permisos keeps
// whatever representation the signer used (array or CSV string).
type Claims struct {
	UserID   int64       `json:"id"`
	Username string      `json:"username"`
	Role     string      `json:"role"`
	Permisos PermisoList `json:"permisos"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 session token carrying the identity's claims.
// Tokens are stateless: nothing is persisted, and any well-signed unexpired
// token is honored until it ages out.
func IssueToken(ident Identity, ttl time.Duration) (string, time.Time, error) {
	if ident.ID <= 0 || strings.TrimSpace(ident.Username) == "" {
		return "", time.Time{}, errors.New("identity is incomplete")
	}
	if ttl <= 0 {
		return "", time.Time{}, errors.New("ttl must be greater than zero")
	}
	secretBytes, err := loadSecret()
	if err != nil {
		return "", time.Time{}, err
	}

	now := time.Now().UTC()
	expiresAt := now.Add(ttl)
	claims := Claims{
		UserID:   ident.ID,
		Username: ident.Username,
		Role:     ident.Role,
		Permisos: ident.Permisos,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   ident.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secretBytes)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ParseToken verifies signature and expiry and returns the decoded claims
// untouched; permission normalization happens at the policy, not here.
func ParseToken(raw string) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrTokenMalformed
	}
	secretBytes, err := loadSecret()
	if err != nil {
		return nil, err
	}

	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrTokenInvalid
		}
		return secretBytes, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrTokenMalformed
		default:
			return nil, ErrTokenInvalid
		}
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.UserID <= 0 || strings.TrimSpace(claims.Username) == "" {
		return nil, ErrTokenInvalid
	}
	if claims.Issuer != issuer {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

func loadSecret() ([]byte, error) {
	secretMu.Lock()
	defer secretMu.Unlock()
	if secret.ready {
		return secret.value, secret.err
	}
	raw := strings.TrimSpace(os.Getenv(secretEnvVariable))
	if raw == "" {
		secret.err = errMissingSecret
		secret.ready = true
		return nil, secret.err
	}
	secret.value = []byte(raw)
	secret.err = nil
	secret.ready = true
	return secret.value, nil
}

// ResetSecretForTests clears the cached secret value. Only intended for test use.
func ResetSecretForTests() {
	secretMu.Lock()
	defer secretMu.Unlock()
	secret = cachedSecret{}
}
