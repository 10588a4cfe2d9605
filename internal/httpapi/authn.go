package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"flotanet.org/internal/auth"
)

const (
	authHeader = "Authorization"
	bearer     = "Bearer "
)

var publicPaths = []string{
	"/",
	"/health",
	"/readyz",
	"/metrics",
	"/v1/info",
	"/api/login",
	// location stamps come from field devices that carry no token
	"/api/ubicaciones",
}

// publicGetPrefixes lists read-only catalog routes open without a token.
var publicGetPrefixes = []string{
	"/api/equipos",
	"/api/obras",
	"/api/tareas",
}

// withAuth guards every non-public route with bearer token validation and
// stores the parsed claims in the request context.
func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions || isPublicRequest(r) {
			next.ServeHTTP(w, r)
			return
		}

		token, err := extractBearerToken(r.Header.Get(authHeader))
		if err != nil {
			writeError(w, r, http.StatusUnauthorized, err.Error())
			return
		}

		claims, err := auth.ParseToken(token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrTokenExpired):
				writeError(w, r, http.StatusUnauthorized, "token expired")
			default:
				writeError(w, r, http.StatusUnauthorized, "invalid token")
			}
			return
		}

		if ident, ok := r.Context().Value(accessIdentityKey{}).(*accessIdentity); ok {
			uid := claims.UserID
			ident.userID = &uid
			ident.username = claims.Username
		}

		ctx := auth.ContextWithClaims(r.Context(), claims)
		ctx = auth.ContextWithToken(ctx, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAdmin enforces the admin gate on mutating catalog and user
// management routes. It writes the error response itself.
func (a *API) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "missing bearer token")
		return false
	}
	if !auth.IsAdmin(claims) {
		writeError(w, r, http.StatusForbidden, "admin privileges required")
		return false
	}
	return true
}

func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New("missing bearer token")
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearer)) {
		return "", errors.New("invalid authorization scheme")
	}
	token := strings.TrimSpace(header[len(bearer):])
	if token == "" {
		return "", errors.New("missing bearer token")
	}
	return token, nil
}

func isPublicRequest(r *http.Request) bool {
	for _, p := range publicPaths {
		if r.URL.Path == p {
			return true
		}
	}
	if r.Method == http.MethodGet {
		for _, prefix := range publicGetPrefixes {
			if r.URL.Path == prefix || strings.HasPrefix(r.URL.Path, prefix+"/") {
				return true
			}
		}
	}
	return false
}
