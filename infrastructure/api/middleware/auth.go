package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
)

type contextKey string

const (
	actorKey contextKey = "actor"
	rolesKey contextKey = "roles"
)

// DefaultActor is attributed to requests without an X-Actor header.
const DefaultActor = "anonymous"

// AuthConfig holds the accepted API keys. An empty key set disables
// key checks entirely.
type AuthConfig struct {
	keys []string
}

// NewAuthConfigWithKeys creates an AuthConfig accepting the given keys.
func NewAuthConfigWithKeys(keys []string) AuthConfig {
	filtered := make([]string, 0, len(keys))
	for _, k := range keys {
		if k != "" {
			filtered = append(filtered, k)
		}
	}
	return AuthConfig{keys: filtered}
}

// Enabled reports whether any key is configured.
func (c AuthConfig) Enabled() bool { return len(c.keys) > 0 }

// Matches reports whether the presented key is valid.
func (c AuthConfig) Matches(presented string) bool {
	for _, k := range c.keys {
		if subtle.ConstantTimeCompare([]byte(k), []byte(presented)) == 1 {
			return true
		}
	}
	return false
}

// Auth returns middleware requiring a valid X-API-KEY header on every
// request, regardless of method. Mount it on the authed route group
// only; health and metrics stay outside it.
func Auth(config AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !config.Enabled() {
				next.ServeHTTP(w, r)
				return
			}
			if !config.Matches(r.Header.Get("X-API-KEY")) {
				WriteError(w, r, NewAPIError(http.StatusUnauthorized, "invalid or missing API key", ErrAuthentication), nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AuthWithKeys is a convenience wrapper building the config inline.
func AuthWithKeys(keys []string) func(http.Handler) http.Handler {
	return Auth(NewAuthConfigWithKeys(keys))
}

// Identity returns middleware that reads the caller identity from the
// X-Actor and X-Roles headers into the request context.
func Identity() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := strings.TrimSpace(r.Header.Get("X-Actor"))
			if actor == "" {
				actor = DefaultActor
			}
			roles := parseRoles(r.Header.Get("X-Roles"))
			ctx := context.WithValue(r.Context(), actorKey, actor)
			ctx = context.WithValue(ctx, rolesKey, roles)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole returns middleware rejecting requests whose caller holds
// none of the allowed roles.
func RequireRole(allowed ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			roles := Roles(r.Context())
			for _, have := range roles {
				for _, want := range allowed {
					if have == want {
						next.ServeHTTP(w, r)
						return
					}
				}
			}
			WriteError(w, r, NewAPIError(http.StatusForbidden, "insufficient role", nil), nil)
		})
	}
}

// Actor returns the caller identity from the request context.
func Actor(ctx context.Context) string {
	if actor, ok := ctx.Value(actorKey).(string); ok && actor != "" {
		return actor
	}
	return DefaultActor
}

// Roles returns the caller roles from the request context.
func Roles(ctx context.Context) []string {
	if roles, ok := ctx.Value(rolesKey).([]string); ok {
		return roles
	}
	return nil
}

func parseRoles(header string) []string {
	if strings.TrimSpace(header) == "" {
		return nil
	}
	parts := strings.Split(header, ",")
	roles := make([]string, 0, len(parts))
	for _, p := range parts {
		if role := strings.TrimSpace(p); role != "" {
			roles = append(roles, strings.ToLower(role))
		}
	}
	return roles
}
