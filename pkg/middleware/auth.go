package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
)

type contextKey string

const userKey contextKey = "auth.user"

// devUserHeader supplies the caller identity when auth is disabled.
const devUserHeader = "X-User-Id"

// AuthConfig holds OIDC bearer token verification settings.
type AuthConfig struct {
	Enabled  bool   `toml:"enabled"`
	Issuer   string `toml:"issuer"`
	Audience string `toml:"audience"`
}

// Merge overwrites fields from overlay. Enabled always applies.
func (c *AuthConfig) Merge(overlay *AuthConfig) {
	if overlay == nil {
		return
	}
	c.Enabled = overlay.Enabled
	if overlay.Issuer != "" {
		c.Issuer = overlay.Issuer
	}
	if overlay.Audience != "" {
		c.Audience = overlay.Audience
	}
}

// Finalize applies environment overrides scoped by prefix.
func (c *AuthConfig) Finalize(prefix string) error {
	if v := os.Getenv(prefix + "_AUTH_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.Enabled = enabled
		}
	}
	if v := os.Getenv(prefix + "_AUTH_ISSUER"); v != "" {
		c.Issuer = v
	}
	if v := os.Getenv(prefix + "_AUTH_AUDIENCE"); v != "" {
		c.Audience = v
	}
	return nil
}

// UserID returns the authenticated caller's subject from the request
// context, or empty when unauthenticated.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userKey).(string)
	return id
}

// WithUserID returns a context carrying the given caller identity. Intended
// for tests and internal workers acting on behalf of a user.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userKey, userID)
}

// Auth returns middleware that verifies a bearer token against the
// configured OIDC issuer and stores the token subject in the request
// context. When disabled, the caller identity is taken from the
// X-User-Id header instead.
func Auth(ctx context.Context, cfg *AuthConfig, logger *slog.Logger) (func(http.Handler) http.Handler, error) {
	logger = logger.With("system", "auth")

	if !cfg.Enabled {
		logger.Warn("token verification disabled, trusting " + devUserHeader)
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if id := r.Header.Get(devUserHeader); id != "" {
					r = r.WithContext(WithUserID(r.Context(), id))
				}
				next.ServeHTTP(w, r)
			})
		}, nil
	}

	provider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, err
	}

	verifier := provider.Verifier(&oidc.Config{ClientID: cfg.Audience})

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				unauthorized(w, "missing bearer token")
				return
			}

			token, err := verifier.Verify(r.Context(), raw)
			if err != nil {
				logger.Debug("token verification failed", "error", err)
				unauthorized(w, "invalid token")
				return
			}

			r = r.WithContext(WithUserID(r.Context(), token.Subject))
			next.ServeHTTP(w, r)
		})
	}, nil
}

// RequireUser returns middleware that rejects requests lacking a caller
// identity. Applied to routes that operate on per-user data.
func RequireUser() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if UserID(r.Context()) == "" {
				unauthorized(w, "authentication required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return token, true
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
