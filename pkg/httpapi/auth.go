package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type ctxKey int

const (
	ctxKeyUserID ctxKey = iota
	ctxKeyRole
)

// UserID returns the authenticated user id from the request context, or
// "" when the request is anonymous.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyUserID).(string)
	return id
}

// Role returns the authenticated user's role, or "" when anonymous.
func Role(ctx context.Context) string {
	role, _ := ctx.Value(ctxKeyRole).(string)
	return role
}

// WithIdentity injects an identity into the context. Used by tests.
func WithIdentity(ctx context.Context, userID, role string) context.Context {
	ctx = context.WithValue(ctx, ctxKeyUserID, userID)
	return context.WithValue(ctx, ctxKeyRole, role)
}

// OptionalAuth resolves the caller's identity from a Bearer token when
// one is present and valid, and otherwise lets the request continue
// anonymously. It runs before the rate limiter so that authenticated
// callers are throttled per user id rather than per network address.
func OptionalAuth(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID, role, ok := parseBearer(r, secret); ok {
				r = r.WithContext(WithIdentity(r.Context(), userID, role))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserID(r.Context()) == "" {
			WriteError(w, http.StatusUnauthorized, CodeUnauthorized, "", "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects authenticated callers whose role is not listed.
// It implies RequireAuth.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if UserID(r.Context()) == "" {
				WriteError(w, http.StatusUnauthorized, CodeUnauthorized, "", "Authentication required")
				return
			}
			role := Role(r.Context())
			for _, allowed := range roles {
				if role == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}
			WriteError(w, http.StatusForbidden, CodeForbidden, "", "Insufficient permissions")
		})
	}
}

// parseBearer extracts and verifies the HS256 token from the
// Authorization header. Any failure means anonymous, never an error.
func parseBearer(r *http.Request, secret []byte) (userID, role string, ok bool) {
	header := r.Header.Get("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return "", "", false
	}
	raw := strings.TrimPrefix(header, "Bearer ")

	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, isHMAC := t.Method.(*jwt.SigningMethodHMAC); !isHMAC {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return "", "", false
	}

	claims, isMap := token.Claims.(jwt.MapClaims)
	if !isMap {
		return "", "", false
	}
	userID, _ = claims["userId"].(string)
	role, _ = claims["role"].(string)
	return userID, role, userID != ""
}

// MintToken signs an HS256 token carrying the user id and role.
// Token issuance proper lives outside this core; this helper exists for
// tests and local tooling.
func MintToken(secret []byte, userID, role string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": userID,
		"role":   role,
	})
	return token.SignedString(secret)
}
