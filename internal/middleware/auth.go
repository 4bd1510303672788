package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"taskdeck/internal/logger"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const OwnerIdKey contextKey = "owner_id"

// Auth resolves the caller's identity from a Bearer JWT. Every entity route
// sits behind it; ownership itself is enforced in the repositories.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w, r, "authorization header required")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				unauthorized(w, r, "invalid authorization header format")
				return
			}

			token, err := jwt.Parse(parts[1], func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				unauthorized(w, r, "invalid or expired token")
				return
			}

			subject, err := token.Claims.GetSubject()
			if err != nil || subject == "" {
				unauthorized(w, r, "token has no subject")
				return
			}

			ctx := context.WithValue(r.Context(), OwnerIdKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetOwnerID(ctx context.Context) string {
	if owner, ok := ctx.Value(OwnerIdKey).(string); ok {
		return owner
	}
	return ""
}

// IssueToken signs an HS256 token for the given owner identity. Used by the
// demo client and tests; a real deployment gets tokens from its identity
// provider.
func IssueToken(secret, owner string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": owner,
	})
	return token.SignedString([]byte(secret))
}

func unauthorized(w http.ResponseWriter, r *http.Request, message string) {
	logger.Warn("HTTP: unauthenticated request",
		zap.String("path", r.URL.Path),
		zap.String("client_ip", r.RemoteAddr),
		zap.String("reason", message))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]any{"error": message})
}
