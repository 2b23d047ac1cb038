package mockapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type contextKey string

const userIDKey contextKey = "user_id"

// claims ties a token to the auth origin created at login. Deleting the
// origin revokes the token.
type claims struct {
	jwt.RegisteredClaims
	Origin string `json:"origin"`
}

func (s *Server) issueToken(userID, originID string) (string, error) {
	now := s.now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
		},
		Origin: originID,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.cfg.JWTSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

func (s *Server) parseToken(raw string) (*claims, error) {
	c := &claims{}
	_, err := jwt.ParseWithClaims(raw, c, func(*jwt.Token) (any, error) {
		return s.cfg.JWTSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if c.Subject == "" || c.Origin == "" {
		return nil, errors.New("token has no subject")
	}
	return c, nil
}

// requireAuth accepts "Bearer <token>" or a bare token, the way the backend
// does, and rejects tokens whose auth origin has been deleted.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
		if raw == "" {
			s.respondError(w, http.StatusUnauthorized, "The request requires valid record authorization token.", nil)
			return
		}
		c, err := s.parseToken(raw)
		if err != nil || !s.store.hasOrigin(c.Origin) {
			s.respondError(w, http.StatusUnauthorized, "The request requires valid record authorization token.", nil)
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey, c.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok {
		return id
	}
	return ""
}

// tokenTTL is the lifetime of issued tokens unless configured otherwise.
const tokenTTL = 7 * 24 * time.Hour
