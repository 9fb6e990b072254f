package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"broadcast-service/internal/response"
)

type contextKey string

const (
	ContextUserID   contextKey = "user_id"
	ContextUserType contextKey = "user_type"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims carried by tokens the main application issues for its users and
// for its own service-to-service calls (type "app").
type Claims struct {
	UserID   string `json:"uid"`
	UserType string `json:"type"`
	jwt.RegisteredClaims
}

type Auth struct {
	secret []byte
}

func NewAuth(secret string) *Auth {
	return &Auth{secret: []byte(secret)}
}

func (a *Auth) verify(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return a.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Middleware authenticates a bearer token (header, or ?token= for browser
// WebSocket clients which cannot set headers) and stores the principal on
// the request context.
func (a *Auth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ""
		if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
			token = strings.TrimPrefix(h, "Bearer ")
		} else {
			token = r.URL.Query().Get("token")
		}
		if token == "" {
			response.Error(w, http.StatusUnauthorized, "missing token")
			return
		}

		claims, err := a.verify(token)
		if err != nil {
			response.Error(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), ContextUserID, claims.UserID)
		ctx = context.WithValue(ctx, ContextUserType, claims.UserType)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Require restricts a route to the listed principal types.
func (a *Auth) Require(allowedTypes ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userType, _ := r.Context().Value(ContextUserType).(string)
			for _, t := range allowedTypes {
				if userType == t {
					next.ServeHTTP(w, r)
					return
				}
			}
			response.Error(w, http.StatusForbidden, "forbidden")
		})
	}
}
