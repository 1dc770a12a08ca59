package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/kevinvillajim/bcommerce-checkout/internal/domain"
)

const (
	SessionHeader = "X-Session-ID"

	roleAdmin = "admin"
)

type ctxKey int

const identityKey ctxKey = iota

// Claims are the JWT claims issued by the storefront's auth service.
type Claims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type identity struct {
	owner domain.Owner
	role  string
}

func (i identity) isAdmin() bool {
	return i.role == roleAdmin
}

func identityFrom(ctx context.Context) identity {
	id, _ := ctx.Value(identityKey).(identity)
	return id
}

// IdentityMiddleware resolves who is calling. The session id comes from
// X-Session-ID and is generated when absent. A valid bearer token makes the
// caller an authenticated user; a missing or invalid one leaves the caller
// anonymous.
func IdentityMiddleware(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := strings.TrimSpace(r.Header.Get(SessionHeader))
			if sessionID == "" {
				sessionID = uuid.NewString()
			}
			w.Header().Set(SessionHeader, sessionID)

			id := identity{owner: domain.Owner{SessionID: sessionID}}

			if claims, err := parseBearer(r.Header.Get("Authorization"), secret); err == nil {
				id.owner.UserID = claims.UserID
				id.role = claims.Role
			}

			ctx := context.WithValue(r.Context(), identityKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func requireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if identityFrom(r.Context()).owner.IsAnonymous() {
			respondError(w, http.StatusUnauthorized, "unauthorized", "sign in to continue")
			return
		}
		next(w, r)
	}
}

func parseBearer(header string, secret []byte) (*Claims, error) {
	if len(secret) == 0 {
		return nil, errors.New("auth is disabled")
	}

	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return nil, errors.New("no bearer token")
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	if claims.UserID <= 0 {
		return nil, errors.New("token has no user_id")
	}

	return claims, nil
}
