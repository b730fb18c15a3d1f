package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/skjutsgruppen/rideshare/backend/internal/domain"
)

// Claims is the bearer token payload. Subject carries the numeric user id.
type Claims struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	jwt.RegisteredClaims
}

// User converts the claims into the profile of the authenticated user.
func (c Claims) User() (domain.User, error) {
	id, err := strconv.Atoi(c.Subject)
	if err != nil || id <= 0 {
		return domain.User{}, errors.New("token subject is not a user id")
	}
	return domain.User{
		ID:          id,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Avatar:      c.Avatar,
		Email:       c.Email,
		PhoneNumber: c.PhoneNumber,
	}, nil
}

type ctxKey int

const (
	userKey ctxKey = iota
	userSlotKey
)

// userSlot lets the request logger see the user resolved further down the chain.
type userSlot struct {
	id int
}

func withUserSlot(ctx context.Context, s *userSlot) context.Context {
	return context.WithValue(ctx, userSlotKey, s)
}

// UserFromContext returns the authenticated user stored by NewAuthHandler.
func UserFromContext(ctx context.Context) (domain.User, bool) {
	u, ok := ctx.Value(userKey).(domain.User)
	return u, ok
}

// WithUser returns a copy of ctx carrying u as the authenticated user.
func WithUser(ctx context.Context, u domain.User) context.Context {
	if s, ok := ctx.Value(userSlotKey).(*userSlot); ok {
		s.id = u.ID
	}
	return context.WithValue(ctx, userKey, u)
}

// NewAuthHandler returns a middleware that requires an HS256 bearer token
// signed with secret. The user described by the token is stored in the
// request context; requests without a valid token get 401.
func NewAuthHandler(secret []byte) func(http.Handler) http.Handler {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	keyFunc := func(*jwt.Token) (any, error) { return secret, nil }

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
				return
			}

			var claims Claims
			if _, err := parser.ParseWithClaims(raw, &claims, keyFunc); err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
				return
			}
			user, err := claims.User()
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
