package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/skjutsgruppen/rideshare/backend/internal/domain"
	"github.com/skjutsgruppen/rideshare/backend/internal/handler"
	"github.com/skjutsgruppen/rideshare/backend/internal/middleware"
)

var testSecret = []byte("handler-test-secret")

// ana is the default authenticated user in these tests.
var ana = domain.User{ID: 100, FirstName: "Ana", LastName: "Berg", Avatar: "https://img/ana.png"}

// newHTTPHandler wires a Server into the router with real auth and rate limiting.
// This mirrors how main.go wires it in production.
func newHTTPHandler(t *testing.T, d handler.Deps) http.Handler {
	t.Helper()
	return newLimitedHandler(t, d, 600, 100)
}

// newLimitedHandler is newHTTPHandler with an explicit per-user report rate.
func newLimitedHandler(t *testing.T, d handler.Deps, perMinute, burst int) http.Handler {
	t.Helper()
	if d.Log == nil {
		d.Log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	srv := handler.NewServer(d)
	limiter := middleware.NewUserRateLimiter(perMinute, burst)
	return srv.Routes(middleware.NewAuthHandler(testSecret), limiter.Handler)
}

// asUser signs a bearer token for u and attaches it to req.
func asUser(t *testing.T, req *http.Request, u domain.User) *http.Request {
	t.Helper()
	claims := middleware.Claims{
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Avatar:    u.Avatar,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(u.ID),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func decodeError(t *testing.T, body io.Reader) handler.ErrorResponse {
	t.Helper()
	var e handler.ErrorResponse
	require.NoError(t, json.NewDecoder(body).Decode(&e))
	return e
}
