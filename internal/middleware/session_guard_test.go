package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/todayscomfort/backend/internal/models"
	"github.com/todayscomfort/backend/internal/session"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret, uid string, ttl time.Duration) string {
	t.Helper()
	claims := &models.JwtCustomClaims{
		UID:   uid,
		Email: uid + "@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func runGuard(t *testing.T, sessions session.Store, authHeader string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := SessionGuard(testSecret, sessions)(func(c echo.Context) error {
		return c.String(http.StatusOK, UID(c))
	})
	return rec, handler(c)
}

func TestSessionGuard(t *testing.T) {
	ctx := context.Background()

	t.Run("valid token with live session passes", func(t *testing.T) {
		sessions := session.NewMemoryStore()
		require.NoError(t, sessions.SaveIdentity(ctx, &session.Identity{UID: "u1"}))

		rec, err := runGuard(t, sessions, "Bearer "+signToken(t, testSecret, "u1", time.Hour))
		require.NoError(t, err)
		assert.Equal(t, "u1", rec.Body.String())
	})

	t.Run("valid token but cleared session is rejected", func(t *testing.T) {
		sessions := session.NewMemoryStore()
		require.NoError(t, sessions.SaveIdentity(ctx, &session.Identity{UID: "u1"}))
		require.NoError(t, sessions.Clear(ctx, "u1"))

		_, err := runGuard(t, sessions, "Bearer "+signToken(t, testSecret, "u1", time.Hour))
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, he.Code)
	})

	t.Run("missing header is rejected", func(t *testing.T) {
		_, err := runGuard(t, session.NewMemoryStore(), "")
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, he.Code)
	})

	t.Run("malformed header is rejected", func(t *testing.T) {
		_, err := runGuard(t, session.NewMemoryStore(), "Token abc")
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, he.Code)
	})

	t.Run("wrong signature is rejected", func(t *testing.T) {
		sessions := session.NewMemoryStore()
		require.NoError(t, sessions.SaveIdentity(ctx, &session.Identity{UID: "u1"}))

		_, err := runGuard(t, sessions, "Bearer "+signToken(t, "other-secret", "u1", time.Hour))
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, he.Code)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		sessions := session.NewMemoryStore()
		require.NoError(t, sessions.SaveIdentity(ctx, &session.Identity{UID: "u1"}))

		_, err := runGuard(t, sessions, "Bearer "+signToken(t, testSecret, "u1", -time.Minute))
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, he.Code)
	})
}
