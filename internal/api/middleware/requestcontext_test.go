package middleware

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopchat/shopchat-backend/internal/models"
)

const testSecret = "test-secret"

func testApp(t *testing.T) (*fiber.App, *models.RequestContext) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	captured := &models.RequestContext{}
	app := fiber.New()
	app.Use(RequestContext(testSecret, logger))
	app.Get("/", func(c *fiber.Ctx) error {
		*captured = FromCtx(c)
		return c.SendString("ok")
	})
	return app, captured
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestRequestContext_Anonymous(t *testing.T) {
	app, captured := testApp(t)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("User-Agent", "curl/8.0")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.False(t, captured.Authenticated())
	assert.Equal(t, "curl/8.0", captured.UserAgent)
	assert.NotEmpty(t, captured.ClientIP)
}

func TestRequestContext_ValidToken(t *testing.T) {
	app, captured := testApp(t)

	token := signToken(t, testSecret, jwt.MapClaims{
		"uid": 42,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.True(t, captured.Authenticated())
	assert.Equal(t, int64(42), captured.UserID)
	assert.Equal(t, "user:42", captured.Identifier())
}

func TestRequestContext_BadTokenFallsBackToAnonymous(t *testing.T) {
	app, captured := testApp(t)

	tests := map[string]string{
		"wrong secret": signToken(t, "other-secret", jwt.MapClaims{"uid": 42}),
		"no uid claim": signToken(t, testSecret, jwt.MapClaims{"sub": "alice"}),
		"garbage":      "not-a-token",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.False(t, captured.Authenticated())
		})
	}
}
