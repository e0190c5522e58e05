package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"photogram/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func validClaims(userID uint, exp time.Duration) jwt.MapClaims {
	return jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"exp": time.Now().Add(exp).Unix(),
		"iat": time.Now().Unix(),
		"iss": TokenIssuer,
		"aud": TokenAudience,
		"jti": "jti-" + strconv.FormatUint(uint64(userID), 10),
	}
}

func TestAuthRequired(t *testing.T) {
	app := fiber.New()
	InitMiddleware(&config.Config{JWTSecret: testSecret}, nil)

	app.Get("/test", AuthRequired, func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"userID": c.Locals("userID")})
	})

	wrongIssuer := validClaims(5, time.Hour)
	wrongIssuer["iss"] = "someone-else"
	noSubject := validClaims(5, time.Hour)
	delete(noSubject, "sub")

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectedUserID uint
	}{
		{"happy path", "Bearer " + signToken(t, validClaims(123, time.Hour)), http.StatusOK, 123},
		{"missing header", "", http.StatusUnauthorized, 0},
		{"invalid format", "Basic dXNlcjpwYXNz", http.StatusUnauthorized, 0},
		{"malformed token", "Bearer malformed.token.here", http.StatusUnauthorized, 0},
		{"expired token", "Bearer " + signToken(t, validClaims(123, -time.Hour)), http.StatusUnauthorized, 0},
		{"wrong issuer", "Bearer " + signToken(t, wrongIssuer), http.StatusUnauthorized, 0},
		{"missing subject", "Bearer " + signToken(t, noSubject), http.StatusUnauthorized, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == http.StatusOK {
				var body map[string]interface{}
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, float64(tt.expectedUserID), body["userID"])
			}
		})
	}
}

func TestAuthRequired_RevokedToken(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	InitMiddleware(&config.Config{JWTSecret: testSecret}, client)
	defer InitMiddleware(&config.Config{JWTSecret: testSecret}, nil)

	app := fiber.New()
	app.Get("/test", AuthRequired, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	token := signToken(t, validClaims(9, time.Hour))
	do := func() int {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusOK, do())
	require.NoError(t, RevokeToken(context.Background(), "jti-9", time.Now().Add(time.Hour)))
	assert.True(t, mr.Exists(RevokedTokenKey("jti-9")))
	assert.Equal(t, http.StatusUnauthorized, do())
}

func TestRevokeToken_NoopWhenExpired(t *testing.T) {
	mr := miniredis.RunT(t)
	InitMiddleware(&config.Config{JWTSecret: testSecret}, redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	defer InitMiddleware(&config.Config{JWTSecret: testSecret}, nil)

	require.NoError(t, RevokeToken(context.Background(), "old", time.Now().Add(-time.Minute)))
	assert.False(t, mr.Exists(RevokedTokenKey("old")))
}

func TestWebSocketAuthRequired(t *testing.T) {
	app := fiber.New()
	InitMiddleware(&config.Config{JWTSecret: testSecret}, nil)

	app.Get("/ws-test", WebSocketAuthRequired, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	token := signToken(t, validClaims(1, time.Hour))
	tests := []struct {
		name           string
		tokenParam     string
		authHeader     string
		expectedStatus int
	}{
		{"token via query param", token, "", http.StatusOK},
		{"token via header", "", "Bearer " + token, http.StatusOK},
		{"missing token", "", "", http.StatusUnauthorized},
		{"invalid token", "invalid-token", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := "/ws-test"
			if tt.tokenParam != "" {
				path += "?token=" + tt.tokenParam
			}
			req := httptest.NewRequest(http.MethodGet, path, nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}
