package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

func TestAuthRequired(t *testing.T) {
	app := fiber.New()
	app.Get("/test", AuthRequired(testSecret, nil), func(c *fiber.Ctx) error {
		userID, _ := CurrentUser(c)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"userID": userID})
	})

	signed := func(userID uint, ttl time.Duration) string {
		tok, err := SignToken(testSecret, userID, ttl)
		require.NoError(t, err)
		return tok
	}

	foreignIssuer := func() string {
		claims := jwt.MapClaims{
			"sub": "7",
			"iss": "someone-else",
			"aud": TokenAudience,
			"exp": time.Now().Add(time.Hour).Unix(),
		}
		s, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		return s
	}

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectedUserID uint
	}{
		{"Happy Path", "Bearer " + signed(123, time.Hour), http.StatusOK, 123},
		{"Missing Header", "", http.StatusUnauthorized, 0},
		{"Invalid Format", "Basic dXNlcjpwYXNz", http.StatusUnauthorized, 0},
		{"Expired Token", "Bearer " + signed(123, -time.Hour), http.StatusUnauthorized, 0},
		{"Wrong Issuer", "Bearer " + foreignIssuer(), http.StatusUnauthorized, 0},
		{"Garbage Token", "Bearer not-a-token", http.StatusUnauthorized, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == http.StatusOK {
				var body map[string]any
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, float64(tt.expectedUserID), body["userID"])
			}
		})
	}
}

func TestAuthRequired_RevokedToken(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	tok, err := SignToken(testSecret, 9, time.Hour)
	require.NoError(t, err)

	parsed, _, err := jwt.NewParser().ParseUnverified(tok, jwt.MapClaims{})
	require.NoError(t, err)
	jti := parsed.Claims.(jwt.MapClaims)["jti"].(string)
	require.NoError(t, mr.Set("blacklist:"+jti, "1"))

	app := fiber.New()
	app.Get("/test", AuthRequired(testSecret, rdb), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSignToken_Subject(t *testing.T) {
	tok, err := SignToken(testSecret, 42, time.Minute)
	require.NoError(t, err)

	parsed, _, err := jwt.NewParser().ParseUnverified(tok, jwt.MapClaims{})
	require.NoError(t, err)
	sub, err := parsed.Claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(42), sub)
}
