package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func signToken(t *testing.T, secret []byte, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)
	return s
}

func setupAuthRouter(chain ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append(chain, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": GetUserID(c), "role": GetRole(c), "email": GetEmail(c)})
	})
	r.GET("/whoami", handlers...)
	return r
}

func whoami(t *testing.T, r *gin.Engine, prepare func(*http.Request)) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	prepare(req)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestAuthenticate_BearerToken(t *testing.T) {
	r := setupAuthRouter(Authenticate(testSecret, false))
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub":   "user-1",
		"role":  "Admin",
		"email": "ops@example.com",
		"typ":   "access",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	code, body := whoami(t, r, func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+token) })
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "user-1", body["userId"])
	assert.Equal(t, "admin", body["role"])
	assert.Equal(t, "ops@example.com", body["email"])
}

func TestAuthenticate_NumericUserIDClaim(t *testing.T) {
	r := setupAuthRouter(Authenticate(testSecret, false))
	token := signToken(t, testSecret, jwt.MapClaims{"user_id": float64(42)})

	code, body := whoami(t, r, func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+token) })
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "42", body["userId"])
}

func TestAuthenticate_RejectsBadTokens(t *testing.T) {
	r := setupAuthRouter(Authenticate(testSecret, false))
	tests := map[string]string{
		"wrong secret": "Bearer " + signToken(t, []byte("other"), jwt.MapClaims{"sub": "u"}),
		"refresh":      "Bearer " + signToken(t, testSecret, jwt.MapClaims{"sub": "u", "typ": "refresh"}),
		"expired":      "Bearer " + signToken(t, testSecret, jwt.MapClaims{"sub": "u", "exp": time.Now().Add(-time.Minute).Unix()}),
		"no scheme":    "Token abc",
	}
	for name, header := range tests {
		t.Run(name, func(t *testing.T) {
			code, body := whoami(t, r, func(req *http.Request) { req.Header.Set("Authorization", header) })
			assert.Equal(t, http.StatusUnauthorized, code)
			assert.Equal(t, false, body["success"])
		})
	}
}

func TestAuthenticate_GatewayHeadersAndCookies(t *testing.T) {
	r := setupAuthRouter(Authenticate(testSecret, true))

	code, body := whoami(t, r, func(req *http.Request) {
		req.Header.Set("X-User-ID", "u-7")
		req.Header.Set("X-User-Role", "user")
	})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "u-7", body["userId"])

	code, body = whoami(t, r, func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: "user_id", Value: "u-8"})
		req.AddCookie(&http.Cookie{Name: "user_role", Value: "admin"})
	})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "u-8", body["userId"])
	assert.Equal(t, "admin", body["role"])
}

func TestAuthenticate_IgnoresGatewayIdentityByDefault(t *testing.T) {
	r := setupAuthRouter(Authenticate(testSecret, false), AdminOnly())

	code, body := whoami(t, r, func(req *http.Request) {
		req.Header.Set("X-User-ID", "anyone")
		req.Header.Set("X-User-Role", "admin")
	})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Unauthorized", body["message"])

	code, _ = whoami(t, r, func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: "user_id", Value: "x"})
		req.AddCookie(&http.Cookie{Name: "user_role", Value: "admin"})
	})
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestAuthenticate_NoIdentity(t *testing.T) {
	r := setupAuthRouter(Authenticate(testSecret, false))

	code, body := whoami(t, r, func(*http.Request) {})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Unauthorized", body["message"])
}

func TestAdminOnly(t *testing.T) {
	r := setupAuthRouter(Authenticate(testSecret, false), AdminOnly())

	customer := signToken(t, testSecret, jwt.MapClaims{"sub": "u-1", "role": "user"})
	code, body := whoami(t, r, func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+customer) })
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Admin access required", body["message"])

	admin := signToken(t, testSecret, jwt.MapClaims{"sub": "u-1", "role": "ADMIN"})
	code, _ = whoami(t, r, func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+admin) })
	assert.Equal(t, http.StatusOK, code)
}
