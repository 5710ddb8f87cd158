package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

const (
	UserContextKey  = "userID"
	RoleContextKey  = "role"
	EmailContextKey = "email"
	AdminRole       = "admin"
)

type identity struct {
	userID, role, email string
}

// Authenticate resolves the caller from a bearer token. When trustGateway is
// set, requests without a token may instead carry the identity in the gateway
// headers or cookies; the service must then only be reachable through that
// gateway. Requests without an identity stop with 401.
func Authenticate(jwtSecret []byte, trustGateway bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var id identity

		if header := c.GetHeader("Authorization"); header != "" {
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				abort(c, http.StatusUnauthorized, "Invalid token format")
				return
			}
			parsed, err := parseAccessToken(strings.TrimSpace(token), jwtSecret)
			if err != nil {
				abort(c, http.StatusUnauthorized, "Invalid or expired token")
				return
			}
			id = parsed
		} else if trustGateway {
			id = gatewayIdentity(c)
		}

		if id.userID == "" {
			abort(c, http.StatusUnauthorized, "Unauthorized")
			return
		}

		c.Set(UserContextKey, id.userID)
		c.Set(RoleContextKey, strings.ToLower(id.role))
		c.Set(EmailContextKey, id.email)
		c.Next()
	}
}

func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAdmin(c) {
			abort(c, http.StatusForbidden, "Admin access required")
			return
		}
		c.Next()
	}
}

func parseAccessToken(raw string, secret []byte) (identity, error) {
	if len(secret) == 0 {
		return identity{}, errors.New("jwt secret not configured")
	}
	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return identity{}, fmt.Errorf("invalid token: %w", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return identity{}, errors.New("unexpected claims type")
	}
	if typ, present := claims["typ"]; present && typ != "access" {
		return identity{}, errors.New("not an access token")
	}

	id := identity{
		userID: claimString(claims, "sub"),
		role:   claimString(claims, "role"),
		email:  claimString(claims, "email"),
	}
	if id.userID == "" {
		id.userID = claimString(claims, "user_id")
	}
	return id, nil
}

func claimString(claims jwt.MapClaims, key string) string {
	switch v := claims[key].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	}
	return ""
}

func gatewayIdentity(c *gin.Context) identity {
	id := identity{
		userID: c.GetHeader("X-User-ID"),
		role:   c.GetHeader("X-User-Role"),
		email:  c.GetHeader("X-User-Email"),
	}
	if id.userID == "" {
		id.userID = cookie(c, "user_id")
	}
	if id.role == "" {
		id.role = cookie(c, "user_role")
	}
	if id.email == "" {
		id.email = cookie(c, "user_email")
	}
	return id
}

func cookie(c *gin.Context, name string) string {
	if v, err := c.Cookie(name); err == nil {
		return v
	}
	return ""
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}

// Helper functions for controllers

func GetUserID(c *gin.Context) string {
	return c.GetString(UserContextKey)
}

func GetRole(c *gin.Context) string {
	return c.GetString(RoleContextKey)
}

func GetEmail(c *gin.Context) string {
	return c.GetString(EmailContextKey)
}

func IsAdmin(c *gin.Context) bool {
	return GetRole(c) == AdminRole
}
