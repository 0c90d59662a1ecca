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
	EmailContextKey = "email"

	AccessTokenCookie = "access_token"
	AccessTokenType   = "access"
)

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid or expired token")
)

// TokenVerifier checks HS256 access tokens issued by the auth provider.
type TokenVerifier struct {
	secret []byte
}

func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(strings.TrimSpace(secret))}
}

// Parse validates tokenStr and returns its claims. The "typ" claim must be
// "access" so refresh tokens cannot be replayed against the API.
func (v *TokenVerifier) Parse(tokenStr string) (jwt.MapClaims, error) {
	if len(v.secret) == 0 {
		return nil, fmt.Errorf("JWT secret not configured")
	}

	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || token == nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	if typ, ok := claims["typ"].(string); !ok || typ != AccessTokenType {
		return nil, fmt.Errorf("invalid token type")
	}
	return claims, nil
}

// AuthMiddleware accepts a Bearer token or the access_token cookie and puts
// the user's id and email on the context.
func AuthMiddleware(v *TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := extractToken(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		claims, err := v.Parse(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		userID := claimString(claims, "sub")
		if userID == "" {
			userID = claimString(claims, "user_id")
		}
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token has no subject"})
			return
		}

		c.Set(UserContextKey, userID)
		c.Set(EmailContextKey, strings.ToLower(claimString(claims, "email")))
		c.Next()
	}
}

// AdminOnly lets through users whose email is on the allow-list.
func AdminOnly(adminEmails []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			allowed[e] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		email := c.GetString(EmailContextKey)
		if _, ok := allowed[email]; !ok || email == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		c.Next()
	}
}

// GetUserID extracts the user ID from the Gin context.
func GetUserID(c *gin.Context) (string, error) {
	if val, ok := c.Get(UserContextKey); ok {
		if id, ok := val.(string); ok && id != "" {
			return id, nil
		}
	}
	return "", errors.New("user ID not found in context")
}

func extractToken(c *gin.Context) (string, error) {
	if h := c.GetHeader("Authorization"); h != "" {
		if !strings.HasPrefix(h, "Bearer ") {
			return "", ErrMissingToken
		}
		return strings.TrimSpace(h[len("Bearer "):]), nil
	}
	if v, err := c.Cookie(AccessTokenCookie); err == nil && v != "" {
		return v, nil
	}
	return "", ErrMissingToken
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
