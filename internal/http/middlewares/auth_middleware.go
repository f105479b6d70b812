package middlewares

import (
	"context"
	"net/http"
	"strings"

	"github.com/Nmomos/hedgehog-reservation/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// Small interfaces so tests can fake both sides easily.
type TokenVerifier interface {
	VerifyAccessToken(token string) (username string, err error)
}

type UserLoader interface {
	GetByUsername(ctx context.Context, username string) (user.User, error)
}

type AuthMiddleware struct {
	jwt   TokenVerifier
	users UserLoader
}

func NewAuthMiddleware(jwt TokenVerifier, users UserLoader) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt, users: users}
}

// RequireAuth extracts the bearer token, verifies it, and resolves the full
// user row so downstream handlers get a live identity (inactive accounts are
// rejected even when their token is still valid).
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			abortUnauthorized(c, "Missing or invalid Authorization header")
			return
		}

		raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if raw == "" {
			abortUnauthorized(c, "Missing or invalid access token")
			return
		}

		username, err := m.jwt.VerifyAccessToken(raw)
		if err != nil {
			abortUnauthorized(c, "Invalid or expired access token")
			return
		}

		u, err := m.users.GetByUsername(c.Request.Context(), username)
		if err != nil {
			abortUnauthorized(c, "Invalid or expired access token")
			return
		}

		if !u.IsActive {
			abortUnauthorized(c, "Account is inactive")
			return
		}

		c.Set(CtxCurrentUser, u)

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"code":    "unauthorized",
			"message": message,
		},
	})
}

// CurrentUser returns the identity stashed by RequireAuth.
func CurrentUser(c *gin.Context) (user.User, bool) {
	v, ok := c.Get(CtxCurrentUser)
	if !ok {
		return user.User{}, false
	}
	u, ok := v.(user.User)
	return u, ok
}
