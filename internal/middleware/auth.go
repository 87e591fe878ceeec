package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SaltaGet/Back-SIJAC/internal/httperr"
	"github.com/SaltaGet/Back-SIJAC/internal/models"
	"github.com/SaltaGet/Back-SIJAC/internal/token"
)

const (
	ContextUserID    = "userID"
	ContextUserRole  = "userRole"
	ContextUserEmail = "userEmail"
)

type SessionParser interface {
	ParseSession(raw string) (token.Session, error)
}

func AuthMiddleware(sessions SessionParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httperr.Unauthorized(c, "missing_authorization_header", "Authorization header required.")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			httperr.Unauthorized(c, "invalid_authorization_header", "Bearer token required.")
			c.Abort()
			return
		}

		sess, err := sessions.ParseSession(strings.TrimSpace(parts[1]))
		if err != nil {
			code := "invalid_token"
			if errors.Is(err, token.ErrExpired) {
				code = "token_expired"
			}
			httperr.Unauthorized(c, code, "Invalid session.")
			c.Abort()
			return
		}

		c.Set(ContextUserID, sess.UserID)
		c.Set(ContextUserRole, sess.Role)
		c.Set(ContextUserEmail, sess.Email)

		c.Next()
	}
}

// RequireRole lets admins through unconditionally.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextUserRole)
		if role == models.RoleAdmin {
			c.Next()
			return
		}
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}

		httperr.Forbidden(c, "insufficient_role", "required role: "+strings.Join(roles, " or "))
		c.Abort()
	}
}

func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

func IsAdmin(c *gin.Context) bool {
	return c.GetString(ContextUserRole) == models.RoleAdmin
}
