package auth

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"gymhub/internal/api"
)

const (
	ctxCaller    = "auth_caller"
	ctxUserEmail = "user_email"
)

// AuthMiddleware admits requests carrying a valid access token and records
// the caller for the handlers behind it.
func AuthMiddleware(keys Keys) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			api.Abort(c, http.StatusUnauthorized, "Authorization header required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[0]) != "Bearer" {
			api.Abort(c, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			api.Abort(c, http.StatusUnauthorized, "Token is empty")
			return
		}

		claims, err := keys.Parse(tokenString, KindAccess)
		if err != nil {
			switch {
			case errors.Is(err, ErrTokenExpired):
				api.Abort(c, http.StatusUnauthorized, "Token expired")
			case errors.Is(err, ErrInvalidTokenType):
				api.Abort(c, http.StatusUnauthorized, "Access token required")
			default:
				api.Abort(c, http.StatusUnauthorized, "Invalid or malformed token")
			}
			return
		}

		SetCaller(c, claims.Caller())
		c.Set(ctxUserEmail, claims.Email)

		c.Next()
	}
}

// SetCaller records the identity a request acts as.
func SetCaller(c *gin.Context, caller Caller) {
	c.Set(ctxCaller, caller)
}

// RequireRole admits callers whose role is one of roles.
func RequireRole(roles ...Role) gin.HandlerFunc {
	return RequireRoleOrSelf("", roles...)
}

// RequireRoleOrSelf admits callers whose role is one of roles, or whose id
// equals the path parameter named param.
func RequireRoleOrSelf(param string, roles ...Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := GetCaller(c)
		if !ok {
			api.Abort(c, http.StatusUnauthorized, "User not authenticated")
			return
		}

		ownerID := 0
		if param != "" {
			ownerID, _ = strconv.Atoi(c.Param(param))
		}

		if !Allow(caller, ownerID, roles...) {
			api.Abort(c, http.StatusForbidden, "Insufficient permissions")
			return
		}

		c.Next()
	}
}

func GetUserID(c *gin.Context) (int, bool) {
	caller, ok := GetCaller(c)
	if !ok {
		return 0, false
	}
	return caller.ID, true
}

// GetCaller returns the identity set by AuthMiddleware.
func GetCaller(c *gin.Context) (Caller, bool) {
	v, exists := c.Get(ctxCaller)
	if !exists {
		return Caller{}, false
	}

	caller, ok := v.(Caller)
	if !ok || caller.ID <= 0 || !caller.Role.Valid() {
		return Caller{}, false
	}
	return caller, true
}

// MustCaller is GetCaller for handlers: a missing identity is answered with 401.
func MustCaller(c *gin.Context) (Caller, bool) {
	caller, ok := GetCaller(c)
	if !ok {
		api.Abort(c, http.StatusUnauthorized, "User not authenticated")
	}
	return caller, ok
}
