package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/teamtasker/team-task-service/internal/constants"
	apierrors "github.com/teamtasker/team-task-service/internal/errors"
)

// RequireIdentity reads the caller's user ID from the X-User-ID header set
// by the chat gateway. The gateway authenticates the chat user; this service
// trusts the header.
func RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(constants.HeaderUserID)
		if raw == "" {
			apierrors.Unauthorized(c, "missing "+constants.HeaderUserID+" header")
			c.Abort()
			return
		}

		userID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || userID == 0 {
			apierrors.Unauthorized(c, "invalid "+constants.HeaderUserID+" header")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUserID, userID)
		c.Next()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}

	v, ok := userID.(uint64)
	if !ok {
		return 0, false
	}
	return v, true
}
