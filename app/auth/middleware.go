package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joefazee/veilbet/app/api"
	"github.com/joefazee/veilbet/internal/security"
)

// RequireAuth rejects requests without a valid session token and stores the caller's address.
func RequireAuth(tokenMaker security.Maker) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthorizationHeaderKey)
		if authHeader == "" {
			api.UnauthorizedResponse(c)
			c.Abort()
			return
		}

		fields := strings.Fields(authHeader)
		if len(fields) < 2 || fields[0] != AuthorizationTypeBearer {
			api.UnauthorizedResponse(c)
			c.Abort()
			return
		}

		payload, err := tokenMaker.VerifyToken(fields[1])
		if err != nil || payload.Scope != security.TokenScopeSession {
			api.UnauthorizedResponse(c)
			c.Abort()
			return
		}

		ContextSetCaller(c, payload.Address)
		ContextSetToken(c, payload)
		c.Next()
	}
}
