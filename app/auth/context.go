package auth

import (
	"github.com/gin-gonic/gin"
	"github.com/joefazee/veilbet/internal/security"
	"github.com/joefazee/veilbet/models"
)

const (
	AuthorizationHeaderKey  = "Authorization"
	AuthorizationTypeBearer = "Bearer"

	ContextCaller = "context_caller"
	ContextToken  = "context_token"
)

// ContextSetCaller stores the authenticated wallet address on the request
func ContextSetCaller(c *gin.Context, address models.Address) {
	c.Set(ContextCaller, address)
}

// ContextSetToken stores the verified token payload on the request
func ContextSetToken(c *gin.Context, payload *security.Payload) {
	c.Set(ContextToken, payload)
}

// ContextGetCaller returns the authenticated address. ok is false on public routes.
func ContextGetCaller(c *gin.Context) (models.Address, bool) {
	v, exists := c.Get(ContextCaller)
	if !exists {
		return models.Address{}, false
	}
	addr, ok := v.(models.Address)
	return addr, ok
}

// ContextGetToken panics when called outside RequireAuth
func ContextGetToken(c *gin.Context) *security.Payload {
	token, ok := c.Get(ContextToken)
	if !ok {
		panic("missing token value in context")
	}
	return token.(*security.Payload)
}
