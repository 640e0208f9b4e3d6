package security

import (
	"time"

	"github.com/joefazee/veilbet/models"
)

const (
	TokenScopeSession = "session"
)

// Maker issues and verifies bearer tokens bound to a wallet address.
type Maker interface {
	// CreateToken creates a token for address valid for duration.
	CreateToken(address models.Address, duration time.Duration, scope string) (string, *Payload, error)

	// VerifyToken checks the token and returns its payload.
	VerifyToken(token string) (*Payload, error)
}
