package auth

import (
	"time"

	"github.com/joefazee/veilbet/models"
)

// ChallengeRequest asks for a nonce to sign
type ChallengeRequest struct {
	Address string `json:"address" binding:"required,eth_addr" example:"0x52908400098527886E0F7030069857D2E4169EE7"`
}

// ChallengeResponse carries the exact message the wallet must sign
type ChallengeResponse struct {
	Address   models.Address `json:"address"`
	Nonce     string         `json:"nonce"`
	Message   string         `json:"message"`
	ExpiresAt time.Time      `json:"expires_at"`
}

// SessionRequest proves control of an address with a personal_sign signature
type SessionRequest struct {
	Address   string `json:"address" binding:"required,eth_addr"`
	Signature string `json:"signature" binding:"required,hexadecimal"`
}

// SessionResponse returns a bearer token
type SessionResponse struct {
	AccessToken string         `json:"access_token"`
	Address     models.Address `json:"address"`
	ExpiresAt   time.Time      `json:"expires_at"`
}
