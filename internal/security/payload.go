package security

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/joefazee/veilbet/models"
)

var (
	ErrExpiredToken = errors.New("token has expired")
	ErrInvalidToken = errors.New("invalid token")
)

// Payload is the body of a session token.
type Payload struct {
	ID        uuid.UUID      `json:"id"`
	Address   models.Address `json:"address"`
	IssuedAt  time.Time      `json:"issued_at"`
	ExpiredAt time.Time      `json:"expired_at"`
	Scope     string         `json:"scope"`
}

func NewPayload(address models.Address, duration time.Duration, scope string) (*Payload, error) {
	tokenID, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &Payload{
		ID:        tokenID,
		Address:   address,
		IssuedAt:  now,
		ExpiredAt: now.Add(duration),
		Scope:     scope,
	}, nil
}

func (p *Payload) Valid() error {
	if time.Now().After(p.ExpiredAt) {
		return ErrExpiredToken
	}
	return nil
}
