package rail

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/joefazee/veilbet/models"
	"github.com/shopspring/decimal"
)

var ErrTransferFailed = errors.New("rail: transfer failed")

// DefaultEscrowAccount holds every escrowed stake until payout or refund.
var DefaultEscrowAccount = models.Address(common.BytesToAddress(crypto.Keccak256([]byte("veilbet/escrow"))))

// Receipt acknowledges a completed transfer.
type Receipt struct {
	ID     uuid.UUID              `json:"id"`
	Kind   models.TransactionType `json:"kind"`
	Amount decimal.Decimal        `json:"amount"`
	At     time.Time              `json:"at"`
}

// Rail moves value in and out of escrow. A returned error means nothing moved.
type Rail interface {
	Escrow(ctx context.Context, from models.Address, amount decimal.Decimal) (Receipt, error)
	Payout(ctx context.Context, to models.Address, amount decimal.Decimal) (Receipt, error)
	Refund(ctx context.Context, to models.Address, amount decimal.Decimal) (Receipt, error)
}
