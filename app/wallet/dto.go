package wallet

import (
	"time"

	"github.com/google/uuid"
	"github.com/joefazee/veilbet/models"
	"github.com/shopspring/decimal"
)

// FundRequest credits an address from the faucet
type FundRequest struct {
	Address string `json:"address" binding:"required,eth_addr" example:"0x52908400098527886E0F7030069857D2E4169EE7"`
	Amount  string `json:"amount" binding:"required,wei" example:"1000000000000000000"`
}

// BalanceResponse represents a wallet balance
type BalanceResponse struct {
	Address models.Address  `json:"address"`
	Balance decimal.Decimal `json:"balance"`
}

// FundResponse represents a faucet credit
type FundResponse struct {
	Address models.Address  `json:"address"`
	Amount  decimal.Decimal `json:"amount"`
	Balance decimal.Decimal `json:"balance"`
	Receipt uuid.UUID       `json:"receipt"`
}

// TransactionResponse represents a rail transfer seen from one wallet
type TransactionResponse struct {
	ID        uuid.UUID              `json:"id"`
	Type      models.TransactionType `json:"type"`
	Direction string                 `json:"direction"`
	From      models.Address         `json:"from"`
	To        models.Address         `json:"to"`
	Amount    decimal.Decimal        `json:"amount"`
	Balance   decimal.Decimal        `json:"balance_after"`
	CreatedAt time.Time              `json:"created_at"`
}

// ToTransactionResponse converts a transfer to the view of addr
func ToTransactionResponse(addr models.Address, t *models.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:        t.ID,
		Type:      t.TransactionType,
		Direction: "in",
		From:      t.From,
		To:        t.To,
		Amount:    t.Amount,
		Balance:   t.ToBalance,
		CreatedAt: t.CreatedAt,
	}
	if t.From == addr {
		resp.Direction = "out"
		resp.Balance = t.FromBalance
	}
	return resp
}
