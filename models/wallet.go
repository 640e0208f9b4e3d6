package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet is a ledger-rail account holding wei for one address
type Wallet struct {
	Address   Address         `gorm:"type:varchar(42);primaryKey" json:"address"`
	Balance   decimal.Decimal `gorm:"type:numeric(78,0);not null;default:0;check:balance >= 0" json:"balance"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for Wallet model
func (*Wallet) TableName() string {
	return "wallets"
}

// CanDebit checks if the wallet has sufficient balance for a debit
func (w *Wallet) CanDebit(amount decimal.Decimal) bool {
	return w.Balance.GreaterThanOrEqual(amount)
}

// Credit adds funds to the wallet
func (w *Wallet) Credit(amount decimal.Decimal) error {
	if !IsWholePositive(amount) {
		return ErrInvalidTransferAmount
	}
	w.Balance = w.Balance.Add(amount)
	return nil
}

// Debit removes funds from the wallet
func (w *Wallet) Debit(amount decimal.Decimal) error {
	if !IsWholePositive(amount) {
		return ErrInvalidTransferAmount
	}
	if !w.CanDebit(amount) {
		return ErrInsufficientBalance
	}
	w.Balance = w.Balance.Sub(amount)
	return nil
}
