package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionType represents the type of rail transfer
type TransactionType string

const (
	TransactionTypeFund   TransactionType = "fund"
	TransactionTypeEscrow TransactionType = "escrow"
	TransactionTypePayout TransactionType = "payout"
	TransactionTypeRefund TransactionType = "refund"
)

// Transaction is an immutable double-entry record of value moving between two wallets
type Transaction struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	TransactionType TransactionType `gorm:"type:varchar(20);not null" json:"transaction_type"`
	From            Address         `gorm:"column:from_address;type:varchar(42);not null;index:idx_transactions_from" json:"from"`
	To              Address         `gorm:"column:to_address;type:varchar(42);not null;index:idx_transactions_to" json:"to"`
	Amount          decimal.Decimal `gorm:"type:numeric(78,0);not null" json:"amount"`
	FromBalance     decimal.Decimal `gorm:"type:numeric(78,0);not null" json:"from_balance_after"`
	ToBalance       decimal.Decimal `gorm:"type:numeric(78,0);not null" json:"to_balance_after"`
	CreatedAt       time.Time       `gorm:"autoCreateTime;index:idx_transactions_created_at" json:"created_at"`
}

// TableName specifies the table name for Transaction model
func (*Transaction) TableName() string {
	return "transactions"
}

// BeforeCreate sets up the model before creation
func (t *Transaction) BeforeCreate(_ *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// Validate performs validation on the transaction model
func (t *Transaction) Validate() error {
	if !IsWholePositive(t.Amount) {
		return ErrInvalidTransferAmount
	}
	if t.From == t.To {
		return ErrInvalidAddress
	}
	if t.FromBalance.IsNegative() || t.ToBalance.IsNegative() {
		return ErrInsufficientBalance
	}
	return nil
}
