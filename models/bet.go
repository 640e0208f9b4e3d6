package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/joefazee/veilbet/internal/fhe"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Bet is a confidential position. Only the escrow amount is public; side and declared stake
// stay behind ciphertext handles. Everything except the withdrawal fields is immutable.
type Bet struct {
	ID               uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	MarketID         uint64           `gorm:"not null;uniqueIndex:idx_bets_market_index,priority:1" json:"market_id"`
	Index            int64            `gorm:"column:bet_index;not null;uniqueIndex:idx_bets_market_index,priority:2" json:"index"`
	Bettor           Address          `gorm:"type:varchar(42);not null;index:idx_bets_bettor" json:"bettor"`
	EscrowAmount     decimal.Decimal  `gorm:"type:numeric(78,0);not null" json:"escrow_amount"`
	EncryptedStake   fhe.Handle       `gorm:"type:varchar(66);not null;uniqueIndex:idx_bets_encrypted_stake" json:"encrypted_stake"`
	EncryptedOutcome fhe.Handle       `gorm:"type:varchar(66);not null;uniqueIndex:idx_bets_encrypted_outcome" json:"encrypted_outcome"`
	EscrowReceipt    string           `gorm:"type:varchar(64)" json:"escrow_receipt,omitempty"`
	Withdrawn        bool             `gorm:"not null;default:false" json:"withdrawn"`
	PayoutAmount     *decimal.Decimal `gorm:"type:numeric(78,0)" json:"payout_amount,omitempty"`
	PayoutReceipt    string           `gorm:"type:varchar(64)" json:"payout_receipt,omitempty"`
	WithdrawnAt      *time.Time       `json:"withdrawn_at,omitempty"`
	CreatedAt        time.Time        `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for Bet model
func (*Bet) TableName() string {
	return "bets"
}

// BeforeCreate sets up the model before creation
func (b *Bet) BeforeCreate(_ *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// IsOwnedBy checks the bettor identity
func (b *Bet) IsOwnedBy(caller Address) bool {
	return b.Bettor == caller
}

// Validate performs validation on the bet model
func (b *Bet) Validate() error {
	if !IsWholePositive(b.EscrowAmount) {
		return ErrInvalidEscrow
	}
	if b.EncryptedStake.IsZero() || b.EncryptedOutcome.IsZero() {
		return ErrInvalidCiphertext
	}
	if b.Bettor.IsZero() {
		return ErrInvalidAddress
	}
	return nil
}

// IsWholePositive reports whether d is an integer amount greater than zero.
func IsWholePositive(d decimal.Decimal) bool {
	return d.IsPositive() && d.Equal(d.Truncate(0))
}
