package models

import (
	"fmt"
	"math"
	"time"

	"github.com/joefazee/veilbet/internal/fhe"
	"github.com/shopspring/decimal"
)

// MarketState represents the lifecycle state of a market
type MarketState string

const (
	MarketStateOpen                MarketState = "open"
	MarketStateClosed              MarketState = "closed"
	MarketStateDecryptionRequested MarketState = "decryption_requested"
	MarketStateSettled             MarketState = "settled"
)

// MaxFeeBps is the basis-point denominator.
const MaxFeeBps = 10000

// MaxPoolWei is the largest total a market's escrow, and so either encrypted pool, may reach.
var MaxPoolWei = decimal.NewFromUint64(math.MaxUint64)

// Market is a binary YES/NO parimutuel market whose pools accumulate under encryption.
// MarketStateClosed is never persisted; it is the effective state of an open market past its close time.
type Market struct {
	ID               uint64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Question         string           `gorm:"type:text;not null" json:"question"`
	CloseTime        time.Time        `gorm:"not null;index:idx_markets_close_time" json:"close_time"`
	FeeBps           int              `gorm:"not null" json:"fee_bps"`
	State            MarketState      `gorm:"type:varchar(32);not null;default:'open';index:idx_markets_state" json:"state"`
	Creator          Address          `gorm:"type:varchar(42);not null" json:"creator"`
	BetCount         int64            `gorm:"not null;default:0" json:"bet_count"`
	TotalEscrow      decimal.Decimal  `gorm:"type:numeric(78,0);not null;default:0" json:"total_escrow"`
	TotalPaidOut     decimal.Decimal  `gorm:"type:numeric(78,0);not null;default:0" json:"total_paid_out"`
	EncryptedYesPool fhe.Handle       `gorm:"type:varchar(66);not null" json:"encrypted_yes_pool"`
	EncryptedNoPool  fhe.Handle       `gorm:"type:varchar(66);not null" json:"encrypted_no_pool"`
	DecryptedYesPool *decimal.Decimal `gorm:"type:numeric(78,0)" json:"decrypted_yes_pool,omitempty"`
	DecryptedNoPool  *decimal.Decimal `gorm:"type:numeric(78,0)" json:"decrypted_no_pool,omitempty"`
	WinningOutcome   *bool            `json:"winning_outcome,omitempty"`
	Halted           bool             `gorm:"not null;default:false" json:"halted"`
	HaltReason       string           `gorm:"type:text" json:"halt_reason,omitempty"`
	SettledAt        *time.Time       `json:"settled_at,omitempty"`
	CreatedAt        time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for Market model
func (*Market) TableName() string {
	return "markets"
}

// EffectiveState folds the close time into the stored state.
func (m *Market) EffectiveState(now time.Time) MarketState {
	if m.State == MarketStateOpen && !now.Before(m.CloseTime) {
		return MarketStateClosed
	}
	return m.State
}

// IsSettled reports whether final pools are recorded.
func (m *Market) IsSettled() bool {
	return m.State == MarketStateSettled
}

// CanAcceptBets checks the placeBet guard.
func (m *Market) CanAcceptBets(now time.Time) error {
	if m.Halted {
		return ErrStateCorrupted
	}
	if m.EffectiveState(now) != MarketStateOpen {
		return ErrMarketClosed
	}
	return nil
}

// CanTakeEscrow keeps the market's total escrow within the encrypted pool width.
func (m *Market) CanTakeEscrow(escrow decimal.Decimal) error {
	if m.TotalEscrow.Add(escrow).GreaterThan(MaxPoolWei) {
		return fmt.Errorf("%w: market escrow would exceed %s wei", ErrInvalidEscrow, MaxPoolWei)
	}
	return nil
}

// RecordBet applies a bet's public effects and the new pool handles, returning the bet index.
func (m *Market) RecordBet(escrow decimal.Decimal, yesPool, noPool fhe.Handle) int64 {
	index := m.BetCount
	m.BetCount++
	m.TotalEscrow = m.TotalEscrow.Add(escrow)
	m.EncryptedYesPool = yesPool
	m.EncryptedNoPool = noPool
	return index
}

// CanRequestDecryption returns nil when the market may move to (or already is in) DecryptionRequested.
func (m *Market) CanRequestDecryption(now time.Time) error {
	if m.Halted {
		return ErrStateCorrupted
	}
	switch m.EffectiveState(now) {
	case MarketStateOpen:
		return ErrMarketStillOpen
	case MarketStateSettled:
		return ErrAlreadySettled
	}
	return nil
}

// MarkDecryptionRequested moves a closed market forward. It is a no-op when already requested.
func (m *Market) MarkDecryptionRequested(now time.Time) error {
	if err := m.CanRequestDecryption(now); err != nil {
		return err
	}
	m.State = MarketStateDecryptionRequested
	return nil
}

// CanSettle checks the settle guard.
func (m *Market) CanSettle(now time.Time) error {
	if m.Halted {
		return ErrStateCorrupted
	}
	switch m.EffectiveState(now) {
	case MarketStateDecryptionRequested:
		return nil
	case MarketStateSettled:
		return ErrAlreadySettled
	case MarketStateOpen:
		return ErrMarketStillOpen
	}
	return ErrDecryptionNotRequested
}

// Settle records the decrypted pools. YES wins only on a strict majority; a tie goes to NO.
func (m *Market) Settle(yesPool, noPool decimal.Decimal, now time.Time) error {
	if err := m.CanSettle(now); err != nil {
		return err
	}
	winner := yesPool.GreaterThan(noPool)
	m.DecryptedYesPool = &yesPool
	m.DecryptedNoPool = &noPool
	m.WinningOutcome = &winner
	m.State = MarketStateSettled
	m.SettledAt = &now
	return nil
}

// Pools returns the decrypted pools and winner of a settled market.
func (m *Market) Pools() (yes, no decimal.Decimal, winner bool, err error) {
	if !m.IsSettled() || m.DecryptedYesPool == nil || m.DecryptedNoPool == nil || m.WinningOutcome == nil {
		return decimal.Zero, decimal.Zero, false, ErrMarketNotSettled
	}
	return *m.DecryptedYesPool, *m.DecryptedNoPool, *m.WinningOutcome, nil
}

// Halt freezes every mutation of the market.
func (m *Market) Halt(reason string) {
	m.Halted = true
	m.HaltReason = reason
}

// Validate performs validation on the market model
func (m *Market) Validate() error {
	if m.Question == "" {
		return ErrInvalidQuestion
	}
	if m.FeeBps < 0 || m.FeeBps > MaxFeeBps {
		return fmt.Errorf("%w: %d", ErrInvalidFeeBps, m.FeeBps)
	}
	if m.CloseTime.IsZero() {
		return ErrInvalidCloseTime
	}
	return nil
}
