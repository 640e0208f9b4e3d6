package ledger

import (
	"fmt"
	"time"

	"github.com/joefazee/veilbet/internal/fhe"
	"github.com/joefazee/veilbet/models"
	"github.com/shopspring/decimal"
)

// PlaceBetRequest carries the public escrow and the client-encrypted stake and side
// @Description Confidential bet. Stake and side arrive as ciphertext handles.
type PlaceBetRequest struct {
	EscrowAmount     string `json:"escrow_amount" binding:"required,wei" example:"100000000000000000"`
	EncryptedStake   string `json:"encrypted_stake" binding:"required,fhe_handle"`
	EncryptedOutcome string `json:"encrypted_outcome" binding:"required,fhe_handle"`
}

// Parse converts the wire strings to domain values
func (r *PlaceBetRequest) Parse() (decimal.Decimal, fhe.Handle, fhe.Handle, error) {
	escrow, err := decimal.NewFromString(r.EscrowAmount)
	if err != nil || !models.IsWholePositive(escrow) || escrow.GreaterThan(models.MaxPoolWei) {
		return decimal.Zero, fhe.Handle{}, fhe.Handle{}, models.ErrInvalidEscrow
	}
	stake, err := fhe.ParseHandle(r.EncryptedStake)
	if err != nil || stake.IsZero() {
		return decimal.Zero, fhe.Handle{}, fhe.Handle{}, models.ErrInvalidCiphertext
	}
	outcome, err := fhe.ParseHandle(r.EncryptedOutcome)
	if err != nil || outcome.IsZero() {
		return decimal.Zero, fhe.Handle{}, fhe.Handle{}, models.ErrInvalidCiphertext
	}
	return escrow, stake, outcome, nil
}

// BetFilters represents the filters for listing bets
type BetFilters struct {
	Bettor  string `form:"bettor" binding:"omitempty,eth_addr"`
	Page    int    `form:"page,default=1" binding:"min=1"`
	PerPage int    `form:"per_page,default=50" binding:"min=1,max=200"`
}

// BetResponse is the public view of a bet. The side and declared stake stay encrypted.
type BetResponse struct {
	MarketID         uint64           `json:"market_id"`
	Index            int64            `json:"index"`
	Bettor           models.Address   `json:"bettor"`
	EscrowAmount     decimal.Decimal  `json:"escrow_amount"`
	EncryptedStake   fhe.Handle       `json:"encrypted_stake"`
	EncryptedOutcome fhe.Handle       `json:"encrypted_outcome"`
	Withdrawn        bool             `json:"withdrawn"`
	PayoutAmount     *decimal.Decimal `json:"payout_amount,omitempty"`
	WithdrawnAt      *time.Time       `json:"withdrawn_at,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
}

// BetListResponse represents a page of bets
type BetListResponse struct {
	Bets    []BetResponse `json:"bets"`
	Total   int64         `json:"total"`
	Page    int           `json:"page"`
	PerPage int           `json:"per_page"`
}

// ReconcileResponse compares the market counters with the bet rows
type ReconcileResponse struct {
	MarketID       uint64          `json:"market_id"`
	RecordedEscrow decimal.Decimal `json:"recorded_escrow"`
	ComputedEscrow decimal.Decimal `json:"computed_escrow"`
	RecordedCount  int64           `json:"recorded_count"`
	ComputedCount  int64           `json:"computed_count"`
	Consistent     bool            `json:"consistent"`
	Halted         bool            `json:"halted"`
}

func ToBetResponse(b *models.Bet) *BetResponse {
	return &BetResponse{
		MarketID:         b.MarketID,
		Index:            b.Index,
		Bettor:           b.Bettor,
		EscrowAmount:     b.EscrowAmount,
		EncryptedStake:   b.EncryptedStake,
		EncryptedOutcome: b.EncryptedOutcome,
		Withdrawn:        b.Withdrawn,
		PayoutAmount:     b.PayoutAmount,
		WithdrawnAt:      b.WithdrawnAt,
		CreatedAt:        b.CreatedAt,
	}
}

func ToBetResponseList(bets []models.Bet) []BetResponse {
	out := make([]BetResponse, len(bets))
	for i := range bets {
		out[i] = *ToBetResponse(&bets[i])
	}
	return out
}

// Reason describes a mismatch for the halt record
func (r *ReconcileResponse) Reason() string {
	return fmt.Sprintf("escrow mismatch: recorded %s over %d bets, computed %s over %d bets",
		r.RecordedEscrow, r.RecordedCount, r.ComputedEscrow, r.ComputedCount)
}
