package markets

import (
	"time"

	"github.com/joefazee/veilbet/app/events"
	"github.com/joefazee/veilbet/internal/fhe"
	"github.com/joefazee/veilbet/internal/sanitizer"
	"github.com/joefazee/veilbet/internal/validator"
	"github.com/joefazee/veilbet/models"
	"github.com/shopspring/decimal"
)

// CreateMarketRequest represents the request to create a market
// @Description Request payload for creating a new YES/NO market
type CreateMarketRequest struct {
	// Question is the proposition being bet on
	Question string `json:"question" binding:"required"`
	// CloseTime is the instant betting stops
	CloseTime time.Time `json:"close_time" binding:"required"`
	// FeeBps is the fee in basis points taken from the winning pool
	FeeBps *int `json:"fee_bps" binding:"required,min=0,max=10000"`
}

// Validate sanitizes the question and checks it against the configured limits
func (r *CreateMarketRequest) Validate(v *validator.Validator, s sanitizer.HTMLStripperer, cfg *Config) bool {
	r.Question = s.StripHTML(r.Question)

	v.Check(validator.NotBlank(r.Question), "question", "Question is required")
	v.Check(validator.MinRunes(r.Question, cfg.MinQuestionLength), "question", "Question is too short")
	v.Check(validator.MaxRunes(r.Question, cfg.MaxQuestionLength), "question", "Question is too long")
	v.Check(r.FeeBps != nil && *r.FeeBps >= 0 && *r.FeeBps <= cfg.MaxFeeBps, "fee_bps", "Fee is out of range")
	v.Check(!r.CloseTime.IsZero(), "close_time", "Close time is required")

	return v.Valid()
}

// MarketFilters represents the filters for listing markets
type MarketFilters struct {
	State     string `form:"state" binding:"omitempty,oneof=open closed decryption_requested settled"`
	Creator   string `form:"creator" binding:"omitempty,eth_addr"`
	SortOrder string `form:"sort_order" binding:"omitempty,oneof=asc desc"`
	Page      int    `form:"page,default=1" binding:"min=1"`
	PerPage   int    `form:"per_page,default=20" binding:"min=1,max=100"`
}

// EventFilters narrows the event log of one market
type EventFilters = events.Filters

// MarketInfoResponse is the public summary of a market
type MarketInfoResponse struct {
	ID          uint64             `json:"id"`
	Question    string             `json:"question"`
	CloseTime   time.Time          `json:"close_time"`
	FeeBps      int                `json:"fee_bps"`
	State       models.MarketState `json:"state"`
	Settled     bool               `json:"settled"`
	BetCount    int64              `json:"bet_count"`
	TotalEscrow decimal.Decimal    `json:"total_escrow"`
}

// MarketResponse is the full market record. Decrypted fields appear only once settled.
type MarketResponse struct {
	MarketInfoResponse
	Creator          models.Address   `json:"creator"`
	EncryptedYesPool fhe.Handle       `json:"encrypted_yes_pool"`
	EncryptedNoPool  fhe.Handle       `json:"encrypted_no_pool"`
	TotalPaidOut     decimal.Decimal  `json:"total_paid_out"`
	DecryptedYesPool *decimal.Decimal `json:"decrypted_yes_pool,omitempty"`
	DecryptedNoPool  *decimal.Decimal `json:"decrypted_no_pool,omitempty"`
	WinningOutcome   *bool            `json:"winning_outcome,omitempty"`
	Halted           bool             `json:"halted"`
	HaltReason       string           `json:"halt_reason,omitempty"`
	SettledAt        *time.Time       `json:"settled_at,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
}

// MarketListResponse represents a page of markets
type MarketListResponse struct {
	Markets []MarketResponse `json:"markets"`
	Total   int64            `json:"total"`
	Page    int              `json:"page"`
	PerPage int              `json:"per_page"`
}

// EventListResponse represents a page of market events
type EventListResponse struct {
	Events  []events.EventResponse `json:"events"`
	Total   int64                  `json:"total"`
	Page    int                    `json:"page"`
	PerPage int                    `json:"per_page"`
}

// ToMarketInfoResponse reports the effective state at now
func ToMarketInfoResponse(m *models.Market, now time.Time) *MarketInfoResponse {
	return &MarketInfoResponse{
		ID:          m.ID,
		Question:    m.Question,
		CloseTime:   m.CloseTime,
		FeeBps:      m.FeeBps,
		State:       m.EffectiveState(now),
		Settled:     m.IsSettled(),
		BetCount:    m.BetCount,
		TotalEscrow: m.TotalEscrow,
	}
}

func ToMarketResponse(m *models.Market, now time.Time) *MarketResponse {
	return &MarketResponse{
		MarketInfoResponse: *ToMarketInfoResponse(m, now),
		Creator:            m.Creator,
		EncryptedYesPool:   m.EncryptedYesPool,
		EncryptedNoPool:    m.EncryptedNoPool,
		TotalPaidOut:       m.TotalPaidOut,
		DecryptedYesPool:   m.DecryptedYesPool,
		DecryptedNoPool:    m.DecryptedNoPool,
		WinningOutcome:     m.WinningOutcome,
		Halted:             m.Halted,
		HaltReason:         m.HaltReason,
		SettledAt:          m.SettledAt,
		CreatedAt:          m.CreatedAt,
	}
}

func ToMarketResponseList(markets []models.Market, now time.Time) []MarketResponse {
	out := make([]MarketResponse, len(markets))
	for i := range markets {
		out[i] = *ToMarketResponse(&markets[i], now)
	}
	return out
}
