package settlement

import (
	"time"

	"github.com/google/uuid"
	"github.com/joefazee/veilbet/models"
	"github.com/shopspring/decimal"
)

// SettleResult reports the outcome of a settle attempt
type SettleResult struct {
	MarketID uint64             `json:"market_id"`
	State    models.MarketState `json:"state"`
	Pending  bool               `json:"pending"`
	Winner   *string            `json:"winner,omitempty"`
	YesPool  *decimal.Decimal   `json:"yes_pool,omitempty"`
	NoPool   *decimal.Decimal   `json:"no_pool,omitempty"`
}

// PoolsResponse is the public result of a settled market
type PoolsResponse struct {
	MarketID     uint64          `json:"market_id"`
	YesPool      decimal.Decimal `json:"yes_pool"`
	NoPool       decimal.Decimal `json:"no_pool"`
	Winner       string          `json:"winner"`
	YesWins      bool            `json:"yes_wins"`
	Fee          decimal.Decimal `json:"fee"`
	NetPool      decimal.Decimal `json:"net_pool"`
	TotalPaidOut decimal.Decimal `json:"total_paid_out"`
	SettledAt    *time.Time      `json:"settled_at,omitempty"`
}

// PayoutResponse is the amount a bet can withdraw
type PayoutResponse struct {
	MarketID  uint64          `json:"market_id"`
	Index     int64           `json:"index"`
	Bettor    models.Address  `json:"bettor"`
	Amount    decimal.Decimal `json:"amount"`
	Won       bool            `json:"won"`
	Withdrawn bool            `json:"withdrawn"`
}

// WithdrawResponse confirms a completed payout
type WithdrawResponse struct {
	MarketID uint64          `json:"market_id"`
	Index    int64           `json:"index"`
	Bettor   models.Address  `json:"bettor"`
	Amount   decimal.Decimal `json:"amount"`
	Receipt  uuid.UUID       `json:"receipt"`
}

func winnerLabel(yesWins bool) string {
	if yesWins {
		return "YES"
	}
	return "NO"
}

func ToPoolsResponse(m *models.Market, p Pools) *PoolsResponse {
	return &PoolsResponse{
		MarketID:     m.ID,
		YesPool:      p.Yes,
		NoPool:       p.No,
		Winner:       winnerLabel(p.YesWins),
		YesWins:      p.YesWins,
		Fee:          p.Fee(),
		NetPool:      p.Net(),
		TotalPaidOut: m.TotalPaidOut,
		SettledAt:    m.SettledAt,
	}
}
