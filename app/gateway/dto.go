package gateway

import (
	"strconv"
	"time"

	"github.com/joefazee/veilbet/internal/fhe"
	"github.com/joefazee/veilbet/models"
	"github.com/shopspring/decimal"
)

// DecryptionStatusResponse reports the pool decryption request of a market
type DecryptionStatusResponse struct {
	MarketID         uint64             `json:"market_id"`
	State            models.MarketState `json:"state"`
	AlreadyRequested bool               `json:"already_requested"`
	RequestedAt      time.Time          `json:"requested_at"`
}

// PoolsResult carries the decrypted pools once ready
type PoolsResult struct {
	MarketID uint64           `json:"market_id"`
	Ready    bool             `json:"ready"`
	YesPool  *decimal.Decimal `json:"yes_pool,omitempty"`
	NoPool   *decimal.Decimal `json:"no_pool,omitempty"`
}

// RevealStatus reports a per-bet outcome reveal request
type RevealStatus struct {
	MarketID         uint64 `json:"market_id"`
	Index            int64  `json:"index"`
	AlreadyRequested bool   `json:"already_requested"`
	Ready            bool   `json:"ready"`
}

// OutcomeResult carries a bet's revealed side once ready. true is YES.
type OutcomeResult struct {
	MarketID uint64 `json:"market_id"`
	Index    int64  `json:"index"`
	Ready    bool   `json:"ready"`
	Outcome  *bool  `json:"outcome,omitempty"`
}

// RevealSummary counts the outcome reveals of a market
type RevealSummary struct {
	MarketID  uint64 `json:"market_id"`
	Bets      int64  `json:"bets"`
	Submitted int64  `json:"submitted"`
	Requested int64  `json:"requested"`
	Ready     int64  `json:"ready"`
}

// EncryptRequest is a client-side encryption helper for local development
type EncryptRequest struct {
	Type  string `json:"type" binding:"required,oneof=uint64 bool"`
	Value string `json:"value" binding:"required"`
}

// EncryptResponse returns the new ciphertext handle
type EncryptResponse struct {
	Type   string     `json:"type"`
	Handle fhe.Handle `json:"handle"`
}

func poolsResult(marketID uint64, values []uint64) *PoolsResult {
	yes := models.AsAmount(values[0])
	no := models.AsAmount(values[1])
	return &PoolsResult{MarketID: marketID, Ready: true, YesPool: &yes, NoPool: &no}
}

func outcomeResult(marketID uint64, index int64, values []uint64) *OutcomeResult {
	outcome := values[0] == 1
	return &OutcomeResult{MarketID: marketID, Index: index, Ready: true, Outcome: &outcome}
}

func poolsKey(marketID uint64) string {
	return "pools:" + strconv.FormatUint(marketID, 10)
}

func outcomeKey(marketID uint64, index int64) string {
	return "outcome:" + strconv.FormatUint(marketID, 10) + ":" + strconv.FormatInt(index, 10)
}
