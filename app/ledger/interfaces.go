package ledger

import (
	"context"
	"time"

	"github.com/joefazee/veilbet/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository defines the interface for bet data access
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, bet *models.Bet) error
	GetByIndex(ctx context.Context, marketID uint64, index int64) (*models.Bet, error)
	List(ctx context.Context, marketID uint64, filters *BetFilters) ([]models.Bet, int64, error)
	AllByMarket(ctx context.Context, marketID uint64) ([]models.Bet, error)
	// EscrowTotals recomputes the escrow sum and bet count from bet rows.
	EscrowTotals(ctx context.Context, marketID uint64) (decimal.Decimal, int64, error)

	// MarkWithdrawn flips withdrawn false -> true. Exactly one concurrent caller gets true.
	MarkWithdrawn(ctx context.Context, marketID uint64, index int64, amount decimal.Decimal, at time.Time) (bool, error)
	RevertWithdrawn(ctx context.Context, marketID uint64, index int64) error
	SetPayoutReceipt(ctx context.Context, marketID uint64, index int64, receipt string) error
}

// Service defines the confidential bet ledger
type Service interface {
	PlaceBet(ctx context.Context, marketID uint64, bettor models.Address, req *PlaceBetRequest) (*BetResponse, error)
	GetBet(ctx context.Context, marketID uint64, index int64) (*BetResponse, error)
	ListBets(ctx context.Context, marketID uint64, filters *BetFilters) (*BetListResponse, error)
	Reconcile(ctx context.Context, marketID uint64) (*ReconcileResponse, error)
}
