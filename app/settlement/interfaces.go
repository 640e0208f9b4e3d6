package settlement

import (
	"context"

	"github.com/joefazee/veilbet/models"
)

// Service settles markets and pays winners
type Service interface {
	// Settle reports Pending without error while the pools are still being decrypted.
	Settle(ctx context.Context, marketID uint64) (*SettleResult, error)
	GetDecryptedPools(ctx context.Context, marketID uint64) (*PoolsResponse, error)
	CalculatePayout(ctx context.Context, marketID uint64, index int64) (*PayoutResponse, error)
	Withdraw(ctx context.Context, marketID uint64, index int64, caller models.Address) (*WithdrawResponse, error)
	WithdrawUnsafe(ctx context.Context, marketID uint64, index int64, caller models.Address) (*WithdrawResponse, error)
}
