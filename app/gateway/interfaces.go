package gateway

import (
	"context"

	"github.com/joefazee/veilbet/models"
	"gorm.io/gorm"
)

// Repository persists decryption requests
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, req *models.DecryptionRequest) error
	Get(ctx context.Context, marketID uint64, kind models.DecryptionKind, betIndex int64) (*models.DecryptionRequest, error)
	// Complete stores the result of a pending request. It is a no-op for a ready one.
	Complete(ctx context.Context, req *models.DecryptionRequest) error
	CountByMarket(ctx context.Context, marketID uint64, kind models.DecryptionKind) (total int64, ready int64, err error)
}

// Service mediates every threshold decryption
type Service interface {
	RequestDecryption(ctx context.Context, marketID uint64) (*DecryptionStatusResponse, error)
	// PollDecryptionResult never blocks. A result that is not ready is not an error.
	PollDecryptionResult(ctx context.Context, marketID uint64) (*PoolsResult, error)

	RequestOutcomeReveal(ctx context.Context, marketID uint64, index int64) (*RevealStatus, error)
	PollOutcome(ctx context.Context, marketID uint64, index int64) (*OutcomeResult, error)
	RevealAllOutcomes(ctx context.Context, marketID uint64) (*RevealSummary, error)

	Encrypt(ctx context.Context, req *EncryptRequest) (*EncryptResponse, error)
}
