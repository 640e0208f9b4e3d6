package markets

import (
	"context"
	"time"

	"github.com/joefazee/veilbet/models"
	"gorm.io/gorm"
)

// Repository defines the interface for market data access
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, market *models.Market) error
	GetByID(ctx context.Context, id uint64) (*models.Market, error)
	// GetForUpdate loads the market with a row lock. Only meaningful inside a transaction.
	GetForUpdate(ctx context.Context, id uint64) (*models.Market, error)
	Update(ctx context.Context, market *models.Market) error
	List(ctx context.Context, filters *MarketFilters, now time.Time) ([]models.Market, int64, error)
}

// Service defines the interface for the market registry
type Service interface {
	CreateMarket(ctx context.Context, creator models.Address, req *CreateMarketRequest) (*MarketResponse, error)
	GetMarketInfo(ctx context.Context, id uint64) (*MarketInfoResponse, error)
	GetMarket(ctx context.Context, id uint64) (*MarketResponse, error)
	ListMarkets(ctx context.Context, filters *MarketFilters) (*MarketListResponse, error)
	ListEvents(ctx context.Context, id uint64, filters *EventFilters) (*EventListResponse, error)
}
