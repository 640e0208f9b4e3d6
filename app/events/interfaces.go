package events

import (
	"context"

	"github.com/joefazee/veilbet/models"
	"gorm.io/gorm"
)

// Repository persists the append-only market event log.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Append(ctx context.Context, events ...*models.MarketEvent) error
	ListByMarket(ctx context.Context, marketID uint64, filters *Filters) ([]models.MarketEvent, int64, error)
}
