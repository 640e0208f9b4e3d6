package events

import (
	"context"
	"fmt"

	"github.com/joefazee/veilbet/models"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Append(ctx context.Context, events ...*models.MarketEvent) error {
	if len(events) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(events).Error; err != nil {
		return fmt.Errorf("failed to append market events: %w", err)
	}
	return nil
}

// ListByMarket returns events oldest first.
func (r *repository) ListByMarket(ctx context.Context, marketID uint64, filters *Filters) ([]models.MarketEvent, int64, error) {
	if filters == nil {
		filters = &Filters{}
	}

	query := r.db.WithContext(ctx).Model(&models.MarketEvent{}).Where("market_id = ?", marketID)
	if filters.Action != "" {
		query = query.Where("action = ?", filters.Action)
	}
	if filters.BetIndex != nil {
		query = query.Where("bet_index = ?", *filters.BetIndex)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, perPage := filters.Page, filters.PerPage
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 50
	}

	var events []models.MarketEvent
	err := query.
		Order("created_at ASC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&events).Error
	return events, total, err
}
