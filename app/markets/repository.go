package markets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joefazee/veilbet/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// repository implements the Repository interface using GORM
type repository struct {
	db *gorm.DB
}

// NewRepository creates a new market repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, market *models.Market) error {
	return r.db.WithContext(ctx).Create(market).Error
}

func (r *repository) GetByID(ctx context.Context, id uint64) (*models.Market, error) {
	return r.get(r.db.WithContext(ctx), id)
}

func (r *repository) GetForUpdate(ctx context.Context, id uint64) (*models.Market, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *repository) get(q *gorm.DB, id uint64) (*models.Market, error) {
	var market models.Market
	err := q.Where("id = ?", id).First(&market).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrMarketNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load market %d: %w", id, err)
	}
	return &market, nil
}

func (r *repository) Update(ctx context.Context, market *models.Market) error {
	return r.db.WithContext(ctx).Save(market).Error
}

// List returns markets with filters and pagination. The closed state is derived from now.
func (r *repository) List(ctx context.Context, filters *MarketFilters, now time.Time) ([]models.Market, int64, error) {
	var markets []models.Market
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Market{})
	query = r.applyFilters(query, filters, now)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "id DESC"
	if filters.SortOrder == "asc" {
		order = "id ASC"
	}

	err := query.
		Order(order).
		Offset((filters.Page - 1) * filters.PerPage).
		Limit(filters.PerPage).
		Find(&markets).Error
	return markets, total, err
}

func (r *repository) applyFilters(query *gorm.DB, filters *MarketFilters, now time.Time) *gorm.DB {
	switch models.MarketState(filters.State) {
	case models.MarketStateOpen:
		query = query.Where("state = ? AND close_time > ?", models.MarketStateOpen, now)
	case models.MarketStateClosed:
		query = query.Where("state = ? AND close_time <= ?", models.MarketStateOpen, now)
	case models.MarketStateDecryptionRequested, models.MarketStateSettled:
		query = query.Where("state = ?", filters.State)
	}

	if filters.Creator != "" {
		if creator, err := models.ParseAddress(filters.Creator); err == nil {
			query = query.Where("creator = ?", creator)
		}
	}

	return query
}
