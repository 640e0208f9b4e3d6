package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joefazee/veilbet/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// repository implements the Repository interface using GORM
type repository struct {
	db *gorm.DB
}

// NewRepository creates a new bet repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

// Create inserts a bet. Handle columns are unique across all markets.
func (r *repository) Create(ctx context.Context, bet *models.Bet) error {
	err := r.db.WithContext(ctx).Create(bet).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: ciphertext handle already backs a bet", models.ErrInvalidCiphertext)
	}
	return err
}

func (r *repository) GetByIndex(ctx context.Context, marketID uint64, index int64) (*models.Bet, error) {
	var bet models.Bet
	err := r.db.WithContext(ctx).
		Where("market_id = ? AND bet_index = ?", marketID, index).
		First(&bet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrBetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load bet %d/%d: %w", marketID, index, err)
	}
	return &bet, nil
}

func (r *repository) List(ctx context.Context, marketID uint64, filters *BetFilters) ([]models.Bet, int64, error) {
	var bets []models.Bet
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Bet{}).Where("market_id = ?", marketID)
	if filters.Bettor != "" {
		bettor, err := models.ParseAddress(filters.Bettor)
		if err != nil {
			return nil, 0, err
		}
		query = query.Where("bettor = ?", bettor)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("bet_index ASC").
		Offset((filters.Page - 1) * filters.PerPage).
		Limit(filters.PerPage).
		Find(&bets).Error
	return bets, total, err
}

func (r *repository) AllByMarket(ctx context.Context, marketID uint64) ([]models.Bet, error) {
	var bets []models.Bet
	err := r.db.WithContext(ctx).
		Where("market_id = ?", marketID).
		Order("bet_index ASC").
		Find(&bets).Error
	return bets, err
}

func (r *repository) EscrowTotals(ctx context.Context, marketID uint64) (decimal.Decimal, int64, error) {
	var amounts []decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&models.Bet{}).
		Where("market_id = ?", marketID).
		Pluck("escrow_amount", &amounts).Error
	if err != nil {
		return decimal.Zero, 0, fmt.Errorf("failed to sum escrow for market %d: %w", marketID, err)
	}

	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total, int64(len(amounts)), nil
}

func (r *repository) MarkWithdrawn(ctx context.Context, marketID uint64, index int64, amount decimal.Decimal, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Bet{}).
		Where("market_id = ? AND bet_index = ? AND withdrawn = ?", marketID, index, false).
		Updates(map[string]interface{}{
			"withdrawn":     true,
			"payout_amount": amount,
			"withdrawn_at":  at,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to mark bet %d/%d withdrawn: %w", marketID, index, result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *repository) RevertWithdrawn(ctx context.Context, marketID uint64, index int64) error {
	return r.db.WithContext(ctx).
		Model(&models.Bet{}).
		Where("market_id = ? AND bet_index = ? AND withdrawn = ?", marketID, index, true).
		Updates(map[string]interface{}{
			"withdrawn":     false,
			"payout_amount": nil,
			"withdrawn_at":  nil,
		}).Error
}

func (r *repository) SetPayoutReceipt(ctx context.Context, marketID uint64, index int64, receipt string) error {
	return r.db.WithContext(ctx).
		Model(&models.Bet{}).
		Where("market_id = ? AND bet_index = ?", marketID, index).
		Update("payout_receipt", receipt).Error
}
