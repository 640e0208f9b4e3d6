package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/joefazee/veilbet/models"
	"gorm.io/gorm"
)

// repository implements the Repository interface using GORM
type repository struct {
	db *gorm.DB
}

// NewRepository creates a new decryption request repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, req *models.DecryptionRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *repository) Get(ctx context.Context, marketID uint64, kind models.DecryptionKind, betIndex int64) (*models.DecryptionRequest, error) {
	var req models.DecryptionRequest
	err := r.db.WithContext(ctx).
		Where("market_id = ? AND kind = ? AND bet_index = ?", marketID, kind, betIndex).
		First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load decryption request: %w", err)
	}
	return &req, nil
}

func (r *repository) Complete(ctx context.Context, req *models.DecryptionRequest) error {
	return r.db.WithContext(ctx).
		Model(&models.DecryptionRequest{}).
		Where("id = ? AND status = ?", req.ID, models.DecryptionStatusPending).
		Updates(map[string]interface{}{
			"status":       req.Status,
			"result":       req.Result,
			"completed_at": req.CompletedAt,
		}).Error
}

func (r *repository) CountByMarket(ctx context.Context, marketID uint64, kind models.DecryptionKind) (int64, int64, error) {
	var total, ready int64
	base := r.db.WithContext(ctx).Model(&models.DecryptionRequest{}).
		Where("market_id = ? AND kind = ?", marketID, kind)

	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	if err := base.Session(&gorm.Session{}).Where("status = ?", models.DecryptionStatusReady).Count(&ready).Error; err != nil {
		return 0, 0, err
	}
	return total, ready, nil
}
