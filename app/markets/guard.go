package markets

import (
	"context"
	"fmt"

	"github.com/joefazee/veilbet/app/events"
	"github.com/joefazee/veilbet/internal/lock"
	"github.com/joefazee/veilbet/models"
	"gorm.io/gorm"
)

// Guard serializes mutations of a single market: a keyed lock, then a transaction
// holding the market row. Other markets proceed in parallel.
type Guard struct {
	db     *gorm.DB
	locker lock.Locker
	repo   Repository
}

func NewGuard(db *gorm.DB, locker lock.Locker, repo Repository) *Guard {
	return &Guard{db: db, locker: locker, repo: repo}
}

// Do runs fn with the freshly loaded market. fn's error rolls the transaction back.
func (g *Guard) Do(ctx context.Context, marketID uint64, fn func(tx *gorm.DB, market *models.Market) error) error {
	unlock, err := g.locker.Acquire(ctx, lock.MarketKey(marketID))
	if err != nil {
		return fmt.Errorf("failed to lock market %d: %w", marketID, err)
	}
	defer unlock()

	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		market, err := g.repo.WithTx(tx).GetForUpdate(ctx, marketID)
		if err != nil {
			return err
		}
		return fn(tx, market)
	})
}

// Halt freezes the market and records why. repo and eventRepo must share the caller's transaction.
func Halt(ctx context.Context, repo Repository, eventRepo events.Repository, market *models.Market, reason string) error {
	if market.Halted {
		return nil
	}
	market.Halt(reason)
	if err := repo.Update(ctx, market); err != nil {
		return fmt.Errorf("failed to halt market %d: %w", market.ID, err)
	}
	return eventRepo.Append(ctx, models.NewMarketEvent(market.ID, models.EventMarketHalted, models.EventPayload{
		"reason": reason,
	}))
}
