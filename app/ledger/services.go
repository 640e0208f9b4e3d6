package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joefazee/veilbet/app/events"
	"github.com/joefazee/veilbet/app/markets"
	"github.com/joefazee/veilbet/internal/fhe"
	"github.com/joefazee/veilbet/internal/logger"
	"github.com/joefazee/veilbet/internal/rail"
	"github.com/joefazee/veilbet/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// service implements the Service interface
type service struct {
	repo    Repository
	markets markets.Repository
	events  events.Repository
	guard   *markets.Guard
	fhe     fhe.Service
	rail    rail.Rail
	config  *Config
	log     logger.Logger
	now     func() time.Time
}

// Option customizes the service
type Option func(*service)

// WithClock replaces time.Now, mostly for tests
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

// NewService creates a new bet ledger service
func NewService(repo Repository,
	marketRepo markets.Repository,
	eventRepo events.Repository,
	guard *markets.Guard,
	fheService fhe.Service,
	valueRail rail.Rail,
	config *Config,
	log logger.Logger,
	opts ...Option) Service {
	s := &service{
		repo:    repo,
		markets: marketRepo,
		events:  eventRepo,
		guard:   guard,
		fhe:     fheService,
		rail:    valueRail,
		config:  config,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PlaceBet escrows the public amount and folds the encrypted stake into the encrypted pools.
// The stake and side handles are consumed first, so they cannot back a second bet even when
// this one fails. The rail runs outside the market lock; a bet that cannot be recorded is refunded.
func (s *service) PlaceBet(ctx context.Context, marketID uint64, bettor models.Address, req *PlaceBetRequest) (*BetResponse, error) {
	escrow, stake, outcome, err := req.Parse()
	if err != nil {
		return nil, err
	}
	if bettor.IsZero() {
		return nil, models.ErrInvalidAddress
	}

	market, err := s.markets.GetByID(ctx, marketID)
	if err != nil {
		return nil, err
	}
	if err := market.CanAcceptBets(s.now()); err != nil {
		return nil, err
	}
	if err := market.CanTakeEscrow(escrow); err != nil {
		return nil, err
	}

	// a bet's handles may never back another bet, in this market or any other
	if err := s.fhe.Consume(ctx, stake, outcome); err != nil {
		return nil, ciphertextError(err)
	}

	receipt, err := s.rail.Escrow(ctx, bettor, escrow)
	if err != nil {
		return nil, fmt.Errorf("failed to escrow stake: %w", err)
	}

	var bet *models.Bet
	err = s.guard.Do(ctx, marketID, func(tx *gorm.DB, m *models.Market) error {
		if err := m.CanAcceptBets(s.now()); err != nil {
			return err
		}
		if err := m.CanTakeEscrow(escrow); err != nil {
			return err
		}

		yesPool, noPool, err := s.accumulate(ctx, m, stake, outcome)
		if err != nil {
			return err
		}

		index := m.RecordBet(escrow, yesPool, noPool)
		bet = &models.Bet{
			MarketID:         m.ID,
			Index:            index,
			Bettor:           bettor,
			EscrowAmount:     escrow,
			EncryptedStake:   stake,
			EncryptedOutcome: outcome,
			EscrowReceipt:    receipt.ID.String(),
		}
		if err := bet.Validate(); err != nil {
			return err
		}

		if err := s.repo.WithTx(tx).Create(ctx, bet); err != nil {
			return fmt.Errorf("failed to record bet: %w", err)
		}
		if err := s.markets.WithTx(tx).Update(ctx, m); err != nil {
			return fmt.Errorf("failed to update market totals: %w", err)
		}
		return s.events.WithTx(tx).Append(ctx, models.NewBetEvent(m.ID, index, bettor, models.EventBetPlaced, models.EventPayload{
			"escrow_amount": escrow.String(),
		}))
	})
	if err != nil {
		s.refund(ctx, marketID, bettor, escrow, err)
		return nil, err
	}

	s.log.Info("bet placed", map[string]interface{}{
		"market_id":     marketID,
		"bet_index":     bet.Index,
		"bettor":        bettor.Hex(),
		"escrow_amount": escrow.String(),
	})

	return ToBetResponse(bet), nil
}

// accumulate computes yes + select(outcome, stake, 0) and no + select(outcome, 0, stake).
func (s *service) accumulate(ctx context.Context, m *models.Market, stake, outcome fhe.Handle) (fhe.Handle, fhe.Handle, error) {
	zero, err := s.fhe.Zero(ctx)
	if err != nil {
		return fhe.Handle{}, fhe.Handle{}, fmt.Errorf("failed to encrypt zero: %w", err)
	}
	toYes, err := s.fhe.Select(ctx, outcome, stake, zero)
	if err != nil {
		return fhe.Handle{}, fhe.Handle{}, ciphertextError(err)
	}
	toNo, err := s.fhe.Select(ctx, outcome, zero, stake)
	if err != nil {
		return fhe.Handle{}, fhe.Handle{}, ciphertextError(err)
	}
	yesPool, err := s.fhe.Add(ctx, m.EncryptedYesPool, toYes)
	if err != nil {
		return fhe.Handle{}, fhe.Handle{}, fmt.Errorf("failed to add to yes pool: %w", err)
	}
	noPool, err := s.fhe.Add(ctx, m.EncryptedNoPool, toNo)
	if err != nil {
		return fhe.Handle{}, fhe.Handle{}, fmt.Errorf("failed to add to no pool: %w", err)
	}
	return yesPool, noPool, nil
}

func ciphertextError(err error) error {
	for _, target := range []error{
		fhe.ErrUnknownHandle,
		fhe.ErrTypeMismatch,
		fhe.ErrMalformedHandle,
		fhe.ErrNotClientInput,
		fhe.ErrHandleConsumed,
	} {
		if errors.Is(err, target) {
			return fmt.Errorf("%w: %v", models.ErrInvalidCiphertext, err)
		}
	}
	return fmt.Errorf("ciphertext operation failed: %w", err)
}

// refund returns an escrow whose bet was not recorded. It survives caller cancellation.
func (s *service) refund(ctx context.Context, marketID uint64, bettor models.Address, escrow decimal.Decimal, cause error) {
	refundCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.RefundTimeout)
	defer cancel()

	fields := map[string]interface{}{
		"market_id":     marketID,
		"bettor":        bettor.Hex(),
		"escrow_amount": escrow.String(),
		"cause":         cause.Error(),
	}

	if _, err := s.rail.Refund(refundCtx, bettor, escrow); err != nil {
		s.log.Error(fmt.Errorf("escrow refund failed: %w", err), fields)
		return
	}
	s.log.Warn("bet rejected, escrow refunded", fields)
}

func (s *service) GetBet(ctx context.Context, marketID uint64, index int64) (*BetResponse, error) {
	if _, err := s.markets.GetByID(ctx, marketID); err != nil {
		return nil, err
	}
	bet, err := s.repo.GetByIndex(ctx, marketID, index)
	if err != nil {
		return nil, err
	}
	return ToBetResponse(bet), nil
}

func (s *service) ListBets(ctx context.Context, marketID uint64, filters *BetFilters) (*BetListResponse, error) {
	if filters == nil {
		filters = &BetFilters{}
	}
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PerPage < 1 {
		filters.PerPage = s.config.DefaultPerPage
	}

	if _, err := s.markets.GetByID(ctx, marketID); err != nil {
		return nil, err
	}

	bets, total, err := s.repo.List(ctx, marketID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bets: %w", err)
	}

	return &BetListResponse{
		Bets:    ToBetResponseList(bets),
		Total:   total,
		Page:    filters.Page,
		PerPage: filters.PerPage,
	}, nil
}

// Reconcile recomputes escrow and bet count from the bet rows. A mismatch halts the market.
func (s *service) Reconcile(ctx context.Context, marketID uint64) (*ReconcileResponse, error) {
	var resp *ReconcileResponse
	err := s.guard.Do(ctx, marketID, func(tx *gorm.DB, m *models.Market) error {
		var err error
		resp, err = VerifyEscrow(ctx, s.repo.WithTx(tx), m)
		if err != nil {
			return err
		}
		if resp.Consistent {
			return nil
		}
		if err := markets.Halt(ctx, s.markets.WithTx(tx), s.events.WithTx(tx), m, resp.Reason()); err != nil {
			return err
		}
		resp.Halted = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !resp.Consistent {
		s.log.Error(models.ErrStateCorrupted, map[string]interface{}{
			"reason":          "escrow mismatch, market halted",
			"market_id":       marketID,
			"recorded_escrow": resp.RecordedEscrow.String(),
			"computed_escrow": resp.ComputedEscrow.String(),
			"recorded_count":  resp.RecordedCount,
			"computed_count":  resp.ComputedCount,
		})
		return resp, models.ErrStateCorrupted
	}
	return resp, nil
}

// VerifyEscrow compares the market counters against the bet rows visible to repo.
func VerifyEscrow(ctx context.Context, repo Repository, m *models.Market) (*ReconcileResponse, error) {
	total, count, err := repo.EscrowTotals(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	return &ReconcileResponse{
		MarketID:       m.ID,
		RecordedEscrow: m.TotalEscrow,
		ComputedEscrow: total,
		RecordedCount:  m.BetCount,
		ComputedCount:  count,
		Consistent:     m.TotalEscrow.Equal(total) && m.BetCount == count,
		Halted:         m.Halted,
	}, nil
}
