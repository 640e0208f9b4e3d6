package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joefazee/veilbet/app/events"
	"github.com/joefazee/veilbet/app/gateway"
	"github.com/joefazee/veilbet/app/ledger"
	"github.com/joefazee/veilbet/app/markets"
	"github.com/joefazee/veilbet/internal/logger"
	"github.com/joefazee/veilbet/internal/rail"
	"github.com/joefazee/veilbet/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// service implements the Service interface
type service struct {
	markets markets.Repository
	bets    ledger.Repository
	events  events.Repository
	guard   *markets.Guard
	gateway gateway.Service
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

// NewService creates a new settlement service
func NewService(marketRepo markets.Repository,
	betRepo ledger.Repository,
	eventRepo events.Repository,
	guard *markets.Guard,
	gatewayService gateway.Service,
	valueRail rail.Rail,
	config *Config,
	log logger.Logger,
	opts ...Option) Service {
	s := &service{
		markets: marketRepo,
		bets:    betRepo,
		events:  eventRepo,
		guard:   guard,
		gateway: gatewayService,
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

// Settle records the decrypted pools once the gateway has them. Escrow is reconciled first;
// a mismatch halts the market instead of settling it.
func (s *service) Settle(ctx context.Context, marketID uint64) (*SettleResult, error) {
	m, err := s.markets.GetByID(ctx, marketID)
	if err != nil {
		return nil, err
	}
	if err := m.CanSettle(s.now()); err != nil {
		return nil, err
	}

	decrypted, err := s.gateway.PollDecryptionResult(ctx, marketID)
	if err != nil {
		return nil, err
	}
	if !decrypted.Ready {
		return &SettleResult{MarketID: marketID, State: m.State, Pending: true}, nil
	}

	var (
		settled   *models.Market
		corrupted *ledger.ReconcileResponse
	)
	err = s.guard.Do(ctx, marketID, func(tx *gorm.DB, m *models.Market) error {
		now := s.now()
		if err := m.CanSettle(now); err != nil {
			return err
		}

		check, err := ledger.VerifyEscrow(ctx, s.bets.WithTx(tx), m)
		if err != nil {
			return err
		}
		if !check.Consistent {
			corrupted = check
			return markets.Halt(ctx, s.markets.WithTx(tx), s.events.WithTx(tx), m, check.Reason())
		}

		if err := m.Settle(*decrypted.YesPool, *decrypted.NoPool, now); err != nil {
			return err
		}
		if err := s.markets.WithTx(tx).Update(ctx, m); err != nil {
			return fmt.Errorf("failed to store settlement: %w", err)
		}
		settled = m
		return s.events.WithTx(tx).Append(ctx, models.NewMarketEvent(marketID, models.EventMarketSettled, models.EventPayload{
			"winner":   winnerLabel(*m.WinningOutcome),
			"yes_pool": decrypted.YesPool.String(),
			"no_pool":  decrypted.NoPool.String(),
		}))
	})
	if err != nil {
		return nil, err
	}

	if corrupted != nil {
		s.log.Error(models.ErrStateCorrupted, map[string]interface{}{
			"reason":          "escrow mismatch at settlement, market halted",
			"market_id":       marketID,
			"recorded_escrow": corrupted.RecordedEscrow.String(),
			"computed_escrow": corrupted.ComputedEscrow.String(),
		})
		return nil, models.ErrStateCorrupted
	}

	winner := winnerLabel(*settled.WinningOutcome)
	s.log.Info("market settled", map[string]interface{}{
		"market_id": marketID,
		"winner":    winner,
		"yes_pool":  decrypted.YesPool.String(),
		"no_pool":   decrypted.NoPool.String(),
	})

	if s.config.RevealOnSettle {
		if _, err := s.gateway.RevealAllOutcomes(ctx, marketID); err != nil {
			s.log.Warn("failed to request outcome reveals", map[string]interface{}{
				"market_id": marketID,
				"error":     err.Error(),
			})
		}
	}

	return &SettleResult{
		MarketID: marketID,
		State:    settled.State,
		Winner:   &winner,
		YesPool:  decrypted.YesPool,
		NoPool:   decrypted.NoPool,
	}, nil
}

func (s *service) GetDecryptedPools(ctx context.Context, marketID uint64) (*PoolsResponse, error) {
	m, err := s.markets.GetByID(ctx, marketID)
	if err != nil {
		return nil, err
	}
	pools, err := PoolsOf(m)
	if err != nil {
		return nil, err
	}
	return ToPoolsResponse(m, pools), nil
}

// CalculatePayout quotes a bet without touching the ledger. An unrevealed side triggers
// its reveal and reports ErrDecryptionNotReady.
func (s *service) CalculatePayout(ctx context.Context, marketID uint64, index int64) (*PayoutResponse, error) {
	m, err := s.markets.GetByID(ctx, marketID)
	if err != nil {
		return nil, err
	}
	pools, err := PoolsOf(m)
	if err != nil {
		return nil, err
	}
	bet, err := s.bets.GetByIndex(ctx, marketID, index)
	if err != nil {
		return nil, err
	}
	return s.quote(ctx, pools, bet)
}

func (s *service) quote(ctx context.Context, pools Pools, bet *models.Bet) (*PayoutResponse, error) {
	resp := &PayoutResponse{
		MarketID:  bet.MarketID,
		Index:     bet.Index,
		Bettor:    bet.Bettor,
		Amount:    decimal.Zero,
		Withdrawn: bet.Withdrawn,
	}
	if bet.Withdrawn {
		return resp, nil
	}

	betOnYes, err := s.revealedSide(ctx, bet)
	if err != nil {
		return nil, err
	}
	if betOnYes != pools.YesWins {
		return resp, nil
	}

	resp.Won = true
	resp.Amount = pools.Payout(bet.EscrowAmount)
	return resp, nil
}

func (s *service) revealedSide(ctx context.Context, bet *models.Bet) (bool, error) {
	result, err := s.gateway.PollOutcome(ctx, bet.MarketID, bet.Index)
	if errors.Is(err, models.ErrDecryptionNotRequested) {
		if _, err := s.gateway.RequestOutcomeReveal(ctx, bet.MarketID, bet.Index); err != nil {
			return false, err
		}
		return false, models.ErrDecryptionNotReady
	}
	if err != nil {
		return false, err
	}
	if !result.Ready {
		return false, models.ErrDecryptionNotReady
	}
	return *result.Outcome, nil
}

// Withdraw pays a winning bet exactly once.
func (s *service) Withdraw(ctx context.Context, marketID uint64, index int64, caller models.Address) (*WithdrawResponse, error) {
	m, err := s.markets.GetByID(ctx, marketID)
	if err != nil {
		return nil, err
	}
	if !m.IsSettled() {
		return nil, models.ErrMarketNotSettled
	}
	return s.withdraw(ctx, m, index, caller, models.ErrNoPayout)
}

// WithdrawUnsafe settles inline when the pools are already being decrypted. Anything still
// pending surfaces as ErrDecryptionNotReady and a losing bet as ErrBetDidNotWin.
func (s *service) WithdrawUnsafe(ctx context.Context, marketID uint64, index int64, caller models.Address) (*WithdrawResponse, error) {
	m, err := s.markets.GetByID(ctx, marketID)
	if err != nil {
		return nil, err
	}

	switch m.EffectiveState(s.now()) {
	case models.MarketStateOpen:
		return nil, models.ErrMarketStillOpen
	case models.MarketStateClosed:
		return nil, models.ErrDecryptionNotRequested
	case models.MarketStateDecryptionRequested:
		result, err := s.Settle(ctx, marketID)
		if err != nil && !errors.Is(err, models.ErrAlreadySettled) {
			return nil, err
		}
		if result != nil && result.Pending {
			return nil, models.ErrDecryptionNotReady
		}
		if m, err = s.markets.GetByID(ctx, marketID); err != nil {
			return nil, err
		}
	}

	return s.withdraw(ctx, m, index, caller, models.ErrBetDidNotWin)
}

// withdraw marks the bet and reserves the amount in one committed transaction, then pays
// through the rail with the market unlocked. A failed payout is compensated.
func (s *service) withdraw(ctx context.Context, m *models.Market, index int64, caller models.Address, losing error) (*WithdrawResponse, error) {
	if m.Halted {
		return nil, models.ErrStateCorrupted
	}
	pools, err := PoolsOf(m)
	if err != nil {
		return nil, err
	}

	bet, err := s.bets.GetByIndex(ctx, m.ID, index)
	if err != nil {
		return nil, err
	}
	if !bet.IsOwnedBy(caller) {
		return nil, models.ErrNotBetOwner
	}
	if bet.Withdrawn {
		return nil, models.ErrAlreadyWithdrawn
	}

	quote, err := s.quote(ctx, pools, bet)
	if err != nil {
		return nil, err
	}
	if !quote.Won {
		return nil, losing
	}
	if !quote.Amount.IsPositive() {
		return nil, models.ErrNoPayout
	}

	var amount decimal.Decimal
	err = s.guard.Do(ctx, m.ID, func(tx *gorm.DB, locked *models.Market) error {
		if locked.Halted {
			return models.ErrStateCorrupted
		}
		amount = decimal.Min(quote.Amount, pools.Available(locked.TotalPaidOut))
		if !amount.IsPositive() {
			return models.ErrNoPayout
		}

		marked, err := s.bets.WithTx(tx).MarkWithdrawn(ctx, m.ID, index, amount, s.now())
		if err != nil {
			return err
		}
		if !marked {
			return models.ErrAlreadyWithdrawn
		}

		locked.TotalPaidOut = locked.TotalPaidOut.Add(amount)
		if err := s.markets.WithTx(tx).Update(ctx, locked); err != nil {
			return fmt.Errorf("failed to reserve payout: %w", err)
		}
		return s.events.WithTx(tx).Append(ctx, models.NewBetEvent(m.ID, index, caller, models.EventPayoutWithdrawn, models.EventPayload{
			"amount": amount.String(),
		}))
	})
	if err != nil {
		return nil, err
	}

	receipt, err := s.rail.Payout(ctx, caller, amount)
	if err != nil {
		s.rollback(ctx, m.ID, index, caller, amount, err)
		return nil, fmt.Errorf("failed to pay out: %w", err)
	}

	if err := s.bets.SetPayoutReceipt(ctx, m.ID, index, receipt.ID.String()); err != nil {
		s.log.Warn("failed to store payout receipt", map[string]interface{}{
			"market_id": m.ID,
			"bet_index": index,
			"receipt":   receipt.ID.String(),
			"error":     err.Error(),
		})
	}

	s.log.Info("payout withdrawn", map[string]interface{}{
		"market_id": m.ID,
		"bet_index": index,
		"bettor":    caller.Hex(),
		"amount":    amount.String(),
	})

	return &WithdrawResponse{
		MarketID: m.ID,
		Index:    index,
		Bettor:   caller,
		Amount:   amount,
		Receipt:  receipt.ID,
	}, nil
}

// rollback undoes a reservation whose payout never left escrow.
func (s *service) rollback(ctx context.Context, marketID uint64, index int64, caller models.Address, amount decimal.Decimal, cause error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.PayoutTimeout)
	defer cancel()

	err := s.guard.Do(ctx, marketID, func(tx *gorm.DB, m *models.Market) error {
		if err := s.bets.WithTx(tx).RevertWithdrawn(ctx, marketID, index); err != nil {
			return err
		}
		m.TotalPaidOut = m.TotalPaidOut.Sub(amount)
		if err := s.markets.WithTx(tx).Update(ctx, m); err != nil {
			return err
		}
		return s.events.WithTx(tx).Append(ctx, models.NewBetEvent(marketID, index, caller, models.EventPayoutRolledBack, models.EventPayload{
			"amount": amount.String(),
			"cause":  cause.Error(),
		}))
	})

	fields := map[string]interface{}{
		"market_id": marketID,
		"bet_index": index,
		"amount":    amount.String(),
		"cause":     cause.Error(),
	}
	if err != nil {
		s.log.Error(fmt.Errorf("payout rollback failed: %w", err), fields)
		return
	}
	s.log.Warn("payout failed, withdrawal rolled back", fields)
}
