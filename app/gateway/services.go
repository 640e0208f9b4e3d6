package gateway

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/joefazee/veilbet/app/events"
	"github.com/joefazee/veilbet/app/ledger"
	"github.com/joefazee/veilbet/app/markets"
	"github.com/joefazee/veilbet/internal/cache"
	"github.com/joefazee/veilbet/internal/fhe"
	"github.com/joefazee/veilbet/internal/lock"
	"github.com/joefazee/veilbet/internal/logger"
	"github.com/joefazee/veilbet/models"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// service implements the Service interface
type service struct {
	repo    Repository
	markets markets.Repository
	bets    ledger.Repository
	events  events.Repository
	guard   *markets.Guard
	locker  lock.Locker
	fhe     fhe.Service
	results cache.Cache[[]uint64]
	limiter *rate.Limiter
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

// NewService creates a new decryption gateway
func NewService(repo Repository,
	marketRepo markets.Repository,
	betRepo ledger.Repository,
	eventRepo events.Repository,
	guard *markets.Guard,
	locker lock.Locker,
	fheService fhe.Service,
	results cache.Cache[[]uint64],
	config *Config,
	log logger.Logger,
	opts ...Option) Service {
	s := &service{
		repo:    repo,
		markets: marketRepo,
		bets:    betRepo,
		events:  eventRepo,
		guard:   guard,
		locker:  locker,
		fhe:     fheService,
		results: results,
		limiter: rate.NewLimiter(rate.Limit(config.PollRate), config.PollBurst),
		config:  config,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RequestDecryption submits both pool handles in one request and moves the market to
// DecryptionRequested. Calling it again returns the existing request.
func (s *service) RequestDecryption(ctx context.Context, marketID uint64) (*DecryptionStatusResponse, error) {
	var resp *DecryptionStatusResponse
	err := s.guard.Do(ctx, marketID, func(tx *gorm.DB, m *models.Market) error {
		now := s.now()
		if err := m.CanRequestDecryption(now); err != nil {
			return err
		}

		repo := s.repo.WithTx(tx)
		existing, err := repo.Get(ctx, marketID, models.DecryptionKindPools, models.PoolsTarget)
		if err == nil {
			resp = &DecryptionStatusResponse{
				MarketID:         marketID,
				State:            models.MarketStateDecryptionRequested,
				AlreadyRequested: true,
				RequestedAt:      existing.CreatedAt,
			}
			if m.State == models.MarketStateDecryptionRequested {
				return nil
			}
			if err := m.MarkDecryptionRequested(now); err != nil {
				return err
			}
			return s.markets.WithTx(tx).Update(ctx, m)
		}
		if !errors.Is(err, models.ErrRecordNotFound) {
			return err
		}

		token, err := s.fhe.RequestDecrypt(ctx, m.EncryptedYesPool, m.EncryptedNoPool)
		if err != nil {
			return fmt.Errorf("failed to submit pool decryption: %w", err)
		}
		req := &models.DecryptionRequest{
			MarketID:  marketID,
			Kind:      models.DecryptionKindPools,
			BetIndex:  models.PoolsTarget,
			Token:     string(token),
			CreatedAt: now,
		}
		if err := repo.Create(ctx, req); err != nil {
			return fmt.Errorf("failed to persist decryption request: %w", err)
		}

		if err := m.MarkDecryptionRequested(now); err != nil {
			return err
		}
		if err := s.markets.WithTx(tx).Update(ctx, m); err != nil {
			return fmt.Errorf("failed to update market state: %w", err)
		}
		if err := s.events.WithTx(tx).Append(ctx, models.NewMarketEvent(marketID, models.EventDecryptionRequested, models.EventPayload{
			"bet_count":    m.BetCount,
			"total_escrow": m.TotalEscrow.String(),
		})); err != nil {
			return err
		}

		resp = &DecryptionStatusResponse{
			MarketID:    marketID,
			State:       m.State,
			RequestedAt: req.CreatedAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !resp.AlreadyRequested {
		s.log.Info("pool decryption requested", map[string]interface{}{
			"market_id": marketID,
		})
	}
	return resp, nil
}

func (s *service) PollDecryptionResult(ctx context.Context, marketID uint64) (*PoolsResult, error) {
	key := poolsKey(marketID)
	if values, err := s.results.Get(ctx, key); err == nil && len(values) == 2 {
		return poolsResult(marketID, values), nil
	}

	m, err := s.markets.GetByID(ctx, marketID)
	if err != nil {
		return nil, err
	}

	req, err := s.repo.Get(ctx, marketID, models.DecryptionKindPools, models.PoolsTarget)
	if errors.Is(err, models.ErrRecordNotFound) {
		if m.EffectiveState(s.now()) == models.MarketStateOpen {
			return nil, models.ErrMarketStillOpen
		}
		return nil, models.ErrDecryptionNotRequested
	}
	if err != nil {
		return nil, err
	}

	values, ready, err := s.poll(ctx, req, key)
	if err != nil {
		return nil, err
	}
	if !ready {
		return &PoolsResult{MarketID: marketID}, nil
	}
	if len(values) != 2 {
		return nil, fmt.Errorf("pool decryption returned %d values", len(values))
	}
	return poolsResult(marketID, values), nil
}

// poll returns a request's plaintexts, asking the service only when none were stored
// and the outbound budget allows it.
func (s *service) poll(ctx context.Context, req *models.DecryptionRequest, key string) ([]uint64, bool, error) {
	if req.IsReady() {
		s.remember(ctx, key, req.Result)
		return req.Result, true, nil
	}

	if !s.limiter.Allow() {
		return nil, false, nil
	}

	values, ready, err := s.fhe.PollDecrypt(ctx, fhe.RequestToken(req.Token))
	if err != nil {
		return nil, false, fmt.Errorf("failed to poll decryption: %w", err)
	}
	if !ready {
		return nil, false, nil
	}

	req.Complete(values, s.now())
	if err := s.repo.Complete(ctx, req); err != nil {
		return nil, false, fmt.Errorf("failed to store decryption result: %w", err)
	}
	s.remember(ctx, key, values)

	s.log.Debug("decryption result observed", map[string]interface{}{
		"market_id": req.MarketID,
		"kind":      string(req.Kind),
		"bet_index": req.BetIndex,
	})
	return values, true, nil
}

func (s *service) remember(ctx context.Context, key string, values []uint64) {
	if err := s.results.Set(ctx, key, values, 0); err != nil {
		s.log.Warn("failed to cache decryption result", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}

// RequestOutcomeReveal asks the network to decrypt one bet's side after settlement.
func (s *service) RequestOutcomeReveal(ctx context.Context, marketID uint64, index int64) (*RevealStatus, error) {
	m, err := s.markets.GetByID(ctx, marketID)
	if err != nil {
		return nil, err
	}
	if !m.IsSettled() {
		return nil, models.ErrMarketNotSettled
	}
	return s.requestOutcome(ctx, marketID, index)
}

func (s *service) requestOutcome(ctx context.Context, marketID uint64, index int64) (*RevealStatus, error) {
	unlock, err := s.locker.Acquire(ctx, revealKey(marketID, index))
	if err != nil {
		return nil, err
	}
	defer unlock()

	existing, err := s.repo.Get(ctx, marketID, models.DecryptionKindOutcome, index)
	if err == nil {
		return &RevealStatus{MarketID: marketID, Index: index, AlreadyRequested: true, Ready: existing.IsReady()}, nil
	}
	if !errors.Is(err, models.ErrRecordNotFound) {
		return nil, err
	}

	bet, err := s.bets.GetByIndex(ctx, marketID, index)
	if err != nil {
		return nil, err
	}

	token, err := s.fhe.RequestDecrypt(ctx, bet.EncryptedOutcome)
	if err != nil {
		return nil, fmt.Errorf("failed to submit outcome reveal: %w", err)
	}
	req := &models.DecryptionRequest{
		MarketID:  marketID,
		Kind:      models.DecryptionKindOutcome,
		BetIndex:  index,
		Token:     string(token),
		CreatedAt: s.now(),
	}
	if err := s.repo.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to persist outcome reveal: %w", err)
	}
	return &RevealStatus{MarketID: marketID, Index: index}, nil
}

func revealKey(marketID uint64, index int64) string {
	return lock.MarketKey(marketID) + ":reveal:" + strconv.FormatInt(index, 10)
}

func (s *service) PollOutcome(ctx context.Context, marketID uint64, index int64) (*OutcomeResult, error) {
	key := outcomeKey(marketID, index)
	if values, err := s.results.Get(ctx, key); err == nil && len(values) == 1 {
		return outcomeResult(marketID, index, values), nil
	}

	m, err := s.markets.GetByID(ctx, marketID)
	if err != nil {
		return nil, err
	}
	if !m.IsSettled() {
		return nil, models.ErrMarketNotSettled
	}

	req, err := s.repo.Get(ctx, marketID, models.DecryptionKindOutcome, index)
	if errors.Is(err, models.ErrRecordNotFound) {
		if _, err := s.bets.GetByIndex(ctx, marketID, index); err != nil {
			return nil, err
		}
		return nil, models.ErrDecryptionNotRequested
	}
	if err != nil {
		return nil, err
	}

	values, ready, err := s.poll(ctx, req, key)
	if err != nil {
		return nil, err
	}
	if !ready {
		return &OutcomeResult{MarketID: marketID, Index: index}, nil
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("outcome reveal returned %d values", len(values))
	}
	return outcomeResult(marketID, index, values), nil
}

// RevealAllOutcomes submits a reveal for every bet with bounded concurrency.
func (s *service) RevealAllOutcomes(ctx context.Context, marketID uint64) (*RevealSummary, error) {
	m, err := s.markets.GetByID(ctx, marketID)
	if err != nil {
		return nil, err
	}
	if !m.IsSettled() {
		return nil, models.ErrMarketNotSettled
	}

	bets, err := s.bets.AllByMarket(ctx, marketID)
	if err != nil {
		return nil, fmt.Errorf("failed to load bets: %w", err)
	}

	var submitted atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.RevealFanOut)
	for i := range bets {
		index := bets[i].Index
		g.Go(func() error {
			status, err := s.requestOutcome(gctx, marketID, index)
			if err != nil {
				return fmt.Errorf("bet %d: %w", index, err)
			}
			if !status.AlreadyRequested {
				submitted.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	requested, ready, err := s.repo.CountByMarket(ctx, marketID, models.DecryptionKindOutcome)
	if err != nil {
		return nil, err
	}

	if n := submitted.Load(); n > 0 {
		s.log.Info("outcome reveals requested", map[string]interface{}{
			"market_id": marketID,
			"submitted": n,
		})
	}

	return &RevealSummary{
		MarketID:  marketID,
		Bets:      int64(len(bets)),
		Submitted: submitted.Load(),
		Requested: requested,
		Ready:     ready,
	}, nil
}

// Encrypt produces a ciphertext the way a client would before placing a bet.
func (s *service) Encrypt(ctx context.Context, req *EncryptRequest) (*EncryptResponse, error) {
	var (
		handle fhe.Handle
		err    error
	)
	switch req.Type {
	case "bool":
		v, perr := strconv.ParseBool(req.Value)
		if perr != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrInvalidCiphertext, perr)
		}
		handle, err = s.fhe.EncryptBool(ctx, v)
	default:
		v, perr := strconv.ParseUint(req.Value, 10, 64)
		if perr != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrInvalidCiphertext, perr)
		}
		handle, err = s.fhe.EncryptUint64(ctx, v)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt: %w", err)
	}
	return &EncryptResponse{Type: req.Type, Handle: handle}, nil
}
