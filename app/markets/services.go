package markets

import (
	"context"
	"fmt"
	"time"

	"github.com/joefazee/veilbet/app/events"
	"github.com/joefazee/veilbet/internal/fhe"
	"github.com/joefazee/veilbet/internal/logger"
	"github.com/joefazee/veilbet/internal/validator"
	"github.com/joefazee/veilbet/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// service implements the Service interface
type service struct {
	db     *gorm.DB
	repo   Repository
	events events.Repository
	fhe    fhe.Service
	config *Config
	log    logger.Logger
	now    func() time.Time
}

// Option customizes the service
type Option func(*service)

// WithClock replaces time.Now, mostly for tests
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

// NewService creates a new market registry service
func NewService(db *gorm.DB,
	repo Repository,
	eventRepo events.Repository,
	fheService fhe.Service,
	config *Config,
	log logger.Logger,
	opts ...Option) Service {
	s := &service{
		db:     db,
		repo:   repo,
		events: eventRepo,
		fhe:    fheService,
		config: config,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateMarket opens a market with both pools set to fresh encryptions of zero
func (s *service) CreateMarket(ctx context.Context, creator models.Address, req *CreateMarketRequest) (*MarketResponse, error) {
	now := s.now()
	closeTime := req.CloseTime.UTC()

	if !validator.NotBlank(req.Question) ||
		!validator.MinRunes(req.Question, s.config.MinQuestionLength) ||
		!validator.MaxRunes(req.Question, s.config.MaxQuestionLength) {
		return nil, models.ErrInvalidQuestion
	}
	if err := s.validateCloseTime(closeTime, now); err != nil {
		return nil, err
	}
	if req.FeeBps == nil || *req.FeeBps < 0 || *req.FeeBps > s.config.MaxFeeBps {
		return nil, models.ErrInvalidFeeBps
	}

	yesPool, err := s.fhe.Zero(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialise yes pool: %w", err)
	}
	noPool, err := s.fhe.Zero(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialise no pool: %w", err)
	}

	market := &models.Market{
		Question:         req.Question,
		CloseTime:        closeTime,
		FeeBps:           *req.FeeBps,
		State:            models.MarketStateOpen,
		Creator:          creator,
		TotalEscrow:      decimal.Zero,
		TotalPaidOut:     decimal.Zero,
		EncryptedYesPool: yesPool,
		EncryptedNoPool:  noPool,
	}
	if err := market.Validate(); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, market); err != nil {
			return fmt.Errorf("failed to create market: %w", err)
		}
		return s.events.WithTx(tx).Append(ctx, models.NewMarketEvent(market.ID, models.EventMarketCreated, models.EventPayload{
			"question":   market.Question,
			"close_time": market.CloseTime,
			"fee_bps":    market.FeeBps,
			"creator":    market.Creator.Hex(),
		}))
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("market created", map[string]interface{}{
		"market_id":  market.ID,
		"close_time": market.CloseTime,
		"fee_bps":    market.FeeBps,
	})

	return ToMarketResponse(market, now), nil
}

func (s *service) validateCloseTime(closeTime, now time.Time) error {
	if !closeTime.After(now.Add(s.config.MinMarketDuration)) {
		return fmt.Errorf("%w: must be more than %s in the future", models.ErrInvalidCloseTime, s.config.MinMarketDuration)
	}
	if closeTime.After(now.Add(s.config.MaxMarketDuration)) {
		return fmt.Errorf("%w: must be within %s", models.ErrInvalidCloseTime, s.config.MaxMarketDuration)
	}
	return nil
}

func (s *service) GetMarketInfo(ctx context.Context, id uint64) (*MarketInfoResponse, error) {
	market, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToMarketInfoResponse(market, s.now()), nil
}

func (s *service) GetMarket(ctx context.Context, id uint64) (*MarketResponse, error) {
	market, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToMarketResponse(market, s.now()), nil
}

func (s *service) ListMarkets(ctx context.Context, filters *MarketFilters) (*MarketListResponse, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PerPage < 1 {
		filters.PerPage = s.config.DefaultPerPage
	}

	now := s.now()
	markets, total, err := s.repo.List(ctx, filters, now)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch markets: %w", err)
	}

	return &MarketListResponse{
		Markets: ToMarketResponseList(markets, now),
		Total:   total,
		Page:    filters.Page,
		PerPage: filters.PerPage,
	}, nil
}

func (s *service) ListEvents(ctx context.Context, id uint64, filters *EventFilters) (*EventListResponse, error) {
	if filters == nil {
		filters = &EventFilters{Page: 1, PerPage: 50}
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	list, total, err := s.events.ListByMarket(ctx, id, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch market events: %w", err)
	}

	return &EventListResponse{
		Events:  events.ToEventResponseList(list),
		Total:   total,
		Page:    filters.Page,
		PerPage: filters.PerPage,
	}, nil
}
