package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/joefazee/veilbet/internal/fhe"
	"github.com/joefazee/veilbet/models"
	"github.com/joefazee/veilbet/tests/suites"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type BetRepositoryTestSuite struct {
	suites.SQLiteTestSuite
	repo Repository
}

func TestBetRepository(t *testing.T) {
	suite.Run(t, new(BetRepositoryTestSuite))
}

func (s *BetRepositoryTestSuite) SetupTest() {
	s.SQLiteTestSuite.SetupTest()
	s.repo = NewRepository(s.DB)
}

func (s *BetRepositoryTestSuite) market() *models.Market {
	m := &models.Market{
		Question:         "Will the tunnel reopen?",
		CloseTime:        time.Now().Add(time.Hour).UTC(),
		FeeBps:           100,
		State:            models.MarketStateOpen,
		Creator:          models.Address{0xc0},
		EncryptedYesPool: fhe.Handle{0xee, 0x01},
		EncryptedNoPool:  fhe.Handle{0xee, 0x02},
	}
	s.Require().NoError(s.DB.Create(m).Error)
	return m
}

func (s *BetRepositoryTestSuite) bet(marketID uint64, index int64, stake, outcome fhe.Handle) *models.Bet {
	return &models.Bet{
		MarketID:         marketID,
		Index:            index,
		Bettor:           models.Address{0xb1},
		EscrowAmount:     decimal.NewFromInt(5),
		EncryptedStake:   stake,
		EncryptedOutcome: outcome,
	}
}

func (s *BetRepositoryTestSuite) TestHandlesAreUniqueAcrossMarkets() {
	ctx := context.Background()
	first, second := s.market(), s.market()
	stake, outcome := fhe.Handle{0x10}, fhe.Handle{0x20}

	s.Require().NoError(s.repo.Create(ctx, s.bet(first.ID, 0, stake, outcome)))

	err := s.repo.Create(ctx, s.bet(second.ID, 0, stake, fhe.Handle{0x21}))
	s.ErrorIs(err, models.ErrInvalidCiphertext)

	err = s.repo.Create(ctx, s.bet(second.ID, 0, fhe.Handle{0x11}, outcome))
	s.ErrorIs(err, models.ErrInvalidCiphertext)

	s.Require().NoError(s.repo.Create(ctx, s.bet(second.ID, 0, fhe.Handle{0x11}, fhe.Handle{0x21})))
	s.Equal(int64(2), s.CountRecords("bets"))
}
