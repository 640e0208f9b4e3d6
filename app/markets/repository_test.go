package markets

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/joefazee/veilbet/internal/fhe"
	"github.com/joefazee/veilbet/models"
	"github.com/joefazee/veilbet/tests/suites"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockRepository(t *testing.T) (Repository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return NewRepository(gormDB), mock
}

func TestRepositoryWithSQLMock(t *testing.T) {
	t.Run("GetForUpdate locks the row", func(t *testing.T) {
		repo, mock := newMockRepository(t)

		rows := sqlmock.NewRows([]string{"id", "question", "fee_bps", "state"}).
			AddRow(7, "Will it rain tomorrow?", 200, "open")
		mock.ExpectQuery(`SELECT \* FROM "markets" WHERE id = \$1 .*FOR UPDATE`).
			WillReturnRows(rows)

		m, err := repo.GetForUpdate(context.Background(), 7)
		require.NoError(t, err)
		assert.Equal(t, uint64(7), m.ID)
		assert.Equal(t, 200, m.FeeBps)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row maps to ErrMarketNotFound", func(t *testing.T) {
		repo, mock := newMockRepository(t)

		mock.ExpectQuery(`SELECT \* FROM "markets" WHERE id = \$1`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.GetByID(context.Background(), 99)
		assert.ErrorIs(t, err, models.ErrMarketNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("driver errors are wrapped", func(t *testing.T) {
		repo, mock := newMockRepository(t)

		boom := errors.New("connection reset")
		mock.ExpectQuery(`SELECT \* FROM "markets"`).WillReturnError(boom)

		_, err := repo.GetByID(context.Background(), 3)
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, models.ErrMarketNotFound)
		assert.Contains(t, err.Error(), "failed to load market 3")
	})
}

type MarketRepositoryPostgresTestSuite struct {
	suites.PostgresTestSuite
	repo Repository
}

func TestMarketRepositoryPostgres(t *testing.T) {
	suite.Run(t, new(MarketRepositoryPostgresTestSuite))
}

func (s *MarketRepositoryPostgresTestSuite) SetupTest() {
	s.PostgresTestSuite.SetupTest()
	s.repo = NewRepository(s.DB)
}

func (s *MarketRepositoryPostgresTestSuite) newMarket(closeTime time.Time) *models.Market {
	return &models.Market{
		Question:         "Will the harbour freeze this year?",
		CloseTime:        closeTime,
		FeeBps:           200,
		State:            models.MarketStateOpen,
		Creator:          models.Address{0xc0},
		TotalEscrow:      decimal.Zero,
		TotalPaidOut:     decimal.Zero,
		EncryptedYesPool: fhe.Handle{0x01},
		EncryptedNoPool:  fhe.Handle{0x02},
	}
}

func (s *MarketRepositoryPostgresTestSuite) TestMigrationsCreateEveryTable() {
	for _, table := range []string{"markets", "bets", "decryption_requests", "market_events", "wallets", "transactions"} {
		s.True(s.TableExists(table), table)
	}
}

func (s *MarketRepositoryPostgresTestSuite) TestRoundTripKeepsWeiPrecision() {
	ctx := context.Background()
	m := s.newMarket(time.Now().Add(time.Hour).UTC())
	s.Require().NoError(s.repo.Create(ctx, m))

	huge := decimal.RequireFromString("115792089237316195423570985008687907853269984665640564039457")
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		locked, err := s.repo.WithTx(tx).GetForUpdate(ctx, m.ID)
		if err != nil {
			return err
		}
		locked.TotalEscrow = huge
		return s.repo.WithTx(tx).Update(ctx, locked)
	})
	s.Require().NoError(err)

	got, err := s.repo.GetByID(ctx, m.ID)
	s.Require().NoError(err)
	s.True(huge.Equal(got.TotalEscrow))
	s.Equal(fhe.Handle{0x01}, got.EncryptedYesPool)
	s.Equal(m.Creator, got.Creator)
}

func (s *MarketRepositoryPostgresTestSuite) TestPaidOutCannotExceedEscrow() {
	ctx := context.Background()
	m := s.newMarket(time.Now().Add(time.Hour).UTC())
	s.Require().NoError(s.repo.Create(ctx, m))

	m.TotalPaidOut = decimal.NewFromInt(1)
	s.Error(s.repo.Update(ctx, m))
}

func (s *MarketRepositoryPostgresTestSuite) TestListDerivesClosedState() {
	ctx := context.Background()
	now := time.Now().UTC()
	s.Require().NoError(s.repo.Create(ctx, s.newMarket(now.Add(-time.Minute))))
	s.Require().NoError(s.repo.Create(ctx, s.newMarket(now.Add(time.Hour))))

	closed, total, err := s.repo.List(ctx, &MarketFilters{State: string(models.MarketStateClosed), Page: 1, PerPage: 10}, now)
	s.Require().NoError(err)
	s.Equal(int64(1), total)
	s.Len(closed, 1)
}
