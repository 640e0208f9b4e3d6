package wallet

import (
	"context"
	"testing"

	"github.com/joefazee/veilbet/internal/logger"
	"github.com/joefazee/veilbet/internal/rail"
	"github.com/joefazee/veilbet/models"
	"github.com/joefazee/veilbet/tests/suites"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type WalletServiceTestSuite struct {
	suites.SQLiteTestSuite
	rail    *rail.LedgerRail
	service Service
	alice   models.Address
}

func TestWalletService(t *testing.T) {
	suite.Run(t, new(WalletServiceTestSuite))
}

func (s *WalletServiceTestSuite) SetupTest() {
	s.SQLiteTestSuite.SetupTest()
	s.rail = rail.NewLedgerRail(s.DB, models.Address{})
	s.service = NewService(s.rail, GetDefaultConfig(), logger.NewNullLogger())
	s.alice = models.Address{0xa1}
}

func (s *WalletServiceTestSuite) TestFundAndBalance() {
	ctx := context.Background()

	resp, err := s.service.Fund(ctx, &FundRequest{Address: s.alice.Hex(), Amount: "1000"})
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(1000).Equal(resp.Balance))
	s.NotEmpty(resp.Receipt)

	balance, err := s.service.GetBalance(ctx, s.alice)
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(1000).Equal(balance.Balance))
}

func (s *WalletServiceTestSuite) TestFundRejectsBadAmounts() {
	ctx := context.Background()

	for _, amount := range []string{"0", "-5", "1.5", "nope", "10000000000000000001"} {
		_, err := s.service.Fund(ctx, &FundRequest{Address: s.alice.Hex(), Amount: amount})
		s.ErrorIs(err, models.ErrInvalidTransferAmount, amount)
	}
	s.Equal(int64(0), s.CountRecords("transactions"))
}

func (s *WalletServiceTestSuite) TestHistoryDirection() {
	ctx := context.Background()

	_, err := s.service.Fund(ctx, &FundRequest{Address: s.alice.Hex(), Amount: "500"})
	s.Require().NoError(err)
	_, err = s.rail.Escrow(ctx, s.alice, decimal.NewFromInt(200))
	s.Require().NoError(err)

	history, err := s.service.GetHistory(ctx, s.alice)
	s.Require().NoError(err)
	s.Require().Len(history, 2)

	directions := map[models.TransactionType]string{}
	balances := map[models.TransactionType]decimal.Decimal{}
	for _, t := range history {
		directions[t.Type] = t.Direction
		balances[t.Type] = t.Balance
	}
	s.Equal("in", directions[models.TransactionTypeFund])
	s.Equal("out", directions[models.TransactionTypeEscrow])
	s.True(decimal.NewFromInt(300).Equal(balances[models.TransactionTypeEscrow]))
}

func TestConfigValidate(t *testing.T) {
	c := GetDefaultConfig()
	if err := c.Validate(); err != nil {
		t.Fatalf("default config: %v", err)
	}

	for _, limit := range []string{"", "0", "1.5", "abc"} {
		c := GetDefaultConfig()
		c.FaucetLimit = limit
		if err := c.Validate(); err != ErrInvalidFaucetLimit {
			t.Fatalf("limit %q: got %v", limit, err)
		}
	}
}
