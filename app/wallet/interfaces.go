package wallet

import (
	"context"

	"github.com/joefazee/veilbet/internal/rail"
	"github.com/joefazee/veilbet/models"
	"github.com/shopspring/decimal"
)

// Ledger is the part of the value rail that exposes accounts
type Ledger interface {
	Fund(ctx context.Context, to models.Address, amount decimal.Decimal) (rail.Receipt, error)
	Balance(ctx context.Context, addr models.Address) (decimal.Decimal, error)
	History(ctx context.Context, addr models.Address, limit int) ([]models.Transaction, error)
}

// Service exposes balances and the development faucet
type Service interface {
	GetBalance(ctx context.Context, addr models.Address) (*BalanceResponse, error)
	GetHistory(ctx context.Context, addr models.Address) ([]TransactionResponse, error)
	Fund(ctx context.Context, req *FundRequest) (*FundResponse, error)
}
