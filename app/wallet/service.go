package wallet

import (
	"context"
	"fmt"

	"github.com/joefazee/veilbet/internal/logger"
	"github.com/joefazee/veilbet/models"
	"github.com/shopspring/decimal"
)

type service struct {
	ledger Ledger
	config *Config
	log    logger.Logger
}

// NewService creates a new wallet service
func NewService(ledger Ledger, config *Config, log logger.Logger) Service {
	return &service{
		ledger: ledger,
		config: config,
		log:    log,
	}
}

func (s *service) GetBalance(ctx context.Context, addr models.Address) (*BalanceResponse, error) {
	balance, err := s.ledger.Balance(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}
	return &BalanceResponse{Address: addr, Balance: balance}, nil
}

func (s *service) GetHistory(ctx context.Context, addr models.Address) ([]TransactionResponse, error) {
	history, err := s.ledger.History(ctx, addr, s.config.HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}

	resp := make([]TransactionResponse, len(history))
	for i := range history {
		resp[i] = ToTransactionResponse(addr, &history[i])
	}
	return resp, nil
}

// Fund credits an address from nothing. Only mounted when the faucet is enabled.
func (s *service) Fund(ctx context.Context, req *FundRequest) (*FundResponse, error) {
	addr, err := models.ParseAddress(req.Address)
	if err != nil {
		return nil, err
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !models.IsWholePositive(amount) {
		return nil, models.ErrInvalidTransferAmount
	}
	if amount.GreaterThan(s.config.Limit()) {
		return nil, fmt.Errorf("%w: faucet limit is %s", models.ErrInvalidTransferAmount, s.config.FaucetLimit)
	}

	receipt, err := s.ledger.Fund(ctx, addr, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to fund wallet: %w", err)
	}

	balance, err := s.ledger.Balance(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}

	s.log.Info("wallet funded", map[string]interface{}{
		"address": addr.Hex(),
		"amount":  amount.String(),
	})

	return &FundResponse{
		Address: addr,
		Amount:  amount,
		Balance: balance,
		Receipt: receipt.ID,
	}, nil
}
