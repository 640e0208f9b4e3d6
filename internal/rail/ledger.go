package rail

import (
	"context"
	"errors"
	"fmt"

	"github.com/joefazee/veilbet/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// mintAccount is the source of faucet credits.
var mintAccount = models.Address{}

// LedgerRail is a double-entry wallet ledger kept in the application database.
type LedgerRail struct {
	db            *gorm.DB
	escrowAccount models.Address
}

var _ Rail = (*LedgerRail)(nil)

func NewLedgerRail(db *gorm.DB, escrowAccount models.Address) *LedgerRail {
	if escrowAccount.IsZero() {
		escrowAccount = DefaultEscrowAccount
	}
	return &LedgerRail{db: db, escrowAccount: escrowAccount}
}

// EscrowAccount returns the address holding escrowed stakes.
func (l *LedgerRail) EscrowAccount() models.Address {
	return l.escrowAccount
}

func (l *LedgerRail) Escrow(ctx context.Context, from models.Address, amount decimal.Decimal) (Receipt, error) {
	return l.transfer(ctx, models.TransactionTypeEscrow, from, l.escrowAccount, amount)
}

func (l *LedgerRail) Payout(ctx context.Context, to models.Address, amount decimal.Decimal) (Receipt, error) {
	return l.transfer(ctx, models.TransactionTypePayout, l.escrowAccount, to, amount)
}

func (l *LedgerRail) Refund(ctx context.Context, to models.Address, amount decimal.Decimal) (Receipt, error) {
	return l.transfer(ctx, models.TransactionTypeRefund, l.escrowAccount, to, amount)
}

// Fund credits an address out of thin air. Development faucets only.
func (l *LedgerRail) Fund(ctx context.Context, to models.Address, amount decimal.Decimal) (Receipt, error) {
	return l.transfer(ctx, models.TransactionTypeFund, mintAccount, to, amount)
}

// Balance returns the wallet balance, zero for unknown addresses.
func (l *LedgerRail) Balance(ctx context.Context, addr models.Address) (decimal.Decimal, error) {
	var w models.Wallet
	err := l.db.WithContext(ctx).Where("address = ?", addr).First(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("rail: load wallet: %w", err)
	}
	return w.Balance, nil
}

// History returns the most recent transfers touching addr.
func (l *LedgerRail) History(ctx context.Context, addr models.Address, limit int) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := l.db.WithContext(ctx).
		Where("from_address = ? OR to_address = ?", addr, addr).
		Order("created_at DESC").
		Limit(limit).
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("rail: load history: %w", err)
	}
	return txs, nil
}

func (l *LedgerRail) transfer(ctx context.Context,
	kind models.TransactionType,
	from, to models.Address,
	amount decimal.Decimal) (Receipt, error) {
	if !models.IsWholePositive(amount) {
		return Receipt{}, models.ErrInvalidTransferAmount
	}

	record := &models.Transaction{
		TransactionType: kind,
		From:            from,
		To:              to,
		Amount:          amount,
	}

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		wallets, err := l.lockWallets(tx, from, to)
		if err != nil {
			return err
		}
		src, dst := wallets[from], wallets[to]

		if from != mintAccount {
			if err := src.Debit(amount); err != nil {
				return err
			}
			if err := saveBalance(tx, src); err != nil {
				return err
			}
		}
		if err := dst.Credit(amount); err != nil {
			return err
		}
		if err := saveBalance(tx, dst); err != nil {
			return err
		}

		record.FromBalance = src.Balance
		record.ToBalance = dst.Balance
		if err := record.Validate(); err != nil {
			return err
		}
		return tx.Create(record).Error
	})
	if err != nil {
		if errors.Is(err, models.ErrInsufficientBalance) || errors.Is(err, models.ErrInvalidTransferAmount) {
			return Receipt{}, err
		}
		return Receipt{}, fmt.Errorf("%w: %s %s: %v", ErrTransferFailed, kind, amount, err)
	}

	return Receipt{
		ID:     record.ID,
		Kind:   kind,
		Amount: amount,
		At:     record.CreatedAt,
	}, nil
}

// lockWallets creates missing wallets and locks both rows in address order.
func (l *LedgerRail) lockWallets(tx *gorm.DB, addrs ...models.Address) (map[models.Address]*models.Wallet, error) {
	if addrs[0].Hex() > addrs[1].Hex() {
		addrs[0], addrs[1] = addrs[1], addrs[0]
	}
	out := make(map[models.Address]*models.Wallet, len(addrs))
	for _, addr := range addrs {
		if addr == mintAccount {
			out[addr] = &models.Wallet{Address: addr}
			continue
		}
		err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.Wallet{Address: addr, Balance: decimal.Zero}).Error
		if err != nil {
			return nil, fmt.Errorf("ensure wallet %s: %w", addr, err)
		}
		var w models.Wallet
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("address = ?", addr).
			First(&w).Error
		if err != nil {
			return nil, fmt.Errorf("lock wallet %s: %w", addr, err)
		}
		out[addr] = &w
	}
	return out, nil
}

func saveBalance(tx *gorm.DB, w *models.Wallet) error {
	return tx.Model(&models.Wallet{}).
		Where("address = ?", w.Address).
		Update("balance", w.Balance).Error
}
