package settlement

import (
	"github.com/joefazee/veilbet/models"
	"github.com/shopspring/decimal"
)

var bpsDenominator = decimal.NewFromInt(models.MaxFeeBps)

// Pools is the decrypted state of a settled market.
type Pools struct {
	Yes     decimal.Decimal
	No      decimal.Decimal
	YesWins bool
	FeeBps  int
}

// PoolsOf reads the pools of a settled market.
func PoolsOf(m *models.Market) (Pools, error) {
	yes, no, winner, err := m.Pools()
	if err != nil {
		return Pools{}, err
	}
	return Pools{Yes: yes, No: no, YesWins: winner, FeeBps: m.FeeBps}, nil
}

// Winning returns the pool of the winning side.
func (p Pools) Winning() decimal.Decimal {
	if p.YesWins {
		return p.Yes
	}
	return p.No
}

// Total is yes + no.
func (p Pools) Total() decimal.Decimal {
	return p.Yes.Add(p.No)
}

// Fee is winningPool * feeBps / 10000, truncated.
func (p Pools) Fee() decimal.Decimal {
	q, _ := p.Winning().Mul(decimal.NewFromInt(int64(p.FeeBps))).QuoRem(bpsDenominator, 0)
	return q
}

// Net is what winners share: total minus fee.
func (p Pools) Net() decimal.Decimal {
	return p.Total().Sub(p.Fee())
}

// Payout is escrow * net / winningPool truncated toward zero. An empty winning pool pays nothing.
func (p Pools) Payout(escrow decimal.Decimal) decimal.Decimal {
	winning := p.Winning()
	if !winning.IsPositive() {
		return decimal.Zero
	}
	q, _ := escrow.Mul(p.Net()).QuoRem(winning, 0)
	return q
}

// Available is what remains of the net pool after payouts already made.
func (p Pools) Available(paidOut decimal.Decimal) decimal.Decimal {
	left := p.Net().Sub(paidOut)
	if left.IsNegative() {
		return decimal.Zero
	}
	return left
}
