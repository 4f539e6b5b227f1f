// Package allocation splits a profit amount pro-rata across investor stakes.
package allocation

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidInput is returned for inputs that cannot be allocated.
var ErrInvalidInput = errors.New("invalid allocation input")

// DefaultScale is the number of decimal places of the ledger minimum unit.
const DefaultScale int32 = 2

// MaxScale is the precision of the numeric(20,4) money columns.
const MaxScale int32 = 4

const (
	divisionPrecision = 16
	percentageScale   = 8
	rateScale         = 8
)

var hundred = decimal.NewFromInt(100)

// Stake is one investor's position in a funding round.
type Stake struct {
	InvestorID string
	Amount     decimal.Decimal
}

// Line is the computed share for one stake.
type Line struct {
	InvestorID     string
	InvestedAmount decimal.Decimal
	Percentage     decimal.Decimal
	ProfitAmount   decimal.Decimal
	ProfitRate     decimal.Decimal
}

// Allocate splits total across stakes in proportion to their amounts.
//
// Shares are rounded half-even to scale decimal places; the rounding residual is
// handed out one minimum unit at a time by largest remainder, so the returned
// profit amounts always sum to total exactly. Percentages are apportioned the same
// way at 8 decimal places and sum to exactly 100.
//
// The returned lines follow the order of stakes.
func Allocate(stakes []Stake, total decimal.Decimal, scale int32) ([]Line, error) {
	if len(stakes) == 0 {
		return nil, fmt.Errorf("%w: no stakes", ErrInvalidInput)
	}
	if !total.IsPositive() {
		return nil, fmt.Errorf("%w: total must be positive", ErrInvalidInput)
	}
	if scale < 0 || scale > MaxScale {
		return nil, fmt.Errorf("%w: scale %d outside [0, %d]", ErrInvalidInput, scale, MaxScale)
	}

	seen := make(map[string]struct{}, len(stakes))
	totalInvested := decimal.Zero
	for _, s := range stakes {
		if strings.TrimSpace(s.InvestorID) == "" {
			return nil, fmt.Errorf("%w: blank investor id", ErrInvalidInput)
		}
		if _, dup := seen[s.InvestorID]; dup {
			return nil, fmt.Errorf("%w: duplicate investor %s", ErrInvalidInput, s.InvestorID)
		}
		seen[s.InvestorID] = struct{}{}
		if !s.Amount.IsPositive() {
			return nil, fmt.Errorf("%w: investor %s has non-positive amount", ErrInvalidInput, s.InvestorID)
		}
		totalInvested = totalInvested.Add(s.Amount)
	}

	exactProfit := make([]decimal.Decimal, len(stakes))
	exactPct := make([]decimal.Decimal, len(stakes))
	for i, s := range stakes {
		exactProfit[i] = total.Mul(s.Amount).DivRound(totalInvested, divisionPrecision)
		exactPct[i] = s.Amount.Mul(hundred).DivRound(totalInvested, divisionPrecision)
	}

	profits := apportion(stakes, exactProfit, total, scale)
	pcts := apportion(stakes, exactPct, hundred, percentageScale)

	lines := make([]Line, len(stakes))
	allocated := decimal.Zero
	for i, s := range stakes {
		lines[i] = Line{
			InvestorID:     s.InvestorID,
			InvestedAmount: s.Amount,
			Percentage:     pcts[i],
			ProfitAmount:   profits[i],
			ProfitRate:     profits[i].Mul(hundred).DivRound(s.Amount, rateScale),
		}
		allocated = allocated.Add(profits[i])
	}

	if !allocated.Equal(total) {
		return nil, fmt.Errorf("%w: allocated %s does not equal total %s", ErrInvalidInput, allocated, total)
	}
	return lines, nil
}

// apportion rounds each exact share to scale and distributes the residual
// against target by largest remainder.
func apportion(stakes []Stake, exact []decimal.Decimal, target decimal.Decimal, scale int32) []decimal.Decimal {
	rounded := make([]decimal.Decimal, len(exact))
	sum := decimal.Zero
	for i, e := range exact {
		rounded[i] = e.RoundBank(scale)
		sum = sum.Add(rounded[i])
	}

	residual := target.Sub(sum)
	if residual.IsZero() {
		return rounded
	}

	unit := decimal.New(1, -scale)
	if residual.IsNegative() {
		unit = unit.Neg()
	}

	order := make([]int, len(exact))
	for i := range order {
		order[i] = i
	}
	// Rows whose rounding moved furthest against the residual go first.
	sort.SliceStable(order, func(a, b int) bool {
		ia, ib := order[a], order[b]
		ra := exact[ia].Sub(rounded[ia])
		rb := exact[ib].Sub(rounded[ib])
		if unit.IsNegative() {
			ra, rb = ra.Neg(), rb.Neg()
		}
		if c := ra.Cmp(rb); c != 0 {
			return c > 0
		}
		if c := stakes[ia].Amount.Cmp(stakes[ib].Amount); c != 0 {
			return c > 0
		}
		return stakes[ia].InvestorID < stakes[ib].InvestorID
	})

	steps := residual.Div(unit).IntPart()
	for k := int64(0); k < steps; k++ {
		i := order[int(k)%len(order)]
		rounded[i] = rounded[i].Add(unit)
	}
	return rounded
}
