package allocation

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sumProfit(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.ProfitAmount)
	}
	return total
}

func sumPercentage(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Percentage)
	}
	return total
}

func TestAllocate_EvenSplit(t *testing.T) {
	stakes := []Stake{
		{InvestorID: "inv-a", Amount: d("1000")},
		{InvestorID: "inv-b", Amount: d("2000")},
		{InvestorID: "inv-c", Amount: d("3000")},
	}

	lines, err := Allocate(stakes, d("600"), DefaultScale)
	require.NoError(t, err)
	require.Len(t, lines, 3)

	want := []string{"100", "200", "300"}
	for i, l := range lines {
		assert.Equal(t, stakes[i].InvestorID, l.InvestorID)
		assert.True(t, l.ProfitAmount.Equal(d(want[i])), "investor %s got %s", l.InvestorID, l.ProfitAmount)
		assert.True(t, l.ProfitRate.Equal(d("10")), "rate %s", l.ProfitRate)
	}
	assert.True(t, sumPercentage(lines).Equal(d("100")))
}

func TestAllocate_SubunitPrecisionKeepsExactSum(t *testing.T) {
	stakes := []Stake{
		{InvestorID: "inv-a", Amount: d("333")},
		{InvestorID: "inv-b", Amount: d("667")},
	}

	lines, err := Allocate(stakes, d("100"), DefaultScale)
	require.NoError(t, err)

	assert.True(t, lines[0].ProfitAmount.Equal(d("33.30")))
	assert.True(t, lines[1].ProfitAmount.Equal(d("66.70")))
	assert.True(t, sumProfit(lines).Equal(d("100")))
}

func TestAllocate_WholeUnitsUseLargestRemainder(t *testing.T) {
	stakes := []Stake{
		{InvestorID: "inv-a", Amount: d("333")},
		{InvestorID: "inv-b", Amount: d("667")},
	}

	lines, err := Allocate(stakes, d("100"), 0)
	require.NoError(t, err)

	assert.True(t, lines[0].ProfitAmount.Equal(d("33")))
	assert.True(t, lines[1].ProfitAmount.Equal(d("67")))
	assert.True(t, sumProfit(lines).Equal(d("100")))
}

func TestAllocate_ThreeWaySplitDistributesResidual(t *testing.T) {
	stakes := []Stake{
		{InvestorID: "inv-c", Amount: d("100")},
		{InvestorID: "inv-a", Amount: d("100")},
		{InvestorID: "inv-b", Amount: d("100")},
	}

	lines, err := Allocate(stakes, d("100"), DefaultScale)
	require.NoError(t, err)

	// 33.333... each; the single extra cent goes to the lowest investor id on a full tie.
	got := map[string]decimal.Decimal{}
	for _, l := range lines {
		got[l.InvestorID] = l.ProfitAmount
	}
	assert.True(t, got["inv-a"].Equal(d("33.34")))
	assert.True(t, got["inv-b"].Equal(d("33.33")))
	assert.True(t, got["inv-c"].Equal(d("33.33")))
	assert.True(t, sumProfit(lines).Equal(d("100")))
	assert.True(t, sumPercentage(lines).Equal(d("100")))
}

func TestAllocate_NegativeResidual(t *testing.T) {
	// Six equal shares of 0.05 each round up to 0.01 (sum 0.06) and must be pulled back.
	stakes := make([]Stake, 6)
	for i := range stakes {
		stakes[i] = Stake{InvestorID: fmt.Sprintf("inv-%d", i), Amount: d("10")}
	}

	lines, err := Allocate(stakes, d("0.05"), DefaultScale)
	require.NoError(t, err)
	assert.True(t, sumProfit(lines).Equal(d("0.05")), "sum %s", sumProfit(lines))
	for _, l := range lines {
		assert.False(t, l.ProfitAmount.IsNegative())
	}
}

func TestAllocate_SingleInvestorGetsEverything(t *testing.T) {
	lines, err := Allocate([]Stake{{InvestorID: "solo", Amount: d("2500")}}, d("123.45"), DefaultScale)
	require.NoError(t, err)
	require.Len(t, lines, 1)

	assert.True(t, lines[0].ProfitAmount.Equal(d("123.45")))
	assert.True(t, lines[0].Percentage.Equal(d("100")))
	assert.True(t, lines[0].ProfitRate.Equal(d("4.938")))
}

func TestAllocate_SumPropertyAcrossShapes(t *testing.T) {
	amounts := []string{"1", "7", "13", "250.5", "999.99", "12345.67", "3", "0.01"}
	totals := []string{"0.01", "1", "99.99", "1000000", "7.77"}

	for _, total := range totals {
		for n := 1; n <= len(amounts); n++ {
			stakes := make([]Stake, n)
			for i := 0; i < n; i++ {
				stakes[i] = Stake{InvestorID: fmt.Sprintf("inv-%02d", i), Amount: d(amounts[i])}
			}
			lines, err := Allocate(stakes, d(total), DefaultScale)
			require.NoError(t, err)
			assert.True(t, sumProfit(lines).Equal(d(total)), "n=%d total=%s sum=%s", n, total, sumProfit(lines))
			diff := sumPercentage(lines).Sub(d("100")).Abs()
			assert.True(t, diff.LessThanOrEqual(d("0.000001")), "percentage sum off by %s", diff)
		}
	}
}

func TestAllocate_RejectsInvalidInput(t *testing.T) {
	ok := []Stake{{InvestorID: "a", Amount: d("10")}}

	cases := []struct {
		name   string
		stakes []Stake
		total  string
	}{
		{"empty", nil, "10"},
		{"zero total", ok, "0"},
		{"negative total", ok, "-1"},
		{"zero amount", []Stake{{InvestorID: "a", Amount: d("0")}}, "10"},
		{"negative amount", []Stake{{InvestorID: "a", Amount: d("-5")}}, "10"},
		{"blank investor", []Stake{{InvestorID: " ", Amount: d("5")}}, "10"},
		{"duplicate investor", []Stake{{InvestorID: "a", Amount: d("5")}, {InvestorID: "a", Amount: d("5")}}, "10"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Allocate(tc.stakes, d(tc.total), DefaultScale)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestAllocate_ScaleOutsideMoneyColumns(t *testing.T) {
	stakes := []Stake{{InvestorID: "a", Amount: d("5")}}
	for _, scale := range []int32{-1, MaxScale + 1} {
		_, err := Allocate(stakes, d("10"), scale)
		assert.ErrorIs(t, err, ErrInvalidInput, "scale %d", scale)
	}
	_, err := Allocate(stakes, d("10.1234"), MaxScale)
	assert.NoError(t, err)
}
