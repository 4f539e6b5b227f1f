package investments

import (
	"context"
	"testing"
	"time"

	"profitshare-backend/internal/domain"
	"profitshare-backend/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListActivePositions(t *testing.T) {
	db := testutil.OpenDB(t)
	svc := &Service{DB: db}
	base := time.Now().Add(-time.Hour)

	rows := []domain.Investment{
		{ID: "i1", InvestorID: "inv-b", FundingRoundID: "round-1", Amount: decimal.NewFromInt(1000), Status: "active", CreatedAt: base},
		{ID: "i2", InvestorID: "inv-a", FundingRoundID: "round-1", Amount: decimal.NewFromInt(500), Status: "active", CreatedAt: base.Add(time.Minute)},
		{ID: "i3", InvestorID: "inv-b", FundingRoundID: "round-1", Amount: decimal.NewFromInt(250), Status: "active", CreatedAt: base.Add(2 * time.Minute)},
		{ID: "i4", InvestorID: "inv-c", FundingRoundID: "round-1", Amount: decimal.NewFromInt(900), Status: "withdrawn", CreatedAt: base},
		{ID: "i5", InvestorID: "inv-d", FundingRoundID: "round-2", Amount: decimal.NewFromInt(900), Status: "active", CreatedAt: base},
		{ID: "i6", InvestorID: "inv-e", FundingRoundID: "round-1", Amount: decimal.Zero, Status: "active", CreatedAt: base},
	}
	require.NoError(t, db.Create(&rows).Error)

	got, err := svc.ListActivePositions(context.Background(), "round-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "inv-b", got[0].InvestorID)
	assert.True(t, got[0].Amount.Equal(decimal.NewFromInt(1250)))
	assert.Equal(t, "inv-a", got[1].InvestorID)
	assert.True(t, got[1].Amount.Equal(decimal.NewFromInt(500)))

	empty, err := svc.ListActivePositions(context.Background(), "round-404")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestGetFundingRound(t *testing.T) {
	db := testutil.OpenDB(t)
	svc := &Service{DB: db}
	require.NoError(t, db.Create(&domain.FundingRound{ID: "round-1", BusinessName: "Acme Farms", ContractType: "murabaha", Status: "active"}).Error)

	fr, err := svc.GetFundingRound(context.Background(), "round-1")
	require.NoError(t, err)
	require.NotNil(t, fr)
	assert.Equal(t, "Acme Farms", fr.BusinessName)

	missing, err := svc.GetFundingRound(context.Background(), "round-2")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
