package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const InvestmentStatusActive = "active"

// Investment is one investor's stake in a funding round.
type Investment struct {
	ID             string          `gorm:"column:id;primaryKey" json:"id"`
	InvestorID     string          `gorm:"column:investor_id;not null;index" json:"investor_id"`
	FundingRoundID string          `gorm:"column:funding_round_id;not null;index" json:"funding_round_id"`
	Amount         decimal.Decimal `gorm:"column:amount;type:numeric(20,4);not null" json:"amount"`
	Status         string          `gorm:"column:status;type:varchar(20);not null" json:"status"`
	CreatedAt      time.Time       `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt      time.Time       `gorm:"column:updatedAt" json:"updatedAt"`
}

func (Investment) TableName() string {
	return "Investments"
}
