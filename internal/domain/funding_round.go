package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FundingRound is an opportunity investors have funded. Owned by the opportunity
// flows; the distribution engine only reads it for business name and contract type.
type FundingRound struct {
	ID                  string          `gorm:"column:id;primaryKey" json:"id"`
	BusinessName        string          `gorm:"column:business_name;not null" json:"business_name"`
	ContractType        string          `gorm:"column:contract_type;not null" json:"contract_type"`
	Status              string          `gorm:"column:status;not null;default:'active'" json:"status"`
	TotalInvestedAmount decimal.Decimal `gorm:"column:total_invested_amount;type:numeric(20,4);not null;default:0" json:"total_invested_amount"`
	InvestorCount       int             `gorm:"column:investor_count;not null;default:0" json:"investor_count"`
	CreatedAt           time.Time       `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt           time.Time       `gorm:"column:updatedAt" json:"updatedAt"`
}

func (FundingRound) TableName() string {
	return "Opportunities"
}
