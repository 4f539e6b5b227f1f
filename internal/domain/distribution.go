package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	BatchStatusProcessing = "processing"
	BatchStatusCompleted  = "completed"
	BatchStatusFailed     = "failed"

	AllocationStatusPending  = "pending"
	AllocationStatusCredited = "credited"
	AllocationStatusFailed   = "failed"
)

// DistributionBatch is one profit distribution run over a funding round.
// It is created as processing and finalized exactly once.
type DistributionBatch struct {
	ID                  string          `gorm:"column:id;primaryKey" json:"id"`
	FundingRoundID      string          `gorm:"column:funding_round_id;not null;index" json:"funding_round_id"`
	BusinessName        string          `gorm:"column:business_name;not null" json:"business_name"`
	ContractType        string          `gorm:"column:contract_type;not null" json:"contract_type"`
	Period              string          `gorm:"column:distribution_period;not null" json:"distribution_period"`
	TotalProfitAmount   decimal.Decimal `gorm:"column:total_profit_amount;type:numeric(20,4);not null" json:"total_profit_amount"`
	TotalInvestedAmount decimal.Decimal `gorm:"column:total_invested_amount;type:numeric(20,4);not null" json:"total_invested_amount"`
	InvestorCount       int             `gorm:"column:investor_count;not null" json:"investor_count"`
	Currency            string          `gorm:"column:currency;type:varchar(3);not null" json:"currency"`
	Status              string          `gorm:"column:status;type:varchar(20);not null;index" json:"status"`
	Notes               string          `gorm:"column:notes" json:"notes"`
	ProcessedBy         string          `gorm:"column:processed_by;not null" json:"processed_by"`
	RequestHash         string          `gorm:"column:request_hash;not null" json:"-"`
	SuccessCount        int             `gorm:"column:success_count;not null;default:0" json:"success_count"`
	FailureCount        int             `gorm:"column:failure_count;not null;default:0" json:"failure_count"`
	CreatedAt           time.Time       `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt           time.Time       `gorm:"column:updatedAt" json:"updatedAt"`
	CompletedAt         *time.Time      `gorm:"column:completedAt" json:"completedAt"`
}

func (DistributionBatch) TableName() string {
	return "ProfitDistributions"
}

// InvestorAllocation is one investor's line item within a batch.
type InvestorAllocation struct {
	BatchID              string          `gorm:"column:batch_id;primaryKey" json:"batch_id"`
	InvestorID           string          `gorm:"column:investor_id;primaryKey" json:"investor_id"`
	FundingRoundID       string          `gorm:"column:funding_round_id;not null" json:"funding_round_id"`
	InvestedAmount       decimal.Decimal `gorm:"column:invested_amount;type:numeric(20,4);not null" json:"invested_amount"`
	InvestmentPercentage decimal.Decimal `gorm:"column:investment_percentage;type:numeric(12,8);not null" json:"investment_percentage"`
	ProfitAmount         decimal.Decimal `gorm:"column:profit_amount;type:numeric(20,4);not null" json:"profit_amount"`
	ProfitRate           decimal.Decimal `gorm:"column:profit_rate;type:numeric(20,8);not null" json:"profit_rate"`
	Status               string          `gorm:"column:status;type:varchar(20);not null;index" json:"status"`
	TransactionID        *uuid.UUID      `gorm:"column:transaction_id;type:uuid" json:"transaction_id"`
	ErrorClass           string          `gorm:"column:error_class" json:"error_class,omitempty"`
	ErrorMessage         string          `gorm:"column:error_message" json:"error_message,omitempty"`
	Attempts             int             `gorm:"column:attempts;not null;default:0" json:"attempts"`
	CreatedAt            time.Time       `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt            time.Time       `gorm:"column:updatedAt" json:"updatedAt"`
	CreditedAt           *time.Time      `gorm:"column:creditedAt" json:"creditedAt"`
	FailedAt             *time.Time      `gorm:"column:failedAt" json:"failedAt"`
}

func (InvestorAllocation) TableName() string {
	return "InvestorDistributions"
}
