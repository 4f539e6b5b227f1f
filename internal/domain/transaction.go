package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	TransactionTypeProfitDistribution = "profit_distribution"
	TransactionStatusCompleted        = "completed"
)

// Transaction is an append-only ledger entry. Reference carries the distribution
// batch id; one entry per (reference, investor, type).
type Transaction struct {
	TxID        uuid.UUID       `gorm:"column:tx_id;type:uuid;primaryKey" json:"tx_id"`
	InvestorID  string          `gorm:"column:investor_id;not null;uniqueIndex:idx_tx_reference_investor,priority:2;index" json:"investor_id"`
	Type        string          `gorm:"column:type;type:varchar(32);not null;uniqueIndex:idx_tx_reference_investor,priority:3" json:"type"`
	Status      string          `gorm:"column:status;type:varchar(20);not null" json:"status"`
	Amount      decimal.Decimal `gorm:"column:amount;type:numeric(20,4);not null" json:"amount"`
	Currency    string          `gorm:"column:currency;type:varchar(3);not null" json:"currency"`
	Reference   string          `gorm:"column:reference;not null;uniqueIndex:idx_tx_reference_investor,priority:1" json:"reference"`
	Description string          `gorm:"column:description;not null" json:"description"`
	Metadata    datatypes.JSON  `gorm:"column:metadata" json:"metadata"`
	CreatedAt   time.Time       `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt   time.Time       `gorm:"column:updatedAt" json:"updatedAt"`
}

func (Transaction) TableName() string {
	return "Transactions"
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.TxID == uuid.Nil {
		t.TxID = uuid.New()
	}
	return nil
}
