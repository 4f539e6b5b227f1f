package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	WalletStatusActive    = "active"
	WalletStatusSuspended = "suspended"
	WalletStatusClosed    = "closed"
)

// Wallet holds an investor's balances. Version is bumped on every balance write
// and is the optimistic concurrency token for credits.
type Wallet struct {
	ID                uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	InvestorID        string          `gorm:"column:investor_id;not null;uniqueIndex" json:"investor_id"`
	Currency          string          `gorm:"column:currency;type:varchar(3);not null;default:'NGN'" json:"currency"`
	Status            string          `gorm:"column:status;type:varchar(20);not null;default:'active'" json:"status"`
	AvailableBalance  decimal.Decimal `gorm:"column:available_balance;type:numeric(20,4);not null;default:0" json:"available_balance"`
	PendingBalance    decimal.Decimal `gorm:"column:pending_balance;type:numeric(20,4);not null;default:0" json:"pending_balance"`
	TotalBalance      decimal.Decimal `gorm:"column:total_balance;type:numeric(20,4);not null;default:0" json:"total_balance"`
	TotalInvested     decimal.Decimal `gorm:"column:total_invested;type:numeric(20,4);not null;default:0" json:"total_invested"`
	TotalReturns      decimal.Decimal `gorm:"column:total_returns;type:numeric(20,4);not null;default:0" json:"total_returns"`
	Version           int64           `gorm:"column:version;not null;default:0" json:"version"`
	LastTransactionAt *time.Time      `gorm:"column:last_transaction_at" json:"last_transaction_at"`
	CreatedAt         time.Time       `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt         time.Time       `gorm:"column:updatedAt" json:"updatedAt"`
}

func (Wallet) TableName() string {
	return "Wallets"
}

func (w *Wallet) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}
