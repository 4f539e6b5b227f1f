package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Notification is an in-app message for an investor.
type Notification struct {
	ID         uuid.UUID      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	InvestorID string         `gorm:"column:investor_id;not null;index" json:"investor_id"`
	Type       string         `gorm:"column:type;type:varchar(40);not null" json:"type"`
	Title      string         `gorm:"column:title;not null" json:"title"`
	Message    string         `gorm:"column:message;not null" json:"message"`
	Priority   string         `gorm:"column:priority;type:varchar(10);not null;default:'normal'" json:"priority"`
	ActionURL  string         `gorm:"column:action_url" json:"action_url,omitempty"`
	Read       bool           `gorm:"column:read;not null;default:false" json:"read"`
	Metadata   datatypes.JSON `gorm:"column:metadata" json:"metadata"`
	CreatedAt  time.Time      `gorm:"column:createdAt" json:"createdAt"`
}

func (Notification) TableName() string {
	return "Notifications"
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
