package transactions

import (
	"context"
	"errors"

	"profitshare-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Service appends and reads ledger entries. Entries are never updated or deleted.
type Service struct {
	DB *gorm.DB
}

type FormattedTx struct {
	TxID        uuid.UUID       `json:"tx_id"`
	Type        string          `json:"type"`
	Status      string          `json:"status"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Reference   string          `json:"reference"`
	Description string          `json:"description"`
	Metadata    datatypes.JSON  `json:"metadata"`
	CreatedAt   interface{}     `json:"created_at"`
}

// Record appends tx to the ledger.
func (s *Service) Record(ctx context.Context, tx *domain.Transaction) error {
	return s.DB.WithContext(ctx).Create(tx).Error
}

// FindByReference returns the entry of the given type written for reference and
// investor, or nil when there is none.
func (s *Service) FindByReference(ctx context.Context, reference, investorID, txType string) (*domain.Transaction, error) {
	var tx domain.Transaction
	err := s.DB.WithContext(ctx).
		Where("reference = ? AND investor_id = ? AND type = ?", reference, investorID, txType).
		First(&tx).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// ViewTransactions lists an investor's ledger, newest first. txType narrows the
// list when set.
func (s *Service) ViewTransactions(ctx context.Context, investorID, txType string) (interface{}, string, int) {
	if investorID == "" {
		return nil, "investor_id is required", 400
	}

	q := s.DB.WithContext(ctx).Where("investor_id = ?", investorID)
	if txType != "" {
		q = q.Where("type = ?", txType)
	}
	var txs []domain.Transaction
	if err := q.Order(`"createdAt" DESC`).Find(&txs).Error; err != nil {
		return nil, "Internal Server Error", 500
	}

	if len(txs) == 0 {
		return []interface{}{}, "", 0
	}

	out := make([]FormattedTx, len(txs))
	for i, tx := range txs {
		out[i] = FormattedTx{
			TxID:        tx.TxID,
			Type:        tx.Type,
			Status:      tx.Status,
			Amount:      tx.Amount,
			Currency:    tx.Currency,
			Reference:   tx.Reference,
			Description: tx.Description,
			Metadata:    tx.Metadata,
			CreatedAt:   tx.CreatedAt,
		}
	}
	return out, "", 0
}
