package distributions

import (
	"context"
	"errors"
	"time"

	"profitshare-backend/internal/application/transactions"
	"profitshare-backend/internal/application/wallets"
	"profitshare-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Store is the GORM BatchStore.
type Store struct {
	DB *gorm.DB
}

func (s *Store) CreateBatch(ctx context.Context, batch *domain.DistributionBatch, lines []domain.InvestorAllocation) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(batch).Error; err != nil {
			return err
		}
		if len(lines) == 0 {
			return nil
		}
		return tx.CreateInBatches(&lines, 200).Error
	})
}

func (s *Store) GetBatch(ctx context.Context, id string) (*domain.DistributionBatch, error) {
	var b domain.DistributionBatch
	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Store) ListBatches(ctx context.Context, fundingRoundID string) ([]domain.DistributionBatch, error) {
	q := s.DB.WithContext(ctx).Order(`"createdAt" DESC, id DESC`)
	if fundingRoundID != "" {
		q = q.Where("funding_round_id = ?", fundingRoundID)
	}
	var out []domain.DistributionBatch
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) ListAllocations(ctx context.Context, batchID string) ([]domain.InvestorAllocation, error) {
	var out []domain.InvestorAllocation
	if err := s.DB.WithContext(ctx).
		Where("batch_id = ?", batchID).
		Order("investor_id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) MarkCredited(ctx context.Context, batchID, investorID string, txID uuid.UUID, attempts int, at time.Time) error {
	return s.settle(ctx, batchID, investorID, map[string]interface{}{
		"status":         domain.AllocationStatusCredited,
		"transaction_id": txID,
		"attempts":       attempts,
		"creditedAt":     at,
		"updatedAt":      at,
	})
}

func (s *Store) MarkFailed(ctx context.Context, batchID, investorID, class, message string, attempts int, at time.Time) error {
	return s.settle(ctx, batchID, investorID, map[string]interface{}{
		"status":        domain.AllocationStatusFailed,
		"error_class":   class,
		"error_message": message,
		"attempts":      attempts,
		"failedAt":      at,
		"updatedAt":     at,
	})
}

// settle moves a pending line item to a terminal status. Terminal rows are never rewritten.
func (s *Store) settle(ctx context.Context, batchID, investorID string, fields map[string]interface{}) error {
	res := s.DB.WithContext(ctx).Model(&domain.InvestorAllocation{}).
		Where("batch_id = ? AND investor_id = ? AND status = ?", batchID, investorID, domain.AllocationStatusPending).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrLineSettled
	}
	return nil
}

func (s *Store) CountStatuses(ctx context.Context, batchID string) (StatusCounts, error) {
	var rows []struct {
		Status string
		N      int
	}
	if err := s.DB.WithContext(ctx).Model(&domain.InvestorAllocation{}).
		Select("status, count(*) AS n").
		Where("batch_id = ?", batchID).
		Group("status").
		Scan(&rows).Error; err != nil {
		return StatusCounts{}, err
	}
	var c StatusCounts
	for _, r := range rows {
		switch r.Status {
		case domain.AllocationStatusPending:
			c.Pending = r.N
		case domain.AllocationStatusCredited:
			c.Credited = r.N
		case domain.AllocationStatusFailed:
			c.Failed = r.N
		}
	}
	return c, nil
}

// FinalizeBatch writes the terminal batch state once; it reports false when the
// batch was no longer processing.
func (s *Store) FinalizeBatch(ctx context.Context, batchID, status, notes string, counts StatusCounts, at time.Time) (bool, error) {
	res := s.DB.WithContext(ctx).Model(&domain.DistributionBatch{}).
		Where("id = ? AND status = ?", batchID, domain.BatchStatusProcessing).
		Updates(map[string]interface{}{
			"status":        status,
			"notes":         notes,
			"success_count": counts.Credited,
			"failure_count": counts.Failed,
			"completedAt":   at,
			"updatedAt":     at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var rows []domain.DistributionBatch
	if err := s.DB.WithContext(ctx).
		Select("id, status, total_profit_amount").
		Find(&rows).Error; err != nil {
		return Stats{}, err
	}
	st := Stats{TotalDistributions: len(rows), TotalDistributed: decimal.Zero}
	for _, b := range rows {
		switch b.Status {
		case domain.BatchStatusCompleted:
			st.Completed++
			st.TotalDistributed = st.TotalDistributed.Add(b.TotalProfitAmount)
		case domain.BatchStatusFailed:
			st.Failed++
		case domain.BatchStatusProcessing:
			st.Processing++
		}
	}
	return st, nil
}

// GormUnitOfWork binds wallets, transactions and line items to one DB transaction.
type GormUnitOfWork struct {
	DB  *gorm.DB
	Now func() time.Time
}

func (u *GormUnitOfWork) Do(ctx context.Context, fn func(Ledger) error) error {
	return u.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(Ledger{
			Wallets:      &wallets.Service{DB: tx, Now: u.Now},
			Transactions: &transactions.Service{DB: tx},
			Batches:      &Store{DB: tx},
		})
	})
}
