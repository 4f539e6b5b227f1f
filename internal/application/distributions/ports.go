package distributions

import (
	"context"
	"time"

	"profitshare-backend/internal/application/investments"
	"profitshare-backend/internal/application/notifications"
	"profitshare-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type InvestmentRepository interface {
	ListActivePositions(ctx context.Context, fundingRoundID string) ([]investments.Position, error)
}

type OpportunityRepository interface {
	GetFundingRound(ctx context.Context, id string) (*domain.FundingRound, error)
}

type WalletLedger interface {
	GetByInvestor(ctx context.Context, investorID string) (*domain.Wallet, error)
	Credit(ctx context.Context, walletID uuid.UUID, delta decimal.Decimal, expectedVersion int64) (*domain.Wallet, error)
}

type TransactionRecorder interface {
	Record(ctx context.Context, tx *domain.Transaction) error
	FindByReference(ctx context.Context, reference, investorID, txType string) (*domain.Transaction, error)
}

// StatusCounts is the number of line items per status in one batch.
type StatusCounts struct {
	Pending  int
	Credited int
	Failed   int
}

// Stats are overview counters across all batches.
type Stats struct {
	TotalDistributions int             `json:"total_distributions"`
	Completed          int             `json:"completed"`
	Failed             int             `json:"failed"`
	Processing         int             `json:"processing"`
	TotalDistributed   decimal.Decimal `json:"total_distributed"`
}

type BatchStore interface {
	CreateBatch(ctx context.Context, batch *domain.DistributionBatch, lines []domain.InvestorAllocation) error
	GetBatch(ctx context.Context, id string) (*domain.DistributionBatch, error)
	ListBatches(ctx context.Context, fundingRoundID string) ([]domain.DistributionBatch, error)
	ListAllocations(ctx context.Context, batchID string) ([]domain.InvestorAllocation, error)
	MarkCredited(ctx context.Context, batchID, investorID string, txID uuid.UUID, attempts int, at time.Time) error
	MarkFailed(ctx context.Context, batchID, investorID, class, message string, attempts int, at time.Time) error
	CountStatuses(ctx context.Context, batchID string) (StatusCounts, error)
	FinalizeBatch(ctx context.Context, batchID, status, notes string, counts StatusCounts, at time.Time) (bool, error)
	Stats(ctx context.Context) (Stats, error)
}

// Ledger groups the stores that must change together when a line item is credited.
type Ledger struct {
	Wallets      WalletLedger
	Transactions TransactionRecorder
	Batches      BatchStore
}

// UnitOfWork runs fn atomically against a Ledger bound to one database transaction.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(Ledger) error) error
}

type Notifier interface {
	Notify(ctx context.Context, investorID string, ev notifications.Event) error
}
