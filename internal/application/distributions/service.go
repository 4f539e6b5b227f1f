// Package distributions runs pro-rata profit distributions over a funding round
// and credits each investor's wallet with an auditable ledger entry.
package distributions

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"profitshare-backend/internal/application/allocation"
	"profitshare-backend/internal/application/investments"
	"profitshare-backend/internal/application/wallets"
	"profitshare-backend/internal/domain"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const (
	DefaultCurrency    = "NGN"
	DefaultWorkers     = 8
	MaxWorkers         = 64
	DefaultMaxAttempts = 3
	DefaultBackoffBase = 50 * time.Millisecond
	DefaultBackoffMax  = time.Second
	DefaultIOTimeout   = 5 * time.Second
)

type Config struct {
	Currency    string
	Scale       *int32 // nil means allocation.DefaultScale; 0 is whole units
	Workers     int
	MaxAttempts int
	BackoffBase time.Duration
	BackoffMax  time.Duration
	IOTimeout   time.Duration
}

// WithDefaults fills unset fields and clamps the worker count to [1, MaxWorkers].
func (c Config) WithDefaults() Config {
	if c.Currency == "" {
		c.Currency = DefaultCurrency
	}
	if c.Scale == nil {
		c.Scale = Scale(allocation.DefaultScale)
	}
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.Workers > MaxWorkers {
		c.Workers = MaxWorkers
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = DefaultBackoffBase
	}
	if c.BackoffMax <= 0 {
		c.BackoffMax = DefaultBackoffMax
	}
	if c.IOTimeout <= 0 {
		c.IOTimeout = DefaultIOTimeout
	}
	return c
}

// Scale returns a pointer for Config.Scale.
func Scale(n int32) *int32 { return &n }

// RunInput is a request to distribute TotalProfit over a funding round.
type RunInput struct {
	FundingRoundID string          `json:"funding_round_id"`
	Period         string          `json:"distribution_period"`
	TotalProfit    decimal.Decimal `json:"total_profit_amount"`
	Notes          string          `json:"notes"`
	InitiatorID    string          `json:"initiator_id"`
	IdempotencyKey string          `json:"idempotency_key"`
}

type Failure struct {
	InvestorID string          `json:"investor_id"`
	Amount     decimal.Decimal `json:"amount"`
	ErrorClass string          `json:"error_class"`
	Message    string          `json:"message"`
}

type Result struct {
	BatchID      string    `json:"batch_id"`
	SuccessCount int       `json:"success_count"`
	FailureCount int       `json:"failure_count"`
	Status       string    `json:"status"`
	Failures     []Failure `json:"failures"`
	// Replayed is set when the run reused a batch from an earlier request.
	Replayed bool `json:"replayed"`
}

// BatchDetail is a batch with its line items.
type BatchDetail struct {
	Batch       *domain.DistributionBatch   `json:"batch"`
	Allocations []domain.InvestorAllocation `json:"allocations"`
}

type Service struct {
	Investments   InvestmentRepository
	Opportunities OpportunityRepository
	Wallets       WalletLedger
	Batches       BatchStore
	UnitOfWork    UnitOfWork
	Notifier      Notifier
	Config        Config
	Now           func() time.Time
}

// NewService wires the GORM-backed stores. notifier may be nil.
func NewService(db *gorm.DB, notifier Notifier, cfg Config) *Service {
	inv := &investments.Service{DB: db}
	s := &Service{
		Investments:   inv,
		Opportunities: inv,
		Wallets:       &wallets.Service{DB: db},
		Batches:       &Store{DB: db},
		Config:        cfg.WithDefaults(),
	}
	s.UnitOfWork = &GormUnitOfWork{DB: db, Now: s.now}
	s.Notifier = notifier
	return s
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *Service) config() Config {
	return s.Config.WithDefaults()
}

func (s *Service) validate(in RunInput, scale int32) error {
	var problems []string
	if strings.TrimSpace(in.FundingRoundID) == "" {
		problems = append(problems, "funding round id is required")
	}
	if strings.TrimSpace(in.Period) == "" {
		problems = append(problems, "distribution period is required")
	}
	if strings.TrimSpace(in.InitiatorID) == "" {
		problems = append(problems, "initiator id is required")
	}
	if !in.TotalProfit.IsPositive() {
		problems = append(problems, "total profit amount must be greater than zero")
	} else if !in.TotalProfit.Equal(in.TotalProfit.Truncate(scale)) {
		problems = append(problems, fmt.Sprintf("total profit amount has more than %d decimal places", scale))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(problems, "; "))
	}
	return nil
}

// requestHash fingerprints the parts of a run that decide what gets credited.
func requestHash(in RunInput) string {
	b, _ := json.Marshal(map[string]string{
		"funding_round_id": in.FundingRoundID,
		"period":           in.Period,
		"total_profit":     in.TotalProfit.String(),
	})
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Run distributes in.TotalProfit over the active investors of the funding round.
// A run with the IdempotencyKey of an earlier run returns that run's result, or
// resumes it when it never finished.
func (s *Service) Run(ctx context.Context, in RunInput) (*Result, error) {
	cfg := s.config()
	scale := *cfg.Scale
	if scale < 0 || scale > allocation.MaxScale {
		return nil, fmt.Errorf("ledger scale %d outside [0, %d]", scale, allocation.MaxScale)
	}
	if err := s.validate(in, scale); err != nil {
		return nil, err
	}
	hash := requestHash(in)

	if in.IdempotencyKey != "" {
		existing, err := s.Batches.GetBatch(ctx, in.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			if existing.RequestHash != hash {
				return nil, fmt.Errorf("%w: batch %s", ErrIdempotencyConflict, existing.ID)
			}
			var res *Result
			if existing.Status != domain.BatchStatusProcessing {
				res, err = s.summary(ctx, existing)
			} else {
				log.Info().Str("batch_id", existing.ID).Msg("resuming unfinished distribution")
				res, err = s.execute(ctx, existing, existing.Notes)
			}
			if err != nil {
				return nil, err
			}
			res.Replayed = true
			return res, nil
		}
	}

	positions, err := s.Investments.ListActivePositions(ctx, in.FundingRoundID)
	if err != nil {
		return nil, err
	}
	if len(positions) == 0 {
		return nil, fmt.Errorf("%w: funding round %s", ErrNoEligibleRecipients, in.FundingRoundID)
	}

	round, err := s.Opportunities.GetFundingRound(ctx, in.FundingRoundID)
	if err != nil {
		return nil, err
	}
	if round == nil {
		return nil, fmt.Errorf("%w: funding round %s not found", ErrValidation, in.FundingRoundID)
	}

	stakes := make([]allocation.Stake, len(positions))
	totalInvested := decimal.Zero
	for i, p := range positions {
		stakes[i] = allocation.Stake{InvestorID: p.InvestorID, Amount: p.Amount}
		totalInvested = totalInvested.Add(p.Amount)
	}
	lines, err := allocation.Allocate(stakes, in.TotalProfit, scale)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	now := s.now()
	batchID := in.IdempotencyKey
	if batchID == "" {
		batchID = fmt.Sprintf("dist_%s_%d", in.FundingRoundID, now.UnixMilli())
	}
	batch := &domain.DistributionBatch{
		ID:                  batchID,
		FundingRoundID:      in.FundingRoundID,
		BusinessName:        round.BusinessName,
		ContractType:        round.ContractType,
		Period:              in.Period,
		TotalProfitAmount:   in.TotalProfit,
		TotalInvestedAmount: totalInvested,
		InvestorCount:       len(lines),
		Currency:            cfg.Currency,
		Status:              domain.BatchStatusProcessing,
		Notes:               in.Notes,
		ProcessedBy:         in.InitiatorID,
		RequestHash:         hash,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	allocs := make([]domain.InvestorAllocation, len(lines))
	for i, l := range lines {
		allocs[i] = domain.InvestorAllocation{
			BatchID:              batchID,
			InvestorID:           l.InvestorID,
			FundingRoundID:       in.FundingRoundID,
			InvestedAmount:       l.InvestedAmount,
			InvestmentPercentage: l.Percentage,
			ProfitAmount:         l.ProfitAmount,
			ProfitRate:           l.ProfitRate,
			Status:               domain.AllocationStatusPending,
			CreatedAt:            now,
			UpdatedAt:            now,
		}
	}
	if err := s.Batches.CreateBatch(ctx, batch, allocs); err != nil {
		return nil, err
	}

	log.Info().
		Str("batch_id", batchID).
		Str("funding_round_id", in.FundingRoundID).
		Str("total_profit", in.TotalProfit.String()).
		Int("investors", len(allocs)).
		Str("initiator_id", in.InitiatorID).
		Msg("distribution started")

	return s.execute(ctx, batch, in.Notes)
}

// execute runs every pending line item of batch on the worker pool and finalizes it.
func (s *Service) execute(ctx context.Context, batch *domain.DistributionBatch, notes string) (*Result, error) {
	work := context.WithoutCancel(ctx)
	cfg := s.config()

	lines, err := s.Batches.ListAllocations(work, batch.ID)
	if err != nil {
		return nil, err
	}

	exec := &Executor{
		Wallets:    s.Wallets,
		UnitOfWork: s.UnitOfWork,
		Batches:    s.Batches,
		Notifier:   s.Notifier,
		Config:     cfg,
		Now:        s.now,
	}

	var g errgroup.Group
	g.SetLimit(cfg.Workers)
	for _, line := range lines {
		if line.Status != domain.AllocationStatusPending {
			continue
		}
		line := line
		g.Go(func() error {
			exec.Execute(work, batch, line)
			return nil
		})
	}
	_ = g.Wait()

	return s.finalize(work, batch, notes)
}

// finalize writes the batch terminal state from the persisted line items.
func (s *Service) finalize(ctx context.Context, batch *domain.DistributionBatch, notes string) (*Result, error) {
	counts, err := s.Batches.CountStatuses(ctx, batch.ID)
	if err != nil {
		return nil, err
	}
	if counts.Pending > 0 {
		log.Error().
			Str("batch_id", batch.ID).
			Int("pending", counts.Pending).
			Msg("distribution left line items pending; batch stays processing")
		batch.SuccessCount = counts.Credited
		batch.FailureCount = counts.Failed
		return s.summary(ctx, batch)
	}

	status := domain.BatchStatusCompleted
	if counts.Failed > 0 {
		status = domain.BatchStatusFailed
		suffix := fmt.Sprintf("%d failures", counts.Failed)
		if notes != "" {
			notes = notes + " | " + suffix
		} else {
			notes = suffix
		}
	}

	now := s.now()
	ok, err := s.Batches.FinalizeBatch(ctx, batch.ID, status, notes, counts, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Another run finalized it first.
		current, err := s.Batches.GetBatch(ctx, batch.ID)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, ErrBatchNotFound
		}
		return s.summary(ctx, current)
	}

	batch.Status = status
	batch.Notes = notes
	batch.SuccessCount = counts.Credited
	batch.FailureCount = counts.Failed
	batch.CompletedAt = &now

	log.Info().
		Str("batch_id", batch.ID).
		Str("status", status).
		Int("success", counts.Credited).
		Int("failures", counts.Failed).
		Msg("distribution finished")

	return s.summary(ctx, batch)
}

func (s *Service) summary(ctx context.Context, batch *domain.DistributionBatch) (*Result, error) {
	lines, err := s.Batches.ListAllocations(ctx, batch.ID)
	if err != nil {
		return nil, err
	}
	res := &Result{
		BatchID:      batch.ID,
		SuccessCount: batch.SuccessCount,
		FailureCount: batch.FailureCount,
		Status:       batch.Status,
		Failures:     []Failure{},
	}
	for _, l := range lines {
		if l.Status != domain.AllocationStatusFailed {
			continue
		}
		res.Failures = append(res.Failures, Failure{
			InvestorID: l.InvestorID,
			Amount:     l.ProfitAmount,
			ErrorClass: l.ErrorClass,
			Message:    l.ErrorMessage,
		})
	}
	return res, nil
}

func (s *Service) GetBatch(ctx context.Context, id string) (*BatchDetail, error) {
	b, err := s.Batches.GetBatch(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("%w: %s", ErrBatchNotFound, id)
	}
	lines, err := s.Batches.ListAllocations(ctx, id)
	if err != nil {
		return nil, err
	}
	return &BatchDetail{Batch: b, Allocations: lines}, nil
}

func (s *Service) ListBatches(ctx context.Context, fundingRoundID string) ([]domain.DistributionBatch, error) {
	return s.Batches.ListBatches(ctx, fundingRoundID)
}

func (s *Service) ListAllocations(ctx context.Context, batchID string) ([]domain.InvestorAllocation, error) {
	b, err := s.Batches.GetBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("%w: %s", ErrBatchNotFound, batchID)
	}
	return s.Batches.ListAllocations(ctx, batchID)
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	return s.Batches.Stats(ctx)
}

// IsClientError reports whether err is caused by the request rather than the system.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrNoEligibleRecipients) ||
		errors.Is(err, ErrIdempotencyConflict) ||
		errors.Is(err, ErrBatchNotFound)
}
