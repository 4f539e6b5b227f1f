package distributions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"profitshare-backend/internal/application/notifications"
	"profitshare-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
)

// Outcome is the terminal result of one line item.
type Outcome struct {
	InvestorID    string
	Status        string
	TransactionID *uuid.UUID
	ErrorClass    string
	Err           error
	Attempts      int
}

// Executor credits one line item: pending -> credited | failed.
type Executor struct {
	Wallets    WalletLedger
	UnitOfWork UnitOfWork
	Batches    BatchStore
	Notifier   Notifier
	Config     Config
	Now        func() time.Time
}

func (e *Executor) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now().UTC()
}

// Execute drives line to a terminal status. It never returns early on a single
// failed attempt while attempts remain and never touches other line items.
func (e *Executor) Execute(ctx context.Context, batch *domain.DistributionBatch, line domain.InvestorAllocation) Outcome {
	out := Outcome{InvestorID: line.InvestorID}
	var lastErr error
	var class string

	for attempt := 1; attempt <= e.Config.MaxAttempts; attempt++ {
		out.Attempts = attempt
		if attempt > 1 {
			if err := sleepCtx(ctx, backoffDelay(attempt-1, e.Config.BackoffBase, e.Config.BackoffMax)); err != nil {
				lastErr = err
				break
			}
		}

		txID, err := e.attempt(ctx, batch, line, attempt)
		if err == nil {
			out.Status = domain.AllocationStatusCredited
			out.TransactionID = &txID
			e.notify(ctx, batch, line, txID)
			return out
		}
		if errors.Is(err, ErrLineSettled) {
			return e.settled(ctx, batch.ID, line.InvestorID, out)
		}

		lastErr = err
		var retry bool
		class, retry = classify(err)
		log.Debug().
			Err(err).
			Str("batch_id", batch.ID).
			Str("investor_id", line.InvestorID).
			Int("attempt", attempt).
			Str("class", class).
			Msg("distribution attempt failed")
		if !retry {
			break
		}
	}

	if class == "" {
		class, _ = classify(lastErr)
	}
	out.Status = domain.AllocationStatusFailed
	out.ErrorClass = class
	out.Err = lastErr

	markCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.Config.IOTimeout)
	defer cancel()
	if err := e.Batches.MarkFailed(markCtx, batch.ID, line.InvestorID, class, lastErr.Error(), out.Attempts, e.now()); err != nil {
		if errors.Is(err, ErrLineSettled) {
			return e.settled(ctx, batch.ID, line.InvestorID, out)
		}
		log.Error().
			Err(err).
			Str("batch_id", batch.ID).
			Str("investor_id", line.InvestorID).
			Msg("failed to record allocation failure; line item left pending")
		out.Status = domain.AllocationStatusPending
	}
	log.Warn().
		Err(lastErr).
		Str("batch_id", batch.ID).
		Str("investor_id", line.InvestorID).
		Str("class", class).
		Int("attempts", out.Attempts).
		Msg("allocation failed")
	return out
}

// attempt fetches the wallet and, in one unit of work, credits it, appends the
// ledger entry and marks the line item credited.
func (e *Executor) attempt(ctx context.Context, batch *domain.DistributionBatch, line domain.InvestorAllocation, attempt int) (uuid.UUID, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.Config.IOTimeout)
	defer cancel()

	w, err := e.Wallets.GetByInvestor(callCtx, line.InvestorID)
	if err != nil {
		return uuid.Nil, err
	}
	if w == nil {
		return uuid.Nil, fmt.Errorf("%w: investor %s", ErrWalletNotFound, line.InvestorID)
	}
	if w.Status != domain.WalletStatusActive {
		return uuid.Nil, fmt.Errorf("%w: investor %s wallet is %s", ErrWalletInactive, line.InvestorID, w.Status)
	}
	if w.Currency != "" && w.Currency != batch.Currency {
		return uuid.Nil, fmt.Errorf("%w: wallet %s, batch %s", ErrCurrencyMismatch, w.Currency, batch.Currency)
	}

	var txID uuid.UUID
	err = e.UnitOfWork.Do(callCtx, func(l Ledger) error {
		now := e.now()
		existing, err := l.Transactions.FindByReference(callCtx, batch.ID, line.InvestorID, domain.TransactionTypeProfitDistribution)
		if err != nil {
			return err
		}
		if existing != nil {
			txID = existing.TxID
			return l.Batches.MarkCredited(callCtx, batch.ID, line.InvestorID, txID, attempt, now)
		}

		if _, err := l.Wallets.Credit(callCtx, w.ID, line.ProfitAmount, w.Version); err != nil {
			return err
		}
		tx := &domain.Transaction{
			TxID:        uuid.New(),
			InvestorID:  line.InvestorID,
			Type:        domain.TransactionTypeProfitDistribution,
			Status:      domain.TransactionStatusCompleted,
			Amount:      line.ProfitAmount,
			Currency:    batch.Currency,
			Reference:   batch.ID,
			Description: fmt.Sprintf("Profit distribution from %s - %s", batch.BusinessName, batch.Period),
			Metadata:    transactionMetadata(batch, line),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := l.Transactions.Record(callCtx, tx); err != nil {
			return err
		}
		txID = tx.TxID
		return l.Batches.MarkCredited(callCtx, batch.ID, line.InvestorID, txID, attempt, now)
	})
	if err != nil {
		return uuid.Nil, err
	}
	return txID, nil
}

// settled reports the persisted state of a line item another run already settled.
func (e *Executor) settled(ctx context.Context, batchID, investorID string, out Outcome) Outcome {
	out.Status = ""
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.Config.IOTimeout)
	defer cancel()
	lines, err := e.Batches.ListAllocations(callCtx, batchID)
	if err == nil {
		for _, l := range lines {
			if l.InvestorID == investorID {
				out.Status = l.Status
				out.TransactionID = l.TransactionID
				out.ErrorClass = l.ErrorClass
				if l.ErrorMessage != "" {
					out.Err = errors.New(l.ErrorMessage)
				}
			}
		}
	}
	if out.Status == "" {
		out.Status = domain.AllocationStatusPending
	}
	return out
}

func (e *Executor) notify(ctx context.Context, batch *domain.DistributionBatch, line domain.InvestorAllocation, txID uuid.UUID) {
	if e.Notifier == nil {
		return
	}
	err := e.Notifier.Notify(ctx, line.InvestorID, notifications.Event{
		BatchID:        batch.ID,
		FundingRoundID: batch.FundingRoundID,
		BusinessName:   batch.BusinessName,
		Amount:         line.ProfitAmount,
		Currency:       batch.Currency,
		TransactionID:  txID,
	})
	if err != nil {
		log.Warn().
			Err(err).
			Str("batch_id", batch.ID).
			Str("investor_id", line.InvestorID).
			Msg("profit notification not queued")
	}
}

func transactionMetadata(batch *domain.DistributionBatch, line domain.InvestorAllocation) datatypes.JSON {
	b, _ := json.Marshal(map[string]string{
		"fundingRoundId":     batch.FundingRoundID,
		"businessName":       batch.BusinessName,
		"contractType":       batch.ContractType,
		"distributionPeriod": batch.Period,
		"investedAmount":     line.InvestedAmount.String(),
		"profitRate":         line.ProfitRate.String(),
	})
	return datatypes.JSON(b)
}
