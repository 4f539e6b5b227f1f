package wallets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"profitshare-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service is the only path that mutates wallet balances.
type Service struct {
	DB  *gorm.DB
	Now func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// GetByInvestor returns the investor's wallet, or nil when none exists.
func (s *Service) GetByInvestor(ctx context.Context, investorID string) (*domain.Wallet, error) {
	var w domain.Wallet
	err := s.DB.WithContext(ctx).Where("investor_id = ?", investorID).First(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// Credit adds delta to the available, total and returns balances of the wallet
// if it is still at expectedVersion, and bumps the version.
func (s *Service) Credit(ctx context.Context, walletID uuid.UUID, delta decimal.Decimal, expectedVersion int64) (*domain.Wallet, error) {
	if !delta.IsPositive() {
		return nil, ErrInvalidDelta
	}

	var w domain.Wallet
	err := s.DB.WithContext(ctx).Where("id = ?", walletID).First(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrWalletNotFound, walletID)
	}
	if err != nil {
		return nil, err
	}
	if w.Version != expectedVersion {
		return nil, fmt.Errorf("%w: wallet %s at version %d, expected %d", ErrConflict, walletID, w.Version, expectedVersion)
	}

	now := s.now()
	w.AvailableBalance = w.AvailableBalance.Add(delta)
	w.TotalBalance = w.TotalBalance.Add(delta)
	w.TotalReturns = w.TotalReturns.Add(delta)
	w.Version = expectedVersion + 1
	w.LastTransactionAt = &now
	w.UpdatedAt = now

	res := s.DB.WithContext(ctx).Model(&domain.Wallet{}).
		Where("id = ? AND version = ?", walletID, expectedVersion).
		Updates(map[string]interface{}{
			"available_balance":   w.AvailableBalance,
			"total_balance":       w.TotalBalance,
			"total_returns":       w.TotalReturns,
			"version":             w.Version,
			"last_transaction_at": now,
			"updatedAt":           now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: wallet %s changed during credit", ErrConflict, walletID)
	}
	return &w, nil
}

// ViewWallet returns the wallet for display.
func (s *Service) ViewWallet(ctx context.Context, investorID string) (interface{}, string, int) {
	if investorID == "" {
		return nil, "investor_id is required", 400
	}
	w, err := s.GetByInvestor(ctx, investorID)
	if err != nil {
		return nil, "Internal Server Error", 500
	}
	if w == nil {
		return nil, "Wallet not found", 404
	}
	return w, "", 0
}
