// Package investments is the read side over funding rounds and investor stakes.
package investments

import (
	"context"
	"errors"

	"profitshare-backend/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Position is an investor's aggregated active stake in one funding round.
type Position struct {
	InvestorID string
	Amount     decimal.Decimal
}

type Service struct {
	DB *gorm.DB
}

// ListActivePositions returns one position per investor holding active, positive
// investments in the round, in order of first investment.
func (s *Service) ListActivePositions(ctx context.Context, fundingRoundID string) ([]Position, error) {
	var rows []domain.Investment
	if err := s.DB.WithContext(ctx).
		Where("funding_round_id = ? AND status = ?", fundingRoundID, domain.InvestmentStatusActive).
		Order(`"createdAt" ASC, id ASC`).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	index := make(map[string]int, len(rows))
	out := make([]Position, 0, len(rows))
	for _, r := range rows {
		if !r.Amount.IsPositive() || r.InvestorID == "" {
			continue
		}
		if i, ok := index[r.InvestorID]; ok {
			out[i].Amount = out[i].Amount.Add(r.Amount)
			continue
		}
		index[r.InvestorID] = len(out)
		out = append(out, Position{InvestorID: r.InvestorID, Amount: r.Amount})
	}
	return out, nil
}

// GetFundingRound returns the round, or nil when it does not exist.
func (s *Service) GetFundingRound(ctx context.Context, id string) (*domain.FundingRound, error) {
	var fr domain.FundingRound
	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&fr).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &fr, nil
}
