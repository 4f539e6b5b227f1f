// Package notifications delivers investor notifications off the ledger path.
package notifications

import (
	"encoding/json"
	"strings"

	"profitshare-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gorm.io/datatypes"
)

const (
	TypeProfitDistribution = "profit_distribution"
	PriorityHigh           = "high"
	titleProfitReceived    = "Profit Distribution Received"
	actionURLWallet        = "/wallet"
)

// Event describes a credited profit share.
type Event struct {
	BatchID        string
	FundingRoundID string
	BusinessName   string
	Amount         decimal.Decimal
	Currency       string
	TransactionID  uuid.UUID
}

var printer = message.NewPrinter(language.English)

// FormatAmount renders amount rounded to two decimals with thousands grouping.
func FormatAmount(amount decimal.Decimal) string {
	rounded := amount.Round(2)
	abs := rounded.Abs()
	fixed := abs.StringFixed(2)
	frac := fixed[strings.IndexByte(fixed, '.'):]
	out := printer.Sprintf("%d", abs.Truncate(0).IntPart()) + frac
	if rounded.IsNegative() {
		out = "-" + out
	}
	return out
}

// Build turns an event into the notification stored for investorID.
func Build(investorID string, ev Event) *domain.Notification {
	meta, _ := json.Marshal(map[string]string{
		"batchId":        ev.BatchID,
		"fundingRoundId": ev.FundingRoundID,
		"amount":         ev.Amount.String(),
		"transactionId":  ev.TransactionID.String(),
	})
	return &domain.Notification{
		ID:         uuid.New(),
		InvestorID: investorID,
		Type:       TypeProfitDistribution,
		Title:      titleProfitReceived,
		Message:    printer.Sprintf("You've received %s %s from %s.", ev.Currency, FormatAmount(ev.Amount), ev.BusinessName),
		Priority:   PriorityHigh,
		ActionURL:  actionURLWallet,
		Metadata:   datatypes.JSON(meta),
	}
}
