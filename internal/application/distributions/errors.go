package distributions

import (
	"errors"

	"profitshare-backend/internal/application/wallets"
)

var (
	ErrValidation           = errors.New("validation failed")
	ErrNoEligibleRecipients = errors.New("no eligible recipients")
	ErrIdempotencyConflict  = errors.New("idempotency key reused with a different request")
	ErrBatchNotFound        = errors.New("distribution batch not found")
	ErrWalletInactive       = errors.New("wallet is not active")
	ErrCurrencyMismatch     = errors.New("wallet currency does not match ledger currency")
	// ErrLineSettled is returned when a line item already left the pending state.
	ErrLineSettled = errors.New("allocation already settled")

	ErrWalletNotFound = wallets.ErrWalletNotFound
	ErrConflict       = wallets.ErrConflict
)

// Error classes recorded on failed line items.
const (
	ClassWalletNotFound   = "wallet_not_found"
	ClassWalletInactive   = "wallet_inactive"
	ClassCurrencyMismatch = "currency_mismatch"
	ClassConflict         = "conflict"
	ClassInfrastructure   = "infrastructure"
)

// classify maps an attempt error to its class and whether another attempt may help.
func classify(err error) (class string, retry bool) {
	switch {
	case errors.Is(err, ErrWalletNotFound):
		return ClassWalletNotFound, false
	case errors.Is(err, ErrWalletInactive):
		return ClassWalletInactive, false
	case errors.Is(err, ErrCurrencyMismatch):
		return ClassCurrencyMismatch, false
	case errors.Is(err, ErrConflict):
		return ClassConflict, true
	default:
		return ClassInfrastructure, true
	}
}
