package wallets

import "errors"

var (
	ErrWalletNotFound = errors.New("wallet not found")
	ErrConflict       = errors.New("wallet version conflict")
	ErrInvalidDelta   = errors.New("credit amount must be positive")
)
