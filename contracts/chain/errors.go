package chain

import "errors"

// Failure classes surfaced by the contracts. Callers match with errors.Is;
// the wrapped messages keep the user-facing revert strings.
var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrTargetNotAuthorized = errors.New("target not authorized")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidWindow       = errors.New("invalid window")
	ErrSignerNotSet        = errors.New("signer not set")
	ErrInvalidDistribution = errors.New("invalid distribution")
)
