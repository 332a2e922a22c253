package errs

import "errors"

// Domain-specific sentinel errors for CQRS usecase layers
var (
	// Hold errors
	ErrHoldNotFound         = errors.New("hold not found")
	ErrHoldNotOwned         = errors.New("hold not owned by user")
	ErrHoldWindowClosed     = errors.New("hold window closed")
	ErrHoldUnresolvable     = errors.New("hold cannot be resolved from callback")
	ErrSlotUnavailable      = errors.New("slot unavailable")
	ErrChannelAlreadyChosen = errors.New("payment channel already chosen")

	// Payment errors
	ErrInsufficientFunds  = errors.New("insufficient wallet balance")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrUnknownProvider    = errors.New("unknown payment provider")
	ErrAmbiguousCallback  = errors.New("ambiguous payment callback")
	ErrInvalidSignature   = errors.New("invalid callback signature")

	// Refund errors
	ErrRefundFailed   = errors.New("refund issuance failed")
	ErrRefundInFlight = errors.New("refund already being issued")

	// Idempotency errors
	ErrIdempotencyKeyRequired = errors.New("idempotency key required")
	ErrIdempotencyInProgress  = errors.New("idempotency in progress")
	ErrIdempotencyCheckFailed = errors.New("idempotency check failed")
	ErrDuplicateHoldRequest   = errors.New("duplicate hold request with different parameters")

	// Validation errors
	ErrDomainValidation = errors.New("domain validation error")

	// Operation errors
	ErrDatabaseOperationFailed = errors.New("database operation failed")
)
