package commands

import (
	"context"
	"net/url"

	"github.com/google/uuid"
)

// PaymentOrder is what a gateway needs to open a payment page.
type PaymentOrder struct {
	OrderID     string
	HoldID      uuid.UUID
	Amount      int64
	Description string
}

// RefundOrder reverses a captured gateway charge.
type RefundOrder struct {
	OrderID   string
	PaymentID string
	HoldID    uuid.UUID
	Amount    int64
}

// PaymentProvider is one external gateway (MoMo, VNPay, ...).
type PaymentProvider interface {
	Name() string
	CreatePayment(ctx context.Context, order PaymentOrder) (redirectURL string, err error)
	Refund(ctx context.Context, order RefundOrder) error
}

type CallbackOutcome string

const (
	OutcomeSuccess CallbackOutcome = "success"
	OutcomeFailure CallbackOutcome = "failure"
	OutcomeUnknown CallbackOutcome = "unknown"
)

// Callback is a gateway notification reduced to what reconciliation needs.
type Callback struct {
	Provider    string
	ExternalRef string
	HoldID      *uuid.UUID
	Outcome     CallbackOutcome
	PaymentID   string
	Message     string
}

// CallbackParser turns a provider's redirect or IPN query into a Callback.
type CallbackParser interface {
	Provider() string
	Parse(q url.Values) (Callback, error)
}
