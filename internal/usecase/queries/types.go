package queries

import (
	"time"

	"github.com/google/uuid"
)

type SlotView struct {
	ResourceID uuid.UUID `json:"resource_id"`
	Date       string    `json:"date"`
	Start      string    `json:"start"`
	End        string    `json:"end"`
}

type RefundView struct {
	Amount int64  `json:"amount"`
	Status string `json:"status"`
}

type HoldView struct {
	ID               uuid.UUID   `json:"id"`
	UserID           uuid.UUID   `json:"user_id"`
	Status           string      `json:"status"`
	AmountDue        int64       `json:"amount_due"`
	Slots            []SlotView  `json:"slots"`
	PaymentChannel   *string     `json:"payment_channel,omitempty"`
	ExternalRef      *string     `json:"external_ref,omitempty"`
	CapturedAmount   int64       `json:"captured_amount"`
	HoldStartedAt    time.Time   `json:"hold_started_at"`
	HoldDeadline     time.Time   `json:"hold_deadline"`
	RemainingSeconds int64       `json:"remaining_seconds"`
	Refund           *RefundView `json:"refund,omitempty"`
	DeclineReason    *string     `json:"decline_reason,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

type WalletView struct {
	UserID  uuid.UUID `json:"user_id"`
	Balance int64     `json:"balance"`
}

type PaymentCallbackView struct {
	ID          uuid.UUID           `json:"id"`
	Provider    string              `json:"provider"`
	ExternalRef *string             `json:"external_ref,omitempty"`
	HoldID      *uuid.UUID          `json:"hold_id,omitempty"`
	Outcome     string              `json:"outcome"`
	PaymentID   *string             `json:"payment_id,omitempty"`
	Message     *string             `json:"message,omitempty"`
	Result      string              `json:"result"`
	RawQuery    map[string][]string `json:"raw_query"`
	ReceivedAt  time.Time           `json:"received_at"`
}
