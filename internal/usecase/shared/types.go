package shared

import (
	"time"

	"github.com/google/uuid"
)

type IdempotencyRecord struct {
	Key          uuid.UUID
	UserID       uuid.UUID
	Status       string
	RequestHash  string
	ResultHoldID *uuid.UUID
	ExpiresAt    time.Time
}

type Record struct {
	Key       string
	Value     []byte
	CreatedAt time.Time
}

const (
	RefundJobQueued = "queued"
	RefundJobDone   = "done"
	RefundJobFailed = "failed"
)

type RefundJob struct {
	ID          uuid.UUID
	HoldID      uuid.UUID
	UserID      uuid.UUID
	Channel     string
	ExternalRef string
	PaymentID   string
	Amount      int64
	Status      string
	Attempts    int
	RunAt       time.Time
}

type CallbackRecord struct {
	Provider    string
	ExternalRef string
	HoldID      *uuid.UUID
	Outcome     string
	PaymentID   string
	Message     string
	Result      string
	RawQuery    map[string][]string
	ReceivedAt  time.Time
}

const (
	IdempotencyProcessing = "processing"
	IdempotencyCompleted  = "completed"
)
