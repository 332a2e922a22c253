package queries

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type Holds struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	AmountDue      int64
	Status         string
	HoldStartedAt  time.Time
	HoldDeadline   time.Time
	PaymentChannel pgtype.Text
	ExternalRef    pgtype.Text
	CapturedAmount int64
	RefundAmount   pgtype.Int8
	RefundStatus   pgtype.Text
	DeclineReason  pgtype.Text
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type HoldSlots struct {
	HoldID     uuid.UUID
	Position   int32
	ResourceID uuid.UUID
	SlotDate   time.Time
	StartTime  pgtype.Time
	EndTime    pgtype.Time
}

type DurableRecords struct {
	Key       string
	Value     []byte
	CreatedAt time.Time
}

type RefundJobs struct {
	ID          uuid.UUID
	HoldID      uuid.UUID
	UserID      uuid.UUID
	Channel     string
	ExternalRef pgtype.Text
	PaymentID   pgtype.Text
	Amount      int64
	Status      string
	Attempts    int32
	LastError   pgtype.Text
	RunAt       time.Time
}

type PaymentCallbacks struct {
	ID          uuid.UUID
	Provider    string
	ExternalRef pgtype.Text
	HoldID      pgtype.UUID
	Outcome     string
	PaymentID   pgtype.Text
	Message     pgtype.Text
	Result      string
	RawQuery    []byte
	ReceivedAt  time.Time
}

type IdempotencyKeys struct {
	Key          uuid.UUID
	UserID       uuid.UUID
	Endpoint     string
	RequestHash  string
	Status       string
	ResultHoldID pgtype.UUID
	ExpiresAt    time.Time
}

type Resources struct {
	ID         uuid.UUID
	Name       string
	HourlyRate int64
}
