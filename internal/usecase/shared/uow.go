package shared

import (
	"context"
	"time"

	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/domain/hold"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/infra/db"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithinReadOnly: Read-only transaction for multi-table consistent reads
	WithinReadOnly(ctx context.Context, fn func(ctx context.Context, db db.DBTX) error) error
	// WithDB: Single query operations using implicit transactions
	WithDB(ctx context.Context, fn func(ctx context.Context, db db.DBTX) error) error
	// CommandReads: Direct access to command reads for validation outside transactions
	CommandReads() CommandReads
}

type Tx interface {
	Holds() HoldRepository
	Slots() SlotRepository
	Wallets() WalletRepository
	Records() RecordRepository
	Refunds() RefundJobRepository
	Callbacks() CallbackRepository
	Idempotency() IdempotencyRepository
	Reads() CommandReads
	DB() db.DBTX
}

type CommandReads interface {
	ResourceRates(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int64, error)
	IdempotencyByKey(ctx context.Context, key, userID uuid.UUID) (*IdempotencyRecord, error)
}

type HoldRepository interface {
	Create(ctx context.Context, h *hold.BookingHold) error
	// GetForUpdate locks the hold row until the transaction ends.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*hold.BookingHold, error)
	FindByExternalRefForUpdate(ctx context.Context, externalRef string) (*hold.BookingHold, error)
	Update(ctx context.Context, h *hold.BookingHold) error
	ListOverdue(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error)
}

type SlotRepository interface {
	Acquire(ctx context.Context, holdID uuid.UUID, slots []hold.SlotRef) error
	Retain(ctx context.Context, holdID uuid.UUID) error
	Release(ctx context.Context, holdID uuid.UUID) error
}

type WalletRepository interface {
	Balance(ctx context.Context, userID uuid.UUID) (int64, error)
	// Debit is a single check-and-mutate; false means the balance did not cover amount.
	Debit(ctx context.Context, userID, holdID uuid.UUID, amount int64) (bool, error)
	Refund(ctx context.Context, userID, holdID uuid.UUID, amount int64) error
	TopUp(ctx context.Context, userID uuid.UUID, amount int64) (int64, error)
}

type RecordRepository interface {
	InsertIfAbsent(ctx context.Context, key string, value []byte) ([]byte, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	ListByPrefix(ctx context.Context, prefix string) ([]Record, error)
}

type RefundJobRepository interface {
	Enqueue(ctx context.Context, job RefundJob) error
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]RefundJob, error)
	GetByHoldForUpdate(ctx context.Context, holdID uuid.UUID) (*RefundJob, error)
	Lease(ctx context.Context, id uuid.UUID, until time.Time) error
	MarkDone(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, lastError string, nextRunAt time.Time, giveUp bool) error
}

type CallbackRepository interface {
	Record(ctx context.Context, rec CallbackRecord) error
}

type IdempotencyRepository interface {
	TryInsert(ctx context.Context, key, userID uuid.UUID, endpoint, requestHash string, expiresAt time.Time) error
	UpdateStatusCompleted(ctx context.Context, key, userID, holdID uuid.UUID) error
	ClaimExpired(ctx context.Context, key, userID uuid.UUID, requestHash string, expiresAt time.Time) (int64, error)
}
