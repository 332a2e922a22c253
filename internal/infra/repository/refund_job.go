package repository

import (
	"context"
	"time"

	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/infra"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/infra/queries"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/pgconv"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type RefundJobWriteQueries interface {
	CreateRefundJob(ctx context.Context, db queries.DBTX, arg queries.CreateRefundJobParams) (int64, error)
	ClaimDueRefundJobs(ctx context.Context, db queries.DBTX, now time.Time, limit int32) ([]queries.RefundJobs, error)
	GetRefundJobByHoldForUpdate(ctx context.Context, db queries.DBTX, holdID uuid.UUID) (queries.RefundJobs, error)
	UpdateRefundJobStatus(ctx context.Context, db queries.DBTX, arg queries.UpdateRefundJobStatusParams) error
}

// RefundJobRepository is the refund outbox.
type RefundJobRepository struct {
	queries RefundJobWriteQueries
	db      queries.DBTX
}

func NewRefundJobRepository(q RefundJobWriteQueries, db queries.DBTX) *RefundJobRepository {
	return &RefundJobRepository{queries: q, db: db}
}

// Enqueue is a no-op when the hold already has a job.
func (r *RefundJobRepository) Enqueue(ctx context.Context, job shared.RefundJob) error {
	_, err := r.queries.CreateRefundJob(ctx, r.db, queries.CreateRefundJobParams{
		HoldID:      job.HoldID,
		UserID:      job.UserID,
		Channel:     job.Channel,
		ExternalRef: pgconv.StringToPgtype(job.ExternalRef),
		PaymentID:   pgconv.StringToPgtype(job.PaymentID),
		Amount:      job.Amount,
		RunAt:       job.RunAt,
	})
	if err != nil {
		return infra.WrapRepoErr("failed to enqueue refund job", err)
	}
	return nil
}

// ClaimDue locks due jobs, skipping rows another worker holds.
func (r *RefundJobRepository) ClaimDue(ctx context.Context, now time.Time, limit int) ([]shared.RefundJob, error) {
	rows, err := r.queries.ClaimDueRefundJobs(ctx, r.db, now, int32(limit)) // #nosec G115 -- small batch size
	if err != nil {
		return nil, infra.WrapRepoErr("failed to claim refund jobs", err)
	}
	jobs := make([]shared.RefundJob, 0, len(rows))
	for _, row := range rows {
		jobs = append(jobs, refundJobToShared(row))
	}
	return jobs, nil
}

func (r *RefundJobRepository) GetByHoldForUpdate(ctx context.Context, holdID uuid.UUID) (*shared.RefundJob, error) {
	row, err := r.queries.GetRefundJobByHoldForUpdate(ctx, r.db, holdID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to lock refund job", err)
	}
	job := refundJobToShared(row)
	return &job, nil
}

func (r *RefundJobRepository) MarkDone(ctx context.Context, id uuid.UUID) error {
	err := r.queries.UpdateRefundJobStatus(ctx, r.db, queries.UpdateRefundJobStatusParams{
		ID:      id,
		Status: shared.RefundJobDone,
	})
	if err != nil {
		return infra.WrapRepoErr("failed to mark refund job done", err)
	}
	return nil
}

// Lease hides the job from other issuers until until.
func (r *RefundJobRepository) Lease(ctx context.Context, id uuid.UUID, until time.Time) error {
	err := r.queries.UpdateRefundJobStatus(ctx, r.db, queries.UpdateRefundJobStatusParams{
		ID:     id,
		Status: shared.RefundJobQueued,
		RunAt:  pgconv.TimeToPgtype(until),
	})
	if err != nil {
		return infra.WrapRepoErr("failed to lease refund job", err)
	}
	return nil
}

// MarkFailed counts a failed attempt and reschedules the job, or parks it as failed
// when giveUp is set.
func (r *RefundJobRepository) MarkFailed(ctx context.Context, id uuid.UUID, lastError string, nextRunAt time.Time, giveUp bool) error {
	status := shared.RefundJobQueued
	if giveUp {
		status = shared.RefundJobFailed
	}
	var runAt pgtype.Timestamptz
	if !nextRunAt.IsZero() {
		runAt = pgconv.TimeToPgtype(nextRunAt)
	}
	err := r.queries.UpdateRefundJobStatus(ctx, r.db, queries.UpdateRefundJobStatusParams{
		ID:        id,
		Status:    status,
		Attempt:   1,
		LastError: pgconv.StringToPgtype(lastError),
		RunAt:     runAt,
	})
	if err != nil {
		return infra.WrapRepoErr("failed to mark refund job failed", err)
	}
	return nil
}

func refundJobToShared(row queries.RefundJobs) shared.RefundJob {
	return shared.RefundJob{
		ID:          row.ID,
		HoldID:      row.HoldID,
		UserID:      row.UserID,
		Channel:     row.Channel,
		ExternalRef: pgconv.StringFromPgtype(row.ExternalRef),
		PaymentID:   pgconv.StringFromPgtype(row.PaymentID),
		Amount:      row.Amount,
		Status:      row.Status,
		Attempts:    int(row.Attempts),
		RunAt:       row.RunAt,
	}
}
