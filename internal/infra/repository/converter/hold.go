package converter

import (
	"fmt"
	"time"

	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/domain/hold"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/infra/queries"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/pgconv"

	"github.com/jackc/pgx/v5/pgtype"
)

func HoldToInfra(h *hold.BookingHold) queries.Holds {
	row := queries.Holds{
		ID:             h.ID(),
		UserID:         h.UserID(),
		AmountDue:      h.AmountDue().Amount(),
		Status:         h.Status().String(),
		HoldStartedAt:  h.StartedAt(),
		HoldDeadline:   h.Deadline(),
		ExternalRef:    pgconv.StringToPgtype(h.ExternalRef()),
		CapturedAmount: h.Captured().Amount(),
		DeclineReason:  pgconv.StringToPgtype(h.DeclineReason()),
		CreatedAt:      h.CreatedAt(),
		UpdatedAt:      h.UpdatedAt(),
	}
	if c := h.Channel(); !c.IsZero() {
		row.PaymentChannel = pgconv.StringToPgtype(c.String())
	}
	if r := h.Refund(); r != nil {
		amount := r.Amount().Amount()
		row.RefundAmount = pgconv.Int64PtrToPgtype(&amount)
		row.RefundStatus = pgconv.StringToPgtype(string(r.Status()))
	}
	return row
}

func HoldToUpdateParams(h *hold.BookingHold) queries.UpdateHoldParams {
	row := HoldToInfra(h)
	return queries.UpdateHoldParams{
		ID:             row.ID,
		Status:         row.Status,
		PaymentChannel: row.PaymentChannel,
		ExternalRef:    row.ExternalRef,
		CapturedAmount: row.CapturedAmount,
		RefundAmount:   row.RefundAmount,
		RefundStatus:   row.RefundStatus,
		DeclineReason:  row.DeclineReason,
		UpdatedAt:      row.UpdatedAt,
	}
}

func SlotsToInfra(h *hold.BookingHold) ([]queries.HoldSlots, error) {
	slots := h.Slots()
	out := make([]queries.HoldSlots, 0, len(slots))
	for i, s := range slots {
		date, err := time.Parse("2006-01-02", s.Date())
		if err != nil {
			return nil, err
		}
		start, err := ClockToPgtype(s.Start())
		if err != nil {
			return nil, err
		}
		end, err := ClockToPgtype(s.End())
		if err != nil {
			return nil, err
		}
		out = append(out, queries.HoldSlots{
			HoldID:     h.ID(),
			Position:   int32(i), // #nosec G115 -- bounded by HoldConfig.MaxSlots
			ResourceID: s.ResourceID(),
			SlotDate:   date,
			StartTime:  start,
			EndTime:    end,
		})
	}
	return out, nil
}

func HoldToDomain(row queries.Holds, slotRows []queries.HoldSlots) (*hold.BookingHold, error) {
	status := hold.Status(row.Status)
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: %q", hold.ErrInvalidStatus, row.Status)
	}

	slots := make([]hold.SlotRef, 0, len(slotRows))
	for _, s := range slotRows {
		ref, err := hold.NewSlotRef(s.ResourceID, s.SlotDate.Format("2006-01-02"), ClockFromPgtype(s.StartTime), ClockFromPgtype(s.EndTime))
		if err != nil {
			return nil, err
		}
		slots = append(slots, ref)
	}

	amountDue, err := hold.NewMoney(row.AmountDue)
	if err != nil {
		return nil, err
	}
	captured, err := hold.NewMoney(row.CapturedAmount)
	if err != nil {
		return nil, err
	}

	var channel hold.Channel
	if row.PaymentChannel.Valid {
		channel, err = hold.ParseChannel(row.PaymentChannel.String)
		if err != nil {
			return nil, err
		}
	}

	var refund *hold.Refund
	if v := pgconv.Int64PtrFromPgtype(row.RefundAmount); v != nil && row.RefundStatus.Valid {
		amount, err := hold.NewMoney(*v)
		if err != nil {
			return nil, err
		}
		r := hold.NewRefund(amount, hold.RefundStatus(row.RefundStatus.String))
		refund = &r
	}

	return hold.ReconstructBookingHold(
		row.ID, row.UserID,
		slots,
		amountDue,
		status,
		row.HoldStartedAt, row.HoldDeadline,
		channel,
		pgconv.StringFromPgtype(row.ExternalRef),
		captured,
		refund,
		pgconv.StringFromPgtype(row.DeclineReason),
		row.CreatedAt, row.UpdatedAt,
	), nil
}

// ClockToPgtype converts "HH:MM" to a TIME value.
func ClockToPgtype(v string) (pgtype.Time, error) {
	t, err := time.Parse("15:04", v)
	if err != nil {
		return pgtype.Time{}, err
	}
	minutes := int64(t.Hour()*60 + t.Minute())
	return pgtype.Time{Microseconds: minutes * int64(time.Minute/time.Microsecond), Valid: true}, nil
}

func ClockFromPgtype(t pgtype.Time) string {
	total := t.Microseconds / int64(time.Minute/time.Microsecond)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
