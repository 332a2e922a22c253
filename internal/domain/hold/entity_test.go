//go:build unit

package hold_test

import (
	"testing"
	"time"

	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/domain/hold"
	"github.com/DucAnhDev9421/dat-san-online-sub005/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2030, 5, 31, 10, 0, 0, 0, time.UTC)

func newHold(t *testing.T) *hold.BookingHold {
	t.Helper()
	h, err := builder.NewHoldBuilder().WithNow(t0).BuildDomain()
	require.NoError(t, err)
	return h
}

func TestNewBookingHold(t *testing.T) {
	t.Run("basic success case", func(t *testing.T) {
		h := newHold(t)

		assert.NotEqual(t, uuid.Nil, h.ID())
		assert.Equal(t, hold.StatusPendingPayment, h.Status())
		assert.Equal(t, t0, h.StartedAt())
		assert.Equal(t, t0.Add(300*time.Second), h.Deadline())
		assert.Equal(t, int64(200000), h.AmountDue().Amount())
		assert.True(t, h.Channel().IsZero())
		assert.Nil(t, h.Refund())
	})

	t.Run("slot validation", func(t *testing.T) {
		court := uuid.New()
		cases := []struct {
			name  string
			slots []builder.SlotSpec
			errIs error
		}{
			{name: "no slots", slots: nil, errIs: hold.ErrEmptySlots},
			{
				name: "overlapping slots on the same court",
				slots: []builder.SlotSpec{
					{ResourceID: court, Date: "2030-06-01", Start: "18:00", End: "19:00"},
					{ResourceID: court, Date: "2030-06-01", Start: "18:30", End: "19:30"},
				},
				errIs: hold.ErrDuplicateSlot,
			},
			{
				name: "adjacent slots are allowed",
				slots: []builder.SlotSpec{
					{ResourceID: court, Date: "2030-06-01", Start: "19:00", End: "20:00"},
					{ResourceID: court, Date: "2030-06-01", Start: "18:00", End: "19:00"},
				},
			},
			{
				name:  "end before start",
				slots: []builder.SlotSpec{{ResourceID: court, Date: "2030-06-01", Start: "19:00", End: "18:00"}},
				errIs: hold.ErrInvalidTimeSpan,
			},
			{
				name:  "bad date",
				slots: []builder.SlotSpec{{ResourceID: court, Date: "01/06/2030", Start: "18:00", End: "19:00"}},
				errIs: hold.ErrInvalidSlot,
			},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				h, err := builder.NewHoldBuilder().WithSlots(tc.slots...).BuildDomain()
				if tc.errIs != nil {
					require.ErrorIs(t, err, tc.errIs)
					return
				}
				require.NoError(t, err)
				slots := h.Slots()
				require.Len(t, slots, 2)
				assert.Equal(t, "18:00", slots[0].Start(), "slots are kept in order")
			})
		}
	})

	t.Run("non-positive window", func(t *testing.T) {
		_, err := builder.NewHoldBuilder().WithWindow(0).BuildDomain()
		assert.ErrorIs(t, err, hold.ErrInvalidWindow)
	})
}

func TestBookingHold_Apply(t *testing.T) {
	inWindow := t0.Add(10 * time.Second)

	t.Run("transition table from PENDING_PAYMENT", func(t *testing.T) {
		cases := []struct {
			event hold.Event
			want  hold.Status
		}{
			{hold.EventConfirm, hold.StatusConfirmed},
			{hold.EventDecline, hold.StatusCancelled},
			{hold.EventUserCancel, hold.StatusCancelled},
			{hold.EventExpire, hold.StatusExpired},
		}
		for _, tc := range cases {
			t.Run(tc.event.String(), func(t *testing.T) {
				h := newHold(t)
				tr, err := h.Apply(tc.event, inWindow)
				require.NoError(t, err)
				assert.True(t, tr.Applied)
				assert.Equal(t, hold.StatusPendingPayment, tr.From)
				assert.Equal(t, tc.want, tr.To)
				assert.Equal(t, tc.want, h.Status())
				assert.False(t, tr.Superseded())
			})
		}
	})

	t.Run("every event after a terminal state is a no-op", func(t *testing.T) {
		events := []hold.Event{hold.EventConfirm, hold.EventDecline, hold.EventUserCancel, hold.EventExpire}
		for _, first := range events {
			h := newHold(t)
			_, err := h.Apply(first, inWindow)
			require.NoError(t, err)
			terminal := h.Status()

			for _, next := range events {
				tr, err := h.Apply(next, inWindow.Add(time.Second))
				require.NoError(t, err)
				assert.False(t, tr.Applied, "%s after %s", next, first)
				assert.Equal(t, terminal, h.Status())
			}
		}
	})

	t.Run("overdue hold expires instead of confirming", func(t *testing.T) {
		h := newHold(t)
		tr, err := h.Apply(hold.EventConfirm, t0.Add(300*time.Second))
		require.NoError(t, err)
		assert.True(t, tr.Applied)
		assert.True(t, tr.Superseded())
		assert.Equal(t, hold.EventExpire, tr.Event)
		assert.Equal(t, hold.EventConfirm, tr.Requested)
		assert.Equal(t, hold.StatusExpired, h.Status())
		assert.True(t, tr.ReleasesSlots())
	})

	t.Run("unknown event", func(t *testing.T) {
		h := newHold(t)
		_, err := h.Apply(hold.Event("REOPEN"), inWindow)
		assert.ErrorIs(t, err, hold.ErrInvalidEvent)
		assert.Equal(t, hold.StatusPendingPayment, h.Status())
	})
}

func TestBookingHold_Remaining(t *testing.T) {
	h := newHold(t)
	assert.Equal(t, 300*time.Second, h.Remaining(t0))
	assert.Equal(t, time.Second, h.Remaining(t0.Add(299*time.Second)))
	assert.Equal(t, time.Duration(0), h.Remaining(t0.Add(301*time.Second)))
	assert.True(t, h.IsOverdue(t0.Add(300*time.Second)))
}

func TestBookingHold_Channels(t *testing.T) {
	now := t0.Add(time.Second)

	t.Run("wallet debit captures amount due", func(t *testing.T) {
		h := newHold(t)
		require.NoError(t, h.RecordWalletDebit(now))
		assert.Equal(t, "wallet", h.Channel().String())
		assert.Equal(t, h.AmountDue(), h.Captured())
	})

	t.Run("channel is never reset", func(t *testing.T) {
		h := newHold(t)
		require.NoError(t, h.AssignGateway(hold.GatewayChannel("momo"), "MOMO_x_1", now))
		assert.ErrorIs(t, h.RecordWalletDebit(now), hold.ErrChannelAlreadyChosen)
		assert.ErrorIs(t, h.AssignCash(now), hold.ErrChannelAlreadyChosen)
		assert.ErrorIs(t, h.AssignGateway(hold.GatewayChannel("vnpay"), "VNPAY_x_1", now), hold.ErrChannelAlreadyChosen)

		require.NoError(t, h.AssignGateway(hold.GatewayChannel("momo"), "MOMO_x_2", now))
		assert.Equal(t, "MOMO_x_2", h.ExternalRef())
	})

	t.Run("terminal hold rejects channel changes", func(t *testing.T) {
		h := newHold(t)
		_, err := h.Apply(hold.EventUserCancel, now)
		require.NoError(t, err)
		assert.ErrorIs(t, h.AssignCash(now), hold.ErrHoldTerminal)
	})
}

func TestBookingHold_Refund(t *testing.T) {
	now := t0.Add(time.Second)

	t.Run("wallet debit then cancel refunds once", func(t *testing.T) {
		h := newHold(t)
		require.NoError(t, h.RecordWalletDebit(now))
		_, err := h.Apply(hold.EventUserCancel, now)
		require.NoError(t, err)
		require.True(t, h.NeedsRefund())

		r, err := h.StartRefund(now)
		require.NoError(t, err)
		assert.Equal(t, h.AmountDue(), r.Amount())
		assert.Equal(t, hold.RefundPending, r.Status())

		_, err = h.StartRefund(now)
		assert.ErrorIs(t, err, hold.ErrRefundAlreadyIssued)

		require.NoError(t, h.CompleteRefund(now))
		assert.Equal(t, hold.RefundCompleted, h.Refund().Status())
		assert.ErrorIs(t, h.CompleteRefund(now), hold.ErrNoRefundPending)
	})

	t.Run("gateway decline before confirm needs no refund", func(t *testing.T) {
		h := newHold(t)
		require.NoError(t, h.AssignGateway(hold.GatewayChannel("momo"), "MOMO_x_1", now))
		_, err := h.Apply(hold.EventDecline, now)
		require.NoError(t, err)
		assert.False(t, h.NeedsRefund())
		_, err = h.StartRefund(now)
		assert.ErrorIs(t, err, hold.ErrNothingToRefund)
	})

	t.Run("confirmed hold never refunds", func(t *testing.T) {
		h := newHold(t)
		require.NoError(t, h.RecordWalletDebit(now))
		_, err := h.Apply(hold.EventConfirm, now)
		require.NoError(t, err)
		assert.False(t, h.NeedsRefund())
	})

	t.Run("late gateway charge on expired hold", func(t *testing.T) {
		h := newHold(t)
		_, err := h.Apply(hold.EventExpire, t0.Add(301*time.Second))
		require.NoError(t, err)
		h.RecordLateCharge(h.AmountDue(), t0.Add(302*time.Second))
		assert.True(t, h.NeedsRefund())
	})
}
