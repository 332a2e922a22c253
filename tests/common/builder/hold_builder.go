//go:build unit || e2e

package builder

import (
	"time"

	domhold "github.com/DucAnhDev9421/dat-san-online-sub005/internal/domain/hold"
	reqdto "github.com/DucAnhDev9421/dat-san-online-sub005/internal/handler/dto/request"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/clock"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/usecase/queries"

	"github.com/google/uuid"
)

type SlotSpec struct {
	ResourceID uuid.UUID
	Date       string
	Start      string
	End        string
}

type HoldBuilder struct {
	UserID    uuid.UUID
	Slots     []SlotSpec
	AmountDue int64
	Now       time.Time
	Window    time.Duration
	MaxSlots  int
}

func NewHoldBuilder() *HoldBuilder {
	return &HoldBuilder{
		UserID: uuid.New(),
		Slots: []SlotSpec{
			{ResourceID: uuid.New(), Date: "2030-06-01", Start: "18:00", End: "19:00"},
		},
		AmountDue: 200000,
		Now:       time.Date(2030, 5, 31, 10, 0, 0, 0, time.UTC),
		Window:    300 * time.Second,
		MaxSlots:  8,
	}
}

func (b *HoldBuilder) With(mutate func(*HoldBuilder)) *HoldBuilder {
	mutate(b)
	return b
}

func (b *HoldBuilder) WithUserID(id uuid.UUID) *HoldBuilder {
	b.UserID = id
	return b
}

func (b *HoldBuilder) WithAmount(amount int64) *HoldBuilder {
	b.AmountDue = amount
	return b
}

func (b *HoldBuilder) WithSlots(slots ...SlotSpec) *HoldBuilder {
	b.Slots = slots
	return b
}

func (b *HoldBuilder) WithNow(now time.Time) *HoldBuilder {
	b.Now = now
	return b
}

func (b *HoldBuilder) WithWindow(d time.Duration) *HoldBuilder {
	b.Window = d
	return b
}

func (b *HoldBuilder) BuildSlotRefs() ([]domhold.SlotRef, error) {
	refs := make([]domhold.SlotRef, 0, len(b.Slots))
	for _, s := range b.Slots {
		ref, err := domhold.NewSlotRef(s.ResourceID, s.Date, s.Start, s.End)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func (b *HoldBuilder) BuildDomain() (*domhold.BookingHold, error) {
	refs, err := b.BuildSlotRefs()
	if err != nil {
		return nil, err
	}
	amount, err := domhold.NewMoney(b.AmountDue)
	if err != nil {
		return nil, err
	}
	services := &domhold.Services{
		Clock:    clock.NewMockClock(b.Now),
		Window:   b.Window,
		MaxSlots: b.MaxSlots,
	}
	return domhold.NewBookingHold(services, b.UserID, refs, amount)
}

// MustBuildDomain panics on invalid builder state; for fixtures only.
func (b *HoldBuilder) MustBuildDomain() *domhold.BookingHold {
	h, err := b.BuildDomain()
	if err != nil {
		panic(err)
	}
	return h
}

func (b *HoldBuilder) BuildCreateRequestDTO() reqdto.CreateHoldRequest {
	slots := make([]reqdto.SlotRequest, 0, len(b.Slots))
	for _, s := range b.Slots {
		slots = append(slots, reqdto.SlotRequest{
			ResourceID: s.ResourceID,
			Date:       s.Date,
			Start:      s.Start,
			End:        s.End,
		})
	}
	return reqdto.CreateHoldRequest{Slots: slots}
}

// BuildView returns a pending hold read model with the full window remaining.
func (b *HoldBuilder) BuildView() *queries.HoldView {
	slots := make([]queries.SlotView, 0, len(b.Slots))
	for _, s := range b.Slots {
		slots = append(slots, queries.SlotView{ResourceID: s.ResourceID, Date: s.Date, Start: s.Start, End: s.End})
	}
	return &queries.HoldView{
		ID:               uuid.New(),
		UserID:           b.UserID,
		Status:           string(domhold.StatusPendingPayment),
		AmountDue:        b.AmountDue,
		Slots:            slots,
		HoldStartedAt:    b.Now,
		HoldDeadline:     b.Now.Add(b.Window),
		RemainingSeconds: int64(b.Window.Seconds()),
		CreatedAt:        b.Now,
		UpdatedAt:        b.Now,
	}
}
