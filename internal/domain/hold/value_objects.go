package hold

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNegativeAmount  = errors.New("amount cannot be negative")
	ErrInvalidChannel  = errors.New("invalid payment channel")
	ErrInvalidSlot     = errors.New("invalid slot reference")
	ErrDuplicateSlot   = errors.New("duplicate slot reference")
	ErrEmptySlots      = errors.New("hold requires at least one slot")
	ErrTooManySlots    = errors.New("too many slots for a single hold")
	ErrInvalidTimeSpan = errors.New("slot end must be after start")
)

const dateLayout = "2006-01-02"

// Money is an amount in the smallest currency unit (VND has no minor unit).
type Money struct {
	amount int64
}

func NewMoney(amount int64) (Money, error) {
	if amount < 0 {
		return Money{}, ErrNegativeAmount
	}
	return Money{amount: amount}, nil
}

func (m Money) Amount() int64 {
	return m.amount
}

func (m Money) IsZero() bool {
	return m.amount == 0
}

// SlotRef identifies one bookable time range of a resource (court) on a date.
type SlotRef struct {
	resourceID  uuid.UUID
	date        time.Time
	startMinute int
	endMinute   int
}

func NewSlotRef(resourceID uuid.UUID, date string, start, end string) (SlotRef, error) {
	if resourceID == uuid.Nil {
		return SlotRef{}, ErrInvalidSlot
	}
	d, err := time.Parse(dateLayout, date)
	if err != nil {
		return SlotRef{}, fmt.Errorf("%w: date %q", ErrInvalidSlot, date)
	}
	s, err := parseClock(start)
	if err != nil {
		return SlotRef{}, err
	}
	e, err := parseClock(end)
	if err != nil {
		return SlotRef{}, err
	}
	if e <= s {
		return SlotRef{}, ErrInvalidTimeSpan
	}
	return SlotRef{resourceID: resourceID, date: d, startMinute: s, endMinute: e}, nil
}

func parseClock(v string) (int, error) {
	t, err := time.Parse("15:04", v)
	if err != nil {
		return 0, fmt.Errorf("%w: time %q", ErrInvalidSlot, v)
	}
	return t.Hour()*60 + t.Minute(), nil
}

func formatClock(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}

func (s SlotRef) ResourceID() uuid.UUID { return s.resourceID }
func (s SlotRef) Date() string          { return s.date.Format(dateLayout) }
func (s SlotRef) Start() string         { return formatClock(s.startMinute) }
func (s SlotRef) End() string           { return formatClock(s.endMinute) }

func (s SlotRef) Key() string {
	return fmt.Sprintf("%s|%s|%s-%s", s.resourceID, s.Date(), s.Start(), s.End())
}

func (s SlotRef) less(o SlotRef) bool {
	if s.resourceID != o.resourceID {
		return s.resourceID.String() < o.resourceID.String()
	}
	if !s.date.Equal(o.date) {
		return s.date.Before(o.date)
	}
	return s.startMinute < o.startMinute
}

func (s SlotRef) overlaps(o SlotRef) bool {
	return s.resourceID == o.resourceID && s.date.Equal(o.date) &&
		s.startMinute < o.endMinute && o.startMinute < s.endMinute
}

// NewSlotSet sorts the refs and rejects duplicates or overlapping ranges.
func NewSlotSet(refs []SlotRef, maxSlots int) ([]SlotRef, error) {
	if len(refs) == 0 {
		return nil, ErrEmptySlots
	}
	if maxSlots > 0 && len(refs) > maxSlots {
		return nil, ErrTooManySlots
	}
	out := make([]SlotRef, len(refs))
	copy(out, refs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].less(out[j]) })
	for i := 1; i < len(out); i++ {
		if out[i-1].overlaps(out[i]) {
			return nil, ErrDuplicateSlot
		}
	}
	return out, nil
}

// Channel is one of "wallet", "cash" or "gateway:<provider>".
type Channel struct {
	kind     ChannelKind
	provider string
}

func ParseChannel(v string) (Channel, error) {
	switch {
	case v == string(ChannelWallet):
		return Channel{kind: ChannelWallet}, nil
	case v == string(ChannelCash):
		return Channel{kind: ChannelCash}, nil
	case strings.HasPrefix(v, string(ChannelGateway)+":"):
		provider := strings.ToLower(strings.TrimPrefix(v, string(ChannelGateway)+":"))
		if provider == "" || strings.ContainsAny(provider, ":_ ") {
			return Channel{}, ErrInvalidChannel
		}
		return Channel{kind: ChannelGateway, provider: provider}, nil
	default:
		return Channel{}, ErrInvalidChannel
	}
}

func GatewayChannel(provider string) Channel {
	return Channel{kind: ChannelGateway, provider: strings.ToLower(provider)}
}

func (c Channel) Kind() ChannelKind { return c.kind }
func (c Channel) Provider() string  { return c.provider }
func (c Channel) IsZero() bool      { return c.kind == "" }
func (c Channel) IsGateway() bool   { return c.kind == ChannelGateway }

func (c Channel) String() string {
	if c.kind == ChannelGateway {
		return string(ChannelGateway) + ":" + c.provider
	}
	return string(c.kind)
}

type Refund struct {
	amount Money
	status RefundStatus
}

func NewRefund(amount Money, status RefundStatus) Refund {
	return Refund{amount: amount, status: status}
}

func (r Refund) Amount() Money        { return r.amount }
func (r Refund) Status() RefundStatus { return r.status }

func (s SlotRef) Minutes() int {
	return s.endMinute - s.startMinute
}

// QuoteAmount prices slots from per-resource hourly rates.
func QuoteAmount(hourlyRates map[uuid.UUID]int64, slots []SlotRef) (Money, error) {
	var total int64
	for _, s := range slots {
		rate, ok := hourlyRates[s.resourceID]
		if !ok {
			return Money{}, fmt.Errorf("%w: unknown resource %s", ErrInvalidSlot, s.resourceID)
		}
		total += rate * int64(s.Minutes()) / 60
	}
	return NewMoney(total)
}
