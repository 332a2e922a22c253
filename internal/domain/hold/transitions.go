package hold

import "time"

// transitionTable holds every legal move. All of them leave PENDING_PAYMENT.
var transitionTable = map[Event]Status{
	EventConfirm:    StatusConfirmed,
	EventDecline:    StatusCancelled,
	EventUserCancel: StatusCancelled,
	EventExpire:     StatusExpired,
}

type Transition struct {
	Event     Event
	Requested Event
	From      Status
	To        Status
	Applied   bool
	At        time.Time
}

// ReleasesSlots reports whether the slot locks go back to inventory.
func (t Transition) ReleasesSlots() bool {
	return t.Applied && (t.To == StatusCancelled || t.To == StatusExpired)
}

// RetainsSlots reports whether the slot locks become a permanent booking.
func (t Transition) RetainsSlots() bool {
	return t.Applied && t.To == StatusConfirmed
}

// Superseded is true when the deadline had already passed and EXPIRE was applied
// in place of the requested event.
func (t Transition) Superseded() bool {
	return t.Requested != t.Event
}
