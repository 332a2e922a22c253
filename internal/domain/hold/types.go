package hold

type Status string

const (
	StatusPendingPayment Status = "PENDING_PAYMENT"
	StatusConfirmed      Status = "CONFIRMED"
	StatusCancelled      Status = "CANCELLED"
	StatusExpired        Status = "EXPIRED"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPendingPayment, StatusConfirmed, StatusCancelled, StatusExpired:
		return true
	default:
		return false
	}
}

func (s Status) IsTerminal() bool {
	return s == StatusConfirmed || s == StatusCancelled || s == StatusExpired
}

type Event string

const (
	EventConfirm    Event = "CONFIRM"
	EventDecline    Event = "DECLINE"
	EventUserCancel Event = "USER_CANCEL"
	EventExpire     Event = "EXPIRE"
)

func (e Event) String() string {
	return string(e)
}

func (e Event) IsValid() bool {
	_, ok := transitionTable[e]
	return ok
}

type RefundStatus string

const (
	RefundPending   RefundStatus = "PENDING"
	RefundCompleted RefundStatus = "COMPLETED"
)

func (s RefundStatus) IsValid() bool {
	return s == RefundPending || s == RefundCompleted
}

type ChannelKind string

const (
	ChannelGateway ChannelKind = "gateway"
	ChannelWallet  ChannelKind = "wallet"
	ChannelCash    ChannelKind = "cash"
)
