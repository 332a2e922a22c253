package response

import (
	"time"

	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/usecase/commands"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/usecase/queries"

	"github.com/google/uuid"
)

type SlotResponse struct {
	ResourceID uuid.UUID `json:"resourceId"`
	Date       string    `json:"date"`
	Start      string    `json:"start"`
	End        string    `json:"end"`
}

type RefundResponse struct {
	Amount int64  `json:"amount"`
	Status string `json:"status"`
}

type HoldResponse struct {
	ID               uuid.UUID       `json:"holdId"`
	UserID           uuid.UUID       `json:"userId"`
	Status           string          `json:"status"`
	AmountDue        int64           `json:"amountDue"`
	Slots            []SlotResponse  `json:"slots"`
	PaymentChannel   *string         `json:"paymentChannel,omitempty"`
	ExternalRef      *string         `json:"externalRef,omitempty"`
	CapturedAmount   int64           `json:"capturedAmount"`
	HoldStartedAt    time.Time       `json:"holdStartedAt"`
	HoldDeadline     time.Time       `json:"holdDeadline"`
	RemainingSeconds int64           `json:"remainingSeconds"`
	Refund           *RefundResponse `json:"refund,omitempty"`
	DeclineReason    *string         `json:"declineReason,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

type HoldListResponse struct {
	Holds      []*HoldResponse `json:"holds"`
	NextCursor string          `json:"nextCursor,omitempty"`
}

type PaymentResponse struct {
	HoldID      uuid.UUID `json:"holdId"`
	Status      string    `json:"status"`
	Outcome     string    `json:"outcome"`
	RedirectURL string    `json:"redirectUrl,omitempty"`
	ExternalRef string    `json:"externalRef,omitempty"`
}

type CancelResponse struct {
	HoldID       uuid.UUID `json:"holdId"`
	Status       string    `json:"status"`
	Applied      bool      `json:"applied"`
	RefundAmount int64     `json:"refundAmount"`
	RefundStatus string    `json:"refundStatus,omitempty"`
}

func FromHoldView(v *queries.HoldView) *HoldResponse {
	slots := make([]SlotResponse, len(v.Slots))
	for i, s := range v.Slots {
		slots[i] = SlotResponse{ResourceID: s.ResourceID, Date: s.Date, Start: s.Start, End: s.End}
	}
	resp := &HoldResponse{
		ID:               v.ID,
		UserID:           v.UserID,
		Status:           v.Status,
		AmountDue:        v.AmountDue,
		Slots:            slots,
		PaymentChannel:   v.PaymentChannel,
		ExternalRef:      v.ExternalRef,
		CapturedAmount:   v.CapturedAmount,
		HoldStartedAt:    v.HoldStartedAt,
		HoldDeadline:     v.HoldDeadline,
		RemainingSeconds: v.RemainingSeconds,
		DeclineReason:    v.DeclineReason,
		CreatedAt:        v.CreatedAt,
		UpdatedAt:        v.UpdatedAt,
	}
	if v.Refund != nil {
		resp.Refund = &RefundResponse{Amount: v.Refund.Amount, Status: v.Refund.Status}
	}
	return resp
}

func FromHoldList(views []*queries.HoldView, next *queries.Cursor) *HoldListResponse {
	resp := &HoldListResponse{Holds: make([]*HoldResponse, len(views))}
	for i, v := range views {
		resp.Holds[i] = FromHoldView(v)
	}
	if next != nil {
		resp.NextCursor = next.After
	}
	return resp
}

func FromChoosePayment(r *commands.ChoosePaymentResult) *PaymentResponse {
	return &PaymentResponse{
		HoldID:      r.HoldID,
		Status:      string(r.Status),
		Outcome:     string(r.Outcome),
		RedirectURL: r.RedirectURL,
		ExternalRef: r.ExternalRef,
	}
}

func FromCancelHold(r *commands.CancelHoldResult) *CancelResponse {
	return &CancelResponse{
		HoldID:       r.HoldID,
		Status:       string(r.Status),
		Applied:      r.Applied,
		RefundAmount: r.RefundAmount,
		RefundStatus: string(r.RefundStatus),
	}
}
