package response

import (
	"time"

	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/usecase/commands"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/usecase/queries"

	"github.com/google/uuid"
)

type CallbackResponse struct {
	HoldID  uuid.UUID `json:"holdId"`
	Status  string    `json:"status"`
	Outcome string    `json:"outcome"`
	Applied bool      `json:"applied"`
}

type WalletResponse struct {
	UserID  uuid.UUID `json:"userId"`
	Balance int64     `json:"balance"`
}

type PaymentCallbackResponse struct {
	ID          uuid.UUID           `json:"id"`
	Provider    string              `json:"provider"`
	ExternalRef *string             `json:"externalRef,omitempty"`
	HoldID      *uuid.UUID          `json:"holdId,omitempty"`
	Outcome     string              `json:"outcome"`
	PaymentID   *string             `json:"paymentId,omitempty"`
	Message     *string             `json:"message,omitempty"`
	Result      string              `json:"result"`
	RawQuery    map[string][]string `json:"rawQuery"`
	ReceivedAt  time.Time           `json:"receivedAt"`
}

func FromReconcileResult(r *commands.ReconcileResult) *CallbackResponse {
	return &CallbackResponse{
		HoldID:  r.HoldID,
		Status:  string(r.Status),
		Outcome: string(r.Outcome),
		Applied: r.Applied,
	}
}

func FromWalletView(v *queries.WalletView) *WalletResponse {
	return &WalletResponse{UserID: v.UserID, Balance: v.Balance}
}

func FromCallbackList(views []*queries.PaymentCallbackView) []*PaymentCallbackResponse {
	out := make([]*PaymentCallbackResponse, len(views))
	for i, v := range views {
		out[i] = &PaymentCallbackResponse{
			ID:          v.ID,
			Provider:    v.Provider,
			ExternalRef: v.ExternalRef,
			HoldID:      v.HoldID,
			Outcome:     v.Outcome,
			PaymentID:   v.PaymentID,
			Message:     v.Message,
			Result:      v.Result,
			RawQuery:    v.RawQuery,
			ReceivedAt:  v.ReceivedAt,
		}
	}
	return out
}
