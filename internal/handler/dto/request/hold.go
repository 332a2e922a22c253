package request

import (
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/domain/hold"

	"github.com/google/uuid"
)

type SlotRequest struct {
	ResourceID uuid.UUID `json:"resource_id" binding:"required"`
	Date       string    `json:"date" binding:"required,datetime=2006-01-02"`
	Start      string    `json:"start" binding:"required,datetime=15:04"`
	End        string    `json:"end" binding:"required,datetime=15:04"`
}

type CreateHoldRequest struct {
	Slots []SlotRequest `json:"slots" binding:"required,min=1,dive"`
}

// ToDomain validates each slot and the set as a whole.
func (r CreateHoldRequest) ToDomain(maxSlots int) ([]hold.SlotRef, error) {
	refs := make([]hold.SlotRef, 0, len(r.Slots))
	for _, s := range r.Slots {
		ref, err := hold.NewSlotRef(s.ResourceID, s.Date, s.Start, s.End)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return hold.NewSlotSet(refs, maxSlots)
}

type ChoosePaymentRequest struct {
	Channel string `json:"channel" binding:"required,channel"`
}

func (r ChoosePaymentRequest) ToDomain() (hold.Channel, error) {
	return hold.ParseChannel(r.Channel)
}

type TopUpRequest struct {
	// Defaults to the caller.
	UserID *uuid.UUID `json:"user_id"`
	Amount int64      `json:"amount" binding:"required,gt=0"`
}

func (r TopUpRequest) Target(caller uuid.UUID) uuid.UUID {
	if r.UserID != nil && *r.UserID != uuid.Nil {
		return *r.UserID
	}
	return caller
}
