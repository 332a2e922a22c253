package api

import (
	"net/http"

	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/handler/httperr"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/handler/middleware"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/errs"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type errorMapping struct {
	target  error
	status  int
	message string
}

// First match wins, so specific sentinels precede the generic marks.
var errorMappings = []errorMapping{
	{errs.ErrHoldNotFound, http.StatusNotFound, "Hold not found"},
	{errs.ErrHoldNotOwned, http.StatusForbidden, "Hold belongs to another user"},
	{errs.ErrHoldWindowClosed, http.StatusConflict, "This reservation window closed, please start a new hold"},
	{errs.ErrSlotUnavailable, http.StatusConflict, "One or more slots are no longer available"},
	{errs.ErrChannelAlreadyChosen, http.StatusConflict, "A payment channel was already chosen for this hold"},
	{errs.ErrDuplicateHoldRequest, http.StatusConflict, "Duplicate hold request with different parameters"},
	{errs.ErrIdempotencyInProgress, http.StatusConflict, "Hold request is currently being processed"},
	{errs.ErrInsufficientFunds, http.StatusPaymentRequired, "Insufficient wallet balance"},
	{errs.ErrGatewayUnavailable, http.StatusBadGateway, "Payment gateway unavailable, please try again"},
	{errs.ErrUnknownProvider, http.StatusNotFound, "Unknown payment provider"},
	{errs.ErrInvalidSignature, http.StatusBadRequest, "Invalid callback signature"},
	{errs.ErrHoldUnresolvable, http.StatusNotFound, "Callback does not reference a known hold"},
	{errs.ErrDomainValidation, http.StatusUnprocessableEntity, "Domain validation failed"},
}

func abortWithUseCaseError(c *gin.Context, err error) {
	for _, m := range errorMappings {
		if errs.Is(err, m.target) {
			httperr.AbortWithError(c, m.status, err, m.message, nil)
			return
		}
	}
	httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
}

func requireUserID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errs.New("missing user in context"), "Unauthorized", nil)
	}
	return id, ok
}

func errInvalidQuery(name string) error {
	return errs.Newf("invalid query parameter %q", name)
}
