package api

import (
	"net/http"
	"strconv"

	reqdto "github.com/DucAnhDev9421/dat-san-online-sub005/internal/handler/dto/request"
	resdto "github.com/DucAnhDev9421/dat-san-online-sub005/internal/handler/dto/response"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/handler/httperr"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/errs"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/usecase/commands"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const replayedHeader = "Idempotent-Replayed"

type HoldHandler struct {
	cmds     commands.HoldCommands
	payments commands.PaymentCommands
	q        queries.HoldQueries
}

func NewHoldHandler(cmds commands.HoldCommands, payments commands.PaymentCommands, q queries.HoldQueries) *HoldHandler {
	return &HoldHandler{cmds: cmds, payments: payments, q: q}
}

// @Summary Create hold
// @Description Reserve one or more slots for the hold window while the user pays
// @Tags holds
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string true "Idempotency key for duplicate prevention"
// @Param request body reqdto.CreateHoldRequest true "Slots to hold"
// @Success 201 {object} resdto.HoldResponse
// @Success 200 {object} resdto.HoldResponse "Replayed request"
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /api/holds [post]
func (h *HoldHandler) Create(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	idempotencyKey, err := getIdempotencyKey(c)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, err.Error(), nil)
		return
	}

	var req reqdto.CreateHoldRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}

	result, err := h.cmds.CreateHold(c.Request.Context(), req, userID, idempotencyKey)
	if err != nil {
		abortWithUseCaseError(c, err)
		return
	}

	if result.IsReplayed {
		c.Header(replayedHeader, "true")
		c.JSON(http.StatusOK, resdto.FromHoldView(result.Hold))
		return
	}
	c.JSON(http.StatusCreated, resdto.FromHoldView(result.Hold))
}

// @Summary Get hold
// @Description Get a hold owned by the caller; an overdue hold is expired before it is returned
// @Tags holds
// @Produce json
// @Security BearerAuth
// @Param id path string true "Hold ID"
// @Success 200 {object} resdto.HoldResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /api/holds/{id} [get]
func (h *HoldHandler) Get(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid hold ID format", nil)
		return
	}

	view, err := h.q.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		abortWithUseCaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromHoldView(view))
}

// @Summary List holds
// @Description List the caller's holds, newest first, with keyset pagination
// @Tags holds
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Max items (default 20)"
// @Param after query string false "Cursor for keyset pagination"
// @Success 200 {object} resdto.HoldListResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Router /api/holds [get]
func (h *HoldHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	limit := queries.DefaultListLimit
	if v := c.Query("limit"); v != "" {
		if iv, e := strconv.Atoi(v); e == nil {
			limit = queries.ValidateLimit(iv)
		}
	}
	var cursor *queries.Cursor
	if after := c.Query("after"); after != "" {
		if _, _, err := queries.DecodeAfterCursor(after); err != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid cursor", nil)
			return
		}
		cursor = &queries.Cursor{After: after}
	}

	views, next, err := h.q.ListByUser(c.Request.Context(), userID, cursor, limit)
	if err != nil {
		abortWithUseCaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromHoldList(views, next))
}

// @Summary Choose payment channel
// @Description Pay a pending hold by wallet, cash or an external gateway (gateway:momo, gateway:vnpay)
// @Tags holds
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Hold ID"
// @Param request body reqdto.ChoosePaymentRequest true "Payment channel"
// @Success 200 {object} resdto.PaymentResponse
// @Failure 400 {object} httperr.Response
// @Failure 402 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 502 {object} httperr.Response
// @Router /api/holds/{id}/payments [post]
func (h *HoldHandler) ChoosePayment(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid hold ID format", nil)
		return
	}

	var req reqdto.ChoosePaymentRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}
	channel, err := req.ToDomain()
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid payment channel", nil)
		return
	}

	result, err := h.payments.ChoosePayment(c.Request.Context(), id, userID, channel)
	if err != nil {
		abortWithUseCaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromChoosePayment(result))
}

// @Summary Cancel hold
// @Description Cancel a hold; money already taken is refunded
// @Tags holds
// @Produce json
// @Security BearerAuth
// @Param id path string true "Hold ID"
// @Success 200 {object} resdto.CancelResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /api/holds/{id}/cancel [post]
func (h *HoldHandler) Cancel(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid hold ID format", nil)
		return
	}

	result, err := h.cmds.CancelHold(c.Request.Context(), id, userID)
	if err != nil {
		abortWithUseCaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromCancelHold(result))
}

func getIdempotencyKey(c *gin.Context) (uuid.UUID, error) {
	keyStr := c.GetHeader("Idempotency-Key")
	if keyStr == "" {
		return uuid.Nil, errs.ErrIdempotencyKeyRequired
	}

	key, err := uuid.Parse(keyStr)
	if err != nil {
		return uuid.Nil, errs.New("invalid idempotency key format")
	}

	return key, nil
}
