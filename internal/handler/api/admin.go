package api

import (
	"net/http"
	"strconv"
	"time"

	resdto "github.com/DucAnhDev9421/dat-san-online-sub005/internal/handler/dto/response"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/handler/httperr"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/usecase/commands"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	callbacks queries.CallbackQueries
}

func NewAdminHandler(callbacks queries.CallbackQueries) *AdminHandler {
	return &AdminHandler{callbacks: callbacks}
}

// @Summary List payment callbacks
// @Description Recorded gateway callbacks, newest first; filter by outcome (success, failure, unknown)
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param outcome query string false "Callback outcome"
// @Param before query string false "RFC3339 timestamp; only callbacks received before it"
// @Param limit query int false "Max items (default 20)"
// @Success 200 {object} map[string]any
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Router /api/admin/payment-callbacks [get]
func (h *AdminHandler) ListCallbacks(c *gin.Context) {
	outcome := c.Query("outcome")
	switch outcome {
	case "", string(commands.OutcomeSuccess), string(commands.OutcomeFailure), string(commands.OutcomeUnknown):
	default:
		httperr.AbortWithError(c, http.StatusBadRequest, errInvalidQuery("outcome"), "Invalid outcome filter", nil)
		return
	}

	var before *time.Time
	if v := c.Query("before"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid before timestamp", nil)
			return
		}
		before = &t
	}

	limit := queries.DefaultListLimit
	if v := c.Query("limit"); v != "" {
		if iv, e := strconv.Atoi(v); e == nil {
			limit = iv
		}
	}

	items, err := h.callbacks.List(c.Request.Context(), outcome, before, limit)
	if err != nil {
		abortWithUseCaseError(c, err)
		return
	}

	resp := gin.H{"callbacks": resdto.FromCallbackList(items)}
	if n := len(items); n > 0 && n == queries.ValidateLimit(limit) {
		resp["next_before"] = items[n-1].ReceivedAt.Format(time.RFC3339Nano)
	}
	c.JSON(http.StatusOK, resp)
}
