package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	resdto "github.com/DucAnhDev9421/dat-san-online-sub005/internal/handler/dto/response"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/handler/httperr"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/errs"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

const maxCallbackBody = 64 << 10

type CallbackHandler struct {
	reconciler commands.CallbackReconciler
}

func NewCallbackHandler(reconciler commands.CallbackReconciler) *CallbackHandler {
	return &CallbackHandler{reconciler: reconciler}
}

// @Summary Payment gateway callback
// @Description Browser redirect (GET) or server notification (POST form or JSON) from a payment gateway
// @Tags payments
// @Produce json
// @Param provider path string true "Gateway name (momo, vnpay)"
// @Success 200 {object} resdto.CallbackResponse
// @Success 202 {object} map[string]string "Outcome could not be determined"
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /api/payments/callback/{provider} [get]
// @Router /api/payments/callback/{provider} [post]
func (h *CallbackHandler) Handle(c *gin.Context) {
	provider := strings.ToLower(c.Param("provider"))

	values, err := callbackValues(c)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Unreadable callback payload", nil)
		return
	}

	result, err := h.reconciler.Handle(c.Request.Context(), provider, values)
	if err != nil {
		if errs.Is(err, errs.ErrAmbiguousCallback) {
			c.JSON(http.StatusAccepted, gin.H{
				"status":  "pending_review",
				"message": "Payment outcome could not be determined; it has been recorded for review",
			})
			return
		}
		abortWithUseCaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromReconcileResult(result))
}

// callbackValues merges the query string with a form or JSON body.
func callbackValues(c *gin.Context) (url.Values, error) {
	values := url.Values{}
	for k, vs := range c.Request.URL.Query() {
		values[k] = append(values[k], vs...)
	}
	if c.Request.Method != http.MethodPost || c.Request.Body == nil {
		return values, nil
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxCallbackBody)
	if strings.HasPrefix(c.ContentType(), "application/json") {
		var body map[string]any
		dec := json.NewDecoder(c.Request.Body)
		dec.UseNumber()
		if err := dec.Decode(&body); err != nil {
			return nil, errs.Wrap(err, "decode callback json")
		}
		for k, v := range body {
			if v == nil {
				continue
			}
			values.Set(k, fmt.Sprint(v))
		}
		return values, nil
	}

	if err := c.Request.ParseForm(); err != nil {
		return nil, errs.Wrap(err, "parse callback form")
	}
	for k, vs := range c.Request.PostForm {
		values[k] = append(values[k], vs...)
	}
	return values, nil
}
