package api

import (
	"net/http"

	reqdto "github.com/DucAnhDev9421/dat-san-online-sub005/internal/handler/dto/request"
	resdto "github.com/DucAnhDev9421/dat-san-online-sub005/internal/handler/dto/response"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/handler/httperr"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/usecase/commands"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type WalletHandler struct {
	cmds commands.WalletCommands
	q    queries.WalletQueries
}

func NewWalletHandler(cmds commands.WalletCommands, q queries.WalletQueries) *WalletHandler {
	return &WalletHandler{cmds: cmds, q: q}
}

// @Summary Wallet balance
// @Tags wallet
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.WalletResponse
// @Failure 401 {object} httperr.Response
// @Router /api/wallet [get]
func (h *WalletHandler) Balance(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	view, err := h.q.Balance(c.Request.Context(), userID)
	if err != nil {
		abortWithUseCaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromWalletView(view))
}

// @Summary Top up wallet
// @Description Credit a wallet; operators may credit another user by id
// @Tags wallet
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.TopUpRequest true "Top-up"
// @Success 200 {object} resdto.WalletResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Router /api/wallet/topup [post]
func (h *WalletHandler) TopUp(c *gin.Context) {
	callerID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req reqdto.TopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	target := req.Target(callerID)
	balance, err := h.cmds.TopUp(c.Request.Context(), target, req.Amount)
	if err != nil {
		abortWithUseCaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.WalletResponse{UserID: target, Balance: balance})
}
