package settlement

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joefazee/veilbet/app/api"
	"github.com/joefazee/veilbet/app/auth"
	"github.com/joefazee/veilbet/internal/logger"
	"github.com/joefazee/veilbet/models"
)

// Handler handles HTTP requests for settlement and payouts
type Handler struct {
	service Service
	log     logger.Logger
}

// NewHandler creates a new settlement handler
func NewHandler(service Service, log logger.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log,
	}
}

// Settle godoc
// @Summary Settle a market
// @Description Records the decrypted pools. Responds 202 with pending=true until they are available.
// @Tags settlement
// @Produce json
// @Param id path int true "Market ID"
// @Success 200 {object} api.Response{data=SettleResult}
// @Success 202 {object} api.Response{data=SettleResult}
// @Failure 409 {object} api.Response{error=api.ErrorInfo}
// @Router /api/v1/markets/{id}/settle [post]
func (h *Handler) Settle(c *gin.Context) {
	marketID, ok := api.ParseUintParam(c, "id")
	if !ok {
		return
	}

	result, err := h.service.Settle(c.Request.Context(), marketID)
	if err != nil {
		api.DomainErrorResponse(c, h.log, err)
		return
	}
	if result.Pending {
		c.Header("Retry-After", api.RetryAfterSeconds)
		api.AcceptedResponse(c, "Decryption pending", result)
		return
	}

	api.SuccessResponse(c, http.StatusOK, "Market settled", result)
}

// GetDecryptedPools godoc
// @Summary Decrypted pools of a settled market
// @Tags settlement
// @Produce json
// @Param id path int true "Market ID"
// @Success 200 {object} api.Response{data=PoolsResponse}
// @Failure 409 {object} api.Response{error=api.ErrorInfo}
// @Router /api/v1/markets/{id}/pools [get]
func (h *Handler) GetDecryptedPools(c *gin.Context) {
	marketID, ok := api.ParseUintParam(c, "id")
	if !ok {
		return
	}

	pools, err := h.service.GetDecryptedPools(c.Request.Context(), marketID)
	if err != nil {
		api.DomainErrorResponse(c, h.log, err)
		return
	}

	api.SuccessResponse(c, http.StatusOK, "Pools retrieved successfully", pools)
}

// CalculatePayout godoc
// A quote for a bet whose side is still sealed enqueues that side's reveal and answers 202
// until the gateway fulfils it, so the GET is not free of side effects.
// @Summary Quote a bet's payout
// @Description Quoting an unrevealed bet requests its outcome reveal; retry once the reveal lands.
// @Tags settlement
// @Produce json
// @Param id path int true "Market ID"
// @Param index path int true "Bet index"
// @Success 200 {object} api.Response{data=PayoutResponse}
// @Failure 202 {object} api.Response{error=api.ErrorInfo}
// @Failure 404 {object} api.Response{error=api.ErrorInfo}
// @Router /api/v1/markets/{id}/bets/{index}/payout [get]
func (h *Handler) CalculatePayout(c *gin.Context) {
	marketID, ok := api.ParseUintParam(c, "id")
	if !ok {
		return
	}
	index, ok := api.ParseIndexParam(c, "index")
	if !ok {
		return
	}

	payout, err := h.service.CalculatePayout(c.Request.Context(), marketID, index)
	if err != nil {
		api.DomainErrorResponse(c, h.log, err)
		return
	}

	api.SuccessResponse(c, http.StatusOK, "Payout calculated", payout)
}

type withdrawFunc func(c *gin.Context, marketID uint64, index int64, caller models.Address) (*WithdrawResponse, error)

func (h *Handler) withdraw(c *gin.Context, fn withdrawFunc) {
	caller, ok := auth.ContextGetCaller(c)
	if !ok {
		api.UnauthorizedResponse(c)
		return
	}
	marketID, ok := api.ParseUintParam(c, "id")
	if !ok {
		return
	}
	index, ok := api.ParseIndexParam(c, "index")
	if !ok {
		return
	}

	result, err := fn(c, marketID, index, caller)
	if err != nil {
		api.DomainErrorResponse(c, h.log, err)
		return
	}

	api.SuccessResponse(c, http.StatusOK, "Payout withdrawn", result)
}

// Withdraw godoc
// @Summary Withdraw a payout
// @Tags settlement
// @Produce json
// @Security BearerAuth
// @Param id path int true "Market ID"
// @Param index path int true "Bet index"
// @Success 200 {object} api.Response{data=WithdrawResponse}
// @Failure 403 {object} api.Response{error=api.ErrorInfo}
// @Failure 409 {object} api.Response{error=api.ErrorInfo}
// @Failure 502 {object} api.Response{error=api.ErrorInfo}
// @Router /api/v1/markets/{id}/bets/{index}/withdraw [post]
func (h *Handler) Withdraw(c *gin.Context) {
	h.withdraw(c, func(c *gin.Context, marketID uint64, index int64, caller models.Address) (*WithdrawResponse, error) {
		return h.service.Withdraw(c.Request.Context(), marketID, index, caller)
	})
}

// WithdrawUnsafe godoc
// @Summary Withdraw without a prior settle
// @Description Settles inline when decryption was requested. 202 while anything is still decrypting.
// @Tags settlement
// @Produce json
// @Security BearerAuth
// @Param id path int true "Market ID"
// @Param index path int true "Bet index"
// @Success 200 {object} api.Response{data=WithdrawResponse}
// @Failure 202 {object} api.Response{error=api.ErrorInfo}
// @Failure 409 {object} api.Response{error=api.ErrorInfo}
// @Router /api/v1/markets/{id}/bets/{index}/withdraw-unsafe [post]
func (h *Handler) WithdrawUnsafe(c *gin.Context) {
	h.withdraw(c, func(c *gin.Context, marketID uint64, index int64, caller models.Address) (*WithdrawResponse, error) {
		return h.service.WithdrawUnsafe(c.Request.Context(), marketID, index, caller)
	})
}
