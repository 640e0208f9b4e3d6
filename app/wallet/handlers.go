package wallet

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joefazee/veilbet/app/api"
	"github.com/joefazee/veilbet/app/auth"
	"github.com/joefazee/veilbet/internal/logger"
	"github.com/joefazee/veilbet/internal/validator"
)

// Handler handles wallet requests
type Handler struct {
	service Service
	log     logger.Logger
}

// NewHandler creates a new wallet handler
func NewHandler(service Service, log logger.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log,
	}
}

// GetBalance godoc
// @Summary Get the caller's balance
// @Tags wallet
// @Produce json
// @Security BearerAuth
// @Success 200 {object} api.Response{data=BalanceResponse}
// @Failure 401 {object} api.Response{error=api.ErrorInfo}
// @Router /api/v1/wallet [get]
func (h *Handler) GetBalance(c *gin.Context) {
	caller, ok := auth.ContextGetCaller(c)
	if !ok {
		api.UnauthorizedResponse(c)
		return
	}

	balance, err := h.service.GetBalance(c.Request.Context(), caller)
	if err != nil {
		api.DomainErrorResponse(c, h.log, err)
		return
	}

	api.SuccessResponse(c, http.StatusOK, "Balance retrieved successfully", balance)
}

// GetHistory godoc
// @Summary List the caller's most recent transfers
// @Tags wallet
// @Produce json
// @Security BearerAuth
// @Success 200 {object} api.Response{data=[]TransactionResponse}
// @Failure 401 {object} api.Response{error=api.ErrorInfo}
// @Router /api/v1/wallet/transactions [get]
func (h *Handler) GetHistory(c *gin.Context) {
	caller, ok := auth.ContextGetCaller(c)
	if !ok {
		api.UnauthorizedResponse(c)
		return
	}

	history, err := h.service.GetHistory(c.Request.Context(), caller)
	if err != nil {
		api.DomainErrorResponse(c, h.log, err)
		return
	}

	api.ListResponse(c, "Transactions retrieved successfully", history, len(history))
}

// Fund godoc
// @Summary Credit an address from the development faucet
// @Tags wallet
// @Accept json
// @Produce json
// @Param request body FundRequest true "Faucet request"
// @Success 201 {object} api.Response{data=FundResponse}
// @Failure 400 {object} api.Response{error=api.ErrorInfo}
// @Router /api/v1/wallet/fund [post]
func (h *Handler) Fund(c *gin.Context) {
	var req FundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadRequestResponse(c, validator.BindingErrors(err))
		return
	}

	resp, err := h.service.Fund(c.Request.Context(), &req)
	if err != nil {
		api.DomainErrorResponse(c, h.log, err)
		return
	}

	api.CreatedResponse(c, "Wallet funded successfully", resp)
}
