package ledger

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joefazee/veilbet/app/api"
	"github.com/joefazee/veilbet/app/auth"
	"github.com/joefazee/veilbet/internal/logger"
	"github.com/joefazee/veilbet/internal/validator"
)

// Handler handles HTTP requests for bets
type Handler struct {
	service Service
	log     logger.Logger
}

// NewHandler creates a new bet handler
func NewHandler(service Service, log logger.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log,
	}
}

// PlaceBet godoc
// @Summary Place a confidential bet
// @Description Escrows escrow_amount and adds the encrypted stake to the encrypted pool of the encrypted side.
// @Tags bets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Market ID"
// @Param request body PlaceBetRequest true "Bet"
// @Success 201 {object} api.Response{data=BetResponse}
// @Failure 400 {object} api.Response{error=api.ErrorInfo}
// @Failure 404 {object} api.Response{error=api.ErrorInfo}
// @Failure 409 {object} api.Response{error=api.ErrorInfo}
// @Failure 422 {object} api.Response{error=api.ErrorInfo}
// @Router /api/v1/markets/{id}/bets [post]
func (h *Handler) PlaceBet(c *gin.Context) {
	bettor, ok := auth.ContextGetCaller(c)
	if !ok {
		api.UnauthorizedResponse(c)
		return
	}

	marketID, ok := api.ParseUintParam(c, "id")
	if !ok {
		return
	}

	var req PlaceBetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadRequestResponse(c, validator.BindingErrors(err))
		return
	}

	bet, err := h.service.PlaceBet(c.Request.Context(), marketID, bettor, &req)
	if err != nil {
		api.DomainErrorResponse(c, h.log, err)
		return
	}

	api.CreatedResponse(c, "Bet placed successfully", bet)
}

// GetBets godoc
// @Summary List bets of a market
// @Tags bets
// @Produce json
// @Param id path int true "Market ID"
// @Param bettor query string false "Bettor address"
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(50)
// @Success 200 {object} api.Response{data=[]BetResponse}
// @Failure 404 {object} api.Response{error=api.ErrorInfo}
// @Router /api/v1/markets/{id}/bets [get]
func (h *Handler) GetBets(c *gin.Context) {
	marketID, ok := api.ParseUintParam(c, "id")
	if !ok {
		return
	}

	var filters BetFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		api.BadRequestResponse(c, validator.BindingErrors(err))
		return
	}

	result, err := h.service.ListBets(c.Request.Context(), marketID, &filters)
	if err != nil {
		api.DomainErrorResponse(c, h.log, err)
		return
	}

	api.PaginatedResponse(c, "Bets retrieved successfully", result.Bets,
		api.NewPaginationMeta(result.Page, result.PerPage, result.Total))
}

// GetBet godoc
// @Summary Get a bet
// @Tags bets
// @Produce json
// @Param id path int true "Market ID"
// @Param index path int true "Bet index"
// @Success 200 {object} api.Response{data=BetResponse}
// @Failure 404 {object} api.Response{error=api.ErrorInfo}
// @Router /api/v1/markets/{id}/bets/{index} [get]
func (h *Handler) GetBet(c *gin.Context) {
	marketID, ok := api.ParseUintParam(c, "id")
	if !ok {
		return
	}
	index, ok := api.ParseIndexParam(c, "index")
	if !ok {
		return
	}

	bet, err := h.service.GetBet(c.Request.Context(), marketID, index)
	if err != nil {
		api.DomainErrorResponse(c, h.log, err)
		return
	}

	api.SuccessResponse(c, http.StatusOK, "Bet retrieved successfully", bet)
}

// Reconcile godoc
// @Summary Reconcile market escrow
// @Description Recomputes escrow and bet count from bet rows. A mismatch halts the market.
// @Tags bets
// @Produce json
// @Param id path int true "Market ID"
// @Success 200 {object} api.Response{data=ReconcileResponse}
// @Failure 404 {object} api.Response{error=api.ErrorInfo}
// @Failure 500 {object} api.Response{error=api.ErrorInfo}
// @Router /api/v1/markets/{id}/reconcile [post]
func (h *Handler) Reconcile(c *gin.Context) {
	marketID, ok := api.ParseUintParam(c, "id")
	if !ok {
		return
	}

	result, err := h.service.Reconcile(c.Request.Context(), marketID)
	if err != nil {
		api.DomainErrorResponse(c, h.log, err)
		return
	}

	api.SuccessResponse(c, http.StatusOK, "Escrow is consistent", result)
}
