package markets

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joefazee/veilbet/app/api"
	"github.com/joefazee/veilbet/app/auth"
	"github.com/joefazee/veilbet/internal/logger"
	"github.com/joefazee/veilbet/internal/sanitizer"
	"github.com/joefazee/veilbet/internal/validator"
)

// Handler handles HTTP requests for markets
type Handler struct {
	service   Service
	config    *Config
	sanitizer sanitizer.HTMLStripperer
	log       logger.Logger
}

// NewHandler creates a new market handler
func NewHandler(service Service, config *Config, sanitizer sanitizer.HTMLStripperer, log logger.Logger) *Handler {
	return &Handler{
		service:   service,
		config:    config,
		sanitizer: sanitizer,
		log:       log,
	}
}

// CreateMarket godoc
// @Summary Create a market
// @Description Open a YES/NO market. Both pools start as encryptions of zero.
// @Tags markets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateMarketRequest true "Market details"
// @Success 201 {object} api.Response{data=MarketResponse}
// @Failure 400 {object} api.Response{error=api.ErrorInfo}
// @Failure 401 {object} api.Response{error=api.ErrorInfo}
// @Router /api/v1/markets [post]
func (h *Handler) CreateMarket(c *gin.Context) {
	creator, ok := auth.ContextGetCaller(c)
	if !ok {
		api.UnauthorizedResponse(c)
		return
	}

	var req CreateMarketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadRequestResponse(c, validator.BindingErrors(err))
		return
	}

	v := validator.New()
	if !req.Validate(v, h.sanitizer, h.config) {
		api.ValidationErrorResponse(c, v.Errors)
		return
	}

	market, err := h.service.CreateMarket(c.Request.Context(), creator, &req)
	if err != nil {
		api.DomainErrorResponse(c, h.log, err)
		return
	}

	api.CreatedResponse(c, "Market created successfully", market)
}

// GetMarkets godoc
// @Summary List markets
// @Tags markets
// @Produce json
// @Param state query string false "Effective state" Enums(open,closed,decryption_requested,settled)
// @Param creator query string false "Creator address"
// @Param sort_order query string false "Sort direction" Enums(asc,desc) default(desc)
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Success 200 {object} api.Response{data=[]MarketResponse}
// @Failure 400 {object} api.Response{error=api.ErrorInfo}
// @Router /api/v1/markets [get]
func (h *Handler) GetMarkets(c *gin.Context) {
	var filters MarketFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		api.BadRequestResponse(c, validator.BindingErrors(err))
		return
	}

	result, err := h.service.ListMarkets(c.Request.Context(), &filters)
	if err != nil {
		api.DomainErrorResponse(c, h.log, err)
		return
	}

	api.PaginatedResponse(c, "Markets retrieved successfully", result.Markets,
		api.NewPaginationMeta(result.Page, result.PerPage, result.Total))
}

// GetMarketInfo godoc
// @Summary Get market info
// @Description Public summary of a market. Add ?full=true for the complete record.
// @Tags markets
// @Produce json
// @Param id path int true "Market ID"
// @Param full query bool false "Return the complete record"
// @Success 200 {object} api.Response{data=MarketInfoResponse}
// @Failure 404 {object} api.Response{error=api.ErrorInfo}
// @Router /api/v1/markets/{id} [get]
func (h *Handler) GetMarketInfo(c *gin.Context) {
	id, ok := api.ParseUintParam(c, "id")
	if !ok {
		return
	}

	var (
		data interface{}
		err  error
	)
	if c.Query("full") == "true" {
		data, err = h.service.GetMarket(c.Request.Context(), id)
	} else {
		data, err = h.service.GetMarketInfo(c.Request.Context(), id)
	}
	if err != nil {
		api.DomainErrorResponse(c, h.log, err)
		return
	}

	api.SuccessResponse(c, http.StatusOK, "Market retrieved successfully", data)
}

// GetMarketEvents godoc
// @Summary Market event log
// @Tags markets
// @Produce json
// @Param id path int true "Market ID"
// @Param action query string false "Event action"
// @Param bet_index query int false "Bet index"
// @Success 200 {object} api.Response{data=[]events.EventResponse}
// @Failure 404 {object} api.Response{error=api.ErrorInfo}
// @Router /api/v1/markets/{id}/events [get]
func (h *Handler) GetMarketEvents(c *gin.Context) {
	id, ok := api.ParseUintParam(c, "id")
	if !ok {
		return
	}

	var filters EventFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		api.BadRequestResponse(c, validator.BindingErrors(err))
		return
	}

	result, err := h.service.ListEvents(c.Request.Context(), id, &filters)
	if err != nil {
		api.DomainErrorResponse(c, h.log, err)
		return
	}

	api.PaginatedResponse(c, "Market events retrieved successfully", result.Events,
		api.NewPaginationMeta(result.Page, result.PerPage, result.Total))
}
