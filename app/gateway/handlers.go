package gateway

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/joefazee/veilbet/app/api"
	"github.com/joefazee/veilbet/internal/logger"
	"github.com/joefazee/veilbet/internal/validator"
)

// Handler handles HTTP requests for the decryption gateway
type Handler struct {
	service Service
	config  *Config
	log     logger.Logger
}

// NewHandler creates a new gateway handler
func NewHandler(service Service, config *Config, log logger.Logger) *Handler {
	return &Handler{
		service: service,
		config:  config,
		log:     log,
	}
}

func (h *Handler) pending(c *gin.Context, message string, data interface{}) {
	c.Header("Retry-After", strconv.Itoa(h.config.RetryAfterSecs))
	api.AcceptedResponse(c, message, data)
}

// RequestDecryption godoc
// @Summary Request pool decryption
// @Description Submits both encrypted pools of a closed market for threshold decryption. Idempotent.
// @Tags decryption
// @Produce json
// @Param id path int true "Market ID"
// @Success 202 {object} api.Response{data=DecryptionStatusResponse}
// @Failure 404 {object} api.Response{error=api.ErrorInfo}
// @Failure 409 {object} api.Response{error=api.ErrorInfo}
// @Router /api/v1/markets/{id}/decryption [post]
func (h *Handler) RequestDecryption(c *gin.Context) {
	marketID, ok := api.ParseUintParam(c, "id")
	if !ok {
		return
	}

	status, err := h.service.RequestDecryption(c.Request.Context(), marketID)
	if err != nil {
		api.DomainErrorResponse(c, h.log, err)
		return
	}

	api.AcceptedResponse(c, "Decryption requested", status)
}

// PollDecryptionResult godoc
// @Summary Poll pool decryption
// @Description Never blocks. 202 with ready=false until the pools are available.
// @Tags decryption
// @Produce json
// @Param id path int true "Market ID"
// @Success 200 {object} api.Response{data=PoolsResult}
// @Success 202 {object} api.Response{data=PoolsResult}
// @Failure 409 {object} api.Response{error=api.ErrorInfo}
// @Router /api/v1/markets/{id}/decryption [get]
func (h *Handler) PollDecryptionResult(c *gin.Context) {
	marketID, ok := api.ParseUintParam(c, "id")
	if !ok {
		return
	}

	result, err := h.service.PollDecryptionResult(c.Request.Context(), marketID)
	if err != nil {
		api.DomainErrorResponse(c, h.log, err)
		return
	}
	if !result.Ready {
		h.pending(c, "Decryption pending", result)
		return
	}

	api.SuccessResponse(c, http.StatusOK, "Decryption ready", result)
}

// RequestOutcomeReveal godoc
// @Summary Reveal a bet's side
// @Tags decryption
// @Produce json
// @Param id path int true "Market ID"
// @Param index path int true "Bet index"
// @Success 202 {object} api.Response{data=RevealStatus}
// @Failure 409 {object} api.Response{error=api.ErrorInfo}
// @Router /api/v1/markets/{id}/bets/{index}/reveal [post]
func (h *Handler) RequestOutcomeReveal(c *gin.Context) {
	marketID, ok := api.ParseUintParam(c, "id")
	if !ok {
		return
	}
	index, ok := api.ParseIndexParam(c, "index")
	if !ok {
		return
	}

	status, err := h.service.RequestOutcomeReveal(c.Request.Context(), marketID, index)
	if err != nil {
		api.DomainErrorResponse(c, h.log, err)
		return
	}

	api.AcceptedResponse(c, "Outcome reveal requested", status)
}

// PollOutcome godoc
// @Summary Poll a bet's revealed side
// @Tags decryption
// @Produce json
// @Param id path int true "Market ID"
// @Param index path int true "Bet index"
// @Success 200 {object} api.Response{data=OutcomeResult}
// @Success 202 {object} api.Response{data=OutcomeResult}
// @Router /api/v1/markets/{id}/bets/{index}/outcome [get]
func (h *Handler) PollOutcome(c *gin.Context) {
	marketID, ok := api.ParseUintParam(c, "id")
	if !ok {
		return
	}
	index, ok := api.ParseIndexParam(c, "index")
	if !ok {
		return
	}

	result, err := h.service.PollOutcome(c.Request.Context(), marketID, index)
	if err != nil {
		api.DomainErrorResponse(c, h.log, err)
		return
	}
	if !result.Ready {
		h.pending(c, "Outcome reveal pending", result)
		return
	}

	api.SuccessResponse(c, http.StatusOK, "Outcome revealed", result)
}

// RevealAllOutcomes godoc
// @Summary Reveal every bet's side
// @Tags decryption
// @Produce json
// @Param id path int true "Market ID"
// @Success 202 {object} api.Response{data=RevealSummary}
// @Router /api/v1/markets/{id}/reveal [post]
func (h *Handler) RevealAllOutcomes(c *gin.Context) {
	marketID, ok := api.ParseUintParam(c, "id")
	if !ok {
		return
	}

	summary, err := h.service.RevealAllOutcomes(c.Request.Context(), marketID)
	if err != nil {
		api.DomainErrorResponse(c, h.log, err)
		return
	}

	api.AcceptedResponse(c, "Outcome reveals requested", summary)
}

// Encrypt godoc
// @Summary Encrypt a value
// @Description Development helper standing in for client-side encryption.
// @Tags decryption
// @Accept json
// @Produce json
// @Param request body EncryptRequest true "Plain value"
// @Success 201 {object} api.Response{data=EncryptResponse}
// @Router /api/v1/fhe/encrypt [post]
func (h *Handler) Encrypt(c *gin.Context) {
	var req EncryptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadRequestResponse(c, validator.BindingErrors(err))
		return
	}

	resp, err := h.service.Encrypt(c.Request.Context(), &req)
	if err != nil {
		api.DomainErrorResponse(c, h.log, err)
		return
	}

	api.CreatedResponse(c, "Ciphertext created", resp)
}
