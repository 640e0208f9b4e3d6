package auth

import (
	"github.com/gin-gonic/gin"
	"github.com/joefazee/veilbet/app/api"
	"github.com/joefazee/veilbet/internal/logger"
	"github.com/joefazee/veilbet/internal/validator"
)

// Handler handles wallet sign-in
type Handler struct {
	service Service
	log     logger.Logger
}

// NewHandler creates a new auth handler
func NewHandler(service Service, log logger.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log,
	}
}

// Challenge godoc
// @Summary Request a sign-in challenge
// @Description Returns a single-use message for the wallet to sign with personal_sign.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ChallengeRequest true "Wallet address"
// @Success 201 {object} api.Response{data=ChallengeResponse}
// @Failure 400 {object} api.Response{error=api.ErrorInfo}
// @Router /api/v1/auth/challenge [post]
func (h *Handler) Challenge(c *gin.Context) {
	var req ChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadRequestResponse(c, validator.BindingErrors(err))
		return
	}

	challenge, err := h.service.IssueChallenge(c.Request.Context(), &req)
	if err != nil {
		api.DomainErrorResponse(c, h.log, err)
		return
	}

	api.CreatedResponse(c, "Challenge issued", challenge)
}

// Session godoc
// @Summary Exchange a signed challenge for a session token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SessionRequest true "Signed challenge"
// @Success 201 {object} api.Response{data=SessionResponse}
// @Failure 400 {object} api.Response{error=api.ErrorInfo}
// @Failure 401 {object} api.Response{error=api.ErrorInfo}
// @Router /api/v1/auth/session [post]
func (h *Handler) Session(c *gin.Context) {
	var req SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadRequestResponse(c, validator.BindingErrors(err))
		return
	}

	session, err := h.service.CreateSession(c.Request.Context(), &req)
	if err != nil {
		api.DomainErrorResponse(c, h.log, err)
		return
	}

	api.CreatedResponse(c, "Session created", session)
}
