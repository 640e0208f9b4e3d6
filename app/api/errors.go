package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joefazee/veilbet/internal/fhe"
	"github.com/joefazee/veilbet/internal/lock"
	"github.com/joefazee/veilbet/internal/logger"
	"github.com/joefazee/veilbet/internal/rail"
	"github.com/joefazee/veilbet/models"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

// Order matters: the first match wins.
var domainErrors = []errorMapping{
	{models.ErrMarketNotFound, http.StatusNotFound, "MARKET_NOT_FOUND"},
	{models.ErrBetNotFound, http.StatusNotFound, "BET_NOT_FOUND"},
	{models.ErrRecordNotFound, http.StatusNotFound, "NOT_FOUND"},

	{models.ErrMarketClosed, http.StatusConflict, "MARKET_CLOSED"},
	{models.ErrMarketStillOpen, http.StatusConflict, "MARKET_STILL_OPEN"},
	{models.ErrAlreadySettled, http.StatusConflict, "ALREADY_SETTLED"},
	{models.ErrMarketNotSettled, http.StatusConflict, "MARKET_NOT_SETTLED"},
	{models.ErrDecryptionNotRequested, http.StatusConflict, "DECRYPTION_NOT_REQUESTED"},
	{models.ErrDecryptionNotReady, http.StatusAccepted, "DECRYPTION_NOT_READY"},
	{models.ErrAlreadyWithdrawn, http.StatusConflict, "ALREADY_WITHDRAWN"},

	{models.ErrNotBetOwner, http.StatusForbidden, "NOT_BET_OWNER"},
	{models.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},

	{models.ErrNoPayout, http.StatusConflict, "NO_PAYOUT"},
	{models.ErrBetDidNotWin, http.StatusConflict, "BET_DID_NOT_WIN"},
	{models.ErrInvalidQuestion, http.StatusBadRequest, "INVALID_QUESTION"},
	{models.ErrInvalidCloseTime, http.StatusBadRequest, "INVALID_CLOSE_TIME"},
	{models.ErrInvalidFeeBps, http.StatusBadRequest, "INVALID_FEE_BPS"},
	{models.ErrInvalidEscrow, http.StatusBadRequest, "INVALID_ESCROW"},
	{models.ErrInvalidCiphertext, http.StatusBadRequest, "INVALID_CIPHERTEXT"},
	{fhe.ErrMalformedHandle, http.StatusBadRequest, "INVALID_CIPHERTEXT"},
	{fhe.ErrUnknownHandle, http.StatusBadRequest, "INVALID_CIPHERTEXT"},
	{fhe.ErrTypeMismatch, http.StatusBadRequest, "INVALID_CIPHERTEXT"},
	{models.ErrInvalidAddress, http.StatusBadRequest, "INVALID_ADDRESS"},
	{models.ErrInvalidTransferAmount, http.StatusBadRequest, "INVALID_AMOUNT"},
	{models.ErrInsufficientBalance, http.StatusUnprocessableEntity, "INSUFFICIENT_BALANCE"},

	{rail.ErrTransferFailed, http.StatusBadGateway, "TRANSFER_FAILED"},
	{lock.ErrLockTimeout, http.StatusServiceUnavailable, "MARKET_BUSY"},
	{models.ErrStateCorrupted, http.StatusInternalServerError, "STATE_CORRUPTED"},
}

// StatusForError returns the HTTP status and error code for a domain error.
// Unknown errors map to 500 INTERNAL_ERROR.
func StatusForError(err error) (int, string) {
	for _, m := range domainErrors {
		if errors.Is(err, m.err) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR"
}

// RetryAfterSeconds is sent with DECRYPTION_NOT_READY responses.
const RetryAfterSeconds = "5"

// DomainErrorResponse writes err using the domain error table. Server side failures are
// logged and their message hidden from the caller.
func DomainErrorResponse(c *gin.Context, log logger.Logger, err error) {
	status, code := StatusForError(err)
	if status == http.StatusAccepted {
		c.Header("Retry-After", RetryAfterSeconds)
	}
	if status >= http.StatusInternalServerError {
		log.Error(err, map[string]interface{}{
			"path":   c.FullPath(),
			"method": c.Request.Method,
			"code":   code,
		})
		if code == "INTERNAL_ERROR" {
			InternalErrorResponse(c, "An unexpected error occurred")
			return
		}
	}
	ErrorResponse(c, status, code, err.Error(), nil)
}
