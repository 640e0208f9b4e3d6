package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/joefazee/veilbet/internal/lock"
	"github.com/joefazee/veilbet/internal/logger"
	"github.com/joefazee/veilbet/internal/rail"
	"github.com/joefazee/veilbet/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var response Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func TestAPIResponses(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("SuccessResponse", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		SuccessResponse(c, http.StatusOK, "Market retrieved", map[string]string{"id": "1"})

		assert.Equal(t, http.StatusOK, w.Code)
		response := decode(t, w)
		assert.True(t, response.Success)
		assert.Equal(t, "Market retrieved", response.Message)
		assert.NotNil(t, response.Data)
		assert.Nil(t, response.Error)
	})

	t.Run("AcceptedResponse", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		AcceptedResponse(c, "Settlement pending", gin.H{"pending": true})

		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.True(t, decode(t, w).Success)
	})

	t.Run("error helpers", func(t *testing.T) {
		tests := []struct {
			name    string
			write   func(c *gin.Context)
			status  int
			code    string
			message string
		}{
			{"bad request", func(c *gin.Context) { BadRequestResponse(c, "bad json") }, http.StatusBadRequest, "BAD_REQUEST", "Invalid request data"},
			{"validation", func(c *gin.Context) { ValidationErrorResponse(c, map[string]string{"question": "required"}) }, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed"},
			{"unauthorized", UnauthorizedResponse, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized access"},
			{"internal", func(c *gin.Context) { InternalErrorResponse(c, "boom") }, http.StatusInternalServerError, "INTERNAL_ERROR", "boom"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				w := httptest.NewRecorder()
				c, _ := gin.CreateTestContext(w)

				tt.write(c)

				assert.Equal(t, tt.status, w.Code)
				assert.True(t, c.IsAborted())
				response := decode(t, w)
				assert.False(t, response.Success)
				require.NotNil(t, response.Error)
				assert.Equal(t, tt.code, response.Error.Code)
				assert.Equal(t, tt.message, response.Error.Message)
			})
		}
	})

	t.Run("ListResponse", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		ListResponse(c, "Events retrieved", []string{"a", "b", "c"}, 3)

		response := decode(t, w)
		metaBytes, _ := json.Marshal(response.Meta)
		var listMeta ListMeta
		require.NoError(t, json.Unmarshal(metaBytes, &listMeta))
		assert.Equal(t, 3, listMeta.Count)
	})
}

func TestNewPaginationMeta(t *testing.T) {
	meta := NewPaginationMeta(2, 10, 25)
	assert.Equal(t, 3, meta.TotalPages)
	assert.True(t, meta.HasNext)
	assert.True(t, meta.HasPrev)

	last := NewPaginationMeta(3, 10, 25)
	assert.False(t, last.HasNext)

	empty := NewPaginationMeta(1, 10, 0)
	assert.Equal(t, 0, empty.TotalPages)
	assert.False(t, empty.HasNext)
	assert.False(t, empty.HasPrev)
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{models.ErrMarketNotFound, http.StatusNotFound, "MARKET_NOT_FOUND"},
		{fmt.Errorf("load: %w", models.ErrBetNotFound), http.StatusNotFound, "BET_NOT_FOUND"},
		{models.ErrMarketStillOpen, http.StatusConflict, "MARKET_STILL_OPEN"},
		{models.ErrDecryptionNotReady, http.StatusAccepted, "DECRYPTION_NOT_READY"},
		{models.ErrNotBetOwner, http.StatusForbidden, "NOT_BET_OWNER"},
		{models.ErrBetDidNotWin, http.StatusConflict, "BET_DID_NOT_WIN"},
		{fmt.Errorf("%w: payout", rail.ErrTransferFailed), http.StatusBadGateway, "TRANSFER_FAILED"},
		{lock.ErrLockTimeout, http.StatusServiceUnavailable, "MARKET_BUSY"},
		{models.ErrStateCorrupted, http.StatusInternalServerError, "STATE_CORRUPTED"},
		{errors.New("disk on fire"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			status, code := StatusForError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestDomainErrorResponseRetryHint(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", http.NoBody)

	DomainErrorResponse(c, logger.NewNullLogger(), fmt.Errorf("payout: %w", models.ErrDecryptionNotReady))

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, RetryAfterSeconds, w.Header().Get("Retry-After"))
	assert.Equal(t, "DECRYPTION_NOT_READY", decode(t, w).Error.Code)
}

func TestDomainErrorResponseHidesInternalErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", http.NoBody)

	DomainErrorResponse(c, logger.NewNullLogger(), errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	response := decode(t, w)
	assert.Equal(t, "An unexpected error occurred", response.Error.Message)
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(CorsMiddleware(), RequestLogger(logger.NewNullLogger()), Recovery(logger.NewNullLogger()))
	r.GET("/healthz", HealthCheck("test", "1.2.3"))
	r.GET("/panic", func(_ *gin.Context) { panic("boom") })

	t.Run("health", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
		assert.Contains(t, w.Body.String(), "1.2.3")
	})

	t.Run("request id is echoed", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody)
		req.Header.Set(RequestIDHeader, "abc")
		r.ServeHTTP(w, req)
		assert.Equal(t, "abc", w.Header().Get(RequestIDHeader))
	})

	t.Run("preflight", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/healthz", http.NoBody))
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("panic", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", http.NoBody))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		response := decode(t, w)
		assert.Equal(t, "INTERNAL_ERROR", response.Error.Code)
		assert.Equal(t, w.Header().Get(RequestIDHeader), response.RequestID)
	})
}
