package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the envelope every handler writes.
type Response struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Meta      interface{} `json:"meta,omitempty"`
	Error     *ErrorInfo  `json:"error,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// ErrorInfo carries a stable machine code next to the human message.
type ErrorInfo struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type PaginationMeta struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// NewPaginationMeta derives page counts from a total.
func NewPaginationMeta(page, perPage int, total int64) PaginationMeta {
	meta := PaginationMeta{Page: page, PerPage: perPage, Total: total}
	if perPage > 0 {
		meta.TotalPages = int((total + int64(perPage) - 1) / int64(perPage))
	}
	meta.HasNext = page < meta.TotalPages
	meta.HasPrev = page > 1
	return meta
}

type ListMeta struct {
	Count int `json:"count"`
}

func requestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	write(c, statusCode, message, data, nil)
}

func write(c *gin.Context, statusCode int, message string, data, meta interface{}) {
	c.JSON(statusCode, Response{
		Success:   true,
		Message:   message,
		Data:      data,
		Meta:      meta,
		RequestID: requestID(c),
	})
}

// ErrorResponse writes the error envelope and aborts the chain.
func ErrorResponse(c *gin.Context, statusCode int, code, message string, details interface{}) {
	c.AbortWithStatusJSON(statusCode, Response{
		Error:     &ErrorInfo{Code: code, Message: message, Details: details},
		RequestID: requestID(c),
	})
}

// ValidationErrorResponse reports binding rule failures per field.
func ValidationErrorResponse(c *gin.Context, details interface{}) {
	ErrorResponse(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", details)
}

// BadRequestResponse is used when the body or path cannot be parsed at all.
func BadRequestResponse(c *gin.Context, details interface{}) {
	ErrorResponse(c, http.StatusBadRequest, "BAD_REQUEST", "Invalid request data", details)
}

func UnauthorizedResponse(c *gin.Context) {
	ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized access", nil)
}

func InternalErrorResponse(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusInternalServerError, "INTERNAL_ERROR", message, nil)
}

func CreatedResponse(c *gin.Context, message string, data interface{}) {
	write(c, http.StatusCreated, message, data, nil)
}

// AcceptedResponse reports work that has started but not finished, such as a pending decryption.
func AcceptedResponse(c *gin.Context, message string, data interface{}) {
	write(c, http.StatusAccepted, message, data, nil)
}

func ListResponse(c *gin.Context, message string, data interface{}, count int) {
	write(c, http.StatusOK, message, data, ListMeta{Count: count})
}

func PaginatedResponse(c *gin.Context, message string, data interface{}, meta PaginationMeta) {
	write(c, http.StatusOK, message, data, meta)
}
