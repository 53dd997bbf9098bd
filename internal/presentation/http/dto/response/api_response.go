package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/materials-console/pkg/apperror"
	"github.com/sangkips/materials-console/pkg/pagination"
)

// APIResponse is the envelope of every console API response
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// Meta ties a response to the access log line of its request
type Meta struct {
	Timestamp string `json:"timestamp"`
	RequestID string `json:"request_id"`
}

// newMeta reuses the request ID set by the logger middleware so the
// envelope and the log line agree
func newMeta(c *gin.Context) *Meta {
	requestID := c.GetString("request_id")
	if requestID == "" {
		requestID = c.GetHeader("X-Request-ID")
	}
	if requestID == "" {
		requestID = uuid.New().String()
	}
	return &Meta{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		RequestID: requestID,
	}
}

// Success sends a success response
func Success(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, APIResponse{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    newMeta(c),
	})
}

// SuccessWithPagination sends one page of items with its pagination block
func SuccessWithPagination[T any](c *gin.Context, message string, result *pagination.PaginatedResult[T]) {
	Success(c, http.StatusOK, message, result)
}

// Error renders err with its AppError code. Field errors travel in
// "errors" so the browser can highlight the offending input.
func Error(c *gin.Context, err error) {
	appErr := apperror.GetAppError(err)
	failure(c, appErr.Code, appErr.Message, appErr.Errors)
}

func failure(c *gin.Context, statusCode int, message string, errors []apperror.FieldError) {
	body := APIResponse{
		Success: false,
		Message: message,
		Meta:    newMeta(c),
	}
	if len(errors) > 0 {
		body.Errors = errors
	}
	c.JSON(statusCode, body)
}

// Created sends a 201 Created response
func Created(c *gin.Context, message string, data interface{}) {
	Success(c, http.StatusCreated, message, data)
}

// OK sends a 200 OK response
func OK(c *gin.Context, message string, data interface{}) {
	Success(c, http.StatusOK, message, data)
}

// NoContent sends a 204 No Content response
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Unauthorized sends a 401 Unauthorized response
func Unauthorized(c *gin.Context, message string) {
	failure(c, http.StatusUnauthorized, message, nil)
}

// BadRequest sends a 400 Bad Request response
func BadRequest(c *gin.Context, message string) {
	failure(c, http.StatusBadRequest, message, nil)
}
