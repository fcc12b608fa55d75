package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/charlesng35/notesd/pkg/errors"
)

const (
	StatusSuccess = "success"
	StatusFail    = "fail"
	StatusError   = "error"
)

// Response defines the base API payload.
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorBody is the payload written for every failed request.
type ErrorBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Success writes a JSON success response carrying data.
func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, Response{
		Status: StatusSuccess,
		Data:   data,
	})
}

// Message writes a JSON success response carrying only a message.
func Message(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Status:  StatusSuccess,
		Message: message,
	})
}

// SuccessWith writes a success response with an arbitrary top-level key, e.g. "user".
func SuccessWith(c *gin.Context, statusCode int, key string, value interface{}) {
	c.JSON(statusCode, gin.H{
		"status": StatusSuccess,
		key:      value,
	})
}

// Error writes a JSON error response derived from an AppError.
func Error(c *gin.Context, err error) {
	if err == nil {
		err = appErrors.ErrInternalServer
	}

	appErr := appErrors.FromError(err)
	status := appErr.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}

	c.JSON(status, ErrorBody{
		Status:  statusLabel(status),
		Message: appErr.Message,
	})
}

func statusLabel(status int) string {
	if status >= http.StatusInternalServerError {
		return StatusError
	}
	return StatusFail
}

// WithMessage writes a success response carrying both a message and data.
func WithMessage(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Status:  StatusSuccess,
		Message: message,
		Data:    data,
	})
}
