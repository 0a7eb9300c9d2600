package httputil

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/the1323/cs166-project-the033-hbai013/pkg/errors"
)

// Response wraps all ops API responses
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// Error represents API error
type Error struct {
	Code    int    `json:"code"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// StatusCode maps an application error to its HTTP status.
func StatusCode(err error) int {
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		return http.StatusInternalServerError
	}
	switch appErr.Code {
	case errors.ErrNotFound:
		return http.StatusNotFound
	case errors.ErrBadRequest:
		return http.StatusBadRequest
	case errors.ErrNotAvailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithError sends an error response and aborts the chain. Only
// application errors expose their message.
func RespondWithError(c *gin.Context, err error) {
	statusCode := StatusCode(err)
	message := "Internal server error"
	kind := errors.ErrInternal.String()

	var appErr *errors.AppError
	if stderrors.As(err, &appErr) && statusCode != http.StatusInternalServerError {
		message = appErr.Message
		kind = appErr.Code.String()
	}

	c.AbortWithStatusJSON(statusCode, Response{
		Success: false,
		Error: &Error{
			Code:    statusCode,
			Kind:    kind,
			Message: message,
		},
	})
}
