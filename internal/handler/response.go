// Package handler holds the shared HTTP response envelope and the error
// to status-code mapping used by all endpoint handlers.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/mamacare/appointment-api/pkg/errors"
)

// Response is the envelope every endpoint returns.
type Response struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
	Error  *ErrorBody  `json:"error,omitempty"`
}

type ErrorBody struct {
	Code    apperrors.Code `json:"code"`
	Message string         `json:"message"`
}

// RespondSuccess writes a success envelope.
func RespondSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{Status: "success", Data: data})
}

// RespondError maps an application error onto an HTTP status and writes
// the error envelope. Unknown errors are masked as 500s.
func RespondError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		c.JSON(http.StatusInternalServerError, Response{
			Status: "error",
			Error:  &ErrorBody{Code: apperrors.CodeStore, Message: "internal server error"},
		})
		return
	}

	c.JSON(statusFor(appErr.Code), Response{
		Status: "error",
		Error:  &ErrorBody{Code: appErr.Code, Message: appErr.Message},
	})
}

func statusFor(code apperrors.Code) int {
	switch code {
	case apperrors.CodeAuth:
		return http.StatusForbidden
	case apperrors.CodeValidation:
		return http.StatusBadRequest
	case apperrors.CodeNotFound:
		return http.StatusNotFound
	case apperrors.CodeInvalidTransition, apperrors.CodeVersionConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// RespondValidation shapes gin binding failures like any other validation
// error.
func RespondValidation(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, Response{
		Status: "error",
		Error:  &ErrorBody{Code: apperrors.CodeValidation, Message: err.Error()},
	})
}
