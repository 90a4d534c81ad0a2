// Package httpkit provides HTTP response utilities.
// This is part of the platform layer and contains no business logic.
package httpkit

import (
	"net/http"

	"storefront_miniapp/platform/apperr"

	"github.com/gin-gonic/gin"
)

// FailureResponse is the uniform failure shape of the shop API: every
// endpoint answers {"success": false, "error": "..."} on failure so the
// webapp gateway can map it to a typed rejection.
type FailureResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// OK sends a 200 OK response with the given payload.
func OK(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusOK, payload)
}

// Fail sends the uniform failure shape with the given status code.
func Fail(c *gin.Context, status int, message string) {
	c.JSON(status, FailureResponse{Success: false, Error: message})
}

// HandleError maps typed errors to the uniform failure response.
// If the error is a typed *apperr.Error, its Kind determines the HTTP status
// code. Otherwise it defaults to 400 Bad Request.
// Returns true if an error was handled, false otherwise.
func HandleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	if domainErr, ok := err.(*apperr.Error); ok {
		Fail(c, domainErr.HTTPStatus(), domainErr.Message)
		return true
	}

	Fail(c, http.StatusBadRequest, err.Error())
	return true
}
