package handler

import (
	"net/http"

	"github.com/clausetrack/backend/service"
	"github.com/gin-gonic/gin"
)

// writeServiceError maps a service error kind onto an HTTP status and writes
// the structured error body
func writeServiceError(c *gin.Context, err error) {
	var status int
	switch service.ErrorKind(err) {
	case service.KindValidation:
		status = http.StatusBadRequest
	case service.KindNotFound:
		status = http.StatusNotFound
	case service.KindInvalidTransition, service.KindConflict:
		status = http.StatusConflict
	case service.KindDetectionFailure:
		status = http.StatusBadGateway
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
