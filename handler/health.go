package handler

import (
	"net/http"
	"time"

	"github.com/clausetrack/backend/service"
	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	store *service.ContractStore
}

func NewHealthHandler(store *service.ContractStore) *HealthHandler {
	return &HealthHandler{store: store}
}

// Health reports process liveness
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// HealthDB reports database connectivity
func (h *HealthHandler) HealthDB(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"db": "down"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"db": "ok"})
}
