package handler

import (
	"net/http"
	"sort"

	"github.com/clausetrack/backend/model"
	"github.com/clausetrack/backend/service"
	"github.com/gin-gonic/gin"
)

type ClauseTypeHandler struct {
	registry *service.Registry
}

func NewClauseTypeHandler(registry *service.Registry) *ClauseTypeHandler {
	return &ClauseTypeHandler{registry: registry}
}

// List returns the clause type catalog with patterns, ordered by name
func (h *ClauseTypeHandler) List(c *gin.Context) {
	types, err := h.registry.All(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}

	sorted := make([]model.ClauseType, len(types))
	copy(sorted, types)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	items := make([]gin.H, len(sorted))
	for i, ct := range sorted {
		patterns := make([]gin.H, len(ct.Patterns))
		for j, p := range ct.Patterns {
			patterns[j] = gin.H{"pattern": p.Pattern, "is_regex": p.IsRegex}
		}
		items[i] = gin.H{
			"id":       ct.ID,
			"name":     ct.Name,
			"patterns": patterns,
		}
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

type clauseTypeRequest struct {
	Name     string `json:"name"`
	Patterns []struct {
		Pattern string `json:"pattern"`
		IsRegex bool   `json:"is_regex"`
	} `json:"patterns"`
}

// Create adds a clause type to the catalog
func (h *ClauseTypeHandler) Create(c *gin.Context) {
	var req clauseTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_body"})
		return
	}

	patterns := make([]model.ClausePattern, len(req.Patterns))
	for i, p := range req.Patterns {
		patterns[i] = model.ClausePattern{Pattern: p.Pattern, IsRegex: p.IsRegex}
	}

	ct, err := h.registry.Create(c.Request.Context(), req.Name, patterns)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	respPatterns := make([]gin.H, len(ct.Patterns))
	for i, p := range ct.Patterns {
		respPatterns[i] = gin.H{"pattern": p.Pattern, "is_regex": p.IsRegex}
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":       ct.ID,
		"name":     ct.Name,
		"patterns": respPatterns,
	})
}
