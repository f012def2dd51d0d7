package handler

import (
	"context"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/clausetrack/backend/model"
	"github.com/clausetrack/backend/service"
	"github.com/gin-gonic/gin"
)

type ContractHandler struct {
	lifecycle *service.Lifecycle
	matrix    *service.MatrixEngine
	store     *service.ContractStore
	maxBytes  int64
}

func NewContractHandler(lifecycle *service.Lifecycle, matrix *service.MatrixEngine, store *service.ContractStore, maxBytes int64) *ContractHandler {
	return &ContractHandler{
		lifecycle: lifecycle,
		matrix:    matrix,
		store:     store,
		maxBytes:  maxBytes,
	}
}

// Upload handles contract file upload and kicks off detection
func (h *ContractHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_file"})
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !service.AllowedExtensions[ext] {
		c.JSON(http.StatusUnsupportedMediaType, gin.H{
			"error":   "unsupported_file_type",
			"allowed": []string{".markdown", ".md", ".txt"},
		})
		return
	}

	if h.maxBytes > 0 && header.Size > h.maxBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error":     "file_too_large",
			"max_bytes": h.maxBytes,
		})
		return
	}

	contract, err := h.lifecycle.Submit(c.Request.Context(), header.Filename, file)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	// Run detection asynchronously; the client polls the status endpoint
	go func(id uint) {
		if err := h.lifecycle.Process(context.Background(), id); err != nil {
			slog.Error("contract processing failed", "contract_id", id, "error", err)
		}
	}(contract.ID)

	c.JSON(http.StatusCreated, gin.H{
		"id":                contract.ID,
		"original_filename": contract.OriginalFilename,
		"processing_status": contract.ProcessingStatus,
		"size_bytes":        contract.SizeBytes,
		"sha256":            contract.SHA256Hex,
	})
}

// List returns all contracts, newest first, with summary fields only
func (h *ContractHandler) List(c *gin.Context) {
	contracts, err := h.store.ListContracts(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}

	items := make([]gin.H, len(contracts))
	for i, contract := range contracts {
		items[i] = gin.H{
			"id":                contract.ID,
			"original_filename": contract.OriginalFilename,
			"processing_status": contract.ProcessingStatus,
			"created_at":        contract.CreatedAt.Format(time.RFC3339),
			"processed_at":      formatNullableTime(contract.ProcessedAt),
		}
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Get returns one contract with its full clause matrix
func (h *ContractHandler) Get(c *gin.Context) {
	id, ok := contractID(c)
	if !ok {
		return
	}

	contract, err := h.store.GetContract(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	matrix, err := h.matrix.Get(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"contract": contractJSON(contract),
		"matrix":   matrix.Rows,
		"ready":    matrix.Ready,
	})
}

// GetStatus returns the processing status of a contract
func (h *ContractHandler) GetStatus(c *gin.Context) {
	id, ok := contractID(c)
	if !ok {
		return
	}

	contract, err := h.store.GetContract(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":                contract.ID,
		"processing_status": contract.ProcessingStatus,
		"error_message":     contract.ErrorMessage,
	})
}

// overrideRequest is the PATCH body for a clause override. A null confirmed
// defers back to detection.
type overrideRequest struct {
	Confirmed *bool `json:"confirmed"`
}

// SetOverride upserts a reviewer verdict and returns the updated matrix
func (h *ContractHandler) SetOverride(c *gin.Context) {
	id, ok := contractID(c)
	if !ok {
		return
	}
	clauseTypeID, err := strconv.ParseUint(c.Param("clauseTypeId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_clause_type_id"})
		return
	}

	var req overrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_body"})
		return
	}

	if err := h.matrix.SetOverride(c.Request.Context(), id, uint(clauseTypeID), req.Confirmed); err != nil {
		writeServiceError(c, err)
		return
	}

	matrix, err := h.matrix.Get(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"contract_id":       id,
		"processing_status": matrix.ProcessingStatus,
		"matrix":            matrix.Rows,
		"ready":             matrix.Ready,
	})
}

func contractID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_contract_id"})
		return 0, false
	}
	return uint(id), true
}

func contractJSON(contract *model.Contract) gin.H {
	return gin.H{
		"id":                contract.ID,
		"original_filename": contract.OriginalFilename,
		"processing_status": contract.ProcessingStatus,
		"size_bytes":        contract.SizeBytes,
		"sha256":            contract.SHA256Hex,
		"created_at":        contract.CreatedAt.Format(time.RFC3339),
		"processed_at":      formatNullableTime(contract.ProcessedAt),
		"error_message":     contract.ErrorMessage,
	}
}

func formatNullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}
