package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/greentrails/trail-importer/internal/logger"
	"github.com/greentrails/trail-importer/internal/service"
	"gorm.io/gorm"
)

// ImportHandler handles the bulk import endpoints.
type ImportHandler struct {
	importService *service.ImportService
	logger        *logger.Logger
}

// NewImportHandler creates a new import handler.
// Parameters:
//   - importService: import service instance.
//   - log: logger instance.
// Returns:
//   - *ImportHandler: initialized handler.
func NewImportHandler(importService *service.ImportService, log *logger.Logger) *ImportHandler {
	return &ImportHandler{
		importService: importService,
		logger:        log,
	}
}

// log returns a logger from Gin context if available, otherwise returns the default logger
func (h *ImportHandler) log(c *gin.Context) *logger.Logger {
	if l := logger.FromContext(c.Request.Context()); l != nil {
		return l
	}
	return h.logger
}

// TriggerImport runs a bulk import synchronously and returns the run
// summary. Invalid requests get a structured 400; a job-creation failure
// or any other top-level error gets a 500 with {error, details}.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ImportHandler) TriggerImport(c *gin.Context) {
	var req service.ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	ctx := c.Request.Context()
	resp, err := h.importService.Run(ctx, &req)
	if err != nil {
		if errors.Is(err, service.ErrNoSources) || errors.Is(err, service.ErrInvalidLimit) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.log(c).WithError(err).Error("Bulk import failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "import failed", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetJob returns one job row for polling clients.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ImportHandler) GetJob(c *gin.Context) {
	job, err := h.importService.GetJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
			return
		}
		h.log(c).WithError(err).Error("Failed to load job")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load job", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, job)
}

// ListJobs returns recent jobs, newest first.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ImportHandler) ListJobs(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	jobs, err := h.importService.ListJobs(c.Request.Context(), limit)
	if err != nil {
		h.log(c).WithError(err).Error("Failed to list jobs")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list jobs", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}
