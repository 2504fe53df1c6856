package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/greentrails/trail-importer/internal/logger"
	"github.com/greentrails/trail-importer/internal/service"
)

// RecoveryHandler handles the diagnostics and remediation endpoints.
type RecoveryHandler struct {
	recoveryService *service.RecoveryService
	logger          *logger.Logger
}

// NewRecoveryHandler creates a new recovery handler.
// Parameters:
//   - recoveryService: recovery service instance.
//   - log: logger instance.
// Returns:
//   - *RecoveryHandler: initialized handler.
func NewRecoveryHandler(recoveryService *service.RecoveryService, log *logger.Logger) *RecoveryHandler {
	return &RecoveryHandler{
		recoveryService: recoveryService,
		logger:          log,
	}
}

// log returns a logger from Gin context if available, otherwise returns the default logger
func (h *RecoveryHandler) log(c *gin.Context) *logger.Logger {
	if l := logger.FromContext(c.Request.Context()); l != nil {
		return l
	}
	return h.logger
}

// AnalyzeFailures returns the failure analysis over recent zero-add jobs.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *RecoveryHandler) AnalyzeFailures(c *gin.Context) {
	analysis, err := h.recoveryService.AnalyzeImportFailures(c.Request.Context())
	if err != nil {
		h.log(c).WithError(err).Error("Failure analysis failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "analysis failed", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, analysis)
}

// ProbeInsertAccess runs the insert/delete permission probe.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *RecoveryHandler) ProbeInsertAccess(c *gin.Context) {
	ok, err := h.recoveryService.ProbeInsertAccess(c.Request.Context())
	resp := gin.H{"write_access": ok}
	if err != nil {
		resp["error"] = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

// CancelStuckJobs sweeps processing jobs older than the stuck threshold.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *RecoveryHandler) CancelStuckJobs(c *gin.Context) {
	count, err := h.recoveryService.CancelStuckJobs(c.Request.Context())
	if err != nil {
		h.log(c).WithError(err).Error("Stuck job sweep failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sweep failed", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cancelled": count})
}

// SmokeTest runs a minimal single-record import.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *RecoveryHandler) SmokeTest(c *gin.Context) {
	result := h.recoveryService.SmokeTestImport(c.Request.Context())
	status := http.StatusOK
	if !result.Success {
		status = http.StatusInternalServerError
	}
	c.JSON(status, result)
}
