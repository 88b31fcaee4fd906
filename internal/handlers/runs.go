package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/bunca/bakery-service/internal/database"
	"github.com/bunca/bakery-service/internal/storage"
)

// ListRunsRequest represents query parameters for listing import runs
type ListRunsRequest struct {
	Limit  int `form:"limit" json:"limit" binding:"omitempty,min=1,max=100" jsonschema:"minimum=1,maximum=100"`
	Offset int `form:"offset" json:"offset" binding:"min=0" jsonschema:"minimum=0"`
}

// ListRunsResponse represents the response for listing import runs
type ListRunsResponse struct {
	Runs  []database.ImportRun `json:"runs" jsonschema:"required"`
	Total int                  `json:"total" jsonschema:"required"`
}

// ListRuns returns a paginated list of import runs, newest first
// @Summary List import runs
// @Description Returns recorded import runs, newest first
// @Tags runs
// @Produce json
// @Param limit query int false "Number of runs to return" default(20) minimum(1) maximum(100)
// @Param offset query int false "Number of runs to skip" default(0) minimum(0)
// @Success 200 {object} ListRunsResponse
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Failure 503 {object} ErrorResponse "Database not configured"
// @Security ApiKeyAuth
// @Router /import/runs [get]
func (h *ImportHandler) ListRuns(c *gin.Context) {
	if h.deps.DB == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "Database not configured"})
		return
	}

	var req ListRunsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if req.Limit == 0 {
		req.Limit = 20
	}

	runs, total, err := database.ListRuns(c.Request.Context(), h.deps.DB, req.Limit, req.Offset)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list import runs")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list runs"})
		return
	}

	c.JSON(http.StatusOK, ListRunsResponse{Runs: runs, Total: total})
}

// GetRun returns one import run
// @Summary Get import run
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} database.ImportRun
// @Failure 404 {object} ErrorResponse "Run not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Failure 503 {object} ErrorResponse "Database not configured"
// @Security ApiKeyAuth
// @Router /import/runs/{id} [get]
func (h *ImportHandler) GetRun(c *gin.Context) {
	run, ok := h.lookupRun(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, run)
}

// DownloadRunFile streams the archived upload of a run
// @Summary Download archived upload
// @Tags runs
// @Produce octet-stream
// @Param id path string true "Run ID"
// @Success 200 {file} file "The workbook as uploaded"
// @Failure 404 {object} ErrorResponse "Run or archived file not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Failure 503 {object} ErrorResponse "Database not configured"
// @Security ApiKeyAuth
// @Router /import/runs/{id}/file [get]
func (h *ImportHandler) DownloadRunFile(c *gin.Context) {
	run, ok := h.lookupRun(c)
	if !ok {
		return
	}
	if h.deps.Storage == nil || run.StorageKey == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Run has no archived file"})
		return
	}

	content, err := h.deps.Storage.Get(c.Request.Context(), *run.StorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Archived file is gone"})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("run_id", run.ID).Msg("Failed to read archived file")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to read archived file"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(run.Filename)))
	c.Data(http.StatusOK, mimetype.Detect(content).String(), content)
}

func (h *ImportHandler) lookupRun(c *gin.Context) (*database.ImportRun, bool) {
	if h.deps.DB == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "Database not configured"})
		return nil, false
	}

	run, err := database.GetRun(c.Request.Context(), h.deps.DB, c.Param("id"))
	if errors.Is(err, database.ErrRunNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Run not found"})
		return nil, false
	}
	if err != nil {
		log.Error().Err(err).Str("run_id", c.Param("id")).Msg("Failed to get import run")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to get run"})
		return nil, false
	}
	return run, true
}
