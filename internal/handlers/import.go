package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/bunca/bakery-service/internal/importer"
	"github.com/bunca/bakery-service/internal/parsers"
	"github.com/bunca/bakery-service/internal/pipeline"
)

// DefaultMaxUploadBytes caps uploads when no limit is configured
const DefaultMaxUploadBytes = 20 << 20

// ImportHandler serves the workbook upload and run history endpoints
type ImportHandler struct {
	deps           pipeline.Deps
	maxUploadBytes int64
}

// NewImportHandler creates a new import handler
func NewImportHandler(deps pipeline.Deps, maxUploadBytes int64) *ImportHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	if deps.Importer == nil {
		deps.Importer = importer.New(nil)
	}
	return &ImportHandler{deps: deps, maxUploadBytes: maxUploadBytes}
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

// ValidationFailedResponse is returned when an apply run is rejected
type ValidationFailedResponse struct {
	Error  string              `json:"error"`
	Result *pipeline.RunResult `json:"result"`
}

// SchemasResponse lists the header schemas used for classification
type SchemasResponse struct {
	RecordTypes importer.Schemas `json:"recordTypes"`
}

// Upload imports an uploaded workbook. Without apply the workbook is only analysed.
// @Summary Import workbook
// @Description Classifies an uploaded XLSX, XLS or CSV workbook and extracts its records. With apply=true valid records are written to the database.
// @Tags import
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Workbook to import"
// @Param apply query bool false "Write the records to the database" default(false)
// @Success 200 {object} pipeline.RunResult
// @Failure 400 {object} ErrorResponse "Unreadable or unsupported upload"
// @Failure 413 {object} ErrorResponse "Upload too large"
// @Failure 422 {object} ValidationFailedResponse "Validation issues, nothing written"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Failure 503 {object} ErrorResponse "Database not configured"
// @Security ApiKeyAuth
// @Router /import [post]
func (h *ImportHandler) Upload(c *gin.Context) {
	apply := false
	if raw := c.Query("apply"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "apply must be true or false"})
			return
		}
		apply = v
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		if isTooLarge(err) {
			c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "Upload exceeds size limit"})
			return
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Multipart field 'file' is required"})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		if isTooLarge(err) {
			c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "Upload exceeds size limit"})
			return
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Failed to read upload"})
		return
	}

	result, err := pipeline.Run(c.Request.Context(), h.deps, pipeline.Upload{
		Filename:   header.Filename,
		Content:    content,
		UploadedBy: c.ClientIP(),
	}, pipeline.Options{Apply: apply})

	switch {
	case err == nil:
		c.JSON(http.StatusOK, result)
	case errors.Is(err, parsers.ErrUnsupportedFormat), errors.Is(err, parsers.ErrUnreadableWorkbook):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, pipeline.ErrValidationFailed):
		c.JSON(http.StatusUnprocessableEntity, ValidationFailedResponse{Error: err.Error(), Result: result})
	case errors.Is(err, pipeline.ErrNoDatabase):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "Database not configured, cannot apply"})
	default:
		log.Error().Err(err).Str("filename", header.Filename).Msg("Import failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to import workbook"})
	}
}

// Schemas returns the active header synonym tables
// @Summary List header schemas
// @Description Returns, per record type, the matching threshold, dedup key and accepted header labels
// @Tags import
// @Produce json
// @Success 200 {object} SchemasResponse
// @Security ApiKeyAuth
// @Router /import/schemas [get]
func (h *ImportHandler) Schemas(c *gin.Context) {
	c.JSON(http.StatusOK, SchemasResponse{RecordTypes: h.deps.Importer.Schemas()})
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

// RegisterRoutes mounts the import endpoints on a router group
func (h *ImportHandler) RegisterRoutes(r gin.IRouter) {
	r.POST("", h.Upload)
	r.GET("/schemas", h.Schemas)
	r.GET("/runs", h.ListRuns)
	r.GET("/runs/:id", h.GetRun)
	r.GET("/runs/:id/file", h.DownloadRunFile)
}
