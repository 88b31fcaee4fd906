package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status      string `json:"status"`
	Database    string `json:"database"`
	Storage     string `json:"storage"`
	RecordTypes int    `json:"recordTypes"`
}

type pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheck handles the health check endpoint
func (h *ImportHandler) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:      "ok",
		Database:    "not configured",
		Storage:     "not configured",
		RecordTypes: len(h.deps.Importer.Schemas()),
	}
	if h.deps.Storage != nil {
		response.Storage = "configured"
	}

	if p, ok := h.deps.DB.(pinger); ok && h.deps.DB != nil {
		if err := p.Ping(c.Request.Context()); err != nil {
			response.Status = "degraded"
			response.Database = "disconnected"
			c.JSON(http.StatusServiceUnavailable, response)
			return
		}
		response.Database = "connected"
	}

	c.JSON(http.StatusOK, response)
}
