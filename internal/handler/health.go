package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports liveness and build information.
type HealthHandler struct {
	version   string
	buildTime string
	gitCommit string
	started   time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(version, buildTime, gitCommit string) *HealthHandler {
	return &HealthHandler{
		version:   version,
		buildTime: buildTime,
		gitCommit: gitCommit,
		started:   time.Now(),
	}
}

// Health handles GET /api/health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(h.started).Round(time.Second).String(),
	})
}

// Version handles GET /api/version
func (h *HealthHandler) Version(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version":   h.version,
		"buildTime": h.buildTime,
		"gitCommit": h.gitCommit,
	})
}
