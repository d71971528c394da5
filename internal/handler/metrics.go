package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"core/internal/model"
)

// MetricsProvider is the service surface the metrics handler needs.
type MetricsProvider interface {
	FredMetrics(ctx context.Context, filters model.FredFilters) ([]model.FredMetric, error)
	Dashboard(ctx context.Context) (*model.Dashboard, error)
}

// MetricsHandler serves the FRED indicator series and the dashboard
// payload.
type MetricsHandler struct {
	metrics MetricsProvider
	logger  *slog.Logger
}

// NewMetricsHandler creates a new metrics handler.
func NewMetricsHandler(metrics MetricsProvider, logger *slog.Logger) *MetricsHandler {
	return &MetricsHandler{
		metrics: metrics,
		logger:  logger.With("component", "metrics_handler"),
	}
}

// FredMetrics handles GET /api/metrics/fred
func (h *MetricsHandler) FredMetrics(c *gin.Context) {
	filters := model.FredFilters{
		MetricName: queryString(c, "metric_name"),
		SeriesID:   queryString(c, "series_id"),
		StartDate:  queryString(c, "start_date"),
		EndDate:    queryString(c, "end_date"),
	}

	metrics, err := h.metrics.FredMetrics(c.Request.Context(), filters)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"metrics": metrics, "count": len(metrics)})
}

// Dashboard handles GET /api/dashboard
func (h *MetricsHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.metrics.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}
