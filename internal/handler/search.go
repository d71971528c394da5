package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"core/internal/model"
	"core/internal/service"
)

// SearchProvider is the service surface the search handler needs.
type SearchProvider interface {
	Search(ctx context.Context, req model.SearchRequest) (*model.SearchResponse, error)
	Export(ctx context.Context, category string, filters model.SearchFilters) ([]model.Listing, error)
}

// SearchHandler handles the property search and export endpoints.
type SearchHandler struct {
	search         SearchProvider
	logger         *slog.Logger
	defaultPerPage int
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(search SearchProvider, logger *slog.Logger, defaultPerPage int) *SearchHandler {
	return &SearchHandler{
		search:         search,
		logger:         logger.With("component", "search_handler"),
		defaultPerPage: defaultPerPage,
	}
}

// Search handles GET /api/properties/search
func (h *SearchHandler) Search(c *gin.Context) {
	filters, err := parseFilters(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	page, err := queryIntDefault(c, "page", 1)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	perPage, err := queryIntDefault(c, "per_page", h.defaultPerPage)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	resp, err := h.search.Search(c.Request.Context(), model.SearchRequest{
		Category: c.Query("property_type"),
		Filters:  filters,
		Page:     page,
		PerPage:  perPage,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Export handles GET /api/properties/export
func (h *SearchHandler) Export(c *gin.Context) {
	filters, err := parseFilters(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	category := c.Query("property_type")
	listings, err := h.search.Export(c.Request.Context(), category, filters)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=bna_%s_export.csv", category))
	c.Status(http.StatusOK)

	if err := service.WriteListingsCSV(c.Writer, listings); err != nil {
		// Headers are already out; all that is left is to log.
		h.logger.ErrorContext(c.Request.Context(), "CSV streaming failed", slog.Any("error", err))
	}
}

// parseFilters reads the optional filter parameters shared by search
// and export.
func parseFilters(c *gin.Context) (model.SearchFilters, error) {
	var (
		f   model.SearchFilters
		err error
	)

	if f.MinPrice, err = queryFloat(c, "min_price"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = queryFloat(c, "max_price"); err != nil {
		return f, err
	}
	if f.MinBeds, err = queryInt(c, "min_beds"); err != nil {
		return f, err
	}
	if f.MaxBeds, err = queryInt(c, "max_beds"); err != nil {
		return f, err
	}
	if f.MinBaths, err = queryFloat(c, "min_baths"); err != nil {
		return f, err
	}
	if f.MaxBaths, err = queryFloat(c, "max_baths"); err != nil {
		return f, err
	}
	if f.MinSqft, err = queryInt(c, "min_sqft"); err != nil {
		return f, err
	}
	if f.MaxSqft, err = queryInt(c, "max_sqft"); err != nil {
		return f, err
	}
	f.City = queryString(c, "city")
	f.ZipCode = queryString(c, "zip_code")

	return f, nil
}
