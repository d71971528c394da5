package service

import (
	"context"
	"fmt"
	"log/slog"

	"core/internal/model"
	"core/internal/pagination"
)

// ListingStore is the slice of the market repository the search
// service needs.
type ListingStore interface {
	SearchListings(ctx context.Context, category string, filters model.SearchFilters, limit, offset int) ([]model.Listing, int, error)
	ExportListings(ctx context.Context, category string, filters model.SearchFilters) ([]model.Listing, error)
}

// SearchService validates search requests, runs the count and fetch
// phases against the market store and assembles the response envelope.
type SearchService struct {
	store      ListingStore
	logger     *slog.Logger
	maxPerPage int
}

// NewSearchService creates a new search service.
func NewSearchService(store ListingStore, logger *slog.Logger, maxPerPage int) *SearchService {
	return &SearchService{
		store:      store,
		logger:     logger.With("component", "search"),
		maxPerPage: maxPerPage,
	}
}

// Search executes one validated search. Validation failures
// short-circuit before any query runs; on success the envelope
// invariants hold: hasNext == page < totalPages, hasPrev == page > 1,
// and the slice length is the page window that remains.
func (s *SearchService) Search(ctx context.Context, req model.SearchRequest) (*model.SearchResponse, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	listings, total, err := s.store.SearchListings(
		ctx,
		req.Category,
		req.Filters,
		req.PerPage,
		pagination.Offset(req.Page, req.PerPage),
	)
	if err != nil {
		return nil, fmt.Errorf("search query failed: %w", err)
	}

	for i := range listings {
		listings[i].Enrich()
	}

	// Filter values are untrusted free text; they go out as structured
	// attributes, never spliced into the message.
	s.logger.InfoContext(ctx, "search executed",
		slog.String("category", req.Category),
		slog.Int("page", req.Page),
		slog.Int("per_page", req.PerPage),
		slog.Int("total", total),
		slog.Any("filters", req.Filters),
	)

	return &model.SearchResponse{
		Properties: listings,
		Pagination: pagination.Meta(total, req.Page, req.PerPage),
	}, nil
}

// Export returns the full matching set for the same filters, no
// pagination applied.
func (s *SearchService) Export(ctx context.Context, category string, filters model.SearchFilters) ([]model.Listing, error) {
	if err := validateCategory(category); err != nil {
		return nil, err
	}
	if err := validateFilters(filters); err != nil {
		return nil, err
	}

	listings, err := s.store.ExportListings(ctx, category, filters)
	if err != nil {
		return nil, fmt.Errorf("export query failed: %w", err)
	}

	for i := range listings {
		listings[i].Enrich()
	}

	s.logger.InfoContext(ctx, "export executed",
		slog.String("category", category),
		slog.Int("rows", len(listings)),
	)

	return listings, nil
}

func (s *SearchService) validate(req model.SearchRequest) error {
	if err := validateCategory(req.Category); err != nil {
		return err
	}
	if req.Page < 1 {
		return model.NewValidationError("page must be a positive integer")
	}
	if req.PerPage < 1 || req.PerPage > s.maxPerPage {
		return model.NewValidationError(fmt.Sprintf("per_page must be between 1 and %d", s.maxPerPage))
	}
	return validateFilters(req.Filters)
}

func validateCategory(category string) error {
	if category != model.CategoryForSale && category != model.CategoryRental {
		return model.NewValidationError(`property_type must be either "forsale" or "rental"`)
	}
	return nil
}

// validateFilters rejects negative bounds on fields that cannot be
// negative. Inverted ranges pass: they are valid empty-result queries.
func validateFilters(f model.SearchFilters) error {
	nonNegative := []struct {
		name  string
		value *float64
	}{
		{"min_price", f.MinPrice},
		{"max_price", f.MaxPrice},
		{"min_baths", f.MinBaths},
		{"max_baths", f.MaxBaths},
	}
	for _, b := range nonNegative {
		if b.value != nil && *b.value < 0 {
			return model.NewValidationError(b.name + " must be non-negative")
		}
	}

	nonNegativeInts := []struct {
		name  string
		value *int
	}{
		{"min_beds", f.MinBeds},
		{"max_beds", f.MaxBeds},
		{"min_sqft", f.MinSqft},
		{"max_sqft", f.MaxSqft},
	}
	for _, b := range nonNegativeInts {
		if b.value != nil && *b.value < 0 {
			return model.NewValidationError(b.name + " must be non-negative")
		}
	}

	return nil
}
