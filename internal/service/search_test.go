package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"core/internal/model"
)

func float64Ptr(v float64) *float64 { return &v }
func intPtr(v int) *int             { return &v }
func strPtr(v string) *string       { return &v }

// stubStore records calls and plays back a canned result.
type stubStore struct {
	listings   []model.Listing
	total      int
	err        error
	calls      int
	lastLimit  int
	lastOffset int
}

func (s *stubStore) SearchListings(_ context.Context, _ string, _ model.SearchFilters, limit, offset int) ([]model.Listing, int, error) {
	s.calls++
	s.lastLimit = limit
	s.lastOffset = offset
	return s.listings, s.total, s.err
}

func (s *stubStore) ExportListings(_ context.Context, _ string, _ model.SearchFilters) ([]model.Listing, error) {
	s.calls++
	return s.listings, s.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newTestService(store *stubStore) *SearchService {
	return NewSearchService(store, testLogger(), 100)
}

func TestSearch_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  model.SearchRequest
	}{
		{
			name: "unknown category",
			req:  model.SearchRequest{Category: "commercial", Page: 1, PerPage: 20},
		},
		{
			name: "empty category",
			req:  model.SearchRequest{Page: 1, PerPage: 20},
		},
		{
			name: "page below one",
			req:  model.SearchRequest{Category: "rental", Page: 0, PerPage: 20},
		},
		{
			name: "per_page zero",
			req:  model.SearchRequest{Category: "rental", Page: 1, PerPage: 0},
		},
		{
			name: "per_page above cap",
			req:  model.SearchRequest{Category: "rental", Page: 1, PerPage: 150},
		},
		{
			name: "negative min_price",
			req: model.SearchRequest{
				Category: "rental", Page: 1, PerPage: 20,
				Filters: model.SearchFilters{MinPrice: float64Ptr(-1)},
			},
		},
		{
			name: "negative min_beds",
			req: model.SearchRequest{
				Category: "forsale", Page: 1, PerPage: 20,
				Filters: model.SearchFilters{MinBeds: intPtr(-2)},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &stubStore{}
			svc := newTestService(store)

			_, err := svc.Search(context.Background(), tt.req)
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !model.IsValidationError(err) {
				t.Errorf("expected ValidationError, got %T: %v", err, err)
			}
			// Validation failures must short-circuit before any query.
			if store.calls != 0 {
				t.Errorf("store was called %d times before validation passed", store.calls)
			}
		})
	}
}

func TestSearch_PerPageBoundary(t *testing.T) {
	store := &stubStore{}
	svc := newTestService(store)

	// per_page equal to the cap is accepted.
	_, err := svc.Search(context.Background(), model.SearchRequest{
		Category: "rental", Page: 1, PerPage: 100,
	})
	if err != nil {
		t.Fatalf("per_page=100 must be accepted: %v", err)
	}
	if store.lastLimit != 100 || store.lastOffset != 0 {
		t.Errorf("limit/offset = %d/%d, want 100/0", store.lastLimit, store.lastOffset)
	}
}

func TestSearch_Envelope(t *testing.T) {
	listings := make([]model.Listing, 15)
	for i := range listings {
		listings[i] = model.Listing{Zpid: "z"}
	}
	store := &stubStore{listings: listings, total: 95}
	svc := newTestService(store)

	resp, err := svc.Search(context.Background(), model.SearchRequest{
		Category: "forsale", Page: 5, PerPage: 20,
	})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	if store.lastOffset != 80 {
		t.Errorf("offset = %d, want 80", store.lastOffset)
	}

	p := resp.Pagination
	if p.TotalPages != 5 {
		t.Errorf("totalPages = %d, want 5", p.TotalPages)
	}
	if p.HasNext {
		t.Error("page 5 of 5 must not have a next page")
	}
	if !p.HasPrev {
		t.Error("page 5 of 5 must have a previous page")
	}
	if len(resp.Properties) != 15 {
		t.Errorf("page holds %d rows, want 15", len(resp.Properties))
	}
}

func TestSearch_EmptyResult(t *testing.T) {
	store := &stubStore{total: 0}
	svc := newTestService(store)

	resp, err := svc.Search(context.Background(), model.SearchRequest{
		Category: "rental", Page: 1, PerPage: 20,
	})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	p := resp.Pagination
	if p.TotalPages != 1 || p.HasNext || p.HasPrev {
		t.Errorf("empty set meta = %+v, want totalPages=1 and no neighbors", p)
	}
	if len(resp.Properties) != 0 {
		t.Errorf("empty set returned %d rows", len(resp.Properties))
	}
}

// An inverted range is a valid query that the store answers with zero
// rows; it must not be rejected up front.
func TestSearch_InvertedRangePasses(t *testing.T) {
	store := &stubStore{total: 0}
	svc := newTestService(store)

	_, err := svc.Search(context.Background(), model.SearchRequest{
		Category: "forsale", Page: 1, PerPage: 20,
		Filters: model.SearchFilters{
			MinPrice: float64Ptr(400000),
			MaxPrice: float64Ptr(200000),
		},
	})
	if err != nil {
		t.Fatalf("inverted range must not error: %v", err)
	}
	if store.calls != 1 {
		t.Errorf("store called %d times, want 1", store.calls)
	}
}

func TestSearch_EnrichesListings(t *testing.T) {
	store := &stubStore{
		listings: []model.Listing{{
			Zpid:       "1",
			Price:      float64Ptr(300000),
			LivingArea: float64Ptr(1500),
			DetailURL:  strPtr("/homedetails/1"),
		}},
		total: 1,
	}
	svc := newTestService(store)

	resp, err := svc.Search(context.Background(), model.SearchRequest{
		Category: "forsale", Page: 1, PerPage: 20,
	})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	l := resp.Properties[0]
	if l.PricePerSqft == nil || *l.PricePerSqft != 200 {
		t.Errorf("pricePerSqft = %v, want 200", l.PricePerSqft)
	}
	if l.DetailURL == nil || *l.DetailURL != "https://www.zillow.com/homedetails/1" {
		t.Errorf("detailUrl = %v, want absolute Zillow URL", l.DetailURL)
	}
}

func TestSearch_StorageErrorIsNotValidation(t *testing.T) {
	store := &stubStore{err: errors.New("disk gone")}
	svc := newTestService(store)

	_, err := svc.Search(context.Background(), model.SearchRequest{
		Category: "rental", Page: 1, PerPage: 20,
	})
	if err == nil {
		t.Fatal("expected an error")
	}
	if model.IsValidationError(err) {
		t.Error("storage failure must not surface as a validation error")
	}
}

func TestExport_Validation(t *testing.T) {
	store := &stubStore{}
	svc := newTestService(store)

	if _, err := svc.Export(context.Background(), "commercial", model.SearchFilters{}); err == nil {
		t.Fatal("unknown category must be rejected")
	}
	if store.calls != 0 {
		t.Error("store must not be called for an invalid category")
	}
}
