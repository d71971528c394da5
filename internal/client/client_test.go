package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"core/internal/model"
)

func TestClientSearch_QueryParams(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_ = json.NewEncoder(w).Encode(model.SearchResponse{
			Properties: []model.Listing{{Zpid: "z1"}},
			Pagination: model.Pagination{Page: 2, PerPage: 10, TotalCount: 42, TotalPages: 5, HasNext: true, HasPrev: true},
		})
	}))
	defer srv.Close()

	minPrice := 250000.0
	maxBeds := 4
	city := "Franklin"
	c := NewClient(srv.URL)
	resp, err := c.Search(context.Background(), model.SearchRequest{
		Category: "forsale",
		Page:     2,
		PerPage:  10,
		Filters: model.SearchFilters{
			MinPrice: &minPrice,
			MaxBeds:  &maxBeds,
			City:     &city,
		},
	})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	want := map[string]string{
		"property_type": "forsale",
		"page":          "2",
		"per_page":      "10",
		"min_price":     "250000",
		"max_beds":      "4",
		"city":          "Franklin",
	}
	for k, v := range want {
		if gotQuery.Get(k) != v {
			t.Errorf("query %s = %q, want %q", k, gotQuery.Get(k), v)
		}
	}
	if gotQuery.Has("max_price") {
		t.Error("unset filter max_price should be omitted")
	}

	if len(resp.Properties) != 1 || resp.Properties[0].Zpid != "z1" {
		t.Errorf("properties = %+v", resp.Properties)
	}
	if !resp.Pagination.HasNext || resp.Pagination.TotalCount != 42 {
		t.Errorf("pagination = %+v", resp.Pagination)
	}
}

func TestClientSearch_BadRequestIsValidationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "per_page must be between 1 and 100"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Search(context.Background(), model.SearchRequest{Category: "forsale", Page: 1, PerPage: 500})
	if err == nil {
		t.Fatal("expected an error")
	}
	if !model.IsValidationError(err) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestClientSearch_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Search(context.Background(), model.SearchRequest{Category: "forsale", Page: 1, PerPage: 20})
	if err == nil {
		t.Fatal("expected an error")
	}
	if model.IsValidationError(err) {
		t.Error("server errors must not look like validation errors")
	}
}
