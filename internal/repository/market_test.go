package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"core/internal/model"
)

// newTestMarket builds a small snapshot with a known shape: 25 for-sale
// rows at descending prices and 3 rentals.
func newTestMarket(t *testing.T) *MarketRepository {
	t.Helper()

	repo, err := NewMarketRepository(filepath.Join(t.TempDir(), "market.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	schema := `
		CREATE TABLE %s (
			zpid TEXT PRIMARY KEY,
			address TEXT,
			price REAL,
			bedrooms REAL,
			bathrooms REAL,
			livingArea REAL,
			propertyType TEXT,
			latitude REAL,
			longitude REAL,
			imgSrc TEXT,
			detailUrl TEXT,
			daysOnZillow INTEGER,
			listingStatus TEXT
		)`
	for _, table := range []string{"BNA_FORSALE", "BNA_RENTALS"} {
		if _, err := repo.db.Exec(fmt.Sprintf(schema, table)); err != nil {
			t.Fatalf("failed to create %s: %v", table, err)
		}
	}
	if _, err := repo.db.Exec(`
		CREATE TABLE BNA_FRED_METRICS (
			date TEXT,
			metric_name TEXT,
			series_id TEXT,
			value REAL
		)`); err != nil {
		t.Fatalf("failed to create metrics table: %v", err)
	}

	insert := `INSERT INTO %s (zpid, address, price, bedrooms, bathrooms, livingArea, propertyType, detailUrl, listingStatus)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for i := 0; i < 25; i++ {
		_, err := repo.db.Exec(fmt.Sprintf(insert, "BNA_FORSALE"),
			fmt.Sprintf("fs-%02d", i),
			fmt.Sprintf("%d Main St, Nashville, TN 372%02d", 100+i, i%5),
			float64(500000-i*10000),
			float64(2+i%3),
			float64(1+i%2),
			float64(1000+i*50),
			"SINGLE_FAMILY",
			"/homedetails/fs-"+fmt.Sprint(i),
			"FOR_SALE",
		)
		if err != nil {
			t.Fatalf("failed to seed for-sale row %d: %v", i, err)
		}
	}
	for i := 0; i < 3; i++ {
		_, err := repo.db.Exec(fmt.Sprintf(insert, "BNA_RENTALS"),
			fmt.Sprintf("rn-%02d", i),
			fmt.Sprintf("%d Broadway, Franklin, TN 37064", 200+i),
			float64(1500+i*250),
			2.0, 1.0, 900.0,
			"APARTMENT",
			"https://www.zillow.com/homedetails/rn-"+fmt.Sprint(i),
			"FOR_RENT",
		)
		if err != nil {
			t.Fatalf("failed to seed rental row %d: %v", i, err)
		}
	}

	metrics := []struct {
		date, name, series string
		value              float64
	}{
		{"2024-06-01", "median_price", "MEDLISPRI34980", 459000},
		{"2024-05-01", "median_price", "MEDLISPRI34980", 455000},
		{"2024-06-01", "active_listings", "ACTLISCOU34980", 8123},
	}
	for _, m := range metrics {
		if _, err := repo.db.Exec(
			"INSERT INTO BNA_FRED_METRICS (date, metric_name, series_id, value) VALUES (?, ?, ?, ?)",
			m.date, m.name, m.series, m.value,
		); err != nil {
			t.Fatalf("failed to seed metric: %v", err)
		}
	}

	return repo
}

func TestSearchListings_CountMatchesFetch(t *testing.T) {
	repo := newTestMarket(t)
	ctx := context.Background()

	listings, total, err := repo.SearchListings(ctx, "forsale", model.SearchFilters{}, 100, 0)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if total != 25 {
		t.Errorf("total = %d, want 25", total)
	}
	if len(listings) != 25 {
		t.Errorf("fetched %d rows, want 25", len(listings))
	}
}

func TestSearchListings_Pagination(t *testing.T) {
	repo := newTestMarket(t)
	ctx := context.Background()

	// 25 rows, 10 per page: the last page holds 5.
	listings, total, err := repo.SearchListings(ctx, "forsale", model.SearchFilters{}, 10, 20)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if total != 25 {
		t.Errorf("total = %d, want 25", total)
	}
	if len(listings) != 5 {
		t.Errorf("last page holds %d rows, want 5", len(listings))
	}

	// A page past the end is a valid empty request.
	listings, total, err = repo.SearchListings(ctx, "forsale", model.SearchFilters{}, 10, 30)
	if err != nil {
		t.Fatalf("out-of-range page errored: %v", err)
	}
	if total != 25 || len(listings) != 0 {
		t.Errorf("out-of-range page: total=%d rows=%d, want 25/0", total, len(listings))
	}
}

func TestSearchListings_DeterministicOrder(t *testing.T) {
	repo := newTestMarket(t)
	ctx := context.Background()

	// Paging through in windows of 10 must visit each zpid exactly once.
	seen := map[string]bool{}
	for offset := 0; offset < 30; offset += 10 {
		listings, _, err := repo.SearchListings(ctx, "forsale", model.SearchFilters{}, 10, offset)
		if err != nil {
			t.Fatalf("search failed at offset %d: %v", offset, err)
		}
		for _, l := range listings {
			if seen[l.Zpid] {
				t.Fatalf("zpid %s returned twice across pages", l.Zpid)
			}
			seen[l.Zpid] = true
		}
	}
	if len(seen) != 25 {
		t.Errorf("paging visited %d distinct rows, want 25", len(seen))
	}

	// Prices descend within a page.
	listings, _, _ := repo.SearchListings(ctx, "forsale", model.SearchFilters{}, 25, 0)
	for i := 1; i < len(listings); i++ {
		if *listings[i].Price > *listings[i-1].Price {
			t.Fatalf("ordering broken at index %d", i)
		}
	}
}

func TestSearchListings_Filters(t *testing.T) {
	repo := newTestMarket(t)
	ctx := context.Background()

	min, max := 300000.0, 400000.0
	listings, total, err := repo.SearchListings(ctx, "forsale",
		model.SearchFilters{MinPrice: &min, MaxPrice: &max}, 100, 0)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if total != len(listings) {
		t.Errorf("count (%d) disagrees with fetch (%d)", total, len(listings))
	}
	for _, l := range listings {
		if *l.Price < min || *l.Price > max {
			t.Errorf("listing %s price %.0f outside [%.0f, %.0f]", l.Zpid, *l.Price, min, max)
		}
	}

	city := "franklin"
	listings, total, err = repo.SearchListings(ctx, "rental",
		model.SearchFilters{City: &city}, 100, 0)
	if err != nil {
		t.Fatalf("city search failed: %v", err)
	}
	if total != 3 || len(listings) != 3 {
		t.Errorf("city match: total=%d rows=%d, want 3/3", total, len(listings))
	}
}

func TestSearchListings_InvertedRangeIsEmpty(t *testing.T) {
	repo := newTestMarket(t)

	min, max := 400000.0, 200000.0
	listings, total, err := repo.SearchListings(context.Background(), "forsale",
		model.SearchFilters{MinPrice: &min, MaxPrice: &max}, 100, 0)
	if err != nil {
		t.Fatalf("inverted range must not error: %v", err)
	}
	if total != 0 || len(listings) != 0 {
		t.Errorf("inverted range: total=%d rows=%d, want 0/0", total, len(listings))
	}
}

func TestSearchListings_UnknownCategory(t *testing.T) {
	repo := newTestMarket(t)

	if _, _, err := repo.SearchListings(context.Background(), "commercial", model.SearchFilters{}, 10, 0); err == nil {
		t.Fatal("unknown category must fail before querying")
	}
}

func TestExportListings(t *testing.T) {
	repo := newTestMarket(t)

	beds := 3
	listings, err := repo.ExportListings(context.Background(), "forsale",
		model.SearchFilters{MinBeds: &beds})
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if len(listings) == 0 {
		t.Fatal("expected matching rows")
	}
	for _, l := range listings {
		if *l.Bedrooms < float64(beds) {
			t.Errorf("listing %s has %.0f bedrooms, want >= %d", l.Zpid, *l.Bedrooms, beds)
		}
	}
}

func TestPartitionStats(t *testing.T) {
	repo := newTestMarket(t)

	stats, err := repo.PartitionStats(context.Background(), "rental")
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.Count != 3 {
		t.Errorf("count = %d, want 3", stats.Count)
	}
	if stats.AvgPrice == nil || *stats.AvgPrice != 1750 {
		t.Errorf("avg price = %v, want 1750", stats.AvgPrice)
	}
}

func TestFredMetrics(t *testing.T) {
	repo := newTestMarket(t)
	ctx := context.Background()

	metrics, err := repo.FredMetrics(ctx, model.FredFilters{})
	if err != nil {
		t.Fatalf("metrics failed: %v", err)
	}
	if len(metrics) != 3 {
		t.Fatalf("got %d metrics, want 3", len(metrics))
	}
	// Newest first.
	if metrics[0].Date != "2024-06-01" {
		t.Errorf("first metric date = %s, want 2024-06-01", metrics[0].Date)
	}

	name := "median_price"
	metrics, err = repo.FredMetrics(ctx, model.FredFilters{MetricName: &name})
	if err != nil {
		t.Fatalf("filtered metrics failed: %v", err)
	}
	if len(metrics) != 2 {
		t.Errorf("got %d median_price observations, want 2", len(metrics))
	}
}
