package repository

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // SQLite driver

	"core/internal/model"
)

// MarketRepository reads the market snapshot: listing partitions and
// the FRED metric series. The snapshot file is produced by an external
// ETL process and is never written from here; the shared handle only
// has to tolerate concurrent readers.
type MarketRepository struct {
	db   *sqlx.DB
	path string
}

// NewMarketRepository opens the market data file.
func NewMarketRepository(path string) (*MarketRepository, error) {
	db, err := sqlx.Connect("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open market database: %w", err)
	}

	return &MarketRepository{db: db, path: path}, nil
}

// Close closes the database handle.
func (r *MarketRepository) Close() error {
	return r.db.Close()
}

// LastUpdated returns the snapshot's refresh time, taken from the
// data file's modification time.
func (r *MarketRepository) LastUpdated() *time.Time {
	info, err := os.Stat(r.path)
	if err != nil {
		return nil
	}
	t := info.ModTime().UTC()
	return &t
}

// SearchListings runs the count and fetch phases of one search over
// the selected partition. Both phases share the predicate built from
// the filter set, so the reported total always matches the page
// windows actually returned.
func (r *MarketRepository) SearchListings(
	ctx context.Context,
	category string,
	filters model.SearchFilters,
	limit, offset int,
) ([]model.Listing, int, error) {
	table, ok := TableForCategory(category)
	if !ok {
		return nil, 0, fmt.Errorf("unknown property category %q", category)
	}

	where, args := buildListingPredicate(filters)

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", table, where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count listings: %w", err)
	}

	fetchQuery := fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s ORDER BY %s LIMIT ? OFFSET ?",
		listingColumns, table, where, listingOrder,
	)
	fetchArgs := append(args, limit, offset)

	listings := []model.Listing{}
	if err := r.db.SelectContext(ctx, &listings, fetchQuery, fetchArgs...); err != nil {
		return nil, 0, fmt.Errorf("failed to fetch listings: %w", err)
	}

	return listings, total, nil
}

// ExportListings returns the full matching set for CSV export, same
// predicate and ordering as SearchListings but without pagination.
func (r *MarketRepository) ExportListings(
	ctx context.Context,
	category string,
	filters model.SearchFilters,
) ([]model.Listing, error) {
	table, ok := TableForCategory(category)
	if !ok {
		return nil, fmt.Errorf("unknown property category %q", category)
	}

	where, args := buildListingPredicate(filters)
	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s ORDER BY %s",
		listingColumns, table, where, listingOrder,
	)

	listings := []model.Listing{}
	if err := r.db.SelectContext(ctx, &listings, query, args...); err != nil {
		return nil, fmt.Errorf("failed to export listings: %w", err)
	}

	return listings, nil
}

// TopListings returns the highest-priced listings of a partition for
// the dashboard view.
func (r *MarketRepository) TopListings(ctx context.Context, category string, limit int) ([]model.Listing, error) {
	table, ok := TableForCategory(category)
	if !ok {
		return nil, fmt.Errorf("unknown property category %q", category)
	}

	query := fmt.Sprintf(
		"SELECT %s FROM %s ORDER BY %s LIMIT ?",
		listingColumns, table, listingOrder,
	)

	listings := []model.Listing{}
	if err := r.db.SelectContext(ctx, &listings, query, limit); err != nil {
		return nil, fmt.Errorf("failed to fetch top listings: %w", err)
	}

	return listings, nil
}

// PartitionStats returns the listing count and average price of one
// partition, ignoring rows without a usable price.
func (r *MarketRepository) PartitionStats(ctx context.Context, category string) (model.PartitionStats, error) {
	table, ok := TableForCategory(category)
	if !ok {
		return model.PartitionStats{}, fmt.Errorf("unknown property category %q", category)
	}

	query := fmt.Sprintf(
		"SELECT COUNT(*) AS count, AVG(price) AS avg_price FROM %s WHERE price IS NOT NULL AND price > 0",
		table,
	)

	var row struct {
		Count    int      `db:"count"`
		AvgPrice *float64 `db:"avg_price"`
	}
	if err := r.db.GetContext(ctx, &row, query); err != nil {
		return model.PartitionStats{}, fmt.Errorf("failed to read partition stats: %w", err)
	}

	return model.PartitionStats{Count: row.Count, AvgPrice: row.AvgPrice}, nil
}

// FredMetrics returns metric observations matching the optional
// filters, newest first.
func (r *MarketRepository) FredMetrics(ctx context.Context, filters model.FredFilters) ([]model.FredMetric, error) {
	where, args := buildFredPredicate(filters)
	query := fmt.Sprintf(
		"SELECT date, metric_name, series_id, value FROM BNA_FRED_METRICS WHERE %s ORDER BY date DESC, metric_name",
		where,
	)

	metrics := []model.FredMetric{}
	if err := r.db.SelectContext(ctx, &metrics, query, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch FRED metrics: %w", err)
	}

	return metrics, nil
}
