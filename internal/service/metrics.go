package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"core/internal/model"
)

// MetricStore is the slice of the market repository the metrics and
// dashboard services need.
type MetricStore interface {
	FredMetrics(ctx context.Context, filters model.FredFilters) ([]model.FredMetric, error)
	PartitionStats(ctx context.Context, category string) (model.PartitionStats, error)
	TopListings(ctx context.Context, category string, limit int) ([]model.Listing, error)
	LastUpdated() *time.Time
}

// fredKPIMap maps stored metric names to the dashboard KPI keys.
var fredKPIMap = map[string]string{
	"median_price":          "medianPrice",
	"active_listings":       "activeListings",
	"median_dom":            "medianDaysOnMarket",
	"msa_per_capita_income": "perCapitaIncome",
}

// dashboardListingLimit caps the per-partition listing sample on the
// dashboard.
const dashboardListingLimit = 100

// MetricsService serves the FRED indicator series and the combined
// dashboard payload.
type MetricsService struct {
	store  MetricStore
	logger *slog.Logger
}

// NewMetricsService creates a new metrics service.
func NewMetricsService(store MetricStore, logger *slog.Logger) *MetricsService {
	return &MetricsService{
		store:  store,
		logger: logger.With("component", "metrics"),
	}
}

// FredMetrics returns indicator observations matching the filters.
func (s *MetricsService) FredMetrics(ctx context.Context, filters model.FredFilters) ([]model.FredMetric, error) {
	metrics, err := s.store.FredMetrics(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("metrics query failed: %w", err)
	}

	s.logger.InfoContext(ctx, "FRED metrics query executed", slog.Int("count", len(metrics)))
	return metrics, nil
}

// Dashboard assembles the single-call dashboard payload: partition
// KPIs, top listings per partition, the full FRED series and its
// latest-value KPIs.
func (s *MetricsService) Dashboard(ctx context.Context) (*model.Dashboard, error) {
	rentalStats, err := s.store.PartitionStats(ctx, model.CategoryRental)
	if err != nil {
		return nil, fmt.Errorf("rental stats failed: %w", err)
	}
	forSaleStats, err := s.store.PartitionStats(ctx, model.CategoryForSale)
	if err != nil {
		return nil, fmt.Errorf("for-sale stats failed: %w", err)
	}

	rentals, err := s.store.TopListings(ctx, model.CategoryRental, dashboardListingLimit)
	if err != nil {
		return nil, fmt.Errorf("rental listings failed: %w", err)
	}
	forSale, err := s.store.TopListings(ctx, model.CategoryForSale, dashboardListingLimit)
	if err != nil {
		return nil, fmt.Errorf("for-sale listings failed: %w", err)
	}
	for i := range rentals {
		rentals[i].Enrich()
	}
	for i := range forSale {
		forSale[i].Enrich()
	}

	metrics, err := s.store.FredMetrics(ctx, model.FredFilters{})
	if err != nil {
		return nil, fmt.Errorf("metrics query failed: %w", err)
	}

	// The series is ordered newest first, so the first observation per
	// metric is its latest value.
	fredKPIs := map[string]float64{}
	seen := map[string]bool{}
	for _, m := range metrics {
		if seen[m.MetricName] || m.Value == nil {
			continue
		}
		seen[m.MetricName] = true
		if kpi, ok := fredKPIMap[m.MetricName]; ok {
			fredKPIs[kpi] = *m.Value
		}
	}

	var lastUpdated *string
	if t := s.store.LastUpdated(); t != nil {
		v := t.Format(time.RFC3339)
		lastUpdated = &v
	}

	return &model.Dashboard{
		PropertyKPIs: model.PropertyKPIs{
			TotalRentalListings:  rentalStats.Count,
			AvgRentalPrice:       rentalStats.AvgPrice,
			TotalForSaleListings: forSaleStats.Count,
			AvgSalePrice:         forSaleStats.AvgPrice,
		},
		FredKPIs:    fredKPIs,
		Rentals:     rentals,
		ForSale:     forSale,
		FredMetrics: metrics,
		LastUpdated: lastUpdated,
	}, nil
}
