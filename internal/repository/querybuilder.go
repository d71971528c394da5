package repository

import (
	"strings"

	"core/internal/model"
)

// partitionTables maps public category values onto physical tables. The
// category never reaches SQL text directly; anything outside this map
// is rejected before a query is built.
var partitionTables = map[string]string{
	model.CategoryForSale: "BNA_FORSALE",
	model.CategoryRental:  "BNA_RENTALS",
}

// TableForCategory resolves a property category to its partition table.
func TableForCategory(category string) (string, bool) {
	table, ok := partitionTables[strings.ToLower(category)]
	return table, ok
}

// listingColumns is the projection shared by search, export and the
// dashboard. Kept in one place so every path returns the same shape.
const listingColumns = `zpid, address, price, bedrooms, bathrooms, livingArea,
	propertyType, latitude, longitude, imgSrc, detailUrl,
	daysOnZillow, listingStatus`

// listingOrder keeps pagination deterministic: price descending with
// zpid as a unique tie-break, so identical queries never return
// overlapping or missing rows across pages.
const listingOrder = "price DESC, zpid"

// buildListingPredicate turns a filter set into WHERE text plus the
// bound arguments, one clause per present filter, joined with AND.
// Every user value travels as a parameter; the text itself is built
// only from fixed fragments. No filters yields the tautology so the
// caller can splice the result unconditionally.
func buildListingPredicate(f model.SearchFilters) (string, []interface{}) {
	var (
		clauses []string
		args    []interface{}
	)

	if f.MinPrice != nil {
		clauses = append(clauses, "price >= ?")
		args = append(args, *f.MinPrice)
	}
	if f.MaxPrice != nil {
		clauses = append(clauses, "price <= ?")
		args = append(args, *f.MaxPrice)
	}
	if f.MinBeds != nil {
		clauses = append(clauses, "bedrooms >= ?")
		args = append(args, *f.MinBeds)
	}
	if f.MaxBeds != nil {
		clauses = append(clauses, "bedrooms <= ?")
		args = append(args, *f.MaxBeds)
	}
	if f.MinBaths != nil {
		clauses = append(clauses, "bathrooms >= ?")
		args = append(args, *f.MinBaths)
	}
	if f.MaxBaths != nil {
		clauses = append(clauses, "bathrooms <= ?")
		args = append(args, *f.MaxBaths)
	}
	if f.MinSqft != nil {
		clauses = append(clauses, "livingArea >= ?")
		args = append(args, *f.MinSqft)
	}
	if f.MaxSqft != nil {
		clauses = append(clauses, "livingArea <= ?")
		args = append(args, *f.MaxSqft)
	}
	// The snapshot has no dedicated city or zip column; both match as
	// substrings of the stored address, city case-insensitively.
	if f.City != nil {
		clauses = append(clauses, "LOWER(address) LIKE ?")
		args = append(args, "%"+strings.ToLower(*f.City)+"%")
	}
	if f.ZipCode != nil {
		clauses = append(clauses, "address LIKE ?")
		args = append(args, "%"+*f.ZipCode+"%")
	}

	if len(clauses) == 0 {
		return "1=1", nil
	}
	return strings.Join(clauses, " AND "), args
}

// buildFredPredicate does the same for the FRED metrics table.
func buildFredPredicate(f model.FredFilters) (string, []interface{}) {
	var (
		clauses []string
		args    []interface{}
	)

	if f.MetricName != nil {
		clauses = append(clauses, "metric_name = ?")
		args = append(args, *f.MetricName)
	}
	if f.SeriesID != nil {
		clauses = append(clauses, "series_id = ?")
		args = append(args, *f.SeriesID)
	}
	if f.StartDate != nil {
		clauses = append(clauses, "date >= ?")
		args = append(args, *f.StartDate)
	}
	if f.EndDate != nil {
		clauses = append(clauses, "date <= ?")
		args = append(args, *f.EndDate)
	}

	if len(clauses) == 0 {
		return "1=1", nil
	}
	return strings.Join(clauses, " AND "), args
}
