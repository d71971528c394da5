package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"core/internal/model"
)

// exportHeader matches the column order of the search projection.
var exportHeader = []string{
	"zpid", "address", "price", "bedrooms", "bathrooms", "livingArea",
	"propertyType", "latitude", "longitude", "daysOnZillow",
	"listingStatus", "detailUrl",
}

// WriteListingsCSV renders listings as delimited text. Values are
// written through encoding/csv, so free-text fields cannot break the
// row structure.
func WriteListingsCSV(w io.Writer, listings []model.Listing) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, l := range listings {
		record := []string{
			l.Zpid,
			strDeref(l.Address),
			floatDeref(l.Price),
			floatDeref(l.Bedrooms),
			floatDeref(l.Bathrooms),
			floatDeref(l.LivingArea),
			strDeref(l.PropertyType),
			floatDeref(l.Latitude),
			floatDeref(l.Longitude),
			intDeref(l.DaysOnZillow),
			strDeref(l.ListingStatus),
			strDeref(l.DetailURL),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func strDeref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func floatDeref(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func intDeref(i *int) string {
	if i == nil {
		return ""
	}
	return strconv.Itoa(*i)
}
