package service

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"core/internal/model"
)

func TestWriteListingsCSV(t *testing.T) {
	listings := []model.Listing{
		{
			Zpid:       "100",
			Address:    strPtr(`123 Main St, "Unit B", Nashville, TN`),
			Price:      float64Ptr(450000),
			Bedrooms:   float64Ptr(3),
			LivingArea: float64Ptr(1800),
		},
		{Zpid: "101"},
	}

	var buf bytes.Buffer
	if err := WriteListingsCSV(&buf, listings); err != nil {
		t.Fatalf("CSV write failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("got %d records, want header + 2 rows", len(records))
	}
	if records[0][0] != "zpid" || records[0][len(records[0])-1] != "detailUrl" {
		t.Errorf("unexpected header: %v", records[0])
	}
	// Quotes in free text must not break the row structure.
	if !strings.Contains(records[1][1], `"Unit B"`) {
		t.Errorf("address lost its quoting: %q", records[1][1])
	}
	if records[1][2] != "450000" {
		t.Errorf("price column = %q, want 450000", records[1][2])
	}
	// Absent optionals render as empty cells.
	if records[2][1] != "" || records[2][2] != "" {
		t.Errorf("nil fields should be empty, got %v", records[2])
	}
}

func TestWriteListingsCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteListingsCSV(&buf, nil); err != nil {
		t.Fatalf("CSV write failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Errorf("empty export should be header only, got %d lines", len(lines))
	}
}
