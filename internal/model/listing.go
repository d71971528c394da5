package model

import "strings"

// Listing represents one property observation from the market snapshot.
// All optional columns are pointers so that NULLs survive the round trip
// from the data file to the JSON response.
type Listing struct {
	Zpid          string   `json:"zpid" db:"zpid"`
	Address       *string  `json:"address" db:"address"`
	Price         *float64 `json:"price" db:"price"`
	Bedrooms      *float64 `json:"bedrooms" db:"bedrooms"`
	Bathrooms     *float64 `json:"bathrooms" db:"bathrooms"`
	LivingArea    *float64 `json:"livingArea" db:"livingArea"`
	PropertyType  *string  `json:"propertyType" db:"propertyType"`
	Latitude      *float64 `json:"latitude" db:"latitude"`
	Longitude     *float64 `json:"longitude" db:"longitude"`
	ImgSrc        *string  `json:"imgSrc" db:"imgSrc"`
	DetailURL     *string  `json:"detailUrl" db:"detailUrl"`
	DaysOnZillow  *int     `json:"daysOnZillow" db:"daysOnZillow"`
	ListingStatus *string  `json:"listingStatus" db:"listingStatus"`
	PricePerSqft  *float64 `json:"pricePerSqft" db:"-"`
}

// Enrich fills the derived fields: price per square foot and an
// absolute detail URL (the snapshot stores Zillow paths relative).
func (l *Listing) Enrich() {
	if l.Price != nil && l.LivingArea != nil && *l.LivingArea > 0 {
		v := float64(int(*l.Price / *l.LivingArea * 100)) / 100
		l.PricePerSqft = &v
	}
	if l.DetailURL != nil && *l.DetailURL != "" && !strings.HasPrefix(*l.DetailURL, "http") {
		u := "https://www.zillow.com" + *l.DetailURL
		l.DetailURL = &u
	}
}

// FredMetric is one observation of a FRED economic indicator series.
type FredMetric struct {
	Date       string   `json:"date" db:"date"`
	MetricName string   `json:"metricName" db:"metric_name"`
	SeriesID   string   `json:"seriesId" db:"series_id"`
	Value      *float64 `json:"value" db:"value"`
}

// FredFilters are the optional predicates for the FRED metrics endpoint.
type FredFilters struct {
	MetricName *string
	SeriesID   *string
	StartDate  *string
	EndDate    *string
}

// PartitionStats are aggregate KPIs for one listing partition.
type PartitionStats struct {
	Count    int      `json:"count"`
	AvgPrice *float64 `json:"avgPrice"`
}

// Dashboard is the single-call payload for the dashboard view.
type Dashboard struct {
	PropertyKPIs PropertyKPIs       `json:"propertyKPIs"`
	FredKPIs     map[string]float64 `json:"fredKPIs"`
	Rentals      []Listing          `json:"rentals"`
	ForSale      []Listing          `json:"forsale"`
	FredMetrics  []FredMetric       `json:"fredMetrics"`
	LastUpdated  *string            `json:"lastUpdated"`
}

// PropertyKPIs are the headline listing aggregates.
type PropertyKPIs struct {
	TotalRentalListings  int      `json:"totalRentalListings"`
	AvgRentalPrice       *float64 `json:"avgRentalPrice"`
	TotalForSaleListings int      `json:"totalForSaleListings"`
	AvgSalePrice         *float64 `json:"avgSalePrice"`
}
