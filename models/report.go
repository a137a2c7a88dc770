package models

// SummaryReport holds the headline figures shown on the summary page.
type SummaryReport struct {
	TotalListings         int            `json:"total_listings"`
	AveragePrice          float64        `json:"average_price"`
	MinPrice              float64        `json:"min_price"`
	MaxPrice              float64        `json:"max_price"`
	HighestPriceProvince  string         `json:"highest_price_province"`
	HighestProvincePrice  float64        `json:"highest_province_price"`
	LargestSqFeetType     string         `json:"largest_sq_feet_type"`
	LargestTypeMeanSqFeet float64        `json:"largest_type_mean_sq_feet"`
	MostCommonType        string         `json:"most_common_type"`
	ListingsByProvince    map[string]int `json:"listings_by_province"`
}

// ColumnInfo describes one column of the loaded table on the raw-data page.
type ColumnInfo struct {
	Name   string `json:"name"`
	DType  string `json:"dtype"`
	Unique int    `json:"unique"`
}

// Overview is the raw-data page: shape, per-column facts and a describe() grid.
type Overview struct {
	Rows     int          `json:"rows"`
	Columns  []ColumnInfo `json:"columns"`
	Describe [][]string   `json:"describe"`
}
