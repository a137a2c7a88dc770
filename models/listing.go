package models

// RawListing holds one unprocessed row exactly as read from the dataset source.
// Every field is the source's text; the cleaner turns it into a Listing.
type RawListing struct {
	Province   string
	City       string
	Type       string
	Beds       string
	Baths      string
	Price      string
	SqFeet     string
	LeaseTerm  string
	Furnishing string
	Latitude   string
	Longitude  string
}

// Listing is one cleaned rental-property record. Listings are never mutated
// once the table is built.
type Listing struct {
	Province   string  `json:"province"`
	City       string  `json:"city,omitempty"`
	Type       string  `json:"type"`
	Beds       int     `json:"beds"`
	Baths      float64 `json:"baths,omitempty"`
	Price      float64 `json:"price"`
	SqFeet     float64 `json:"sq_feet"`
	LeaseTerm  string  `json:"lease_term"`
	Furnishing string  `json:"furnishing,omitempty"`
	Latitude   float64 `json:"latitude,omitempty"`
	Longitude  float64 `json:"longitude,omitempty"`
}

// HasLocation reports whether the listing carries usable coordinates.
func (l Listing) HasLocation() bool {
	return l.Latitude != 0 || l.Longitude != 0
}
