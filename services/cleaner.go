package services

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"rental-dashboard/models"
	"rental-dashboard/utils"
)

var (
	// numberRegexp captures the first numeric value, thousands separators included
	numberRegexp = regexp.MustCompile(`-?\d[\d,]*(?:\.\d+)?|-?\.\d+`)
	// studioRegexp matches bed counts written as a word rather than a number
	studioRegexp = regexp.MustCompile(`(?i)\b(studio|bachelor)\b`)
)

// missingTokens are cell values the source uses for "no value".
var missingTokens = map[string]struct{}{
	"": {}, "nan": {}, "na": {}, "n/a": {}, "null": {}, "none": {}, "<nil>": {},
}

// Cleaner transforms RawListings into clean, validated Listings.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Clean converts raw rows and drops the ones that cannot be charted: rows
// without a province or type and rows whose price is missing or negative.
// Unknown bed counts become -1 and unknown square footage becomes 0.
func (c *Cleaner) Clean(raw []*models.RawListing) []models.Listing {
	result := make([]models.Listing, 0, len(raw))

	for i, r := range raw {
		province := normaliseText(r.Province)
		typ := normaliseText(r.Type)
		if province == "" || typ == "" {
			c.logger.Debug("[cleaner] Row %d dropped: missing province or type", i+1)
			continue
		}

		price, ok := parseNumber(r.Price)
		if !ok || price < 0 {
			c.logger.Debug("[cleaner] Row %d dropped: invalid price %q", i+1, r.Price)
			continue
		}

		sqFeet, ok := parseNumber(r.SqFeet)
		if !ok || sqFeet < 0 {
			sqFeet = 0
		}
		baths, ok := parseNumber(r.Baths)
		if !ok || baths < 0 {
			baths = 0
		}
		lat, _ := parseNumber(r.Latitude)
		lon, _ := parseNumber(r.Longitude)

		result = append(result, models.Listing{
			Province:   province,
			City:       normaliseText(r.City),
			Type:       typ,
			Beds:       parseBeds(r.Beds),
			Baths:      baths,
			Price:      price,
			SqFeet:     sqFeet,
			LeaseTerm:  normaliseText(r.LeaseTerm),
			Furnishing: normaliseText(r.Furnishing),
			Latitude:   lat,
			Longitude:  lon,
		})
	}

	c.logger.Info("[cleaner] Cleaned %d → %d listings (dropped %d)",
		len(raw), len(result), len(raw)-len(result))
	return result
}

// parseNumber extracts the first number from a cell.
// Examples:
//
//	"$1,200"      → 1200
//	"850 sq.ft."  → 850
//	"NaN"         → not ok
func parseNumber(raw string) (float64, bool) {
	if isMissing(raw) {
		return 0, false
	}
	match := numberRegexp.FindString(raw)
	if match == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", ""), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// parseBeds reads a bed count. "Studio" counts as 0; unreadable values are -1.
func parseBeds(raw string) int {
	if isMissing(raw) {
		return -1
	}
	if studioRegexp.MatchString(raw) {
		return 0
	}
	v, ok := parseNumber(raw)
	if !ok || v < 0 {
		return -1
	}
	return int(v)
}

func isMissing(raw string) bool {
	_, missing := missingTokens[strings.ToLower(strings.TrimSpace(raw))]
	return missing
}

// normaliseText strips leading/trailing whitespace and collapses internal
// whitespace. Missing-value tokens become "".
func normaliseText(s string) string {
	if isMissing(s) {
		return ""
	}
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}
