package services

import (
	"bytes"
	"strings"
	"testing"

	"rental-dashboard/models"
)

func TestSummaryGenerate(t *testing.T) {
	svc := NewSummaryService(newTestLogger())
	r := svc.Generate(fixture())

	if r.TotalListings != 6 {
		t.Errorf("TotalListings = %d, want 6", r.TotalListings)
	}
	// (1000+1200+2400+1500+3000+2200)/6
	if r.AveragePrice != 1883.33 {
		t.Errorf("AveragePrice = %v, want 1883.33", r.AveragePrice)
	}
	if r.MinPrice != 1000 || r.MaxPrice != 3000 {
		t.Errorf("price range = %v–%v, want 1000–3000", r.MinPrice, r.MaxPrice)
	}
	if r.HighestPriceProvince != "British Columbia" || r.HighestProvincePrice != 2250 {
		t.Errorf("highest province = %s (%v), want British Columbia (2250)", r.HighestPriceProvince, r.HighestProvincePrice)
	}
	if r.LargestSqFeetType != "House" || r.LargestTypeMeanSqFeet != 1500 {
		t.Errorf("largest type = %s (%v), want House (1500)", r.LargestSqFeetType, r.LargestTypeMeanSqFeet)
	}
	if r.MostCommonType != "Apartment" {
		t.Errorf("MostCommonType = %s, want Apartment", r.MostCommonType)
	}
	if r.ListingsByProvince["Alberta"] != 3 {
		t.Errorf("ListingsByProvince[Alberta] = %d, want 3", r.ListingsByProvince["Alberta"])
	}
}

func TestSummaryGenerateEmpty(t *testing.T) {
	r := NewSummaryService(newTestLogger()).Generate(NewTable(nil))
	if r.TotalListings != 0 || r.ListingsByProvince == nil {
		t.Errorf("empty report = %+v", r)
	}
}

func TestSummaryPrint(t *testing.T) {
	svc := NewSummaryService(newTestLogger())

	var buf bytes.Buffer
	svc.Print(&buf, svc.Generate(fixture()))
	out := buf.String()
	for _, want := range []string{"1,883.33", "British Columbia", "Apartment", "Listings by Province"} {
		if !strings.Contains(out, want) {
			t.Errorf("Print output missing %q", want)
		}
	}

	buf.Reset()
	svc.Print(&buf, &models.SummaryReport{})
	if !strings.Contains(buf.String(), "No listings loaded") {
		t.Error("empty report should say no listings loaded")
	}
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.00"},
		{999.5, "999.50"},
		{1234567.891, "1,234,567.89"},
		{-1500, "-1,500.00"},
	}
	for _, tt := range tests {
		if got := FormatMoney(tt.in); got != tt.want {
			t.Errorf("FormatMoney(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
