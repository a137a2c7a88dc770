package services

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"rental-dashboard/models"
	"rental-dashboard/utils"
)

// SummaryService computes the headline figures of the summary page.
type SummaryService struct {
	logger *utils.Logger
}

func NewSummaryService(logger *utils.Logger) *SummaryService {
	return &SummaryService{logger: logger}
}

// Generate builds the summary report. An empty table yields a zero report.
func (s *SummaryService) Generate(t *Table) *models.SummaryReport {
	report := &models.SummaryReport{
		ListingsByProvince: make(map[string]int),
	}
	if t.Len() == 0 {
		return report
	}

	report.TotalListings = t.Len()

	var total float64
	report.MinPrice = math.Inf(1)
	report.MaxPrice = math.Inf(-1)
	for i := 0; i < t.Len(); i++ {
		l := t.Row(i)
		total += l.Price
		report.MinPrice = math.Min(report.MinPrice, l.Price)
		report.MaxPrice = math.Max(report.MaxPrice, l.Price)
		report.ListingsByProvince[l.Province]++
	}
	report.AveragePrice = round2(total / float64(t.Len()))

	if top, ok := maxAggregate(GroupMean(t, models.ColProvince, models.ColPrice)); ok {
		report.HighestPriceProvince = top.Group
		report.HighestProvincePrice = round2(top.Value)
	}
	if top, ok := maxAggregate(GroupMean(t, models.ColType, models.ColSqFeet)); ok {
		report.LargestSqFeetType = top.Group
		report.LargestTypeMeanSqFeet = round2(top.Value)
	}
	if freq := CategoricalFrequency(t, models.ColType); len(freq) > 0 {
		report.MostCommonType = freq[0].Category
	}

	s.logger.Debug("[summary] %d listings, mean price %.2f", report.TotalListings, report.AveragePrice)
	return report
}

// Print writes the report to w in the terminal layout used by -summary.
func (s *SummaryService) Print(w io.Writer, r *models.SummaryReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  📊 CANADIAN RENTAL PRICE SUMMARY\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	fmt.Fprintf(w, "\033[1;33m  Key Findings\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if r.TotalListings == 0 {
		fmt.Fprintf(w, "  No listings loaded\n\n")
		fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)
		return
	}
	fmt.Fprintf(w, "  Total listings          : \033[1m%d\033[0m\n", r.TotalListings)
	fmt.Fprintf(w, "  Average rental price    : \033[1;32m$%s\033[0m\n", FormatMoney(r.AveragePrice))
	fmt.Fprintf(w, "  Price range             : $%s – $%s\n", FormatMoney(r.MinPrice), FormatMoney(r.MaxPrice))
	fmt.Fprintf(w, "  Most expensive province : \033[1m%s\033[0m ($%s avg)\n", r.HighestPriceProvince, FormatMoney(r.HighestProvincePrice))
	if r.LargestSqFeetType != "" {
		fmt.Fprintf(w, "  Largest type by sq ft   : \033[1m%s\033[0m (%.0f sq ft avg)\n", r.LargestSqFeetType, r.LargestTypeMeanSqFeet)
	}
	fmt.Fprintf(w, "  Most common type        : \033[1m%s\033[0m\n", r.MostCommonType)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Listings by Province\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)

	type provCount struct {
		province string
		count    int
	}
	provs := make([]provCount, 0, len(r.ListingsByProvince))
	for p, c := range r.ListingsByProvince {
		provs = append(provs, provCount{p, c})
	}
	sort.Slice(provs, func(i, j int) bool {
		if provs[i].count != provs[j].count {
			return provs[i].count > provs[j].count
		}
		return provs[i].province < provs[j].province
	})
	maxCount := provs[0].count
	for _, pc := range provs {
		width := int(math.Ceil(float64(pc.count) / float64(maxCount) * 30))
		fmt.Fprintf(w, "  %-26s %s (%d)\n", truncate(pc.province, 24), strings.Repeat("█", width), pc.count)
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

func maxAggregate(aggs []models.Aggregate) (models.Aggregate, bool) {
	if len(aggs) == 0 {
		return models.Aggregate{}, false
	}
	top := aggs[0]
	for _, a := range aggs[1:] {
		if a.Value > top.Value {
			top = a
		}
	}
	return top, true
}

// FormatMoney renders 1234567.891 as "1,234,567.89".
func FormatMoney(v float64) string {
	s := fmt.Sprintf("%.2f", math.Abs(v))
	intPart, frac := s[:len(s)-3], s[len(s)-3:]
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if v < 0 {
		return "-" + b.String() + frac
	}
	return b.String() + frac
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
