package services

import (
	"errors"
	"fmt"
	"strconv"

	"rental-dashboard/models"
	"rental-dashboard/utils"
)

// ChartID names one view of the dashboard.
type ChartID string

const (
	ChartPricePerProvince ChartID = "price-per-province"
	ChartMap              ChartID = "map"
	ChartPricePerType     ChartID = "price-per-type"
	ChartPricePerSqFt     ChartID = "price-per-sqft"
	ChartLeaseTerm        ChartID = "lease-term"
	ChartOutliers         ChartID = "outliers"
	ChartDistribution     ChartID = "distribution"
	ChartHouseTypes       ChartID = "house-types"
	ChartProvinces        ChartID = "provinces"
	ChartScatter          ChartID = "scatter"
)

// Charts lists every view in menu order.
var Charts = []ChartID{
	ChartPricePerProvince,
	ChartMap,
	ChartPricePerType,
	ChartPricePerSqFt,
	ChartLeaseTerm,
	ChartOutliers,
	ChartDistribution,
	ChartHouseTypes,
	ChartProvinces,
	ChartScatter,
}

// ErrUnknownChart is returned by Build for an id not in Charts.
var ErrUnknownChart = errors.New("unknown chart")

// Status tells the view what to draw.
type Status string

const (
	// StatusOK carries rows to chart.
	StatusOK Status = "ok"
	// StatusNoSelection means a required selector has no value yet.
	StatusNoSelection Status = "no_selection"
	// StatusNoData means the selection is valid but matched no rows, or the
	// value lies outside the dataset's domain.
	StatusNoData Status = "no_data"
)

// Params are the widget values of one request. Empty strings and nil
// pointers mean "not selected".
type Params struct {
	Beds       string
	Type       string
	Province   string
	LeaseTerms []string
	PriceMin   *float64
	PriceMax   *float64
	Bins       int
}

// ChartResult is the render-ready output of one view. Exactly one of the
// row fields is populated when Status is StatusOK.
type ChartResult struct {
	Chart  ChartID `json:"chart"`
	Status Status  `json:"status"`
	Notice string  `json:"notice,omitempty"`

	// Selection echoes the value a title is built from, e.g. "2" rooms.
	Selection string `json:"selection,omitempty"`

	Aggregates   []models.Aggregate   `json:"aggregates,omitempty"`
	Frequencies  []models.Frequency   `json:"frequencies,omitempty"`
	Distribution *models.Distribution `json:"distribution,omitempty"`
	Box          *models.BoxStats     `json:"box,omitempty"`
	Points       []models.Point       `json:"points,omitempty"`
	Locations    []models.MapPoint    `json:"locations,omitempty"`
}

// WidgetOptions are the selector domains, all drawn from the dataset.
type WidgetOptions struct {
	Beds       []string `json:"beds"`
	Types      []string `json:"types"`
	Provinces  []string `json:"provinces"`
	LeaseTerms []string `json:"lease_terms"`
	PriceMin   float64  `json:"price_min"`
	PriceMax   float64  `json:"price_max"`
	Bins       int      `json:"bins"`
}

// DashboardOptions tune the views that take a fixed parameter.
type DashboardOptions struct {
	HistogramBins    int
	ScatterMinSqFeet float64
}

// Dashboard turns widget values into chart results over one loaded table.
type Dashboard struct {
	table  *Table
	logger *utils.Logger
	opts   DashboardOptions
}

func NewDashboard(table *Table, logger *utils.Logger, opts DashboardOptions) *Dashboard {
	if opts.HistogramBins < 1 {
		opts.HistogramBins = DefaultBins
	}
	return &Dashboard{table: table, logger: logger, opts: opts}
}

// Table returns the table the dashboard reads.
func (d *Dashboard) Table() *Table { return d.table }

// Options returns the selector domains.
func (d *Dashboard) Options() WidgetOptions {
	lo, hi, _ := d.table.NumericRange(models.ColPrice)
	return WidgetOptions{
		Beds:       d.table.Distinct(models.ColBeds),
		Types:      d.table.Distinct(models.ColType),
		Provinces:  d.table.Distinct(models.ColProvince),
		LeaseTerms: d.table.Distinct(models.ColLeaseTerm),
		PriceMin:   lo,
		PriceMax:   hi,
		Bins:       d.opts.HistogramBins,
	}
}

// Build evaluates one view against the table.
func (d *Dashboard) Build(id ChartID, p Params) (*ChartResult, error) {
	var res *ChartResult
	switch id {
	case ChartPricePerProvince:
		res = d.pricePerProvince(p)
	case ChartMap:
		res = d.mappedPrice(p)
	case ChartPricePerType:
		res = d.pricePerType(p)
	case ChartPricePerSqFt:
		res = d.pricePerSqFt(p)
	case ChartLeaseTerm:
		res = d.leaseTerms(p)
	case ChartOutliers:
		res = d.outliers(p)
	case ChartDistribution:
		res = d.distribution(p)
	case ChartHouseTypes:
		res = d.frequency(id, models.ColType)
	case ChartProvinces:
		res = d.frequency(id, models.ColProvince)
	case ChartScatter:
		res = d.scatter()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownChart, id)
	}
	d.logger.Debug("[dashboard] %s → %s", id, res.Status)
	return res, nil
}

func noSelection(id ChartID, what string) *ChartResult {
	return &ChartResult{Chart: id, Status: StatusNoSelection, Notice: "Select " + what + " to draw this chart."}
}

func noData(id ChartID, selection, notice string) *ChartResult {
	return &ChartResult{Chart: id, Status: StatusNoData, Selection: selection, Notice: notice}
}

// selected validates a single-select value against the dataset domain.
func (d *Dashboard) selected(id ChartID, col, value, what string) (*ChartResult, bool) {
	if value == "" {
		return noSelection(id, what), false
	}
	if !d.table.Contains(col, value) {
		return noData(id, value, fmt.Sprintf("No data available for %s. Please select a different %s.", value, what)), false
	}
	return nil, true
}

func (d *Dashboard) aggregates(id ChartID, selection string, aggs []models.Aggregate) *ChartResult {
	if len(aggs) == 0 {
		return noData(id, selection, fmt.Sprintf("No listings match %s.", selection))
	}
	return &ChartResult{Chart: id, Status: StatusOK, Selection: selection, Aggregates: aggs}
}

func (d *Dashboard) pricePerProvince(p Params) *ChartResult {
	if res, ok := d.selected(ChartPricePerProvince, models.ColBeds, p.Beds, "a number of rooms"); !ok {
		return res
	}
	aggs := GroupMeanByCategory(d.table, models.ColBeds, p.Beds, models.ColProvince, models.ColPrice)
	return d.aggregates(ChartPricePerProvince, p.Beds, aggs)
}

func (d *Dashboard) pricePerType(p Params) *ChartResult {
	if res, ok := d.selected(ChartPricePerType, models.ColType, p.Type, "a rental type"); !ok {
		return res
	}
	aggs := GroupMeanByCategory(d.table, models.ColType, p.Type, models.ColProvince, models.ColPrice)
	return d.aggregates(ChartPricePerType, p.Type, aggs)
}

func (d *Dashboard) pricePerSqFt(p Params) *ChartResult {
	if res, ok := d.selected(ChartPricePerSqFt, models.ColProvince, p.Province, "a province"); !ok {
		return res
	}
	aggs := DerivedRatioThenGroup(d.table, models.ColProvince, p.Province, models.ColPrice, models.ColSqFeet, models.ColType)
	if len(aggs) == 0 {
		return noData(ChartPricePerSqFt, p.Province, fmt.Sprintf("No listings in %s report their square footage.", p.Province))
	}
	return d.aggregates(ChartPricePerSqFt, p.Province, aggs)
}

func (d *Dashboard) mappedPrice(p Params) *ChartResult {
	if res, ok := d.selected(ChartMap, models.ColType, p.Type, "a rental type"); !ok {
		return res
	}
	lo, hi, _ := d.table.NumericRange(models.ColPrice)
	low, high := lo, hi
	if p.PriceMin != nil {
		low = *p.PriceMin
	}
	if p.PriceMax != nil {
		high = *p.PriceMax
	}
	if low < lo || high > hi || low > high {
		return noData(ChartMap, p.Type, fmt.Sprintf("Price range %s–%s is outside the dataset's range %s–%s.",
			fmtFloat(low), fmtFloat(high), fmtFloat(lo), fmtFloat(hi)))
	}

	rows := RangeAndCategoryFilter(d.table, models.ColType, p.Type, models.ColPrice, low, high)
	locs := make([]models.MapPoint, 0, rows.Len())
	for i := 0; i < rows.Len(); i++ {
		l := rows.Row(i)
		if !l.HasLocation() {
			continue
		}
		locs = append(locs, models.MapPoint{
			Latitude:  l.Latitude,
			Longitude: l.Longitude,
			City:      l.City,
			Province:  l.Province,
			Type:      l.Type,
			Price:     l.Price,
		})
	}
	if len(locs) == 0 {
		return noData(ChartMap, p.Type, fmt.Sprintf("No %s listings with a location fall in that price range.", p.Type))
	}
	return &ChartResult{Chart: ChartMap, Status: StatusOK, Selection: p.Type, Locations: locs}
}

func (d *Dashboard) leaseTerms(p Params) *ChartResult {
	if len(p.LeaseTerms) == 0 {
		return noSelection(ChartLeaseTerm, "one or more lease terms")
	}
	aggs := MultiCategoryGroupMean(d.table, models.ColLeaseTerm, p.LeaseTerms, models.ColLeaseTerm, models.ColPrice)
	if len(aggs) == 0 {
		return noData(ChartLeaseTerm, "", "None of the selected lease terms appear in the dataset.")
	}
	return &ChartResult{Chart: ChartLeaseTerm, Status: StatusOK, Aggregates: aggs}
}

func (d *Dashboard) outliers(p Params) *ChartResult {
	if res, ok := d.selected(ChartOutliers, models.ColProvince, p.Province, "a province"); !ok {
		return res
	}
	box := BoxStatsByCategory(d.table, models.ColProvince, p.Province, models.ColPrice)
	if box.Count == 0 {
		return noData(ChartOutliers, p.Province, fmt.Sprintf("No data available for %s.", p.Province))
	}
	return &ChartResult{Chart: ChartOutliers, Status: StatusOK, Selection: p.Province, Box: &box}
}

func (d *Dashboard) distribution(p Params) *ChartResult {
	if p.Province == "" {
		return noSelection(ChartDistribution, "a province")
	}
	bins := p.Bins
	if bins < 1 {
		bins = d.opts.HistogramBins
	}
	dist := DistributionByCategory(d.table, models.ColProvince, p.Province, models.ColPrice, bins)
	if dist.NoData() {
		return noData(ChartDistribution, p.Province,
			fmt.Sprintf("No data available for %s. Please select a different province.", p.Province))
	}
	return &ChartResult{Chart: ChartDistribution, Status: StatusOK, Selection: p.Province, Distribution: &dist}
}

func (d *Dashboard) frequency(id ChartID, col string) *ChartResult {
	freq := CategoricalFrequency(d.table, col)
	if len(freq) == 0 {
		return noData(id, "", "The dataset has no listings to count.")
	}
	return &ChartResult{Chart: id, Status: StatusOK, Frequencies: freq}
}

func (d *Dashboard) scatter() *ChartResult {
	rows := ScatterFilter(d.table, models.ColSqFeet, models.ColPrice, d.opts.ScatterMinSqFeet)
	if rows.Len() == 0 {
		return noData(ChartScatter, "", fmt.Sprintf("No listings larger than %s sq ft.", fmtFloat(d.opts.ScatterMinSqFeet)))
	}
	points := make([]models.Point, rows.Len())
	for i := range points {
		l := rows.Row(i)
		points[i] = models.Point{X: l.SqFeet, Y: l.Price, Group: l.Type}
	}
	return &ChartResult{Chart: ChartScatter, Status: StatusOK, Points: points}
}

// Tabular flattens the result into a header and string rows for CSV and
// spreadsheet export.
func (r *ChartResult) Tabular() (header []string, rows [][]string) {
	switch {
	case r.Aggregates != nil:
		header = []string{"group", "mean", "count"}
		for _, a := range r.Aggregates {
			rows = append(rows, []string{a.Group, fmtFloat(a.Value), strconv.Itoa(a.Count)})
		}
	case r.Frequencies != nil:
		header = []string{"category", "count", "share"}
		for _, f := range r.Frequencies {
			rows = append(rows, []string{f.Category, strconv.Itoa(f.Count), fmtFloat(f.Share)})
		}
	case r.Distribution != nil:
		header = []string{"bin_low", "bin_high", "count"}
		for _, b := range r.Distribution.Bins {
			rows = append(rows, []string{fmtFloat(b.Low), fmtFloat(b.High), strconv.Itoa(b.Count)})
		}
	case r.Box != nil:
		b := r.Box
		header = []string{"statistic", "value"}
		rows = [][]string{
			{"count", strconv.Itoa(b.Count)},
			{"min", fmtFloat(b.Min)},
			{"q1", fmtFloat(b.Q1)},
			{"median", fmtFloat(b.Median)},
			{"q3", fmtFloat(b.Q3)},
			{"max", fmtFloat(b.Max)},
			{"iqr", fmtFloat(b.IQR)},
			{"lower_fence", fmtFloat(b.LowerFence)},
			{"upper_fence", fmtFloat(b.UpperFence)},
			{"outliers", strconv.Itoa(len(b.Outliers))},
		}
	case r.Points != nil:
		header = []string{"sq_feet", "price", "type"}
		for _, p := range r.Points {
			rows = append(rows, []string{fmtFloat(p.X), fmtFloat(p.Y), p.Group})
		}
	case r.Locations != nil:
		header = []string{"latitude", "longitude", "city", "province", "type", "price"}
		for _, l := range r.Locations {
			rows = append(rows, []string{fmtFloat(l.Latitude), fmtFloat(l.Longitude), l.City, l.Province, l.Type, fmtFloat(l.Price)})
		}
	default:
		header = []string{"status", "notice"}
		rows = [][]string{{string(r.Status), r.Notice}}
	}
	return header, rows
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
