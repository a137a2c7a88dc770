package services

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/stat"

	"rental-dashboard/models"
)

// overviewColumns is the column order of the raw-data page.
var overviewColumns = []struct {
	name string
	typ  series.Type
}{
	{models.ColCity, series.String},
	{models.ColProvince, series.String},
	{models.ColLatitude, series.Float},
	{models.ColLongitude, series.Float},
	{models.ColLeaseTerm, series.String},
	{models.ColType, series.String},
	{models.ColPrice, series.Float},
	{models.ColBeds, series.Int},
	{models.ColBaths, series.Float},
	{models.ColSqFeet, series.Float},
	{models.ColFurnishing, series.String},
}

// Frame converts the table into a gota DataFrame. Missing values become NaN.
func Frame(t *Table) dataframe.DataFrame {
	header := make([]string, len(overviewColumns))
	types := make(map[string]series.Type, len(overviewColumns))
	for i, c := range overviewColumns {
		header[i] = c.name
		types[c.name] = c.typ
	}

	records := make([][]string, 0, t.Len()+1)
	records = append(records, header)
	for i := 0; i < t.Len(); i++ {
		row := make([]string, len(overviewColumns))
		for j, c := range overviewColumns {
			row[j] = cell(t, i, c.name, c.typ)
		}
		records = append(records, row)
	}

	return dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.WithTypes(types),
	)
}

func cell(t *Table, i int, col string, typ series.Type) string {
	if typ == series.String {
		v, _ := t.Category(i, col)
		return v
	}
	v, ok := t.Number(i, col)
	if !ok {
		return "NaN"
	}
	if typ == series.Int {
		return strconv.Itoa(int(v))
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Overview describes the loaded table for the raw-data page: its shape, the
// type and distinct-value count of every column, and summary statistics of
// the numeric columns.
func Overview(t *Table) (*models.Overview, error) {
	if t.Len() == 0 {
		return &models.Overview{Columns: []models.ColumnInfo{}, Describe: [][]string{}}, nil
	}

	df := Frame(t)
	if df.Err != nil {
		return nil, fmt.Errorf("overview: build frame: %w", df.Err)
	}

	ov := &models.Overview{Rows: df.Nrow()}
	types := df.Types()
	for i, name := range df.Names() {
		ov.Columns = append(ov.Columns, models.ColumnInfo{
			Name:   name,
			DType:  string(types[i]),
			Unique: uniqueCount(df.Col(name)),
		})
	}

	numeric := make([]string, 0, len(overviewColumns))
	for _, c := range overviewColumns {
		if c.typ != series.String {
			numeric = append(numeric, c.name)
		}
	}
	ov.Describe = describe(df, numeric)
	return ov, nil
}

var describeStats = []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}

// describe builds the statistics grid of the numeric columns. Each column is
// summarised over its non-missing values only, like pandas describe().
func describe(df dataframe.DataFrame, cols []string) [][]string {
	grid := make([][]string, len(describeStats)+1)
	grid[0] = append([]string{"column"}, cols...)
	for i, name := range describeStats {
		grid[i+1] = append(make([]string, 0, len(cols)+1), name)
	}
	for _, col := range cols {
		for i, v := range describeColumn(df.Col(col)) {
			grid[i+1] = append(grid[i+1], v)
		}
	}
	return grid
}

func describeColumn(s series.Series) []string {
	vals := present(s.Float())
	out := make([]string, 0, len(describeStats))
	out = append(out, strconv.Itoa(len(vals)))
	if len(vals) == 0 {
		for range describeStats[1:] {
			out = append(out, "NaN")
		}
		return out
	}

	sort.Float64s(vals)
	std := math.NaN()
	if len(vals) > 1 {
		std = stat.StdDev(vals, nil)
	}
	for _, v := range []float64{
		stat.Mean(vals, nil),
		std,
		vals[0],
		stat.Quantile(0.25, stat.Empirical, vals, nil),
		stat.Quantile(0.5, stat.Empirical, vals, nil),
		stat.Quantile(0.75, stat.Empirical, vals, nil),
		vals[len(vals)-1],
	} {
		out = append(out, fmt.Sprintf("%f", v))
	}
	return out
}

// present drops NaN entries.
func present(vals []float64) []float64 {
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// uniqueCount counts distinct non-missing values, like pandas nunique.
func uniqueCount(s series.Series) int {
	seen := make(map[string]struct{})
	for i := 0; i < s.Len(); i++ {
		e := s.Elem(i)
		if e.IsNA() {
			continue
		}
		v := e.String()
		if v == "" {
			continue
		}
		seen[v] = struct{}{}
	}
	return len(seen)
}
