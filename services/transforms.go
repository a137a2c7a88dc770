package services

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"rental-dashboard/models"
)

// DefaultBins is the histogram bin count used when none is given.
const DefaultBins = 30

// GroupMean averages valueCol for each distinct value of groupCol over the
// whole table.
func GroupMean(t *Table, groupCol, valueCol string) []models.Aggregate {
	return groupMean(t, t.all(), groupCol, valueCol)
}

// GroupMeanByCategory keeps the rows where filterCol equals filterValue, then
// averages valueCol per distinct groupCol value. No match yields an empty
// table.
func GroupMeanByCategory(t *Table, filterCol, filterValue, groupCol, valueCol string) []models.Aggregate {
	idx := t.matching(filterCol, func(v string) bool { return v == filterValue })
	return groupMean(t, idx, groupCol, valueCol)
}

// DerivedRatioThenGroup computes numCol/denCol per row of the filtered table
// and averages the ratio per groupCol. Rows whose denominator is missing or
// not positive are left out.
func DerivedRatioThenGroup(t *Table, filterCol, filterValue, numCol, denCol, groupCol string) []models.Aggregate {
	idx := t.matching(filterCol, func(v string) bool { return v == filterValue })

	acc := newMeanAccumulator()
	for _, i := range idx {
		key, ok := t.Category(i, groupCol)
		if !ok {
			continue
		}
		num, ok := t.Number(i, numCol)
		if !ok {
			continue
		}
		den, ok := t.Number(i, denCol)
		if !ok || den <= 0 {
			continue
		}
		acc.add(key, num/den)
	}
	return acc.aggregates()
}

// RangeAndCategoryFilter returns the rows where categoryCol equals
// categoryValue and low <= rangeCol <= high. Rows come back unmodified.
func RangeAndCategoryFilter(t *Table, categoryCol, categoryValue, rangeCol string, low, high float64) *Table {
	if math.IsNaN(low) || math.IsNaN(high) || low > high {
		return NewTable(nil)
	}
	idx := t.matching(categoryCol, func(v string) bool { return v == categoryValue })
	kept := make([]int, 0, len(idx))
	for _, i := range idx {
		v, ok := t.Number(i, rangeCol)
		if ok && v >= low && v <= high {
			kept = append(kept, i)
		}
	}
	return t.subset(kept)
}

// MultiCategoryGroupMean keeps the rows whose categoryCol is any of selected
// and averages valueCol per groupCol. An empty selection yields nothing.
func MultiCategoryGroupMean(t *Table, categoryCol string, selected []string, groupCol, valueCol string) []models.Aggregate {
	if len(selected) == 0 {
		return []models.Aggregate{}
	}
	set := make(map[string]struct{}, len(selected))
	for _, s := range selected {
		set[s] = struct{}{}
	}
	idx := t.matching(categoryCol, func(v string) bool {
		_, ok := set[v]
		return ok
	})
	return groupMean(t, idx, groupCol, valueCol)
}

// DistributionByCategory returns valueCol for the rows where categoryCol
// equals categoryValue, binned into binCount equal-width bins spanning the
// values. Check NoData on the result before drawing.
func DistributionByCategory(t *Table, categoryCol, categoryValue, valueCol string, binCount int) models.Distribution {
	if binCount < 1 {
		binCount = DefaultBins
	}
	idx := t.matching(categoryCol, func(v string) bool { return v == categoryValue })

	values := make([]float64, 0, len(idx))
	for _, i := range idx {
		if v, ok := t.Number(i, valueCol); ok {
			values = append(values, v)
		}
	}
	return models.Distribution{Values: values, Bins: Histogram(values, binCount)}
}

// Histogram splits values into n equal-width bins between their min and max.
// The last bin includes its upper edge. Identical values share one bin.
func Histogram(values []float64, n int) []models.Bin {
	if len(values) == 0 {
		return []models.Bin{}
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi || n < 1 {
		return []models.Bin{{Low: lo, High: hi, Count: len(values)}}
	}

	width := (hi - lo) / float64(n)
	bins := make([]models.Bin, n)
	for i := range bins {
		bins[i].Low = lo + float64(i)*width
		bins[i].High = lo + float64(i+1)*width
	}
	bins[n-1].High = hi

	for _, v := range values {
		b := int((v - lo) / width)
		if b >= n {
			b = n - 1
		}
		bins[b].Count++
	}
	return bins
}

// CategoricalFrequency counts rows per value of categoryCol, most frequent
// first.
func CategoricalFrequency(t *Table, categoryCol string) []models.Frequency {
	counts := make(map[string]int)
	total := 0
	for i := 0; i < t.Len(); i++ {
		if v, ok := t.Category(i, categoryCol); ok {
			counts[v]++
			total++
		}
	}

	out := make([]models.Frequency, 0, len(counts))
	for k, c := range counts {
		out = append(out, models.Frequency{Category: k, Count: c, Share: float64(c) / float64(total)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return naturalLess(out[i].Category, out[j].Category)
	})
	return out
}

// ScatterFilter drops rows whose xCol is missing or not above minX, and rows
// with no yCol value. Trend fitting is left to the renderer.
func ScatterFilter(t *Table, xCol, yCol string, minX float64) *Table {
	kept := make([]int, 0)
	for i := 0; i < t.Len(); i++ {
		x, ok := t.Number(i, xCol)
		if !ok || x <= minX {
			continue
		}
		if _, ok := t.Number(i, yCol); !ok {
			continue
		}
		kept = append(kept, i)
	}
	return t.subset(kept)
}

// BoxStatsByCategory frames valueCol for the rows where categoryCol equals
// categoryValue: empirical quartiles, 1.5 IQR fences, whiskers and the
// values lying outside the fences.
func BoxStatsByCategory(t *Table, categoryCol, categoryValue, valueCol string) models.BoxStats {
	idx := t.matching(categoryCol, func(v string) bool { return v == categoryValue })

	values := make([]float64, 0, len(idx))
	for _, i := range idx {
		if v, ok := t.Number(i, valueCol); ok {
			values = append(values, v)
		}
	}

	box := models.BoxStats{Category: categoryValue, Count: len(values), Outliers: []float64{}}
	if len(values) == 0 {
		return box
	}
	sort.Float64s(values)

	box.Min = values[0]
	box.Max = values[len(values)-1]
	box.Q1 = stat.Quantile(0.25, stat.Empirical, values, nil)
	box.Median = stat.Quantile(0.5, stat.Empirical, values, nil)
	box.Q3 = stat.Quantile(0.75, stat.Empirical, values, nil)
	box.IQR = box.Q3 - box.Q1
	box.LowerFence = box.Q1 - 1.5*box.IQR
	box.UpperFence = box.Q3 + 1.5*box.IQR

	box.LowerWhisker, box.UpperWhisker = box.Max, box.Min
	for _, v := range values {
		if v < box.LowerFence || v > box.UpperFence {
			box.Outliers = append(box.Outliers, v)
			continue
		}
		box.LowerWhisker = math.Min(box.LowerWhisker, v)
		box.UpperWhisker = math.Max(box.UpperWhisker, v)
	}
	return box
}

func groupMean(t *Table, idx []int, groupCol, valueCol string) []models.Aggregate {
	acc := newMeanAccumulator()
	for _, i := range idx {
		key, ok := t.Category(i, groupCol)
		if !ok {
			continue
		}
		v, ok := t.Number(i, valueCol)
		if !ok {
			continue
		}
		acc.add(key, v)
	}
	return acc.aggregates()
}

type meanAccumulator struct {
	sums   map[string]float64
	counts map[string]int
}

func newMeanAccumulator() *meanAccumulator {
	return &meanAccumulator{sums: make(map[string]float64), counts: make(map[string]int)}
}

func (a *meanAccumulator) add(key string, v float64) {
	a.sums[key] += v
	a.counts[key]++
}

func (a *meanAccumulator) aggregates() []models.Aggregate {
	keys := make([]string, 0, len(a.counts))
	for k := range a.counts {
		keys = append(keys, k)
	}
	sortNatural(keys)

	out := make([]models.Aggregate, 0, len(keys))
	for _, k := range keys {
		out = append(out, models.Aggregate{
			Group: k,
			Value: a.sums[k] / float64(a.counts[k]),
			Count: a.counts[k],
		})
	}
	return out
}
