package services

import (
	"sort"
	"strconv"
	"strings"

	"rental-dashboard/models"
)

type (
	categoryAccessor func(models.Listing) (string, bool)
	numberAccessor   func(models.Listing) (float64, bool)
)

func text(v string) (string, bool) { return v, v != "" }

// categoryColumns are the columns a selection or grouping can use.
var categoryColumns = map[string]categoryAccessor{
	models.ColProvince:   func(l models.Listing) (string, bool) { return text(l.Province) },
	models.ColCity:       func(l models.Listing) (string, bool) { return text(l.City) },
	models.ColType:       func(l models.Listing) (string, bool) { return text(l.Type) },
	models.ColLeaseTerm:  func(l models.Listing) (string, bool) { return text(l.LeaseTerm) },
	models.ColFurnishing: func(l models.Listing) (string, bool) { return text(l.Furnishing) },
	models.ColBeds: func(l models.Listing) (string, bool) {
		if l.Beds < 0 {
			return "", false
		}
		return strconv.Itoa(l.Beds), true
	},
}

// numberColumns are the columns a mean, ratio or range can use. A value
// reported as not ok is missing and never takes part in a computation.
var numberColumns = map[string]numberAccessor{
	models.ColPrice:  func(l models.Listing) (float64, bool) { return l.Price, true },
	models.ColSqFeet: func(l models.Listing) (float64, bool) { return l.SqFeet, l.SqFeet > 0 },
	models.ColBeds:   func(l models.Listing) (float64, bool) { return float64(l.Beds), l.Beds >= 0 },
	models.ColBaths:  func(l models.Listing) (float64, bool) { return l.Baths, l.Baths > 0 },
	models.ColLatitude: func(l models.Listing) (float64, bool) {
		return l.Latitude, l.HasLocation()
	},
	models.ColLongitude: func(l models.Listing) (float64, bool) {
		return l.Longitude, l.HasLocation()
	},
}

// Table is the loaded dataset. It is read-only: every transform returns a
// new value and nothing mutates the rows, so one Table can serve any number
// of concurrent readers.
type Table struct {
	rows []models.Listing
}

// NewTable copies rows into a new Table.
func NewTable(rows []models.Listing) *Table {
	cp := make([]models.Listing, len(rows))
	copy(cp, rows)
	return &Table{rows: cp}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Row returns a copy of row i.
func (t *Table) Row(i int) models.Listing { return t.rows[i] }

// Rows returns a copy of every row.
func (t *Table) Rows() []models.Listing {
	cp := make([]models.Listing, t.Len())
	if t != nil {
		copy(cp, t.rows)
	}
	return cp
}

// IsCategory reports whether col can be used for selection and grouping.
func IsCategory(col string) bool {
	_, ok := categoryColumns[col]
	return ok
}

// IsNumeric reports whether col can be averaged or range-filtered.
func IsNumeric(col string) bool {
	_, ok := numberColumns[col]
	return ok
}

// Category returns the categorical value of col in row i.
func (t *Table) Category(i int, col string) (string, bool) {
	fn, ok := categoryColumns[col]
	if !ok {
		return "", false
	}
	return fn(t.rows[i])
}

// Number returns the numeric value of col in row i.
func (t *Table) Number(i int, col string) (float64, bool) {
	fn, ok := numberColumns[col]
	if !ok {
		return 0, false
	}
	return fn(t.rows[i])
}

// Distinct returns the distinct non-missing values of a categorical column in
// natural order. These are the only values a selector may offer.
func (t *Table) Distinct(col string) []string {
	fn, ok := categoryColumns[col]
	if !ok {
		return []string{}
	}
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, r := range t.rows {
		v, ok := fn(r)
		if !ok {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sortNatural(out)
	return out
}

// Contains reports whether value is one of col's distinct values.
func (t *Table) Contains(col, value string) bool {
	fn, ok := categoryColumns[col]
	if !ok {
		return false
	}
	for _, r := range t.rows {
		if v, ok := fn(r); ok && v == value {
			return true
		}
	}
	return false
}

// NumericRange returns the smallest and largest non-missing value of col.
func (t *Table) NumericRange(col string) (min, max float64, ok bool) {
	fn, known := numberColumns[col]
	if !known {
		return 0, 0, false
	}
	for _, r := range t.rows {
		v, present := fn(r)
		if !present {
			continue
		}
		if !ok || v < min {
			min = v
		}
		if !ok || v > max {
			max = v
		}
		ok = true
	}
	return min, max, ok
}

// matching returns the indices of rows whose col value satisfies keep.
// An unknown column matches nothing.
func (t *Table) matching(col string, keep func(string) bool) []int {
	fn, ok := categoryColumns[col]
	if !ok {
		return nil
	}
	idx := make([]int, 0)
	for i, r := range t.rows {
		if v, ok := fn(r); ok && keep(v) {
			idx = append(idx, i)
		}
	}
	return idx
}

func (t *Table) all() []int {
	idx := make([]int, len(t.rows))
	for i := range idx {
		idx[i] = i
	}
	return idx
}

func (t *Table) subset(idx []int) *Table {
	rows := make([]models.Listing, len(idx))
	for i, j := range idx {
		rows[i] = t.rows[j]
	}
	return &Table{rows: rows}
}

// sortNatural orders keys numerically when both parse as numbers, numbers
// before words otherwise, and case-insensitively among words.
func sortNatural(keys []string) {
	sort.SliceStable(keys, func(i, j int) bool { return naturalLess(keys[i], keys[j]) })
}

func naturalLess(a, b string) bool {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	switch {
	case errA == nil && errB == nil:
		return fa < fb
	case errA == nil:
		return true
	case errB == nil:
		return false
	}
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return a < b
}
