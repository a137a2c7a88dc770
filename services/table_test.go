package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"rental-dashboard/models"
)

func TestTableAccessors(t *testing.T) {
	tbl := fixture()

	assert.Equal(t, 6, tbl.Len())
	assert.True(t, IsCategory(models.ColBeds))
	assert.True(t, IsNumeric(models.ColBeds))
	assert.False(t, IsNumeric(models.ColProvince))
	assert.False(t, IsCategory("colour"))

	beds, ok := tbl.Category(5, models.ColBeds)
	assert.False(t, ok, "unknown beds must read as missing")
	assert.Empty(t, beds)

	_, ok = tbl.Number(2, models.ColSqFeet)
	assert.False(t, ok, "zero square footage must read as missing")

	lat, ok := tbl.Number(0, models.ColLatitude)
	assert.True(t, ok)
	assert.Equal(t, 51.04, lat)

	_, ok = tbl.Number(0, "colour")
	assert.False(t, ok)
}

func TestTableCopiesRows(t *testing.T) {
	rows := []models.Listing{{Province: "AB", Type: "House", Price: 1}}
	tbl := NewTable(rows)
	rows[0].Price = 99

	assert.Equal(t, 1.0, tbl.Row(0).Price)

	out := tbl.Rows()
	out[0].Price = 42
	assert.Equal(t, 1.0, tbl.Row(0).Price)
}

func TestTableNil(t *testing.T) {
	var tbl *Table
	assert.Equal(t, 0, tbl.Len())
	assert.Empty(t, tbl.Rows())
}

func TestTableDistinctAndContains(t *testing.T) {
	tbl := fixture()

	assert.Equal(t, []string{"Calgary", "Edmonton", "Toronto", "Vancouver", "Victoria"}, tbl.Distinct(models.ColCity))
	assert.Empty(t, tbl.Distinct("colour"))
	assert.True(t, tbl.Contains(models.ColBeds, "3"))
	assert.False(t, tbl.Contains(models.ColBeds, "-1"))
	assert.False(t, tbl.Contains("colour", "red"))
}

func TestTableNumericRange(t *testing.T) {
	tbl := fixture()

	lo, hi, ok := tbl.NumericRange(models.ColSqFeet)
	assert.True(t, ok)
	assert.Equal(t, 40.0, lo)
	assert.Equal(t, 1500.0, hi)

	_, _, ok = NewTable(nil).NumericRange(models.ColPrice)
	assert.False(t, ok)
}

func TestNaturalSort(t *testing.T) {
	keys := []string{"10", "b", "2", "A", "1.5", "a"}
	sortNatural(keys)
	assert.Equal(t, []string{"1.5", "2", "10", "A", "a", "b"}, keys)
}
