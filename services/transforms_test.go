package services

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-dashboard/models"
)

// fixture is a small dataset shared by the transform and dashboard tests.
func fixture() *Table {
	return NewTable([]models.Listing{
		{Province: "Alberta", City: "Calgary", Type: "Apartment", Beds: 1, Price: 1000, SqFeet: 500, LeaseTerm: "Long Term", Latitude: 51.04, Longitude: -114.07},
		{Province: "Alberta", City: "Edmonton", Type: "Apartment", Beds: 1, Price: 1200, SqFeet: 600, LeaseTerm: "Long Term", Latitude: 53.54, Longitude: -113.49},
		{Province: "Alberta", City: "Calgary", Type: "House", Beds: 3, Price: 2400, SqFeet: 0, LeaseTerm: "Negotiable"},
		{Province: "British Columbia", City: "Vancouver", Type: "Apartment", Beds: 1, Price: 1500, SqFeet: 40, LeaseTerm: "Short Term", Latitude: 49.28, Longitude: -123.12},
		{Province: "British Columbia", City: "Victoria", Type: "House", Beds: 2, Price: 3000, SqFeet: 1500, LeaseTerm: "Long Term", Latitude: 48.43, Longitude: -123.37},
		{Province: "Ontario", City: "Toronto", Type: "Condo", Beds: -1, Price: 2200, SqFeet: 700, LeaseTerm: "Long Term"},
	})
}

func TestGroupMeanByCategory(t *testing.T) {
	tbl := NewTable([]models.Listing{
		{Province: "AB", Beds: 1, Price: 1000},
		{Province: "AB", Beds: 1, Price: 1200},
		{Province: "BC", Beds: 1, Price: 1500},
		{Province: "BC", Beds: 2, Price: 9000},
	})

	got := GroupMeanByCategory(tbl, models.ColBeds, "1", models.ColProvince, models.ColPrice)
	assert.Equal(t, []models.Aggregate{
		{Group: "AB", Value: 1100, Count: 2},
		{Group: "BC", Value: 1500, Count: 1},
	}, got)
}

func TestGroupMeanByCategoryNoMatch(t *testing.T) {
	got := GroupMeanByCategory(fixture(), models.ColBeds, "7", models.ColProvince, models.ColPrice)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGroupMeanByCategoryIgnoresUnknownBeds(t *testing.T) {
	got := GroupMean(fixture(), models.ColBeds, models.ColPrice)
	groups := make([]string, len(got))
	for i, a := range got {
		groups[i] = a.Group
	}
	assert.Equal(t, []string{"1", "2", "3"}, groups)
}

func TestDerivedRatioThenGroup(t *testing.T) {
	tbl := NewTable([]models.Listing{
		{Province: "AB", Type: "house", Price: 200, SqFeet: 0},
		{Province: "AB", Type: "house", Price: 300, SqFeet: 100},
	})

	got := DerivedRatioThenGroup(tbl, models.ColType, "house", models.ColPrice, models.ColSqFeet, models.ColType)
	require.Len(t, got, 1)
	assert.Equal(t, "house", got[0].Group)
	assert.InDelta(t, 3.0, got[0].Value, 1e-9)
	assert.Equal(t, 1, got[0].Count)
}

func TestDerivedRatioThenGroupAllInvalid(t *testing.T) {
	tbl := NewTable([]models.Listing{{Province: "AB", Type: "house", Price: 200, SqFeet: 0}})
	got := DerivedRatioThenGroup(tbl, models.ColProvince, "AB", models.ColPrice, models.ColSqFeet, models.ColType)
	assert.Empty(t, got)
}

func TestRangeAndCategoryFilter(t *testing.T) {
	tbl := fixture()

	got := RangeAndCategoryFilter(tbl, models.ColType, "Apartment", models.ColPrice, 1000, 1200)
	require.Equal(t, 2, got.Len())
	for _, l := range got.Rows() {
		assert.Equal(t, "Apartment", l.Type)
		assert.GreaterOrEqual(t, l.Price, 1000.0)
		assert.LessOrEqual(t, l.Price, 1200.0)
	}

	// rows are returned unmodified
	assert.Equal(t, tbl.Row(0), got.Row(0))
}

func TestRangeAndCategoryFilterEmpty(t *testing.T) {
	tbl := fixture()

	assert.Equal(t, 0, RangeAndCategoryFilter(tbl, models.ColType, "Apartment", models.ColPrice, 5000, 6000).Len())
	assert.Equal(t, 0, RangeAndCategoryFilter(tbl, models.ColType, "Apartment", models.ColPrice, 1200, 1000).Len())
	assert.Equal(t, 0, RangeAndCategoryFilter(tbl, models.ColType, "Apartment", models.ColPrice, math.NaN(), 1000).Len())
	assert.Equal(t, 0, RangeAndCategoryFilter(tbl, models.ColType, "Castle", models.ColPrice, 0, 1e9).Len())
}

func TestMultiCategoryGroupMean(t *testing.T) {
	tbl := fixture()

	got := MultiCategoryGroupMean(tbl, models.ColLeaseTerm, []string{"Long Term", "Short Term"}, models.ColLeaseTerm, models.ColPrice)
	assert.Equal(t, []models.Aggregate{
		{Group: "Long Term", Value: (1000 + 1200 + 3000 + 2200) / 4.0, Count: 4},
		{Group: "Short Term", Value: 1500, Count: 1},
	}, got)

	empty := MultiCategoryGroupMean(tbl, models.ColLeaseTerm, nil, models.ColLeaseTerm, models.ColPrice)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestMultiCategoryGroupMeanFullSetMatchesUnfiltered(t *testing.T) {
	tbl := fixture()
	all := tbl.Distinct(models.ColLeaseTerm)
	require.Len(t, all, 3)

	assert.Equal(t,
		GroupMean(tbl, models.ColLeaseTerm, models.ColPrice),
		MultiCategoryGroupMean(tbl, models.ColLeaseTerm, all, models.ColLeaseTerm, models.ColPrice))
	assert.Equal(t,
		GroupMean(tbl, models.ColProvince, models.ColPrice),
		MultiCategoryGroupMean(tbl, models.ColLeaseTerm, all, models.ColProvince, models.ColPrice))
}

func TestDistributionByCategory(t *testing.T) {
	dist := DistributionByCategory(fixture(), models.ColProvince, "Alberta", models.ColPrice, 0)
	assert.False(t, dist.NoData())
	assert.ElementsMatch(t, []float64{1000, 1200, 2400}, dist.Values)
	assert.Len(t, dist.Bins, DefaultBins)

	total := 0
	for _, b := range dist.Bins {
		total += b.Count
	}
	assert.Equal(t, 3, total)
}

func TestDistributionByCategoryNoData(t *testing.T) {
	dist := DistributionByCategory(fixture(), models.ColProvince, "Yukon", models.ColPrice, 30)
	assert.True(t, dist.NoData())
	assert.Empty(t, dist.Bins)
}

func TestHistogram(t *testing.T) {
	bins := Histogram([]float64{0, 1, 2, 3, 4, 10}, 5)
	require.Len(t, bins, 5)
	assert.Equal(t, 0.0, bins[0].Low)
	assert.Equal(t, 10.0, bins[4].High)
	assert.Equal(t, 2, bins[0].Count) // 0, 1
	assert.Equal(t, 2, bins[1].Count) // 2, 3
	assert.Equal(t, 1, bins[2].Count) // 4
	assert.Equal(t, 0, bins[3].Count)
	assert.Equal(t, 1, bins[4].Count) // 10 lands in the closed last bin

	same := Histogram([]float64{5, 5, 5}, 30)
	require.Len(t, same, 1)
	assert.Equal(t, models.Bin{Low: 5, High: 5, Count: 3}, same[0])
}

func TestCategoricalFrequency(t *testing.T) {
	got := CategoricalFrequency(fixture(), models.ColType)
	require.Len(t, got, 3)
	assert.Equal(t, "Apartment", got[0].Category)
	assert.Equal(t, 3, got[0].Count)
	assert.InDelta(t, 0.5, got[0].Share, 1e-9)
	assert.Equal(t, "House", got[1].Category)
	assert.Equal(t, "Condo", got[2].Category)

	var share float64
	for _, f := range got {
		share += f.Share
	}
	assert.InDelta(t, 1.0, share, 1e-9)
}

func TestCategoricalFrequencyEmpty(t *testing.T) {
	assert.Empty(t, CategoricalFrequency(NewTable(nil), models.ColType))
}

func TestScatterFilter(t *testing.T) {
	got := ScatterFilter(fixture(), models.ColSqFeet, models.ColPrice, 50)
	require.Equal(t, 4, got.Len())
	for _, l := range got.Rows() {
		assert.Greater(t, l.SqFeet, 50.0)
	}
}

func TestScatterFilterThresholdIsExclusive(t *testing.T) {
	tbl := NewTable([]models.Listing{
		{Province: "AB", Type: "House", Price: 1, SqFeet: 50},
		{Province: "AB", Type: "House", Price: 1, SqFeet: 51},
	})
	assert.Equal(t, 1, ScatterFilter(tbl, models.ColSqFeet, models.ColPrice, 50).Len())
}

func TestBoxStatsByCategory(t *testing.T) {
	tbl := NewTable([]models.Listing{
		{Province: "AB", Type: "A", Price: 1},
		{Province: "AB", Type: "A", Price: 2},
		{Province: "AB", Type: "A", Price: 3},
		{Province: "AB", Type: "A", Price: 4},
		{Province: "AB", Type: "A", Price: 100},
	})

	box := BoxStatsByCategory(tbl, models.ColProvince, "AB", models.ColPrice)
	assert.Equal(t, 5, box.Count)
	assert.Equal(t, 1.0, box.Min)
	assert.Equal(t, 100.0, box.Max)
	assert.Equal(t, 3.0, box.Median)
	assert.LessOrEqual(t, box.Q1, box.Median)
	assert.GreaterOrEqual(t, box.Q3, box.Median)
	assert.Equal(t, []float64{100}, box.Outliers)
	assert.Equal(t, 1.0, box.LowerWhisker)
	assert.Equal(t, 4.0, box.UpperWhisker)
}

func TestBoxStatsByCategoryEmpty(t *testing.T) {
	box := BoxStatsByCategory(fixture(), models.ColProvince, "Yukon", models.ColPrice)
	assert.Equal(t, 0, box.Count)
	assert.Empty(t, box.Outliers)
}

func TestTransformsDoNotMutateTable(t *testing.T) {
	tbl := fixture()
	before := tbl.Rows()

	GroupMeanByCategory(tbl, models.ColBeds, "1", models.ColProvince, models.ColPrice)
	DerivedRatioThenGroup(tbl, models.ColProvince, "Alberta", models.ColPrice, models.ColSqFeet, models.ColType)
	RangeAndCategoryFilter(tbl, models.ColType, "House", models.ColPrice, 0, 5000)
	BoxStatsByCategory(tbl, models.ColProvince, "Alberta", models.ColPrice)
	ScatterFilter(tbl, models.ColSqFeet, models.ColPrice, 50)

	assert.Equal(t, before, tbl.Rows())
}
