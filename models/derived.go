package models

// Aggregate is one row of a group-mean table: the mean of a value column
// over the Count rows sharing Group.
type Aggregate struct {
	Group string  `json:"group"`
	Value float64 `json:"value"`
	Count int     `json:"count"`
}

// Frequency is one row of a value-counts table.
type Frequency struct {
	Category string  `json:"category"`
	Count    int     `json:"count"`
	Share    float64 `json:"share"`
}

// Bin is one equal-width histogram bucket. Low is inclusive; High is
// exclusive except for the last bin of a distribution.
type Bin struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Count int     `json:"count"`
}

// Distribution is the raw numeric column behind a histogram plus its bins.
type Distribution struct {
	Values []float64 `json:"values"`
	Bins   []Bin     `json:"bins"`
}

// NoData reports the explicit empty condition the view must show as a notice.
func (d Distribution) NoData() bool {
	return len(d.Values) == 0
}

// BoxStats frames a numeric column for a box plot. Fences sit 1.5 IQR
// beyond the quartiles; whiskers stop at the most extreme values inside them.
type BoxStats struct {
	Category     string    `json:"category"`
	Count        int       `json:"count"`
	Min          float64   `json:"min"`
	Q1           float64   `json:"q1"`
	Median       float64   `json:"median"`
	Q3           float64   `json:"q3"`
	Max          float64   `json:"max"`
	IQR          float64   `json:"iqr"`
	LowerFence   float64   `json:"lower_fence"`
	UpperFence   float64   `json:"upper_fence"`
	LowerWhisker float64   `json:"lower_whisker"`
	UpperWhisker float64   `json:"upper_whisker"`
	Outliers     []float64 `json:"outliers"`
}

// Point is one scatter mark.
type Point struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Group string  `json:"group,omitempty"`
}

// MapPoint is one listing placed on the location view.
type MapPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	City      string  `json:"city,omitempty"`
	Province  string  `json:"province"`
	Type      string  `json:"type"`
	Price     float64 `json:"price"`
}
