package charts

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"rental-dashboard/models"
	"rental-dashboard/services"
)

var (
	// ErrUnsupportedFormat is returned for views that have no image form.
	ErrUnsupportedFormat = errors.New("chart has no image rendering")
	// ErrNothingToDraw is returned for results whose status is not ok.
	ErrNothingToDraw = errors.New("chart result has nothing to draw")
)

// Renderer draws chart results as PNG images.
type Renderer struct {
	catalog *Catalog
	width   int
	height  int
}

func NewRenderer(catalog *Catalog, width, height int) *Renderer {
	if width <= 0 {
		width = 1000
	}
	if height <= 0 {
		height = 600
	}
	return &Renderer{catalog: catalog, width: width, height: height}
}

// Catalog returns the catalog the renderer titles charts from.
func (r *Renderer) Catalog() *Catalog { return r.catalog }

// CanRender reports whether the view has an image form.
func (r *Renderer) CanRender(id services.ChartID) bool {
	spec, ok := r.catalog.Lookup(string(id))
	if !ok {
		return false
	}
	switch spec.Kind {
	case KindBar, KindPie, KindHistogram, KindScatter:
		return true
	}
	return false
}

// RenderPNG writes res to w as a PNG image.
func (r *Renderer) RenderPNG(w io.Writer, res *services.ChartResult) error {
	spec, ok := r.catalog.Lookup(string(res.Chart))
	if !ok {
		return fmt.Errorf("charts: render %s: %w", res.Chart, services.ErrUnknownChart)
	}
	if res.Status != services.StatusOK {
		return fmt.Errorf("charts: render %s: %w", res.Chart, ErrNothingToDraw)
	}

	title := spec.TitleFor(res.Selection)
	var err error
	switch spec.Kind {
	case KindBar:
		err = r.bar(w, spec, title, res.Aggregates)
	case KindPie:
		err = r.pie(w, title, res.Frequencies)
	case KindHistogram:
		if res.Distribution == nil {
			return fmt.Errorf("charts: render %s: %w", res.Chart, ErrNothingToDraw)
		}
		err = r.histogram(w, spec, title, res.Distribution.Bins)
	case KindScatter:
		err = r.scatter(w, spec, title, res.Points)
	default:
		return fmt.Errorf("charts: render %s: %w", res.Chart, ErrUnsupportedFormat)
	}
	if err != nil {
		return fmt.Errorf("charts: render %s: %w", res.Chart, err)
	}
	return nil
}

func (r *Renderer) bar(w io.Writer, spec Spec, title string, aggs []models.Aggregate) error {
	bars := make([]chart.Value, len(aggs))
	var top float64
	for i, a := range aggs {
		bars[i] = chart.Value{Label: a.Group, Value: a.Value}
		top = math.Max(top, a.Value)
	}
	return r.barChart(w, spec, title, bars, top)
}

func (r *Renderer) histogram(w io.Writer, spec Spec, title string, bins []models.Bin) error {
	bars := make([]chart.Value, len(bins))
	var top float64
	for i, b := range bins {
		bars[i] = chart.Value{Label: fmt.Sprintf("%.0f", b.Low), Value: float64(b.Count)}
		top = math.Max(top, float64(b.Count))
	}
	return r.barChart(w, spec, title, bars, top)
}

func (r *Renderer) barChart(w io.Writer, spec Spec, title string, bars []chart.Value, top float64) error {
	width, spacing := barGeometry(r.width, len(bars))
	bc := chart.BarChart{
		Title:      title,
		Width:      r.width,
		Height:     r.height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		BarWidth:   width,
		BarSpacing: spacing,
		YAxis: chart.YAxis{
			Name:  spec.YLabel,
			Range: &chart.ContinuousRange{Min: 0, Max: axisMax(top)},
		},
		Bars: bars,
	}
	return bc.Render(chart.PNG, w)
}

func (r *Renderer) pie(w io.Writer, title string, freq []models.Frequency) error {
	values := make([]chart.Value, len(freq))
	for i, f := range freq {
		values[i] = chart.Value{
			Label: fmt.Sprintf("%s %.2f%%", f.Category, f.Share*100),
			Value: float64(f.Count),
		}
	}
	pc := chart.PieChart{
		Title:  title,
		Width:  r.width,
		Height: r.height,
		Values: values,
	}
	return pc.Render(chart.PNG, w)
}

// pointStyle draws dots without connecting lines.
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    3,
		DotColor:    col,
	}
}

func (r *Renderer) scatter(w io.Writer, spec Spec, title string, points []models.Point) error {
	groups := make(map[string]*chart.ContinuousSeries)
	names := make([]string, 0)
	all := chart.ContinuousSeries{Name: "all"}
	var maxX, maxY float64
	for _, p := range points {
		s, ok := groups[p.Group]
		if !ok {
			s = &chart.ContinuousSeries{Name: p.Group}
			groups[p.Group] = s
			names = append(names, p.Group)
		}
		s.XValues = append(s.XValues, p.X)
		s.YValues = append(s.YValues, p.Y)
		all.XValues = append(all.XValues, p.X)
		all.YValues = append(all.YValues, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	sort.Strings(names)

	series := make([]chart.Series, 0, len(names)+1)
	for i, name := range names {
		s := groups[name]
		s.Style = pointStyle(chart.GetDefaultColor(i))
		series = append(series, *s)
	}
	if distinctX(all.XValues) > 1 {
		series = append(series, &chart.LinearRegressionSeries{
			Name:        "OLS trend",
			InnerSeries: all,
			Style: chart.Style{
				StrokeColor: drawing.ColorBlack,
				StrokeWidth: 2,
			},
		})
	}

	ch := chart.Chart{
		Title:      title,
		Width:      r.width,
		Height:     r.height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		XAxis:      chart.XAxis{Name: spec.XLabel, Range: &chart.ContinuousRange{Min: 0, Max: axisMax(maxX)}},
		YAxis:      chart.YAxis{Name: spec.YLabel, Range: &chart.ContinuousRange{Min: 0, Max: axisMax(maxY)}},
		Series:     series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch.Render(chart.PNG, w)
}

// axisMax leaves 10% headroom above the largest value.
func axisMax(v float64) float64 {
	if v <= 0 {
		return 1
	}
	return v * 1.1
}

// barGeometry fits n bars into the canvas width.
func barGeometry(canvas, n int) (width, spacing int) {
	if n < 1 {
		n = 1
	}
	slot := (canvas - 120) / n
	if slot < 4 {
		slot = 4
	}
	spacing = slot / 5
	return slot - spacing, spacing
}

func distinctX(xs []float64) int {
	seen := make(map[float64]struct{}, len(xs))
	for _, x := range xs {
		seen[x] = struct{}{}
		if len(seen) > 1 {
			break
		}
	}
	return len(seen)
}
