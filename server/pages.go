package server

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"rental-dashboard/charts"
	"rental-dashboard/models"
	"rental-dashboard/services"
)

// maxTableRows caps the rows the analysis page prints under a chart.
const maxTableRows = 200

var pageNames = []string{"home", "analysis", "summary", "raw", "contact"}

func parsePages() (map[string]*template.Template, error) {
	funcs := template.FuncMap{"money": services.FormatMoney}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s page: %w", name, err)
		}
		pages[name] = t
	}
	return pages, nil
}

func (s *Server) page(w http.ResponseWriter, name string, data interface{}) {
	var buf bytes.Buffer
	if err := s.pages[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		s.logger.Error("[http] render %s page: %v", name, err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) home(w http.ResponseWriter, r *http.Request) {
	s.page(w, "home", struct {
		Listings int
		Charts   []charts.Spec
	}{s.dashboard.Table().Len(), s.renderer.Catalog().Charts})
}

type analysisView struct {
	Charts        []charts.Spec
	Spec          charts.Spec
	Options       services.WidgetOptions
	Params        services.Params
	LeaseSelected map[string]bool
	PriceMin      string
	PriceMax      string
	Bins          int

	Title     string
	Result    *services.ChartResult
	ImageURL  string
	Header    []string
	Rows      [][]string
	Truncated bool
	Exports   map[string]string
}

func (s *Server) analysis(w http.ResponseWriter, r *http.Request) {
	catalog := s.renderer.Catalog()
	id := r.URL.Query().Get("chart")
	if id == "" && len(catalog.Charts) > 0 {
		id = catalog.Charts[0].ID
	}
	spec, ok := catalog.Lookup(id)
	if !ok {
		http.Error(w, fmt.Sprintf("chart %q not found", id), http.StatusNotFound)
		return
	}

	params, perr := parseParams(r.URL.Query())
	if perr != nil {
		http.Error(w, perr.Error(), http.StatusBadRequest)
		return
	}
	res, err := s.dashboard.Build(services.ChartID(id), params)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.metrics.observeChart(res.Chart, res.Status)

	opts := s.dashboard.Options()
	view := analysisView{
		Charts:        catalog.Charts,
		Spec:          spec,
		Options:       opts,
		Params:        params,
		LeaseSelected: make(map[string]bool, len(params.LeaseTerms)),
		PriceMin:      formatBound(params.PriceMin, opts.PriceMin),
		PriceMax:      formatBound(params.PriceMax, opts.PriceMax),
		Bins:          params.Bins,
		Title:         spec.TitleFor(res.Selection),
		Result:        res,
	}
	if view.Bins == 0 {
		view.Bins = opts.Bins
	}
	for _, t := range params.LeaseTerms {
		view.LeaseSelected[t] = true
	}

	if res.Status == services.StatusOK {
		query := encodeParams(params)
		if s.renderer.CanRender(res.Chart) {
			query.Set("format", formatPNG)
			view.ImageURL = "/api/charts/" + id + "?" + query.Encode()
		} else {
			view.Header, view.Rows = res.Tabular()
			if len(view.Rows) > maxTableRows {
				view.Rows = view.Rows[:maxTableRows]
				view.Truncated = true
			}
		}
		view.Exports = make(map[string]string, 3)
		for _, f := range []string{formatCSV, formatXLSX, formatJSON} {
			query.Set("format", f)
			view.Exports[strings.ToUpper(f)] = "/api/charts/" + id + "?" + query.Encode()
		}
	}
	s.page(w, "analysis", view)
}

func (s *Server) summaryPage(w http.ResponseWriter, r *http.Request) {
	s.page(w, "summary", struct{ Report *models.SummaryReport }{s.report})
}

func (s *Server) rawPage(w http.ResponseWriter, r *http.Request) {
	sample := s.dashboard.Table().Rows()
	if len(sample) > 50 {
		sample = sample[:50]
	}
	s.page(w, "raw", struct {
		Overview *models.Overview
		Sample   []models.Listing
	}{s.overview, sample})
}

func formatBound(v *float64, fallback float64) string {
	if v != nil {
		return strconv.FormatFloat(*v, 'f', -1, 64)
	}
	return strconv.FormatFloat(fallback, 'f', -1, 64)
}

func (s *Server) contactPage(w http.ResponseWriter, r *http.Request) {
	s.page(w, "contact", nil)
}
