// Package server exposes the dashboard over HTTP: HTML pages for people and
// a JSON/PNG/CSV/XLSX API for everything else.
package server

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"rental-dashboard/charts"
	"rental-dashboard/models"
	"rental-dashboard/services"
	"rental-dashboard/storage"
	"rental-dashboard/utils"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server serves one loaded table. Everything it holds is read-only after
// New, so handlers need no locking.
type Server struct {
	dashboard *services.Dashboard
	renderer  *charts.Renderer
	metrics   *Metrics
	logger    *utils.Logger
	pages     map[string]*template.Template

	report   *models.SummaryReport
	overview *models.Overview
}

// New precomputes the summary and overview pages and parses the templates.
func New(dashboard *services.Dashboard, summary *services.SummaryService, renderer *charts.Renderer, metrics *Metrics, logger *utils.Logger) (*Server, error) {
	overview, err := services.Overview(dashboard.Table())
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	pages, err := parsePages()
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	metrics.setListings(dashboard.Table().Len())

	return &Server{
		dashboard: dashboard,
		renderer:  renderer,
		metrics:   metrics,
		logger:    logger,
		pages:     pages,
		report:    summary.Generate(dashboard.Table()),
		overview:  overview,
	}, nil
}

// Routes returns the full router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/", s.home)
	r.Get("/analysis", s.analysis)
	r.Get("/summary", s.summaryPage)
	r.Get("/raw", s.rawPage)
	r.Get("/contact", s.contactPage)

	r.Get("/healthz", s.health)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/options", s.options)
		r.Get("/summary", s.summary)
		r.Get("/overview", s.overviewJSON)
		r.Get("/charts", s.listCharts)
		r.Get("/charts/{chart}", s.chart)
	})
	return r
}

func requestLogger(logger *utils.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("[http] %s %s → %d in %s (req %s)",
				r.Method, r.URL.Path, ww.Status(), time.Since(start).Round(time.Microsecond), middleware.GetReqID(r.Context()))
		})
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, e *APIError) {
	if e.StatusCode >= http.StatusInternalServerError {
		s.logger.Error("[http] %s %s: %v", r.Method, r.URL.Path, e.Details)
	}
	_ = render.Render(w, r, e)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status":   "ok",
		"listings": s.dashboard.Table().Len(),
	})
}

func (s *Server) options(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, s.dashboard.Options())
}

func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, s.report)
}

func (s *Server) overviewJSON(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, s.overview)
}

func (s *Server) listCharts(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, s.renderer.Catalog().Charts)
}

// chartResponse is the JSON body of a chart request.
type chartResponse struct {
	*services.ChartResult
	Title  string      `json:"title"`
	Kind   charts.Kind `json:"kind"`
	XLabel string      `json:"x_label,omitempty"`
	YLabel string      `json:"y_label,omitempty"`
}

func (s *Server) chart(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "chart")
	spec, ok := s.renderer.Catalog().Lookup(id)
	if !ok {
		s.fail(w, r, errChartNotFound(id))
		return
	}

	q := r.URL.Query()
	params, perr := parseParams(q)
	if perr != nil {
		s.fail(w, r, errInvalidParameter(perr))
		return
	}
	format, ok := parseFormat(q)
	if !ok || (format == formatPNG && !s.renderer.CanRender(services.ChartID(id))) {
		s.fail(w, r, errUnsupportedFormat(id, format))
		return
	}

	res, err := s.dashboard.Build(services.ChartID(id), params)
	if err != nil {
		if errors.Is(err, services.ErrUnknownChart) {
			s.fail(w, r, errChartNotFound(id))
			return
		}
		s.fail(w, r, errInternal(err))
		return
	}
	s.metrics.observeChart(res.Chart, res.Status)

	switch format {
	case formatPNG:
		if res.Status != services.StatusOK {
			// nothing to draw; the client shows the notice instead
			break
		}
		var buf bytes.Buffer
		if err := s.renderer.RenderPNG(&buf, res); err != nil {
			s.fail(w, r, errInternal(err))
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(buf.Bytes())
		return
	case formatCSV, formatXLSX:
		s.export(w, r, res, format)
		return
	}

	render.JSON(w, r, chartResponse{
		ChartResult: res,
		Title:       spec.TitleFor(res.Selection),
		Kind:        spec.Kind,
		XLabel:      spec.XLabel,
		YLabel:      spec.YLabel,
	})
}

// export buffers the whole table so a write error can still become an API
// error instead of a truncated download.
func (s *Server) export(w http.ResponseWriter, r *http.Request, res *services.ChartResult, format string) {
	var buf bytes.Buffer
	var tw storage.TableWriter
	contentType := "text/csv; charset=utf-8"
	switch format {
	case formatXLSX:
		x, err := storage.NewXLSXWriter(&buf, string(res.Chart))
		if err != nil {
			s.fail(w, r, errInternal(err))
			return
		}
		tw = x
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		tw = storage.NewCSVWriter(&buf)
	}

	header, rows := res.Tabular()
	if err := tw.WriteTable(header, rows); err != nil {
		_ = tw.Close()
		s.fail(w, r, errInternal(err))
		return
	}
	if err := tw.Close(); err != nil {
		s.fail(w, r, errInternal(err))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", string(res.Chart)+"."+format))
	_, _ = w.Write(buf.Bytes())
}
