package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rental-dashboard/services"
)

// Metrics holds the dashboard's Prometheus collectors on a private registry.
type Metrics struct {
	registry      *prometheus.Registry
	chartRequests *prometheus.CounterVec
	listings      prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		chartRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_chart_requests_total",
			Help: "Chart requests by chart id and result status.",
		}, []string{"chart", "status"}),
		listings: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_listings_loaded",
			Help: "Number of listings in the loaded table.",
		}),
	}
	m.registry.MustRegister(
		m.chartRequests,
		m.listings,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) observeChart(id services.ChartID, status services.Status) {
	m.chartRequests.WithLabelValues(string(id), string(status)).Inc()
}

func (m *Metrics) setListings(n int) {
	m.listings.Set(float64(n))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
