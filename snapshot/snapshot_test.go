package snapshot

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-dashboard/models"
	"rental-dashboard/services"
	"rental-dashboard/utils"
)

func newTestDashboard() *services.Dashboard {
	table := services.NewTable([]models.Listing{
		{Province: "Alberta", Type: "Apartment", Beds: 1, Price: 1000, SqFeet: 500, LeaseTerm: "Long Term"},
		{Province: "Ontario", Type: "House", Beds: 3, Price: 2500, SqFeet: 1400, LeaseTerm: "Short Term"},
	})
	return services.NewDashboard(table, utils.NewDiscardLogger(), services.DashboardOptions{})
}

func TestDefaultTargets(t *testing.T) {
	targets := DefaultTargets(newTestDashboard())
	require.Len(t, targets, 3+len(services.Charts))

	byName := make(map[string]string, len(targets))
	for _, tg := range targets {
		byName[tg.Name] = tg.Path
	}
	assert.Equal(t, "/", byName["home"])
	assert.Equal(t, "/analysis?beds=1&chart=price-per-province", byName["price-per-province"])
	assert.Equal(t, "/analysis?chart=map&type=Apartment", byName["map"])
	assert.Equal(t, "/analysis?chart=distribution&province=Alberta", byName["distribution"])
	assert.Equal(t, "/analysis?chart=lease-term&lease_term=Long+Term&lease_term=Short+Term", byName["lease-term"])
	assert.Equal(t, "/analysis?chart=scatter", byName["scatter"])
}

func TestDefaultTargetsEmptyDataset(t *testing.T) {
	d := services.NewDashboard(services.NewTable(nil), utils.NewDiscardLogger(), services.DashboardOptions{})
	for _, tg := range DefaultTargets(d) {
		assert.NotContains(t, tg.Path, "beds=")
		assert.NotContains(t, tg.Path, "province=")
	}
}

func TestFileName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"price-per-province", "price-per-province.png"},
		{"raw data/page", "raw_data_page.png"},
		{"///", "page.png"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, fileName(tt.in))
	}
}

func TestFindChromeBinaryPrefersConfigured(t *testing.T) {
	assert.Equal(t, "/opt/custom/chrome", findChromeBinary("/opt/custom/chrome"))

	t.Setenv("CHROME_BIN", "/env/chrome")
	assert.Equal(t, "/env/chrome", findChromeBinary(""))
}

func TestCaptureWritesPNGs(t *testing.T) {
	if findChromeBinary("") == "" {
		t.Skip("no Chrome/Chromium binary available")
	}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, "<html><body><h1>%s</h1></body></html>", r.URL.Path)
	}))
	defer ts.Close()

	dir := t.TempDir()
	s := New(Options{
		OutputDir:      dir,
		Timeout:        30 * time.Second,
		MaxConcurrency: 2,
		MaxRetries:     1,
		Width:          640,
		Height:         480,
	}, utils.NewDiscardLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	results, err := s.Capture(ctx, ts.URL, []Target{{Name: "home", Path: "/"}, {Name: "summary", Path: "/summary"}})
	if err != nil && strings.Contains(err.Error(), "start browser") {
		t.Skipf("browser could not start: %v", err)
	}
	require.NoError(t, err)
	require.Len(t, results, 2)

	for _, r := range results {
		data, err := os.ReadFile(r.File)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(data), "\x89PNG"), "%s is not a PNG", r.File)
	}
}
