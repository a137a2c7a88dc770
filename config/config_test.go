package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "csv", cfg.DataSource)
	assert.Equal(t, "./rentfaster_cleaned.csv", cfg.CSVPath)
	assert.Equal(t, 30, cfg.HistogramBins)
	assert.Equal(t, 50.0, cfg.ScatterMinSqFeet)
	assert.Equal(t, 60*time.Second, cfg.SnapshotTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("DATA_SOURCE", "postgres")
	t.Setenv("POSTGRES_HOST", "db")
	t.Setenv("POSTGRES_TABLE", "listings")
	t.Setenv("HISTOGRAM_BINS", "12")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DataSource)
	assert.Equal(t, 12, cfg.HistogramBins)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Contains(t, cfg.DSN(), "host=db")
	assert.Contains(t, cfg.DSN(), "sslmode=disable")
}

func TestFromEnvRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		key, val string
	}{
		{"DATA_SOURCE", "sqlite"},
		{"HISTOGRAM_BINS", "0"},
		{"LOG_LEVEL", "verbose"},
		{"HISTOGRAM_BINS", "many"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.val, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}
