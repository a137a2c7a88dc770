package config

import (
	"fmt"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	DataSource string `envconfig:"DATA_SOURCE" default:"csv" validate:"oneof=csv postgres"`
	CSVPath    string `envconfig:"CSV_PATH" default:"./rentfaster_cleaned.csv" validate:"required_if=DataSource csv"`

	PostgresHost     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	PostgresPort     string `envconfig:"POSTGRES_PORT" default:"5432"`
	PostgresUser     string `envconfig:"POSTGRES_USER" default:"dashboard"`
	PostgresPassword string `envconfig:"POSTGRES_PASSWORD" default:"dashboard"`
	PostgresDB       string `envconfig:"POSTGRES_DB" default:"rental_db"`
	PostgresSSLMode  string `envconfig:"POSTGRES_SSLMODE" default:"disable"`
	PostgresTable    string `envconfig:"POSTGRES_TABLE" default:"rentals" validate:"required"`

	HTTPAddr         string        `envconfig:"HTTP_ADDR" default:":8080" validate:"required"`
	ShutdownTimeout  time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	HistogramBins    int           `envconfig:"HISTOGRAM_BINS" default:"30" validate:"min=1,max=500"`
	ScatterMinSqFeet float64       `envconfig:"SCATTER_MIN_SQ_FEET" default:"50" validate:"gte=0"`
	ChartWidth       int           `envconfig:"CHART_WIDTH" default:"1000" validate:"min=200"`
	ChartHeight      int           `envconfig:"CHART_HEIGHT" default:"600" validate:"min=200"`

	MaxConcurrency  int           `envconfig:"MAX_CONCURRENCY" default:"2" validate:"min=1"`
	RateLimitMs     int           `envconfig:"RATE_LIMIT_MS" default:"500" validate:"gte=0"`
	MaxRetries      int           `envconfig:"MAX_RETRIES" default:"3" validate:"min=1"`
	SnapshotDir     string        `envconfig:"SNAPSHOT_DIR" default:"./output/snapshots"`
	SnapshotTimeout time.Duration `envconfig:"SNAPSHOT_TIMEOUT" default:"60s"`
	ChromeBin       string        `envconfig:"CHROME_BIN"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
}

// Load reads the .env file and returns a populated, validated Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}
	return FromEnv()
}

// FromEnv decodes the process environment without touching .env files.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: decode env: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}
