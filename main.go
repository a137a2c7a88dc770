package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rental-dashboard/charts"
	"rental-dashboard/config"
	"rental-dashboard/server"
	"rental-dashboard/services"
	"rental-dashboard/snapshot"
	"rental-dashboard/storage"
	"rental-dashboard/utils"
)

func main() {
	summaryOnly := flag.Bool("summary", false, "print the summary report and exit")
	snapshotOnly := flag.Bool("snapshot", false, "capture every dashboard page to PNG and exit")
	seed := flag.Bool("seed", false, "copy the CSV dataset into the PostgreSQL table and exit")
	flag.Parse()

	logger := utils.NewLogger()
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Invalid configuration: %v", err)
		os.Exit(1)
	}
	logger.SetLevel(utils.ParseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("=== Rental Price Dashboard starting ===")
	logger.Info("Config: source: %s | bins: %d | scatter min: %.0f sq ft | log: %s",
		cfg.DataSource, cfg.HistogramBins, cfg.ScatterMinSqFeet, cfg.LogLevel)

	retry := &utils.RetryConfig{
		MaxAttempts: cfg.MaxRetries,
		BaseDelay:   2 * time.Second,
		Logger:      logger,
	}

	if *seed {
		if err := seedPostgres(ctx, cfg, retry, logger); err != nil {
			logger.Error("Seeding PostgreSQL failed: %v", err)
			os.Exit(1)
		}
		return
	}

	table, err := loadTable(ctx, cfg, retry, logger)
	if err != nil {
		if storage.IsNotFound(err) {
			logger.Error("Dataset not found: %v", err)
		} else {
			logger.Error("Failed to load dataset: %v", err)
		}
		os.Exit(1)
	}
	logger.Info("Loaded %d listings", table.Len())

	summarySvc := services.NewSummaryService(logger)
	if *summaryOnly {
		summarySvc.Print(os.Stdout, summarySvc.Generate(table))
		return
	}

	catalog, err := charts.DefaultCatalog()
	if err != nil {
		logger.Error("Failed to load chart catalog: %v", err)
		os.Exit(1)
	}
	dashboard := services.NewDashboard(table, logger, services.DashboardOptions{
		HistogramBins:    cfg.HistogramBins,
		ScatterMinSqFeet: cfg.ScatterMinSqFeet,
	})
	srv, err := server.New(dashboard, summarySvc,
		charts.NewRenderer(catalog, cfg.ChartWidth, cfg.ChartHeight),
		server.NewMetrics(), logger)
	if err != nil {
		logger.Error("Failed to build server: %v", err)
		os.Exit(1)
	}

	if *snapshotOnly {
		if err := captureSnapshots(ctx, cfg, srv, dashboard, logger); err != nil {
			logger.Error("Snapshot failed: %v", err)
			os.Exit(1)
		}
		return
	}

	if err := serve(ctx, cfg, srv.Routes(), logger); err != nil {
		logger.Error("Server error: %v", err)
		os.Exit(1)
	}
}

func newReader(ctx context.Context, cfg *config.Config, retry *utils.RetryConfig) (storage.ListingReader, error) {
	if cfg.DataSource == "postgres" {
		return storage.NewPostgresReader(ctx, cfg.DSN(), cfg.PostgresTable, retry)
	}
	return storage.NewCSVReader(cfg.CSVPath), nil
}

func loadTable(ctx context.Context, cfg *config.Config, retry *utils.RetryConfig, logger *utils.Logger) (*services.Table, error) {
	reader, err := newReader(ctx, cfg, retry)
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return services.LoadTable(ctx, reader, services.NewCleaner(logger))
}

func seedPostgres(ctx context.Context, cfg *config.Config, retry *utils.RetryConfig, logger *utils.Logger) error {
	reader := storage.NewCSVReader(cfg.CSVPath)
	defer reader.Close()
	raw, err := reader.Read(ctx)
	if err != nil {
		return err
	}

	writer, err := storage.NewPostgresWriter(ctx, cfg.DSN(), cfg.PostgresTable, retry)
	if err != nil {
		return err
	}
	defer writer.Close()

	if err := writer.Write(ctx, raw); err != nil {
		return err
	}
	logger.Info("Seeded %d rows from %s into table %s", len(raw), cfg.CSVPath, cfg.PostgresTable)
	return nil
}

func serve(ctx context.Context, cfg *config.Config, handler http.Handler, logger *utils.Logger) error {
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Dashboard listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down…")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// captureSnapshots serves the dashboard on a loopback port just long enough
// to photograph every page.
func captureSnapshots(ctx context.Context, cfg *config.Config, srv *server.Server, dashboard *services.Dashboard, logger *utils.Logger) error {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	httpServer := &http.Server{Handler: srv.Routes(), ReadHeaderTimeout: 10 * time.Second}
	go func() { _ = httpServer.Serve(ln) }()
	defer httpServer.Close()

	shooter := snapshot.New(snapshot.Options{
		OutputDir:      cfg.SnapshotDir,
		ChromeBin:      cfg.ChromeBin,
		Timeout:        cfg.SnapshotTimeout,
		MaxConcurrency: cfg.MaxConcurrency,
		RateLimitMs:    cfg.RateLimitMs,
		MaxRetries:     cfg.MaxRetries,
		Width:          cfg.ChartWidth + 280,
		Height:         cfg.ChartHeight + 300,
	}, logger)

	results, err := shooter.Capture(ctx, "http://"+ln.Addr().String(), snapshot.DefaultTargets(dashboard))
	saved := 0
	for _, r := range results {
		if r.Err == nil {
			saved++
		}
	}
	logger.Info("Saved %d/%d snapshots to %s", saved, len(results), cfg.SnapshotDir)
	return err
}
