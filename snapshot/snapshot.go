// Package snapshot captures dashboard pages to PNG files with a headless
// browser.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"rental-dashboard/services"
	"rental-dashboard/utils"
)

// Target is one page to capture, relative to the dashboard's base URL.
type Target struct {
	Name string
	Path string
}

// Result is the outcome of one capture.
type Result struct {
	Target Target
	File   string
	Err    error
}

// Options configure a Snapshotter.
type Options struct {
	OutputDir      string
	ChromeBin      string
	Timeout        time.Duration
	MaxConcurrency int
	RateLimitMs    int
	MaxRetries     int
	Width          int
	Height         int
}

// Snapshotter drives one browser and captures pages in parallel tabs.
type Snapshotter struct {
	opts   Options
	logger *utils.Logger
	pool   *utils.WorkerPool
	retry  *utils.RetryConfig
}

func New(opts Options, logger *utils.Logger) *Snapshotter {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.Width <= 0 {
		opts.Width = 1280
	}
	if opts.Height <= 0 {
		opts.Height = 900
	}
	return &Snapshotter{
		opts:   opts,
		logger: logger,
		pool:   utils.NewWorkerPool(opts.MaxConcurrency, opts.RateLimitMs),
		retry: &utils.RetryConfig{
			MaxAttempts: opts.MaxRetries,
			BaseDelay:   time.Second,
			Logger:      logger,
		},
	}
}

// DefaultTargets lists the home, summary and raw pages plus every chart with
// its selectors set to the first value the dataset offers.
func DefaultTargets(d *services.Dashboard) []Target {
	targets := []Target{
		{Name: "home", Path: "/"},
		{Name: "summary", Path: "/summary"},
		{Name: "raw", Path: "/raw"},
	}

	opts := d.Options()
	first := func(values []string) string {
		if len(values) == 0 {
			return ""
		}
		return values[0]
	}

	for _, id := range services.Charts {
		q := url.Values{}
		q.Set("chart", string(id))
		switch id {
		case services.ChartPricePerProvince:
			setIf(q, "beds", first(opts.Beds))
		case services.ChartMap, services.ChartPricePerType:
			setIf(q, "type", first(opts.Types))
		case services.ChartPricePerSqFt, services.ChartOutliers, services.ChartDistribution:
			setIf(q, "province", first(opts.Provinces))
		case services.ChartLeaseTerm:
			for _, t := range opts.LeaseTerms {
				q.Add("lease_term", t)
			}
		}
		targets = append(targets, Target{Name: string(id), Path: "/analysis?" + q.Encode()})
	}
	return targets
}

func setIf(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

// Capture loads every target from baseURL and writes one PNG per target into
// the output directory. It returns every result, and an error when any
// capture failed.
func (s *Snapshotter) Capture(ctx context.Context, baseURL string, targets []Target) ([]Result, error) {
	if err := os.MkdirAll(s.opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("snapshot: create output dir: %w", err)
	}

	chromeBin := findChromeBinary(s.opts.ChromeBin)
	s.logger.Info("[snapshot] Using browser binary: %s", chromeBin)

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.WindowSize(s.opts.Width, s.opts.Height),
	)
	if chromeBin != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	// start the browser once; each capture opens its own tab
	if err := chromedp.Run(browserCtx); err != nil {
		return nil, fmt.Errorf("snapshot: start browser: %w", err)
	}

	var (
		mu      sync.Mutex
		results = make([]Result, len(targets))
	)
	for i, t := range targets {
		i, t := i, t
		s.pool.Submit(func() {
			file, err := s.captureOne(browserCtx, baseURL, t)
			mu.Lock()
			results[i] = Result{Target: t, File: file, Err: err}
			mu.Unlock()
			if err != nil {
				s.logger.Warn("[snapshot] %s failed: %v", t.Name, err)
				return
			}
			s.logger.Info("[snapshot] %s → %s", t.Name, file)
		})
	}
	s.pool.Wait()

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Target.Name, r.Err))
		}
	}
	if len(errs) > 0 {
		return results, fmt.Errorf("snapshot: %d of %d captures failed: %w", len(errs), len(targets), errors.Join(errs...))
	}
	return results, nil
}

func (s *Snapshotter) captureOne(browserCtx context.Context, baseURL string, t Target) (string, error) {
	pageURL := strings.TrimRight(baseURL, "/") + t.Path
	file := filepath.Join(s.opts.OutputDir, fileName(t.Name))

	err := s.retry.Do(browserCtx, "snapshot "+t.Name, func() error {
		tabCtx, cancel := chromedp.NewContext(browserCtx)
		defer cancel()

		tabCtx, cancelTimeout := context.WithTimeout(tabCtx, s.opts.Timeout)
		defer cancelTimeout()

		var buf []byte
		if err := chromedp.Run(tabCtx,
			chromedp.EmulateViewport(int64(s.opts.Width), int64(s.opts.Height)),
			chromedp.Navigate(pageURL),
			chromedp.WaitReady("body", chromedp.ByQuery),
			chromedp.FullScreenshot(&buf, 100),
		); err != nil {
			return fmt.Errorf("chromedp capture %s: %w", pageURL, err)
		}
		return os.WriteFile(file, buf, 0o644)
	})
	if err != nil {
		return "", err
	}
	return file, nil
}

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// fileName turns a target name into a safe PNG file name.
func fileName(name string) string {
	clean := strings.Trim(unsafeName.ReplaceAllString(name, "_"), "_")
	if clean == "" {
		clean = "page"
	}
	return clean + ".png"
}

// findChromeBinary locates Chrome/Chromium, preferring the configured path.
func findChromeBinary(configured string) string {
	if configured != "" {
		return configured
	}
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
