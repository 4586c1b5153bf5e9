// Package probe drives a running dashboard end to end: it logs in, reads
// and verifies the market view and export, then measures the market data
// endpoint under concurrent load.
package probe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/okian/arthursden/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0o750
	filePermission      = 0o600
)

// ErrCheckFailed is returned when the dashboard answers but misbehaves.
var ErrCheckFailed = errors.New("probe check failed")

// Run executes the complete probe.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Named("probe")

	log.Info(ctx, "starting dashboard probe",
		logger.String("baseURL", config.BaseURL),
		logger.String("username", config.Username),
		logger.Int("requests", config.Requests),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()))

	client, err := NewClient(config.BaseURL, config.Timeout)
	if err != nil {
		return nil, err
	}

	// Step 1: Check service health
	if err := checkHealth(ctx, client, false); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Log in and confirm the session sticks
	if err := login(ctx, client, config); err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	if err := checkHealth(ctx, client, true); err != nil {
		return nil, fmt.Errorf("session check failed: %w", err)
	}

	// Step 3: Read and verify the market view
	var data marketData
	if err := client.GetJSON(ctx, "/api/market-data", &data); err != nil {
		return nil, fmt.Errorf("market data retrieval failed: %w", err)
	}
	if err := verifyMarketView(data); err != nil {
		return nil, fmt.Errorf("market data verification failed: %w", err)
	}
	stats.Products = len(data.Products)
	stats.DataSource = data.Insights.MarketSummary.DataSource
	stats.CriticalAlerts = data.Insights.MarketSummary.CriticalAlerts
	log.Info(ctx, "market view verified",
		logger.Int("products", stats.Products),
		logger.String("dataSource", stats.DataSource),
		logger.String("totalRevenue", data.Insights.MarketSummary.TotalRevenue))

	// Step 4: Download and verify the export
	csvBody, rows, err := fetchExport(ctx, client, config.Username, data.MarketView)
	if err != nil {
		return nil, fmt.Errorf("export verification failed: %w", err)
	}
	stats.ExportRows = rows
	if config.OutputFile != "" {
		if err := saveExport(config.OutputFile, csvBody); err != nil {
			log.Warn(ctx, "failed to save export", logger.Error(err))
		} else {
			log.Info(ctx, "export saved", logger.String("filename", config.OutputFile))
		}
	}

	// Step 5: Measure market data under concurrent load
	runLoad(ctx, client, config, stats)

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	if stats.RequestsFailed > 0 {
		return stats, fmt.Errorf("%w: %d load requests failed", ErrCheckFailed, stats.RequestsFailed)
	}
	log.Info(ctx, "probe completed successfully")
	return stats, nil
}

// checkHealth verifies /health and the session flag it reports.
func checkHealth(ctx context.Context, client *Client, wantAuthenticated bool) error {
	var health healthResponse
	if err := client.GetJSON(ctx, "/health", &health); err != nil {
		return err
	}
	if health.Status != "healthy" {
		return fmt.Errorf("%w: status %q", ErrCheckFailed, health.Status)
	}
	if health.Authenticated != wantAuthenticated {
		return fmt.Errorf("%w: authenticated=%t, want %t", ErrCheckFailed, health.Authenticated, wantAuthenticated)
	}
	return nil
}

func login(ctx context.Context, client *Client, config *Config) error {
	resp, body, err := client.PostJSON(ctx, "/login", map[string]string{
		"username": config.Username,
		"password": config.Password,
	})
	if err != nil {
		return err
	}
	var out loginResponse
	if err := unmarshalJSON(body, &out); err != nil {
		return fmt.Errorf("decode login response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || !out.Success {
		return fmt.Errorf("%w: status %d: %s", ErrCheckFailed, resp.StatusCode, out.Error)
	}
	return nil
}

// runLoad sends config.Requests market data requests over config.Workers
// goroutines. Rate limited answers are counted apart from failures.
func runLoad(ctx context.Context, client *Client, config *Config, stats *Stats) {
	if config.Requests <= 0 {
		return
	}
	log := logger.Named("probe")

	var ok, throttled, failed atomic.Int64
	p := pool.New().WithMaxGoroutines(max(config.Workers, 1))
	for i := range config.Requests {
		p.Go(func() {
			outcome := loadRequest(ctx, client)
			switch outcome {
			case outcomeOK:
				ok.Add(1)
			case outcomeThrottled:
				throttled.Add(1)
			default:
				failed.Add(1)
			}
			if config.Verbose {
				log.Debug(ctx, "load request", logger.Int("n", i+1), logger.String("outcome", outcome))
			}
		})
	}
	p.Wait()

	stats.RequestsSent = config.Requests
	stats.RequestsOK = int(ok.Load())
	stats.RequestsThrottled = int(throttled.Load())
	stats.RequestsFailed = int(failed.Load())
}

func loadRequest(ctx context.Context, client *Client) string {
	resp, _, err := client.Get(ctx, "/api/market-data")
	if err != nil {
		return outcomeFailed
	}
	switch resp.StatusCode {
	case http.StatusOK:
		return outcomeOK
	case http.StatusTooManyRequests:
		return outcomeThrottled
	default:
		return outcomeFailed
	}
}

// saveExport writes the exported CSV to filename.
func saveExport(filename string, data []byte) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(filename, data, filePermission); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// displayFinalStats logs the final probe statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var requestsPerSecond float64
	if stats.Duration > 0 {
		requestsPerSecond = float64(stats.RequestsSent) / stats.Duration.Seconds()
	}

	logger.Named("probe").Info(ctx, "final statistics",
		logger.Int("products", stats.Products),
		logger.String("dataSource", stats.DataSource),
		logger.Int("criticalAlerts", stats.CriticalAlerts),
		logger.Int("exportRows", stats.ExportRows),
		logger.Int("requestsSent", stats.RequestsSent),
		logger.Int("requestsOK", stats.RequestsOK),
		logger.Int("requestsThrottled", stats.RequestsThrottled),
		logger.Int("requestsFailed", stats.RequestsFailed),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("requestsPerSecond", requestsPerSecond))
}
