package probe

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/okian/arthursden/pkg/logger"
)

// SetupLogging configures logging to both console and a rotating file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string, verbose bool) error {
	if logFile == "" {
		logFile = "probe_log_" + time.Now().Format("20060102_150405") + ".log"
	}
	if err := logger.Init(logger.WithFile(logFile)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		logger.SetLevel(slog.LevelDebug)
	}
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the probe tool.
func ShowHelp() {
	os.Stdout.WriteString(`ArthursDen Probe
================

Logs in to a running dashboard, verifies the market view and CSV export,
then measures the market data endpoint under concurrent load.

Usage:
  go run ./cmd/probe [options]

Options:
  -url string
        Base URL of the dashboard (default "http://localhost:5000")
  -user string
        Account to log in with (default "admin")
  -password string
        Password of that account (default $ARTHURSDEN_PROBE_PASSWORD or "admin123")
  -requests int
        Market data requests sent in the load step (default 50)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -output string
        Save the downloaded CSV export to this file
  -log string
        Log file for probe output (default: probe_log_TIMESTAMP.log)
  -verbose
        Log every load request
  -help
        Show this help message

Examples:
  # Probe a local dashboard with the seeded admin
  go run ./cmd/probe

  # Push past the rate limit to see throttling
  go run ./cmd/probe -requests 200 -workers 16

  # Keep the export
  go run ./cmd/probe -output exports/latest.csv
`)
}
