package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/arthursden/internal/probe"
)

// Default configuration constants.
const (
	defaultRequests     = 50
	defaultWorkers      = 2 // multiplier for runtime.NumCPU()
	defaultTimeout      = 30 * time.Second
	defaultProbeTimeout = 5 * time.Minute
	defaultPassword     = "admin123"
	passwordEnv         = "ARTHURSDEN_PROBE_PASSWORD"
)

func main() {
	password := os.Getenv(passwordEnv)
	if password == "" {
		password = defaultPassword
	}

	var (
		baseURL    = flag.String("url", "http://localhost:5000", "Base URL of the dashboard")
		username   = flag.String("user", "admin", "Account to log in with")
		pass       = flag.String("password", password, "Password of that account")
		requests   = flag.Int("requests", defaultRequests, "Market data requests sent in the load step")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		outputFile = flag.String("output", "", "Save the downloaded CSV export to this file")
		logFile    = flag.String("log", "", "Log file for probe output (default: probe_log_TIMESTAMP.log)")
		verbose    = flag.Bool("verbose", false, "Log every load request")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		probe.ShowHelp()
		return
	}

	if err := probe.SetupLogging(*logFile, *verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultProbeTimeout)
	defer cancel()

	config := &probe.Config{
		BaseURL:    *baseURL,
		Username:   *username,
		Password:   *pass,
		Requests:   *requests,
		Workers:    *workers,
		Timeout:    *timeout,
		OutputFile: *outputFile,
		Verbose:    *verbose,
	}

	if _, err := probe.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Probe failed: " + err.Error() + "\n")
		cancel()
		os.Exit(1)
	}
}
