package probe

import (
	"time"

	"github.com/okian/arthursden/internal/domain/model"
)

// Config holds configuration for a probe run.
type Config struct {
	BaseURL    string        // Base URL of the dashboard
	Username   string        // Account used to log in
	Password   string        // Password of that account
	Requests   int           // Market data requests sent in the load step
	Workers    int           // Concurrent workers in the load step
	Timeout    time.Duration // HTTP request timeout
	OutputFile string        // Where the exported CSV is saved; empty skips saving
	Verbose    bool          // Log every load request
}

// Stats holds probe statistics.
type Stats struct {
	Products          int
	DataSource        string
	CriticalAlerts    int
	ExportRows        int
	RequestsSent      int
	RequestsOK        int
	RequestsThrottled int
	RequestsFailed    int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}

type healthResponse struct {
	Status        string `json:"status"`
	App           string `json:"app"`
	Authenticated bool   `json:"authenticated"`
}

type loginResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Redirect string `json:"redirect"`
	Error    string `json:"error"`
}

type marketData struct {
	model.MarketView
	GeneratedAt string `json:"generated_at"`
}
