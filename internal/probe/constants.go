package probe

// Load step outcomes.
const (
	outcomeOK        = "ok"
	outcomeThrottled = "throttled"
	outcomeFailed    = "failed"
)

// Response size cap for every probe request.
const maxResponseBytes = 8 << 20

// Sales trend bounds every product must respect.
const (
	minTrendPercent = 5
	maxTrendPercent = 50
)
