package probe

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/okian/arthursden/internal/adapters/export"
	"github.com/okian/arthursden/internal/domain/model"
)

var (
	priorities = []string{model.PriorityCritical, model.PriorityHigh, model.PriorityMedium}
	sources    = []string{model.SourceLive, model.SourceDemo}
)

func unmarshalJSON(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// verifyMarketView checks the invariants every market view must hold.
func verifyMarketView(data marketData) error {
	if len(data.Products) == 0 {
		return fmt.Errorf("%w: no products", ErrCheckFailed)
	}
	if data.GeneratedAt == "" {
		return fmt.Errorf("%w: missing generated_at", ErrCheckFailed)
	}

	var (
		errs     []error
		weekly   int
		critical int
	)
	for _, p := range data.Products {
		weekly += p.WeeklySales
		if p.IsCritical() {
			critical++
		}
		if p.WeeklySales < 1 {
			errs = append(errs, fmt.Errorf("product %d: weekly_sales %d below 1", p.ID, p.WeeklySales))
		}
		if !slices.Contains(priorities, p.Priority) {
			errs = append(errs, fmt.Errorf("product %d: unknown priority %q", p.ID, p.Priority))
		}
		if err := checkTrend(p.SalesTrend); err != nil {
			errs = append(errs, fmt.Errorf("product %d: %w", p.ID, err))
		}
	}

	s := data.Insights.MarketSummary
	if s.ProductCount != len(data.Products) {
		errs = append(errs, fmt.Errorf("product_count %d, want %d", s.ProductCount, len(data.Products)))
	}
	if s.TotalWeeklySales != weekly {
		errs = append(errs, fmt.Errorf("total_weekly_sales %d, want %d", s.TotalWeeklySales, weekly))
	}
	if s.CriticalAlerts != critical {
		errs = append(errs, fmt.Errorf("critical_alerts %d, want %d", s.CriticalAlerts, critical))
	}
	if !slices.Contains(sources, s.DataSource) {
		errs = append(errs, fmt.Errorf("unknown data_source %q", s.DataSource))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrCheckFailed, err)
	}
	return nil
}

// checkTrend parses "+N%" and checks N against the trend bounds.
func checkTrend(trend string) error {
	raw, ok := strings.CutPrefix(trend, "+")
	if ok {
		raw, ok = strings.CutSuffix(raw, "%")
	}
	n, err := strconv.Atoi(raw)
	if !ok || err != nil {
		return fmt.Errorf("malformed sales_trend %q", trend)
	}
	if n < minTrendPercent || n > maxTrendPercent {
		return fmt.Errorf("sales_trend %d%% outside [%d,%d]", n, minTrendPercent, maxTrendPercent)
	}
	return nil
}

// fetchExport downloads the CSV export and checks its headers and rows
// against view. It returns the body and the number of rows including the
// header.
func fetchExport(ctx context.Context, client *Client, username string, view model.MarketView) ([]byte, int, error) {
	resp, body, err := client.Get(ctx, "/api/export")
	if err != nil {
		return nil, 0, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("%w: export status %d", ErrCheckFailed, resp.StatusCode)
	}
	if mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type")); mediaType != "text/csv" {
		return nil, 0, fmt.Errorf("%w: export content type %q", ErrCheckFailed, mediaType)
	}
	_, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition"))
	if err != nil || params["filename"] != export.Filename(username) {
		return nil, 0, fmt.Errorf("%w: export filename %q", ErrCheckFailed, params["filename"])
	}

	records, err := csv.NewReader(bytes.NewReader(body)).ReadAll()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: parse export: %w", ErrCheckFailed, err)
	}
	if len(records) == 0 || !slices.Equal(records[0], export.Header) {
		return nil, 0, fmt.Errorf("%w: unexpected export header", ErrCheckFailed)
	}
	// Live views are rebuilt per request and may differ between calls.
	rows := len(records) - 1
	if view.Insights.MarketSummary.DataSource == model.SourceDemo && rows != len(view.Products) {
		return nil, 0, fmt.Errorf("%w: export has %d rows, want %d", ErrCheckFailed, rows, len(view.Products))
	}
	if rows == 0 {
		return nil, 0, fmt.Errorf("%w: export has no rows", ErrCheckFailed)
	}
	return body, len(records), nil
}
