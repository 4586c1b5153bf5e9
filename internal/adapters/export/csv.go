// Package export renders market views as downloadable documents.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"

	"github.com/okian/arthursden/internal/domain/model"
	"github.com/okian/arthursden/internal/domain/money"
)

// Header is the first CSV row.
var Header = []string{
	"Product", "Shop", "Price", "Views", "Favorites", "Weekly Sales",
	"Revenue", "Priority", "Trend", "Search Term", "URL",
}

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// Filename is the attachment name offered for username's export.
func Filename(username string) string {
	return "arthursden_intelligence_" + unsafeFilename.ReplaceAllString(username, "_") + ".csv"
}

// WriteCSV writes one row per product. Money cells use each product's own
// currency.
func WriteCSV(w io.Writer, products []model.Product) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, p := range products {
		row := []string{
			cell(p.Title),
			cell(p.Shop),
			money.Format(p.Price, p.Currency),
			strconv.Itoa(p.Views),
			strconv.Itoa(p.Favorites),
			strconv.Itoa(p.WeeklySales),
			money.FormatWhole(p.Revenue, p.Currency),
			p.Priority,
			p.SalesTrend,
			cell(p.Term()),
			p.URL,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", p.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// cell neutralises values a spreadsheet would evaluate as a formula.
func cell(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@':
		return "'" + s
	}
	return s
}
