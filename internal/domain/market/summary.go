package market

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/okian/arthursden/internal/domain/model"
	"github.com/okian/arthursden/internal/domain/money"
)

// Summary tuning.
const (
	topN = 3

	healthExcellent = "Excellent"
	healthGood      = "Good"

	alertCriticalOpportunity = "Critical Opportunity"
)

// Summarize derives totals, opportunities and alerts from products.
// Money strings use the most common currency among the products.
func Summarize(products []model.Product, source string) model.Insights {
	currency := dominantCurrency(products)

	var (
		totalRevenue int64
		totalWeekly  int
		critical     int
	)
	for _, p := range products {
		totalRevenue += p.Revenue
		totalWeekly += p.WeeklySales
		if p.IsCritical() {
			critical++
		}
	}

	avg := 0.0
	if len(products) > 0 {
		avg = math.Round(float64(totalWeekly)/float64(len(products))*10) / 10
	}

	ranked := slices.Clone(products)
	slices.SortStableFunc(ranked, func(a, b model.Product) int {
		return cmp.Compare(b.Revenue, a.Revenue)
	})
	top := ranked[:min(topN, len(ranked))]

	opportunities := make([]model.Opportunity, 0, len(top))
	alerts := make([]model.Alert, 0, len(top))
	for _, p := range top {
		if !p.IsCritical() {
			continue
		}
		opportunities = append(opportunities, opportunityFor(p))
		alerts = append(alerts, alertFor(p))
	}

	topOpportunity := ""
	if len(ranked) > 0 {
		topOpportunity = fmt.Sprintf("%s (%s growth)", Niche(ranked[0]), ranked[0].SalesTrend)
	}

	health := healthGood
	if critical > 0 {
		health = healthExcellent
	}

	return model.Insights{
		MarketSummary: model.MarketSummary{
			TotalRevenue:      money.FormatWhole(totalRevenue, currency),
			TotalRevenueValue: totalRevenue,
			TotalWeeklySales:  totalWeekly,
			AvgWeeklySales:    avg,
			TopOpportunity:    topOpportunity,
			CriticalAlerts:    critical,
			MarketHealth:      health,
			ProductCount:      len(products),
			DataSource:        source,
		},
		Opportunities: opportunities,
		Alerts:        alerts,
	}
}

// Niche is the title-cased search term a product was found under, or its
// title when the term is unknown.
func Niche(p model.Product) string {
	term := strings.TrimSpace(p.Term())
	if term == "" {
		return p.Title
	}
	return cases.Title(language.English).String(term)
}

func opportunityFor(p model.Product) model.Opportunity {
	return model.Opportunity{
		Niche:            Niche(p),
		Growth:           p.SalesTrend,
		RevenuePotential: money.FormatWhole(p.Revenue, p.Currency) + "/month",
		Action:           fmt.Sprintf("Enter now: top listings sell around %d units a week at %s", p.WeeklySales, money.Format(p.Price, p.Currency)),
		Urgency:          model.PriorityCritical,
	}
}

func alertFor(p model.Product) model.Alert {
	return model.Alert{
		Type:          alertCriticalOpportunity,
		Message:       fmt.Sprintf("%q is showing %s growth in %s", p.Title, p.SalesTrend, p.Term()),
		Action:        fmt.Sprintf("Review %s's pricing and launch a competing listing within 7 days", p.Shop),
		RevenueImpact: money.FormatWhole(p.Revenue, p.Currency) + "/month potential",
	}
}

// dominantCurrency returns the most common currency, ties going to the one
// seen first.
func dominantCurrency(products []model.Product) string {
	counts := make(map[string]int)
	top := 0
	for _, p := range products {
		counts[p.Currency]++
		top = max(top, counts[p.Currency])
	}
	for _, p := range products {
		if counts[p.Currency] == top {
			return p.Currency
		}
	}
	return money.DefaultCurrency
}
