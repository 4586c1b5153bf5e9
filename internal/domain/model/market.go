package model

// Data sources reported in a market summary.
const (
	SourceLive = "live"
	SourceDemo = "demo"
)

// MarketView is the aggregate served to the dashboard and exports.
type MarketView struct {
	Products []Product `json:"products"`
	Insights Insights  `json:"insights"`
}

// Insights groups the derived portfolio figures.
type Insights struct {
	MarketSummary MarketSummary `json:"market_summary"`
	Opportunities []Opportunity `json:"opportunities"`
	Alerts        []Alert       `json:"alerts"`
}

// MarketSummary aggregates a product list.
type MarketSummary struct {
	TotalRevenue      string  `json:"total_revenue"`
	TotalRevenueValue int64   `json:"total_revenue_value"`
	TotalWeeklySales  int     `json:"total_weekly_sales"`
	AvgWeeklySales    float64 `json:"avg_weekly_sales"`
	TopOpportunity    string  `json:"top_opportunity"`
	CriticalAlerts    int     `json:"critical_alerts"`
	MarketHealth      string  `json:"market_health"`
	ProductCount      int     `json:"product_count"`
	DataSource        string  `json:"data_source"`
}

// Opportunity is a niche worth entering.
type Opportunity struct {
	Niche            string `json:"niche"`
	Growth           string `json:"growth"`
	RevenuePotential string `json:"revenue_potential"`
	Action           string `json:"action"`
	Urgency          string `json:"urgency"`
}

// Alert is an actionable notice tied to one product.
type Alert struct {
	Type          string `json:"type"`
	Message       string `json:"message"`
	Action        string `json:"action"`
	RevenueImpact string `json:"revenue_impact"`
}
