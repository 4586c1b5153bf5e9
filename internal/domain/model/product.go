package model

import "html"

// Priority tiers assigned by the estimator.
const (
	PriorityCritical = "Critical"
	PriorityHigh     = "High"
	PriorityMedium   = "Medium"
)

// Market trend labels paired with the priority tiers.
const (
	TrendHot      = "Hot"
	TrendTrending = "Trending"
	TrendStable   = "Stable"
)

// Product is a listing enriched with estimated sales figures.
type Product struct {
	ID             int64          `json:"id"`
	Title          string         `json:"title"`
	Shop           string         `json:"shop"`
	Price          float64        `json:"price"`
	Currency       string         `json:"currency"`
	Views          int            `json:"views"`
	Favorites      int            `json:"favorites"`
	WeeklySales    int            `json:"weekly_sales"`
	MonthlySales   int            `json:"monthly_sales"`
	Revenue        int64          `json:"revenue"`
	SalesTrend     string         `json:"sales_trend"`
	MarketTrend    string         `json:"market_trend"`
	Priority       string         `json:"priority"`
	PriorityScore  float64        `json:"priority_score"`
	SearchTerm     string         `json:"search_term"`
	URL            string         `json:"url,omitempty"`
	ImageURL       string         `json:"image_url,omitempty"`
	Tags           []string       `json:"tags,omitempty"`
	WatchlistMatch bool           `json:"watchlist_match"`
	SellerProfile  *SellerProfile `json:"seller_profile,omitempty"`
}

// IsCritical reports whether the product sits in the top tier.
func (p Product) IsCritical() bool {
	return p.Priority == PriorityCritical
}

// Term returns the search term as plain text. Terms saved by users are
// stored HTML-escaped.
func (p Product) Term() string {
	return html.UnescapeString(p.SearchTerm)
}

// SellerProfile is shop metadata flattened out of a listing.
type SellerProfile struct {
	ShopName      string  `json:"shop_name"`
	TotalSales    int     `json:"total_sales"`
	ReviewAverage float64 `json:"review_average"`
	ReviewCount   int     `json:"review_count"`
	ShopURL       string  `json:"shop_url,omitempty"`
	IconURL       string  `json:"icon_url,omitempty"`
	CreatedAt     string  `json:"created_at,omitempty"`
}
