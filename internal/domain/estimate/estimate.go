// Package estimate derives sales and priority figures from one marketplace
// listing. Every function here is pure: the same listing always yields the
// same product.
package estimate

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"math"
	"strings"
	"time"

	"github.com/okian/arthursden/internal/domain/model"
	"github.com/okian/arthursden/internal/domain/money"
	"github.com/okian/arthursden/internal/domain/sanitize"
)

// Estimation constants.
const (
	maxScoreValue      = 100
	shopSalesPerPoint  = 100
	engagementPerPoint = 50
	favoriteWeight     = 2
	criticalThreshold  = 70
	highThreshold      = 40
	weeksPerMonth      = 4
	minTrendPercent    = 5
	maxTrendPercent    = 50
	viewsPerTrendPoint = 100
	maxTitleLength     = 200
)

// ErrInvalidListing marks a listing that cannot be estimated. Callers skip
// the listing and carry on with the rest of the batch.
var ErrInvalidListing = errors.New("invalid listing")

// Estimate decodes one raw listing and estimates it.
func Estimate(raw json.RawMessage, searchTerm string) (model.Product, error) {
	var l model.Listing
	if err := json.Unmarshal(raw, &l); err != nil {
		return model.Product{}, fmt.Errorf("%w: %w", ErrInvalidListing, err)
	}
	return FromListing(l, searchTerm)
}

// FromListing builds a Product from a decoded listing.
func FromListing(l model.Listing, searchTerm string) (model.Product, error) {
	switch {
	case l.ListingID == nil:
		return model.Product{}, fmt.Errorf("%w: missing listing_id", ErrInvalidListing)
	case l.Title == nil || strings.TrimSpace(*l.Title) == "":
		return model.Product{}, fmt.Errorf("%w: missing title", ErrInvalidListing)
	case l.Price == nil:
		return model.Product{}, fmt.Errorf("%w: missing price", ErrInvalidListing)
	}

	views := max(l.Views, 0)
	favorites := max(l.NumFavorers, 0)
	weekly := WeeklySales(views, favorites)
	score := PriorityScore(l.ShopSales(), views, favorites)
	priority, trend := Tier(score)

	currency := strings.ToUpper(l.Price.CurrencyCode)
	if currency == "" {
		currency = money.DefaultCurrency
	}

	p := model.Product{
		ID:            *l.ListingID,
		Title:         sanitize.Truncate(html.UnescapeString(strings.TrimSpace(*l.Title)), maxTitleLength, "..."),
		Shop:          l.ShopName(),
		Price:         float64(l.Price.Amount) / 100,
		Currency:      currency,
		Views:         views,
		Favorites:     favorites,
		WeeklySales:   weekly,
		MonthlySales:  weekly * weeksPerMonth,
		Revenue:       Revenue(weekly, l.Price.Amount),
		SalesTrend:    SalesTrend(views),
		MarketTrend:   trend,
		Priority:      priority,
		PriorityScore: math.Round(score*10) / 10,
		SearchTerm:    html.UnescapeString(searchTerm),
		Tags:          l.Tags,
	}
	if sanitize.IsSafeURL(l.URL) {
		p.URL = l.URL
	}
	if img := l.ImageURL(); sanitize.IsSafeURL(img) {
		p.ImageURL = img
	}
	if l.Shop != nil {
		p.SellerProfile = sellerProfile(l.Shop)
	}
	return p, nil
}

// WeeklySales is max(1, floor(views*0.02 + favorites*0.1)), computed in
// integers so the floor is exact.
func WeeklySales(views, favorites int) int {
	return max(1, (views*2+favorites*10)/100)
}

// Revenue is floor(weekly * price * 4) with price given in minor units.
func Revenue(weekly int, amountMinor int64) int64 {
	return int64(weekly) * amountMinor * weeksPerMonth / 100
}

// PriorityScore averages the shop score and the engagement score, each
// capped at 100.
func PriorityScore(shopSales, views, favorites int) float64 {
	shop := math.Min(maxScoreValue, float64(max(shopSales, 0))/shopSalesPerPoint)
	engagement := math.Min(maxScoreValue, float64(views+favorites*favoriteWeight)/engagementPerPoint)
	return (shop + engagement) / 2
}

// Tier maps a priority score to its priority and market trend labels.
func Tier(score float64) (priority, trend string) {
	switch {
	case score > criticalThreshold:
		return model.PriorityCritical, model.TrendHot
	case score > highThreshold:
		return model.PriorityHigh, model.TrendTrending
	default:
		return model.PriorityMedium, model.TrendStable
	}
}

// SalesTrend renders "+p%" with p = clamp(floor(views/100), 5, 50).
func SalesTrend(views int) string {
	p := min(max(views/viewsPerTrendPoint, minTrendPercent), maxTrendPercent)
	return fmt.Sprintf("+%d%%", p)
}

func sellerProfile(s *model.Shop) *model.SellerProfile {
	sp := &model.SellerProfile{
		ShopName:      s.ShopName,
		TotalSales:    s.TransactionSoldCount,
		ReviewAverage: s.ReviewAverage,
		ReviewCount:   s.ReviewCount,
	}
	if sanitize.IsSafeURL(s.URL) {
		sp.ShopURL = s.URL
	}
	if sanitize.IsSafeURL(s.IconURL) {
		sp.IconURL = s.IconURL
	}
	if s.CreateDate > 0 {
		sp.CreatedAt = time.Unix(s.CreateDate, 0).UTC().Format(time.DateOnly)
	}
	return sp
}
