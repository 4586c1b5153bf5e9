package market

import "github.com/okian/arthursden/internal/domain/model"

// DemoProducts returns the fixed showcase products served when no live
// data is available. Each call returns a fresh slice.
func DemoProducts() []model.Product {
	return []model.Product{
		{
			ID: 1, Title: "Space Adventure Wall Art - Minimalist Kids Decor",
			Shop: "RusticCharmDesigns", Price: 38.75, Currency: "USD", Views: 1420, Favorites: 56,
			WeeklySales: 35, MonthlySales: 148, Revenue: 17244, SalesTrend: "+35%",
			MarketTrend: model.TrendHot, Priority: model.PriorityCritical, PriorityScore: 78.4,
			SearchTerm:    "space adventure",
			SellerProfile: &model.SellerProfile{ShopName: "RusticCharmDesigns", TotalSales: 445},
		},
		{
			ID: 2, Title: "Floral Milestone Board - Monthly Photos Premium",
			Shop: "BespokeBaby", Price: 52.00, Currency: "USD", Views: 2180, Favorites: 142,
			WeeklySales: 42, MonthlySales: 179, Revenue: 81484, SalesTrend: "+28%",
			MarketTrend: model.TrendHot, Priority: model.PriorityCritical, PriorityScore: 86.2,
			SearchTerm:    "floral milestone",
			SellerProfile: &model.SellerProfile{ShopName: "BespokeBaby", TotalSales: 1567},
		},
		{
			ID: 3, Title: "Arctic Animals Growth Chart - Personalized Wooden",
			Shop: "NurseryNameSigns", Price: 45.99, Currency: "USD", Views: 1340, Favorites: 78,
			WeeklySales: 28, MonthlySales: 118, Revenue: 13290, SalesTrend: "+33%",
			MarketTrend: model.TrendTrending, Priority: model.PriorityHigh, PriorityScore: 61.7,
			SearchTerm:    "arctic animals",
			SellerProfile: &model.SellerProfile{ShopName: "NurseryNameSigns", TotalSales: 289},
		},
		{
			ID: 4, Title: "Rustic Woodland Name Sign - Premium Handcrafted",
			Shop: "WoodWorksStudio", Price: 34.99, Currency: "USD", Views: 1850, Favorites: 89,
			WeeklySales: 23, MonthlySales: 98, Revenue: 29645, SalesTrend: "+15%",
			MarketTrend: model.TrendStable, Priority: model.PriorityMedium, PriorityScore: 38.9,
			SearchTerm:    "rustic woodland",
			SellerProfile: &model.SellerProfile{ShopName: "WoodWorksStudio", TotalSales: 847},
		},
		{
			ID: 5, Title: "Modern Safari Nursery Collection - Custom Bundle",
			Shop: "PersonalizedPerfection", Price: 68.50, Currency: "USD", Views: 1120, Favorites: 67,
			WeeklySales: 18, MonthlySales: 76, Revenue: 16029, SalesTrend: "+22%",
			MarketTrend: "Emerging", Priority: model.PriorityHigh, PriorityScore: 55.3,
			SearchTerm:    "modern safari",
			SellerProfile: &model.SellerProfile{ShopName: "PersonalizedPerfection", TotalSales: 234},
		},
	}
}
