// Package model contains domain models passed between layers.
package model

import "encoding/json"

// Listings is one page of marketplace search results. Results stay raw so a
// single malformed entry can be skipped without losing the page.
type Listings struct {
	Count   int               `json:"count"`
	Results []json.RawMessage `json:"results"`
}

// Listing mirrors the fields read from an Etsy v3 listing. Pointer fields
// are required and nil when the marketplace omitted them.
type Listing struct {
	ListingID         *int64   `json:"listing_id"`
	Title             *string  `json:"title"`
	Price             *Price   `json:"price"`
	Views             int      `json:"views"`
	NumFavorers       int      `json:"num_favorers"`
	URL               string   `json:"url"`
	Tags              []string `json:"tags"`
	CreationTimestamp int64    `json:"creation_timestamp"`
	ShopID            int64    `json:"shop_id"`
	Shop              *Shop    `json:"shop"`
	Images            []Image  `json:"images"`
	User              *User    `json:"user"`
}

// Price is a money amount in minor units.
type Price struct {
	Amount       int64  `json:"amount"`
	Divisor      int64  `json:"divisor"`
	CurrencyCode string `json:"currency_code"`
}

// Shop is the nested shop record of a listing.
type Shop struct {
	ShopName             string  `json:"shop_name"`
	TransactionSoldCount int     `json:"transaction_sold_count"`
	URL                  string  `json:"url"`
	ReviewAverage        float64 `json:"review_average"`
	ReviewCount          int     `json:"review_count"`
	CreateDate           int64   `json:"create_date"`
	IconURL              string  `json:"icon_url_fullxfull"`
}

// Image is one listing image.
type Image struct {
	URL570xN     string `json:"url_570xN"`
	URLFullxFull string `json:"url_fullxfull"`
}

// User is the listing owner.
type User struct {
	LoginName string `json:"login_name"`
}

// ShopName returns the best available seller name.
func (l Listing) ShopName() string {
	if l.Shop != nil && l.Shop.ShopName != "" {
		return l.Shop.ShopName
	}
	if l.User != nil {
		return l.User.LoginName
	}
	return ""
}

// ShopSales returns the shop's lifetime sales, 0 when unknown.
func (l Listing) ShopSales() int {
	if l.Shop == nil {
		return 0
	}
	return l.Shop.TransactionSoldCount
}

// ImageURL returns the first image suitable for a card.
func (l Listing) ImageURL() string {
	if len(l.Images) == 0 {
		return ""
	}
	if l.Images[0].URL570xN != "" {
		return l.Images[0].URL570xN
	}
	return l.Images[0].URLFullxFull
}
