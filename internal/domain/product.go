package domain

import "strings"

// ProductQuery is the structured descriptor extracted from a free-text shopping query.
// It is built once per request and treated as read-only afterwards.
type ProductQuery struct {
	Brand    string   `json:"brand"`
	Model    string   `json:"model"`
	Specs    string   `json:"specs"`
	Category string   `json:"category"`
	Keywords []string `json:"keywords"`
	Country  string   `json:"country"`
}

// SearchText joins brand, model and specs into a single retailer search string
func (q ProductQuery) SearchText() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{q.Brand, q.Model, q.Specs} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// RawListing is one unvalidated candidate scraped from a single retailer
type RawListing struct {
	ProductName string `json:"productName"`
	PriceText   string `json:"priceText"`
	Link        string `json:"link"`
	Source      string `json:"source"`
}

// Offer is a listing that passed relevance filtering and price normalization
type Offer struct {
	Link        string `json:"link"`
	Price       string `json:"price"`
	Currency    string `json:"currency"`
	ProductName string `json:"productName"`
	Source      string `json:"source"`
}
