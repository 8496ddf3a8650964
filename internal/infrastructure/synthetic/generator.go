// Package synthetic produces illustrative offers for demos when no retailer
// returns usable live data.
package synthetic

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pricescout/backend/internal/domain"
)

// CurrencyResolver maps a country code to its currency
type CurrencyResolver interface {
	CurrencyFor(country string) string
}

// Generator implements domain.OfferGenerator with canned patterns and a
// generic per-country fallback
type Generator struct {
	currencies CurrencyResolver
}

// NewGenerator creates a synthetic offer generator
func NewGenerator(currencies CurrencyResolver) *Generator {
	return &Generator{currencies: currencies}
}

var (
	groceryWords = []string{"banana", "apple", "orange", "milk", "bread", "egg", "organic"}

	groceryRetailersUS = []string{"Walmart US", "Target US", "Whole Foods US", "Kroger US"}

	countryRetailers = map[string][]string{
		"US": {"Amazon US", "BestBuy", "Walmart", "Target"},
		"IN": {"Amazon IN", "Flipkart", "Myntra", "Croma"},
		"GB": {"Amazon GB", "Currys", "Argos", "John Lewis"},
		"DE": {"Amazon DE", "MediaMarkt", "Conrad", "Saturn"},
		"FR": {"Amazon FR", "Fnac", "Cdiscount", "Darty"},
		"CA": {"Amazon CA", "Best Buy CA", "Walmart CA", "Canadian Tire"},
		"AU": {"Amazon AU", "Harvey Norman", "JB Hi-Fi", "Big W"},
		"JP": {"Amazon JP", "Rakuten", "Yodobashi", "Bic Camera"},
		"CN": {"Tmall", "JD.com", "Suning", "Gome"},
		"BR": {"Amazon BR", "MercadoLivre", "Americanas", "Shoptime"},
		"MX": {"Amazon MX", "MercadoLibre", "Liverpool", "Palacio de Hierro"},
	}
	defaultRetailers = []string{"Amazon", "Local Store", "Online Shop", "Retailer"}

	// rough USD conversion factors
	priceMultipliers = map[string]string{
		"US": "1", "IN": "80", "GB": "0.85", "DE": "0.95", "FR": "0.95",
		"CA": "1.35", "AU": "1.55", "JP": "110", "CN": "7", "BR": "5", "MX": "18",
	}
	genericBasePrices = []string{"99.99", "149.99", "199.99"}
	groceryFactors    = []string{"1", "1.2", "0.8", "1.5"}
)

var cannedOffers = map[string][]domain.Offer{
	"iphone-16-pro/US": {
		{Link: "https://www.amazon.com/dp/B0D3J7DKLV", Price: "999.99", Currency: "USD", ProductName: "Apple iPhone 16 Pro 128GB Natural Titanium", Source: "Amazon US"},
		{Link: "https://www.bestbuy.com/site/apple-iphone-16-pro/6588348.p", Price: "1049.99", Currency: "USD", ProductName: "Apple iPhone 16 Pro 128GB - Natural Titanium", Source: "BestBuy"},
		{Link: "https://www.walmart.com/ip/Apple-iPhone-16-Pro/12345", Price: "1099.99", Currency: "USD", ProductName: "Apple iPhone 16 Pro 128GB Natural Titanium Unlocked", Source: "Walmart"},
	},
	"boat-airdopes/IN": {
		{Link: "https://www.amazon.in/boAt-Airdopes-311-Pro/dp/B09EXAMPLE", Price: "2999", Currency: "INR", ProductName: "boAt Airdopes 311 Pro TWS Earbuds", Source: "Amazon IN"},
		{Link: "https://www.flipkart.com/boat-airdopes-311-pro/p/itm123456", Price: "2799", Currency: "INR", ProductName: "boAt Airdopes 311 Pro True Wireless Earbuds", Source: "Flipkart"},
		{Link: "https://www.croma.com/boat-airdopes-311-pro/p/12345", Price: "3199", Currency: "INR", ProductName: "boAt Airdopes 311 Pro Bluetooth Earbuds", Source: "Croma"},
	},
	"samsung-galaxy/GB": {
		{Link: "https://www.amazon.co.uk/Samsung-Galaxy-S24-Ultra/dp/B0C12345", Price: "1199.99", Currency: "GBP", ProductName: "Samsung Galaxy S24 Ultra 256GB Phantom Black", Source: "Amazon GB"},
		{Link: "https://www.currys.co.uk/samsung-galaxy-s24-ultra", Price: "1149.99", Currency: "GBP", ProductName: "Samsung Galaxy S24 Ultra 256GB", Source: "Currys"},
	},
}

// Generate returns illustrative offers for the query. Known product patterns
// get fixed offers; anything else gets generic per-country offers.
func (g *Generator) Generate(ctx context.Context, query domain.ProductQuery) []domain.Offer {
	country := strings.ToUpper(query.Country)
	if country == "" {
		country = "US"
	}
	text := strings.ToLower(query.SearchText())
	currency := g.currencyFor(country)

	var offers []domain.Offer
	switch {
	case strings.Contains(text, "iphone") && strings.Contains(text, "16 pro"):
		offers = canned("iphone-16-pro", country)
	case strings.Contains(text, "boat") && strings.Contains(text, "airdopes"):
		offers = canned("boat-airdopes", country)
	case isGrocery(query, text):
		offers = groceryOffers(text, country, currency)
	case strings.Contains(text, "samsung") && strings.Contains(text, "galaxy"):
		offers = canned("samsung-galaxy", country)
	}

	if len(offers) == 0 {
		offers = genericOffers(query, country, currency)
	}

	log.Printf("[ASSEMBLE] generated %d synthetic offers for %q in %s", len(offers), text, country)
	return offers
}

func (g *Generator) currencyFor(country string) string {
	if g.currencies == nil {
		return "USD"
	}
	return g.currencies.CurrencyFor(country)
}

// canned returns a copy of the fixed offers for a pattern in a country
func canned(pattern, country string) []domain.Offer {
	fixed := cannedOffers[pattern+"/"+country]
	return append([]domain.Offer(nil), fixed...)
}

func isGrocery(query domain.ProductQuery, text string) bool {
	if query.Category == "grocery" {
		return true
	}
	// a branded query like "apple macbook" is not produce
	if query.Brand != "" {
		return false
	}
	for _, w := range groceryWords {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

func groceryOffers(text, country, currency string) []domain.Offer {
	retailers := groceryRetailersUS
	if country != "US" {
		retailers = retailersFor(country)
	}

	base := decimal.RequireFromString("4.99")
	if strings.Contains(text, "banana") {
		base = decimal.RequireFromString("2.99")
	}
	title := cases.Title(language.English).String(text)
	slug := strings.ReplaceAll(text, " ", "-")

	offers := make([]domain.Offer, 0, len(groceryFactors))
	for i, factor := range groceryFactors {
		if i >= len(retailers) {
			break
		}
		retailer := retailers[i]
		price := base.Mul(decimal.RequireFromString(factor))
		offers = append(offers, domain.Offer{
			Link:        fmt.Sprintf("https://www.%s.com/grocery/%s/%d", hostName(retailer), slug, i+1),
			Price:       price.StringFixed(2),
			Currency:    currency,
			ProductName: fmt.Sprintf("%s - %s Fresh Produce", title, retailer),
			Source:      retailer,
		})
	}
	return offers
}

func genericOffers(query domain.ProductQuery, country, currency string) []domain.Offer {
	brand := query.Brand
	if brand == "" {
		brand = "Generic"
	}
	model := query.Model
	if model == "" {
		model = "Product"
	}
	name := strings.TrimSpace(brand + " " + model + " " + query.Specs)

	multiplier := decimal.NewFromInt(1)
	if m, ok := priceMultipliers[country]; ok {
		multiplier = decimal.RequireFromString(m)
	}

	retailers := retailersFor(country)
	offers := make([]domain.Offer, 0, len(genericBasePrices))
	for i, base := range genericBasePrices {
		retailer := retailers[i]
		price := decimal.RequireFromString(base).Mul(multiplier).Round(2)
		offers = append(offers, domain.Offer{
			Link:        fmt.Sprintf("https://www.%s.com/product/%d", hostName(retailer), i+1),
			Price:       price.StringFixed(2),
			Currency:    currency,
			ProductName: fmt.Sprintf("%s - %s Exclusive", name, retailer),
			Source:      retailer,
		})
	}
	return offers
}

func retailersFor(country string) []string {
	if r, ok := countryRetailers[country]; ok {
		return r
	}
	return defaultRetailers
}

func hostName(retailer string) string {
	return strings.ToLower(strings.ReplaceAll(retailer, " ", ""))
}
