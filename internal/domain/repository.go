package domain

import "context"

// RetailerAdapter fetches raw listings for a query from a single retailer
type RetailerAdapter interface {
	Name() string
	Priority() int
	Fetch(ctx context.Context, query ProductQuery) ([]RawListing, error)
}

// RetailerDirectory resolves countries to their retailer adapters
type RetailerDirectory interface {
	Normalize(countryOrAlias string) (string, bool)
	Resolve(countryOrAlias string) []RetailerAdapter
	SupportedCountries() []string
	CurrencyFor(countryCode string) string
	Countries() []CountryInfo
}

// LanguageService extracts structured data from free text
type LanguageService interface {
	Extract(ctx context.Context, text string) (map[string]any, error)
}

// OfferGenerator produces plausible offers when no live data is available
type OfferGenerator interface {
	Generate(ctx context.Context, query ProductQuery) []Offer
}
