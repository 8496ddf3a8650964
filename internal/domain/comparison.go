package domain

// CompareRequest is the request boundary of the comparison pipeline
type CompareRequest struct {
	Country string `json:"country" binding:"required"`
	Query   string `json:"query" binding:"required"`
}

// CompareResponse is the ranked result of a comparison
type CompareResponse struct {
	Results            []Offer  `json:"results"`
	TotalResults       int      `json:"total_results"`
	Country            string   `json:"country"`
	Query              string   `json:"query"`
	SupportedRetailers []string `json:"supported_retailers"`
	SearchTime         float64  `json:"search_time"`
	Note               string   `json:"note,omitempty"`
}

// CountryInfo describes a supported country and its retailers
type CountryInfo struct {
	Code               string   `json:"code"`
	Name               string   `json:"name"`
	Currency           string   `json:"currency"`
	SupportedRetailers []string `json:"supported_retailers"`
}

// SyntheticNote is attached to responses that contain generated offers
const SyntheticNote = "Live retailer data was unavailable; these offers are generated samples and may not reflect current prices."
