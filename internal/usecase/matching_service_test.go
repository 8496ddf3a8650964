package usecase

import (
	"testing"

	"github.com/pricescout/backend/internal/domain"
)

func TestNewMatchingService(t *testing.T) {
	tests := []struct {
		name          string
		config        MatchConfig
		wantThreshold int
	}{
		{"default threshold", MatchConfig{}, 60},
		{"custom threshold", MatchConfig{Threshold: 75}, 75},
		{"negative falls back to default", MatchConfig{Threshold: -1}, 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewMatchingService(tt.config).Threshold(); got != tt.wantThreshold {
				t.Errorf("Threshold() = %d, want %d", got, tt.wantThreshold)
			}
		})
	}
}

func TestIsRelevant(t *testing.T) {
	service := NewMatchingService(MatchConfig{})

	iphone := domain.ProductQuery{Brand: "Apple", Model: "iphone 16 pro", Specs: "128gb", Category: "smartphone"}
	airdopes := domain.ProductQuery{Brand: "boAt", Model: "airdopes 311 pro", Category: "audio"}

	tests := []struct {
		name        string
		productName string
		query       domain.ProductQuery
		want        bool
	}{
		{
			name:        "exact listing",
			productName: "Apple iPhone 16 Pro 128GB Natural Titanium",
			query:       iphone,
			want:        true,
		},
		{
			name:        "brand missing is rejected regardless of score",
			productName: "iPhone 16 Pro 128GB Silicone Case Compatible",
			query:       iphone,
			want:        false,
		},
		{
			name:        "other brand is rejected",
			productName: "Samsung Galaxy S24 Ultra 256GB",
			query:       iphone,
			want:        false,
		},
		{
			name:        "brand check is case-insensitive",
			productName: "BOAT AIRDOPES 311 PRO TWS EARBUDS",
			query:       airdopes,
			want:        true,
		},
		{
			name:        "half of model words is enough",
			productName: "Apple iPhone 16 128GB Black",
			query:       iphone,
			want:        true,
		},
		{
			name:        "under half of model words is rejected",
			productName: "Apple iPad Air 11-inch 128GB",
			query:       iphone,
			want:        false,
		},
		{
			name:        "capacity mismatch does not reject",
			productName: "Apple iPhone 16 Pro 256GB Desert Titanium",
			query:       iphone,
			want:        true,
		},
		{
			name:        "empty name is never relevant",
			productName: "",
			query:       iphone,
			want:        false,
		},
		{
			name:        "empty model keeps both separators in the scored text",
			productName: "Apple iPhone 16 Pro 128GB",
			query:       domain.ProductQuery{Brand: "Apple", Specs: "128GB"},
			want:        false,
		},
		{
			name:        "no brand in query skips brand filter",
			productName: "Fresh Organic Bananas 1lb",
			query:       domain.ProductQuery{Model: "organic bananas", Category: "grocery"},
			want:        true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := service.IsRelevant(tt.productName, tt.query); got != tt.want {
				t.Errorf("IsRelevant(%q) = %v, want %v", tt.productName, got, tt.want)
			}
		})
	}
}

func TestIsRelevant_ThresholdBoundary(t *testing.T) {
	query := domain.ProductQuery{Model: "new york mets"}
	name := "new york yankees"

	// PartialRatio("new york mets", "new york yankees") is 69
	if !NewMatchingService(MatchConfig{Threshold: 69}).IsRelevant(name, query) {
		t.Error("score equal to threshold should be relevant")
	}
	if NewMatchingService(MatchConfig{Threshold: 70}).IsRelevant(name, query) {
		t.Error("score below threshold should not be relevant")
	}
}

func TestPartialRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{"identical", "apple iphone", "apple iphone", 100},
		{"substring", "yankees", "new york yankees", 100},
		{"near substring", "this is a test", "this is a test!", 100},
		{"argument order does not matter", "new york yankees", "yankees", 100},
		{"partial overlap", "new york mets", "new york yankees", 69},
		{"doubled separator", "apple  128gb", "apple iphone 16 pro 128gb", 58},
		{"single separator", "apple 128gb", "apple iphone 16 pro 128gb", 64},
		{"nothing in common", "abc", "xyz", 0},
		{"empty", "", "anything", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PartialRatio(tt.a, tt.b); got != tt.want {
				t.Errorf("PartialRatio(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSignificantWords(t *testing.T) {
	tests := []struct {
		model string
		want  []string
	}{
		{"iphone 16 pro", []string{"iphone", "16", "pro"}},
		{"galaxy s24 ultra", []string{"galaxy", "s24", "ultra"}},
		{"mi 5 go", []string{"5"}},
		{"air 2.0, xl", []string{"air", "20"}},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			got := significantWords(tt.model)
			if len(got) != len(tt.want) {
				t.Fatalf("significantWords(%q) = %v, want %v", tt.model, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("significantWords(%q)[%d] = %q, want %q", tt.model, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestIsNumeric(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"16", true},
		{"0", true},
		{"", false},
		{"s24", false},
		{"1.5", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := isNumeric(tt.input); got != tt.want {
				t.Errorf("isNumeric(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
