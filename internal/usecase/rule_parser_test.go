package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleParser_Parse(t *testing.T) {
	parser := NewRuleParser(nil, false)

	tests := []struct {
		name         string
		input        string
		wantBrand    string
		wantModel    string
		wantSpecs    string
		wantCategory string
		wantKeywords []string
	}{
		{
			name:         "iphone with capacity",
			input:        "iPhone 16 Pro, 128GB",
			wantBrand:    "Apple",
			wantModel:    "iphone 16 pro",
			wantSpecs:    "128gb",
			wantCategory: "smartphone",
			wantKeywords: []string{"iphone", "16", "pro", "128gb"},
		},
		{
			name:         "brand token dropped from model",
			input:        "boAt Airdopes 311 Pro",
			wantBrand:    "boAt",
			wantModel:    "airdopes 311 pro",
			wantCategory: "audio",
			wantKeywords: []string{"boat", "airdopes", "311", "pro"},
		},
		{
			name:         "detached unit is glued",
			input:        "Samsung Galaxy S24 Ultra 256 GB",
			wantBrand:    "Samsung",
			wantModel:    "galaxy s24 ultra",
			wantSpecs:    "256gb",
			wantCategory: "smartphone",
			wantKeywords: []string{"samsung", "galaxy", "s24", "ultra", "256gb"},
		},
		{
			name:         "multiple specs",
			input:        "MacBook Air 13.6 inch 512GB",
			wantBrand:    "Apple",
			wantModel:    "macbook air",
			wantSpecs:    "13.6inch 512gb",
			wantCategory: "laptop",
			wantKeywords: []string{"macbook", "air", "13.6inch", "512gb"},
		},
		{
			name:         "stopwords skipped and model capped",
			input:        "cheapest Sony WH-1000XM5 wireless headphones",
			wantBrand:    "Sony",
			wantModel:    "wh 1000xm5 wireless",
			wantCategory: "audio",
			wantKeywords: []string{"cheapest", "sony", "wh", "1000xm5", "wireless"},
		},
		{
			name:         "unbranded grocery",
			input:        "organic bananas",
			wantModel:    "organic bananas",
			wantCategory: "grocery",
			wantKeywords: []string{"organic", "bananas"},
		},
		{
			name:         "generic word does not claim a brand",
			input:        "tp-link network switch 8 port",
			wantModel:    "tp link network",
			wantCategory: "general",
			wantKeywords: []string{"tp", "link", "network", "switch", "8"},
		},
		{
			name:         "brand implied by phrase",
			input:        "Switch Lite 32 GB",
			wantBrand:    "Nintendo",
			wantModel:    "switch lite",
			wantSpecs:    "32gb",
			wantCategory: "gaming",
			wantKeywords: []string{"switch", "lite", "32gb"},
		},
		{
			name:         "unknown product",
			input:        "widget 3000",
			wantModel:    "widget 3000",
			wantCategory: "general",
			wantKeywords: []string{"widget", "3000"},
		},
		{
			name:         "empty input",
			input:        "",
			wantCategory: "general",
			wantKeywords: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parser.Parse(tt.input)

			assert.Equal(t, tt.wantBrand, got.Brand)
			assert.Equal(t, tt.wantModel, got.Model)
			assert.Equal(t, tt.wantSpecs, got.Specs)
			assert.Equal(t, tt.wantCategory, got.Category)
			assert.Equal(t, tt.wantKeywords, got.Keywords)
			assert.Empty(t, got.Country)
		})
	}
}

func TestRuleParser_KeywordsCapped(t *testing.T) {
	got := NewRuleParser(nil, false).Parse("one two three four five six seven")
	assert.Equal(t, []string{"one", "two", "three", "four", "five"}, got.Keywords)
}

func TestRuleParser_Deterministic(t *testing.T) {
	parser := NewRuleParser(nil, false)
	input := "Google Pixel 9 Pro XL 256GB Obsidian"

	first := parser.Parse(input)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, parser.Parse(input))
	}
}

func TestRuleParser_TableOrderDecidesBrand(t *testing.T) {
	lex, err := LoadLexicon([]byte(`
stopwords = []

[[brands]]
name = "First"
keywords = ["shared"]

[[brands]]
name = "Second"
keywords = ["shared", "second"]

[[categories]]
name = "thing"
keywords = ["shared"]
`))
	require.NoError(t, err)

	got := NewRuleParser(lex, false).Parse("second shared item")
	assert.Equal(t, "First", got.Brand)
	assert.Equal(t, "thing", got.Category)
}

func TestContainsPhrase(t *testing.T) {
	tokens := []string{"nintendo", "switch", "oled", "white"}

	tests := []struct {
		phrase []string
		want   bool
	}{
		{[]string{"switch"}, true},
		{[]string{"switch", "oled"}, true},
		{[]string{"oled", "switch"}, false},
		{[]string{"nintendo", "oled"}, false},
		{[]string{"white", "edition"}, false},
		{nil, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, containsPhrase(tokens, tt.phrase), "phrase %v", tt.phrase)
	}
}

func TestLoadLexicon_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed", `stopwords = [`},
		{"no brands", "[[categories]]\nname = \"x\"\nkeywords = [\"x\"]\n"},
		{"no categories", "[[brands]]\nname = \"x\"\nkeywords = [\"x\"]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadLexicon([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestDefaultLexicon(t *testing.T) {
	lex := DefaultLexicon()

	require.NotEmpty(t, lex.Brands)
	assert.Equal(t, "Apple", lex.Brands[0].Name)
	assert.Contains(t, lex.Stopwords, "the")
}
