package usecase

import (
	_ "embed"
	"fmt"
	"log"
	"regexp"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/pricescout/backend/internal/domain"
)

// Limits applied by the rule parser
const (
	maxModelTokens   = 3
	maxKeywordTokens = 5
	defaultCategory  = "general"
)

//go:embed data/lexicon.toml
var lexiconTOML []byte

// Compiled regex patterns for rule parsing
var (
	// Splits on anything that is not a letter, digit or period
	tokenSplitPattern = regexp.MustCompile(`[^\p{L}\p{N}.]+`)

	// Glues "128 gb" into "128gb" so capacities survive tokenization
	detachedUnitPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s+(gb|tb|mb|mah|hz|mp|inch|w)\b`)

	// Matches capacity/measurement tokens like "128gb", "5000mah", "1.5tb"
	specTokenPattern = regexp.MustCompile(`^\d+(?:\.\d+)?(?:gb|tb|mb|mah|hz|mp|inch|w)$`)

	// Matches purely numeric tokens
	numericTokenPattern = regexp.MustCompile(`^\d+(?:\.\d+)?$`)
)

// LexiconEntry maps a canonical name to the tokens that imply it
type LexiconEntry struct {
	Name     string   `toml:"name"`
	Keywords []string `toml:"keywords"`
}

// Lexicon holds the ordered brand and category tables used by the rule parser
type Lexicon struct {
	Stopwords  []string       `toml:"stopwords"`
	Brands     []LexiconEntry `toml:"brands"`
	Categories []LexiconEntry `toml:"categories"`
}

// LoadLexicon decodes a lexicon document
func LoadLexicon(data []byte) (*Lexicon, error) {
	var lex Lexicon
	if _, err := toml.Decode(string(data), &lex); err != nil {
		return nil, fmt.Errorf("decode lexicon: %w", err)
	}
	if len(lex.Brands) == 0 || len(lex.Categories) == 0 {
		return nil, fmt.Errorf("decode lexicon: brand and category tables must not be empty")
	}
	return &lex, nil
}

// DefaultLexicon returns the embedded lexicon
func DefaultLexicon() *Lexicon {
	lex, err := LoadLexicon(lexiconTOML)
	if err != nil {
		panic(err)
	}
	return lex
}

// RuleParser turns free text into a ProductQuery without any network access.
// It is the parse path that is always available.
type RuleParser struct {
	lexicon            *Lexicon
	stopwords          map[string]bool
	enableDebugLogging bool
}

// NewRuleParser creates a rule parser over the given lexicon (nil selects the embedded one)
func NewRuleParser(lexicon *Lexicon, enableDebugLogging bool) *RuleParser {
	if lexicon == nil {
		lexicon = DefaultLexicon()
	}
	stop := make(map[string]bool, len(lexicon.Stopwords))
	for _, w := range lexicon.Stopwords {
		stop[w] = true
	}
	return &RuleParser{
		lexicon:            lexicon,
		stopwords:          stop,
		enableDebugLogging: enableDebugLogging,
	}
}

// Parse builds a ProductQuery from text.
// Country is left empty; the caller fills it in from the request.
func (p *RuleParser) Parse(text string) domain.ProductQuery {
	tokens := tokenizeQuery(text)

	query := domain.ProductQuery{
		Category: defaultCategory,
		Keywords: firstN(tokens, maxKeywordTokens),
	}

	brandToken := ""
	if entry, ok := firstMatch(p.lexicon.Brands, tokens); ok {
		query.Brand = entry.Name
		brandToken = strings.ToLower(entry.Name)
	}
	if entry, ok := firstMatch(p.lexicon.Categories, tokens); ok {
		query.Category = entry.Name
	}

	var model, specs []string
	for _, t := range tokens {
		switch {
		case t == brandToken:
			continue
		case specTokenPattern.MatchString(t):
			specs = append(specs, t)
		case numericTokenPattern.MatchString(t):
			model = append(model, t)
		case p.stopwords[t]:
			continue
		default:
			model = append(model, t)
		}
	}

	query.Model = strings.Join(firstN(model, maxModelTokens), " ")
	query.Specs = strings.Join(specs, " ")

	if p.enableDebugLogging {
		log.Printf("[INTERPRET] rule parse %q -> brand=%q model=%q specs=%q category=%q",
			text, query.Brand, query.Model, query.Specs, query.Category)
	}

	return query
}

// tokenizeQuery lower-cases text and splits it into raw tokens
func tokenizeQuery(text string) []string {
	lowered := strings.ToLower(text)
	lowered = detachedUnitPattern.ReplaceAllString(lowered, "$1$2")

	var tokens []string
	for _, t := range tokenSplitPattern.Split(lowered, -1) {
		t = strings.Trim(t, ".")
		if t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// firstMatch returns the first entry with a keyword present in tokens.
// Table order decides ties.
func firstMatch(entries []LexiconEntry, tokens []string) (LexiconEntry, bool) {
	for _, e := range entries {
		for _, k := range e.Keywords {
			if containsPhrase(tokens, strings.Fields(k)) {
				return e, true
			}
		}
	}
	return LexiconEntry{}, false
}

// containsPhrase reports whether phrase occurs as consecutive tokens
func containsPhrase(tokens, phrase []string) bool {
	if len(phrase) == 0 {
		return false
	}
	for i := 0; i+len(phrase) <= len(tokens); i++ {
		if slices.Equal(tokens[i:i+len(phrase)], phrase) {
			return true
		}
	}
	return false
}

func firstN(s []string, n int) []string {
	if len(s) > n {
		s = s[:n]
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
