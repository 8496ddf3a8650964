package usecase

import (
	"log"
	"math"
	"regexp"
	"slices"
	"strings"

	"github.com/pricescout/backend/internal/domain"
)

// Package-level compiled regex patterns for performance
var (
	modelPunctuationRegex = regexp.MustCompile(`[,.]`)
	capacityRegex         = regexp.MustCompile(`(\d+)\s*(gb|tb)`)
)

// Matching defaults
const (
	defaultMatchThreshold = 60
	modelWordCoverage     = 0.5 // fraction of significant model words that must appear
	minSignificantWordLen = 3
	perfectRatioCutoff    = 0.995
)

// MatchConfig holds configuration for the matching service
type MatchConfig struct {
	Threshold          int
	EnableDebugLogging bool
}

// MatchingService decides whether a retailer listing is the product being asked for
type MatchingService struct {
	threshold          int
	enableDebugLogging bool
}

// NewMatchingService creates a new matching service with the given configuration
func NewMatchingService(config MatchConfig) *MatchingService {
	threshold := config.Threshold
	if threshold <= 0 {
		threshold = defaultMatchThreshold
	}

	return &MatchingService{
		threshold:          threshold,
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// Threshold returns the minimum partial-ratio score a listing needs
func (s *MatchingService) Threshold() int {
	return s.threshold
}

// IsRelevant reports whether a listing name matches the query.
// Brand is a hard filter, model words need 50% coverage, capacity is advisory,
// and the combined descriptor must reach the fuzzy threshold.
func (s *MatchingService) IsRelevant(productName string, query domain.ProductQuery) bool {
	if productName == "" {
		return false
	}

	name := strings.ToLower(productName)

	brand := strings.ToLower(query.Brand)
	if brand != "" && !strings.Contains(name, brand) {
		s.debugf("[MATCH] brand mismatch: %q not in %q", brand, name)
		return false
	}

	model := strings.ToLower(query.Model)
	if model != "" {
		words := significantWords(model)
		if len(words) > 0 {
			matched := 0
			for _, w := range words {
				if strings.Contains(name, w) {
					matched++
				}
			}
			if float64(matched) < float64(len(words))*modelWordCoverage {
				s.debugf("[MATCH] model mismatch: %q vs %q (%d/%d words)", model, name, matched, len(words))
				return false
			}
		}
	}

	specs := strings.ToLower(query.Specs)
	if m := capacityRegex.FindStringSubmatch(specs); m != nil {
		if !strings.Contains(name, m[1]) {
			// Capacity is often phrased differently, so this never rejects
			s.debugf("[MATCH] capacity %q not in %q", m[1], name)
		}
	}

	// empty parts keep their separators, so "apple  128gb" scores as written
	queryText := strings.TrimSpace(brand + " " + model + " " + specs)
	score := PartialRatio(queryText, name)

	s.debugf("[MATCH] %q vs %q: score %d (threshold %d)", queryText, name, score, s.threshold)
	return score >= s.threshold
}

func (s *MatchingService) debugf(format string, args ...any) {
	if s.enableDebugLogging {
		log.Printf(format, args...)
	}
}

// significantWords returns model words longer than two characters or purely numeric
func significantWords(model string) []string {
	cleaned := modelPunctuationRegex.ReplaceAllString(model, "")

	var words []string
	for _, w := range strings.Fields(cleaned) {
		if len(w) >= minSignificantWordLen || isNumeric(w) {
			words = append(words, w)
		}
	}
	return words
}

// isNumeric checks if a string contains only digits
func isNumeric(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}

// PartialRatio scores (0-100) how well the shorter string matches its best
// aligned window in the longer one, using Ratcliff/Obershelp similarity.
func PartialRatio(a, b string) int {
	s1, s2 := []rune(a), []rune(b)
	if len(s1) == 0 || len(s2) == 0 {
		return 0
	}

	shorter, longer := s1, s2
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}

	best := 0.0
	for _, block := range matchingBlocks(shorter, longer) {
		start := block.j - block.i
		if start < 0 {
			start = 0
		}
		end := start + len(shorter)
		if end > len(longer) {
			end = len(longer)
		}

		r := ratio(shorter, longer[start:end])
		if r > perfectRatioCutoff {
			return 100
		}
		if r > best {
			best = r
		}
	}

	return int(math.Round(best * 100))
}

// matchBlock is a run of n equal runes at a[i:] and b[j:]
type matchBlock struct {
	i, j, n int
}

// ratio is the Ratcliff/Obershelp similarity 2*M/T
func ratio(a, b []rune) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 1
	}
	matches := 0
	for _, block := range matchingBlocks(a, b) {
		matches += block.n
	}
	return 2 * float64(matches) / float64(total)
}

// matchingBlocks returns the non-overlapping common runs of a and b in order,
// terminated by a zero-length sentinel at (len(a), len(b)).
func matchingBlocks(a, b []rune) []matchBlock {
	type span struct{ alo, ahi, blo, bhi int }

	var blocks []matchBlock
	queue := []span{{0, len(a), 0, len(b)}}
	for len(queue) > 0 {
		sp := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		m := longestMatch(a, b, sp.alo, sp.ahi, sp.blo, sp.bhi)
		if m.n == 0 {
			continue
		}
		blocks = append(blocks, m)
		if sp.alo < m.i && sp.blo < m.j {
			queue = append(queue, span{sp.alo, m.i, sp.blo, m.j})
		}
		if m.i+m.n < sp.ahi && m.j+m.n < sp.bhi {
			queue = append(queue, span{m.i + m.n, sp.ahi, m.j + m.n, sp.bhi})
		}
	}

	slices.SortFunc(blocks, func(x, y matchBlock) int { return x.i - y.i })

	// Collapse adjacent blocks
	collapsed := make([]matchBlock, 0, len(blocks)+1)
	for _, b := range blocks {
		if n := len(collapsed); n > 0 {
			last := &collapsed[n-1]
			if last.i+last.n == b.i && last.j+last.n == b.j {
				last.n += b.n
				continue
			}
		}
		collapsed = append(collapsed, b)
	}
	return append(collapsed, matchBlock{len(a), len(b), 0})
}

// longestMatch finds the longest common run in a[alo:ahi] and b[blo:bhi].
// Ties go to the earliest start in a, then in b.
func longestMatch(a, b []rune, alo, ahi, blo, bhi int) matchBlock {
	best := matchBlock{alo, blo, 0}
	prev := make([]int, bhi-blo+1)
	curr := make([]int, bhi-blo+1)

	for i := alo; i < ahi; i++ {
		for j := blo; j < bhi; j++ {
			k := j - blo + 1
			if a[i] == b[j] {
				curr[k] = prev[k-1] + 1
				if curr[k] > best.n {
					best = matchBlock{i - curr[k] + 1, j - curr[k] + 1, curr[k]}
				}
			} else {
				curr[k] = 0
			}
		}
		prev, curr = curr, prev
	}
	return best
}
