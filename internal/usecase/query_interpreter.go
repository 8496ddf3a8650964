package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/pricescout/backend/internal/domain"
)

// InterpretationCache memoizes interpreted queries
type InterpretationCache interface {
	Get(key string) (domain.ProductQuery, bool)
	Set(key string, value domain.ProductQuery, ttl time.Duration)
}

// InterpreterConfig holds configuration for the query interpreter
type InterpreterConfig struct {
	CacheTTL           time.Duration
	EnableDebugLogging bool
}

// QueryInterpreter turns free text into a ProductQuery.
// It asks the language service first and falls back to the rule parser on any failure.
type QueryInterpreter struct {
	language domain.LanguageService
	rules    *RuleParser
	cache    InterpretationCache
	cacheTTL time.Duration
	debugLog bool
}

// NewQueryInterpreter creates an interpreter. language and cache may be nil.
func NewQueryInterpreter(
	language domain.LanguageService,
	rules *RuleParser,
	cache InterpretationCache,
	config InterpreterConfig,
) *QueryInterpreter {
	if rules == nil {
		rules = NewRuleParser(nil, config.EnableDebugLogging)
	}
	return &QueryInterpreter{
		language: language,
		rules:    rules,
		cache:    cache,
		cacheTTL: config.CacheTTL,
		debugLog: config.EnableDebugLogging,
	}
}

// Interpret parses text into a descriptor for the given country code. It never fails.
func (i *QueryInterpreter) Interpret(ctx context.Context, text, country string) domain.ProductQuery {
	key := interpretationCacheKey(text)
	if i.cache != nil && i.cacheTTL > 0 {
		if cached, ok := i.cache.Get(key); ok {
			cached.Country = country
			return cached
		}
	}

	query, err := i.interpretWithLanguageService(ctx, text)
	if err != nil {
		log.Printf("[INTERPRET] falling back to rule parser for %q: %v", text, err)
		query = i.rules.Parse(text)
	}

	if i.cache != nil && i.cacheTTL > 0 {
		i.cache.Set(key, query, i.cacheTTL)
	}

	query.Country = country
	return query
}

// interpretWithLanguageService runs the AI-assisted path and validates its output
func (i *QueryInterpreter) interpretWithLanguageService(ctx context.Context, text string) (domain.ProductQuery, error) {
	if i.language == nil {
		return domain.ProductQuery{}, domain.ErrProviderUnavailable
	}

	data, err := i.language.Extract(ctx, text)
	if err != nil {
		return domain.ProductQuery{}, err
	}

	query, err := descriptorFromMap(data)
	if err != nil {
		return domain.ProductQuery{}, err
	}

	if i.debugLog {
		log.Printf("[INTERPRET] language service %q -> brand=%q model=%q specs=%q category=%q",
			text, query.Brand, query.Model, query.Specs, query.Category)
	}
	return query, nil
}

// descriptorFromMap validates extracted data against the descriptor schema
func descriptorFromMap(data map[string]any) (domain.ProductQuery, error) {
	if data == nil {
		return domain.ProductQuery{}, fmt.Errorf("%w: response is not a mapping", domain.ErrInterpretationFailed)
	}

	var query domain.ProductQuery
	fields := []struct {
		key string
		dst *string
	}{
		{"brand", &query.Brand},
		{"model", &query.Model},
		{"specs", &query.Specs},
		{"category", &query.Category},
	}
	for _, f := range fields {
		raw, ok := data[f.key]
		if !ok || raw == nil {
			continue
		}
		s, ok := raw.(string)
		if !ok {
			return domain.ProductQuery{}, fmt.Errorf("%w: field %q is %T, want string", domain.ErrInterpretationFailed, f.key, raw)
		}
		*f.dst = strings.TrimSpace(s)
	}

	query.Keywords = []string{}
	if raw, ok := data["keywords"]; ok && raw != nil {
		list, ok := raw.([]any)
		if !ok {
			return domain.ProductQuery{}, fmt.Errorf("%w: field \"keywords\" is %T, want list", domain.ErrInterpretationFailed, raw)
		}
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return domain.ProductQuery{}, fmt.Errorf("%w: keyword %v is %T, want string", domain.ErrInterpretationFailed, item, item)
			}
			query.Keywords = append(query.Keywords, s)
		}
	}

	if query.Brand == "" && query.Model == "" {
		return domain.ProductQuery{}, fmt.Errorf("%w: neither brand nor model extracted", domain.ErrInterpretationFailed)
	}
	if query.Category == "" {
		query.Category = defaultCategory
	}

	return query, nil
}

// interpretationCacheKey normalizes query text for memoization
func interpretationCacheKey(text string) string {
	return "interpret:" + strings.Join(strings.Fields(strings.ToLower(text)), " ")
}
