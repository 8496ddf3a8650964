package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/pricescout/backend/internal/domain"
)

// ComparisonServiceConfig holds configuration for the comparison pipeline
type ComparisonServiceConfig struct {
	MatchThreshold     int
	AdapterTimeout     time.Duration
	Workers            int
	MaxResults         int
	InterpretationTTL  time.Duration
	EnableDebugLogging bool
}

// ComparisonService turns a shopping query into ranked price offers.
// Flow: resolve country -> interpret -> fetch -> match/normalize -> assemble
type ComparisonService struct {
	directory    domain.RetailerDirectory
	interpreter  *QueryInterpreter
	orchestrator *FetchOrchestrator
	matcher      *MatchingService
	assembler    *ResultAssembler
}

// NewComparisonService wires the pipeline stages together.
// language, generator and cache may be nil.
func NewComparisonService(
	directory domain.RetailerDirectory,
	language domain.LanguageService,
	generator domain.OfferGenerator,
	cache InterpretationCache,
	config ComparisonServiceConfig,
) *ComparisonService {
	return &ComparisonService{
		directory: directory,
		interpreter: NewQueryInterpreter(language, nil, cache, InterpreterConfig{
			CacheTTL:           config.InterpretationTTL,
			EnableDebugLogging: config.EnableDebugLogging,
		}),
		orchestrator: NewFetchOrchestrator(OrchestratorConfig{
			AdapterTimeout: config.AdapterTimeout,
			Workers:        config.Workers,
		}),
		matcher: NewMatchingService(MatchConfig{
			Threshold:          config.MatchThreshold,
			EnableDebugLogging: config.EnableDebugLogging,
		}),
		assembler: NewResultAssembler(generator, AssemblerConfig{
			MaxResults: config.MaxResults,
		}),
	}
}

// Compare runs the full pipeline. Only an invalid request or an unsupported
// country is returned as an error; every other failure degrades the result.
func (s *ComparisonService) Compare(ctx context.Context, request *domain.CompareRequest) (*domain.CompareResponse, error) {
	if request == nil || strings.TrimSpace(request.Query) == "" || strings.TrimSpace(request.Country) == "" {
		return nil, domain.ErrInvalidRequest
	}

	start := time.Now()

	code, ok := s.directory.Normalize(request.Country)
	adapters := s.directory.Resolve(code)
	if !ok || len(adapters) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedCountry, request.Country)
	}

	query := s.interpreter.Interpret(ctx, request.Query, code)
	log.Printf("[COMPARE] %q in %s -> brand=%q model=%q specs=%q", request.Query, code, query.Brand, query.Model, query.Specs)

	fetched := s.orchestrator.FetchAll(ctx, query, adapters)
	offers := s.matchAndNormalize(fetched.Listings, query, s.directory.CurrencyFor(code))
	log.Printf("[COMPARE] %d listings, %d matched offers", len(fetched.Listings), len(offers))

	assembly := s.assembler.Assemble(ctx, offers, query)

	retailers := make([]string, len(adapters))
	for i, a := range adapters {
		retailers[i] = a.Name()
	}

	response := &domain.CompareResponse{
		Results:            assembly.Offers,
		TotalResults:       len(assembly.Offers),
		Country:            code,
		Query:              request.Query,
		SupportedRetailers: retailers,
		SearchTime:         time.Since(start).Seconds(),
	}
	if assembly.Synthetic {
		response.Note = domain.SyntheticNote
	}
	return response, nil
}

// Interpret exposes the query interpreter for callers that only need the descriptor
func (s *ComparisonService) Interpret(ctx context.Context, text, country string) domain.ProductQuery {
	return s.interpreter.Interpret(ctx, text, country)
}

// matchAndNormalize keeps relevant listings whose price text normalizes
func (s *ComparisonService) matchAndNormalize(listings []domain.RawListing, query domain.ProductQuery, currency string) []domain.Offer {
	offers := make([]domain.Offer, 0, len(listings))
	for _, l := range listings {
		if !s.matcher.IsRelevant(l.ProductName, query) {
			continue
		}
		price, ok := NormalizePrice(l.PriceText)
		if !ok {
			log.Printf("[MATCH] dropping %q from %s: unparsable price %q", l.ProductName, l.Source, l.PriceText)
			continue
		}
		offers = append(offers, domain.Offer{
			Link:        l.Link,
			Price:       price,
			Currency:    currency,
			ProductName: l.ProductName,
			Source:      l.Source,
		})
	}
	return offers
}
