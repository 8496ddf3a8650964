// Package app wires configuration into the comparison pipeline.
package app

import (
	"context"
	"log"

	"github.com/pricescout/backend/config"
	"github.com/pricescout/backend/internal/domain"
	"github.com/pricescout/backend/internal/infrastructure/cache"
	"github.com/pricescout/backend/internal/infrastructure/llm"
	"github.com/pricescout/backend/internal/infrastructure/retailer"
	"github.com/pricescout/backend/internal/infrastructure/synthetic"
	"github.com/pricescout/backend/internal/usecase"
)

// App holds the assembled pipeline
type App struct {
	Directory *retailer.Directory
	Service   *usecase.ComparisonService

	closers []func()
}

// New builds the directory, page client, language service and pipeline from cfg
func New(ctx context.Context, cfg *config.Config) *App {
	debug := cfg.Server.Environment == "development"

	client := retailer.NewClient(retailer.ClientConfig{
		RequestTimeout:    cfg.Scraper.RequestTimeout,
		MaxAttempts:       cfg.Scraper.MaxAttempts,
		RequestsPerSecond: cfg.Scraper.RequestsPerSecond,
		Burst:             cfg.Scraper.Burst,
		UserAgents:        cfg.Scraper.UserAgents,
	})
	client.SetDebug(debug)

	directory := retailer.NewDirectory(retailer.DefaultTables(), client, retailer.DirectoryConfig{
		MaxListingsPerSite: cfg.Pipeline.MaxListingsPerSite,
	})
	log.Printf("Retailer directory: %d supported countries", len(directory.SupportedCountries()))

	a := &App{Directory: directory}

	// nil interface when no provider is usable, so the interpreter goes straight to rules
	var language domain.LanguageService
	if extractor := llm.NewExtractorFromConfig(ctx, llm.ExtractorConfig{
		Enabled:         cfg.LLM.Enabled,
		Providers:       cfg.LLM.Providers,
		GeminiAPIKey:    cfg.LLM.GeminiAPIKey,
		GeminiModel:     cfg.LLM.GeminiModel,
		AnthropicAPIKey: cfg.LLM.AnthropicAPIKey,
		AnthropicModel:  cfg.LLM.AnthropicModel,
		Timeout:         cfg.LLM.Timeout,
	}); extractor != nil {
		language = extractor
		a.closers = append(a.closers, func() {
			if err := extractor.Close(); err != nil {
				log.Printf("[LLM] close: %v", err)
			}
		})
	}

	var memo usecase.InterpretationCache
	if cfg.Cache.InterpretationTTL > 0 {
		backing := cache.NewMemoryCache[domain.ProductQuery]()
		a.closers = append(a.closers, backing.Close)
		memo = cache.NewInterpretationStore(backing)
		log.Printf("Interpretation cache TTL: %s", cfg.Cache.InterpretationTTL)
	}

	a.Service = usecase.NewComparisonService(
		directory,
		language,
		synthetic.NewGenerator(directory),
		memo,
		usecase.ComparisonServiceConfig{
			MatchThreshold:     cfg.Pipeline.MatchThreshold,
			AdapterTimeout:     cfg.Pipeline.AdapterTimeout,
			Workers:            cfg.Pipeline.Workers,
			MaxResults:         cfg.Pipeline.MaxResults,
			InterpretationTTL:  cfg.Cache.InterpretationTTL,
			EnableDebugLogging: debug,
		},
	)

	log.Printf("Pipeline: threshold=%d, timeout=%s, workers=%d, max results=%d",
		cfg.Pipeline.MatchThreshold, cfg.Pipeline.AdapterTimeout, cfg.Pipeline.Workers, cfg.Pipeline.MaxResults)

	return a
}

// Close releases background resources
func (a *App) Close() {
	for _, c := range a.closers {
		c()
	}
}
