package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/pricescout/backend/internal/domain"
)

// Orchestrator defaults
const (
	defaultAdapterTimeout = 60 * time.Second
	defaultWorkers        = 5
)

// OrchestratorConfig holds configuration for the fetch orchestrator
type OrchestratorConfig struct {
	AdapterTimeout time.Duration
	Workers        int
}

// AdapterReport is the diagnostic record of one adapter invocation
type AdapterReport struct {
	Adapter  string
	Listings int
	Duration time.Duration
	Err      error
}

// TimedOut reports whether the adapter was abandoned at its deadline
func (r AdapterReport) TimedOut() bool {
	return errors.Is(r.Err, domain.ErrAdapterTimeout)
}

// FetchResult holds the concatenated listings of all successful adapters
type FetchResult struct {
	Listings []domain.RawListing
	Reports  []AdapterReport
}

// FetchOrchestrator runs retailer adapters concurrently on a bounded pool
type FetchOrchestrator struct {
	adapterTimeout time.Duration
	workers        int
}

// NewFetchOrchestrator creates an orchestrator with the given configuration
func NewFetchOrchestrator(config OrchestratorConfig) *FetchOrchestrator {
	timeout := config.AdapterTimeout
	if timeout <= 0 {
		timeout = defaultAdapterTimeout
	}
	workers := config.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &FetchOrchestrator{adapterTimeout: timeout, workers: workers}
}

// FetchAll invokes every adapter against the same query and waits for all of
// them to finish or time out. A failing or hung adapter only loses its own
// listings. Every adapter's time budget starts when the batch is submitted,
// so queueing for a worker counts against it and the whole call is bounded
// by one adapter timeout. Listings are concatenated in adapter order.
func (o *FetchOrchestrator) FetchAll(
	ctx context.Context,
	query domain.ProductQuery,
	adapters []domain.RetailerAdapter,
) FetchResult {
	if len(adapters) == 0 {
		return FetchResult{}
	}

	deadline := time.Now().Add(o.adapterTimeout)
	semaphore := make(chan struct{}, o.workers)

	results := make([][]domain.RawListing, len(adapters))
	reports := make([]AdapterReport, len(adapters))

	var wg sync.WaitGroup
	for idx, adapter := range adapters {
		wg.Add(1)
		go func(idx int, adapter domain.RetailerAdapter) {
			defer wg.Done()

			adapterCtx, cancel := context.WithDeadline(ctx, deadline)
			defer cancel()

			// Acquire semaphore for concurrency control
			select {
			case semaphore <- struct{}{}:
				defer func() { <-semaphore }()
			case <-adapterCtx.Done():
				reports[idx] = AdapterReport{
					Adapter: adapter.Name(),
					Err:     fmt.Errorf("%w: %s waited for a worker until its deadline", domain.ErrAdapterTimeout, adapter.Name()),
				}
				return
			}

			start := time.Now()
			listings, err := o.invoke(adapterCtx, adapter, query)
			reports[idx] = AdapterReport{
				Adapter:  adapter.Name(),
				Listings: len(listings),
				Duration: time.Since(start),
				Err:      err,
			}
			if err == nil {
				results[idx] = listings
			}
		}(idx, adapter)
	}
	wg.Wait()

	var out FetchResult
	out.Reports = reports
	for idx, listings := range results {
		if reports[idx].Err != nil {
			log.Printf("[FETCH] %s dropped after %s: %v", reports[idx].Adapter, reports[idx].Duration.Round(time.Millisecond), reports[idx].Err)
			continue
		}
		log.Printf("[FETCH] %s returned %d listings in %s", reports[idx].Adapter, len(listings), reports[idx].Duration.Round(time.Millisecond))
		out.Listings = append(out.Listings, listings...)
	}
	return out
}

// invoke runs one adapter and abandons it at the context deadline even if the
// adapter ignores cancellation. A late result is discarded.
func (o *FetchOrchestrator) invoke(
	ctx context.Context,
	adapter domain.RetailerAdapter,
	query domain.ProductQuery,
) ([]domain.RawListing, error) {
	type outcome struct {
		listings []domain.RawListing
		err      error
	}

	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("%w: %s panicked: %v", domain.ErrAdapterFailure, adapter.Name(), r)}
			}
		}()
		listings, err := adapter.Fetch(ctx, query)
		if err != nil {
			err = fmt.Errorf("%w: %s: %w", domain.ErrAdapterFailure, adapter.Name(), err)
		}
		done <- outcome{listings: listings, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil && ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %s after %s", domain.ErrAdapterTimeout, adapter.Name(), o.adapterTimeout)
		}
		return res.listings, res.err
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %s after %s", domain.ErrAdapterTimeout, adapter.Name(), o.adapterTimeout)
	}
}
