package functional

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/cucumber/godog"
	"golang.org/x/time/rate"

	"github.com/pricescout/backend/config"
	httpDelivery "github.com/pricescout/backend/internal/delivery/http"
	"github.com/pricescout/backend/internal/domain"
	"github.com/pricescout/backend/internal/infrastructure/cache"
	"github.com/pricescout/backend/internal/infrastructure/retailer"
	"github.com/pricescout/backend/internal/infrastructure/synthetic"
	"github.com/pricescout/backend/internal/usecase"
)

type listingRow struct {
	name  string
	price string
	link  string
}

// scenarioAdapter serves the listings registered for its retailer in the scenario
type scenarioAdapter struct {
	name     string
	priority int
	state    *testState
}

func (a *scenarioAdapter) Name() string  { return a.name }
func (a *scenarioAdapter) Priority() int { return a.priority }

func (a *scenarioAdapter) Fetch(ctx context.Context, query domain.ProductQuery) ([]domain.RawListing, error) {
	if a.state.failing[a.name] {
		return nil, fmt.Errorf("%w: status 503", domain.ErrRetailerRequest)
	}
	rows := a.state.listings[a.name]
	listings := make([]domain.RawListing, 0, len(rows))
	for _, r := range rows {
		listings = append(listings, domain.RawListing{
			ProductName: r.name,
			PriceText:   r.price,
			Link:        r.link,
			Source:      a.name,
		})
	}
	return listings, nil
}

func newRouter(state *testState) (http.Handler, func()) {
	directory := retailer.NewDirectoryWithFactory(retailer.DefaultTables(),
		func(entry retailer.RetailerEntry, site retailer.Site, code string) domain.RetailerAdapter {
			return &scenarioAdapter{name: entry.Name, priority: entry.Priority, state: state}
		})
	service := usecase.NewComparisonService(directory, nil, synthetic.NewGenerator(directory), nil,
		usecase.ComparisonServiceConfig{
			MatchThreshold: 60,
			AdapterTimeout: 2 * time.Second,
			Workers:        5,
			MaxResults:     20,
		})

	cfg := &config.Config{Server: config.ServerConfig{Environment: "test"}}
	limiters := cache.NewMemoryCache[*rate.Limiter]()
	return httpDelivery.SetupRouter(cfg, httpDelivery.NewHandler(service, directory), limiters), limiters.Close
}

func serve(ctx context.Context, req *http.Request) error {
	state := getState(ctx)
	if state == nil {
		return errors.New("no scenario state")
	}
	router, closeRouter := newRouter(state)
	defer closeRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	state.status = w.Code
	state.body = w.Body.Bytes()
	return nil
}

func noRetailerReturnsListings(ctx context.Context) error {
	state := getState(ctx)
	if state == nil {
		return errors.New("no scenario state")
	}
	clear(state.listings)
	return nil
}

func retailerLists(ctx context.Context, name string, table *godog.Table) error {
	state := getState(ctx)
	if state == nil {
		return errors.New("no scenario state")
	}
	for i, row := range table.Rows {
		if i == 0 {
			continue // header
		}
		if len(row.Cells) != 3 {
			return fmt.Errorf("row %d: want product, price and link columns", i)
		}
		state.listings[name] = append(state.listings[name], listingRow{
			name:  row.Cells[0].Value,
			price: row.Cells[1].Value,
			link:  row.Cells[2].Value,
		})
	}
	return nil
}

func retailerIsFailing(ctx context.Context, name string) error {
	state := getState(ctx)
	if state == nil {
		return errors.New("no scenario state")
	}
	state.failing[name] = true
	return nil
}

func iCompare(ctx context.Context, query, country string) error {
	body, err := json.Marshal(domain.CompareRequest{Country: country, Query: query})
	if err != nil {
		return err
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/compare", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return serve(ctx, req)
}

func iRequest(ctx context.Context, path string) error {
	return serve(ctx, httptest.NewRequest(http.MethodGet, path, nil))
}

func decodeResponse(ctx context.Context) (*domain.CompareResponse, error) {
	state := getState(ctx)
	if state == nil {
		return nil, errors.New("no scenario state")
	}
	var resp domain.CompareResponse
	if err := json.Unmarshal(state.body, &resp); err != nil {
		return nil, fmt.Errorf("decoding response %q: %w", state.body, err)
	}
	return &resp, nil
}

func theResponseStatusIs(ctx context.Context, expected int) error {
	state := getState(ctx)
	if state == nil {
		return errors.New("no scenario state")
	}
	if state.status != expected {
		return fmt.Errorf("expected status %d, got %d\nbody: %s", expected, state.status, state.body)
	}
	return nil
}

func theResponseHasResults(ctx context.Context, expected int) error {
	resp, err := decodeResponse(ctx)
	if err != nil {
		return err
	}
	if len(resp.Results) != expected || resp.TotalResults != expected {
		return fmt.Errorf("expected %d results, got %d (total_results %d)", expected, len(resp.Results), resp.TotalResults)
	}
	return nil
}

func theResultPricesAre(ctx context.Context, expected string) error {
	resp, err := decodeResponse(ctx)
	if err != nil {
		return err
	}
	got := make([]string, len(resp.Results))
	for i, o := range resp.Results {
		got[i] = o.Price
	}
	if strings.Join(got, ", ") != expected {
		return fmt.Errorf("expected prices %q, got %q", expected, strings.Join(got, ", "))
	}
	return nil
}

func theFirstResultIsFrom(ctx context.Context, source string) error {
	resp, err := decodeResponse(ctx)
	if err != nil {
		return err
	}
	if len(resp.Results) == 0 {
		return errors.New("response has no results")
	}
	if resp.Results[0].Source != source {
		return fmt.Errorf("expected first result from %q, got %q", source, resp.Results[0].Source)
	}
	return nil
}

func theResponseCountryIs(ctx context.Context, country string) error {
	resp, err := decodeResponse(ctx)
	if err != nil {
		return err
	}
	if resp.Country != country {
		return fmt.Errorf("expected country %q, got %q", country, resp.Country)
	}
	return nil
}

func theResponseHasANote(ctx context.Context) error {
	resp, err := decodeResponse(ctx)
	if err != nil {
		return err
	}
	if resp.Note == "" {
		return errors.New("expected a note on the response")
	}
	return nil
}

func theResponseHasNoNote(ctx context.Context) error {
	resp, err := decodeResponse(ctx)
	if err != nil {
		return err
	}
	if resp.Note != "" {
		return fmt.Errorf("expected no note, got %q", resp.Note)
	}
	return nil
}

func theResponseContains(ctx context.Context, text string) error {
	state := getState(ctx)
	if state == nil {
		return errors.New("no scenario state")
	}
	if !strings.Contains(string(state.body), text) {
		return fmt.Errorf("expected response to contain %q\nbody: %s", text, state.body)
	}
	return nil
}
