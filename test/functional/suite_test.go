package functional

import (
	"context"
	"os"
	"testing"

	"github.com/cucumber/godog"
	"github.com/gin-gonic/gin"
)

type stateKeyType struct{}

var stateKey = stateKeyType{}

type testState struct {
	// listings served by every adapter, keyed by retailer name
	listings map[string][]listingRow
	failing  map[string]bool

	status int
	body   []byte
}

func getState(ctx context.Context) *testState {
	if s, ok := ctx.Value(stateKey).(*testState); ok {
		return s
	}
	return nil
}

func setState(ctx context.Context, s *testState) context.Context {
	return context.WithValue(ctx, stateKey, s)
}

func TestFeatures(t *testing.T) {
	gin.SetMode(gin.TestMode)

	opts := &godog.Options{
		Format:   "pretty",
		Paths:    []string{"features"},
		TestingT: t,
	}
	if tags := os.Getenv("PRICESCOUT_TEST_TAGS"); tags != "" {
		opts.Tags = tags
	}

	suite := godog.TestSuite{
		ScenarioInitializer: initializeScenario,
		Options:             opts,
	}
	if suite.Run() != 0 {
		t.Fatal("functional tests failed")
	}
}

func initializeScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		state := &testState{
			listings: make(map[string][]listingRow),
			failing:  make(map[string]bool),
		}
		return setState(ctx, state), nil
	})

	// Retailer steps
	ctx.Step(`^no retailer returns any listings$`, noRetailerReturnsListings)
	ctx.Step(`^retailer "([^"]*)" lists:$`, retailerLists)
	ctx.Step(`^retailer "([^"]*)" is failing$`, retailerIsFailing)

	// Request steps
	ctx.Step(`^I compare "([^"]*)" in "([^"]*)"$`, iCompare)
	ctx.Step(`^I request "([^"]*)"$`, iRequest)

	// Assertion steps
	ctx.Step(`^the response status is (\d+)$`, theResponseStatusIs)
	ctx.Step(`^the response has (\d+) results?$`, theResponseHasResults)
	ctx.Step(`^the result prices are "([^"]*)"$`, theResultPricesAre)
	ctx.Step(`^the first result is from "([^"]*)"$`, theFirstResultIsFrom)
	ctx.Step(`^the response country is "([^"]*)"$`, theResponseCountryIs)
	ctx.Step(`^the response has a note$`, theResponseHasANote)
	ctx.Step(`^the response has no note$`, theResponseHasNoNote)
	ctx.Step(`^the response contains "([^"]*)"$`, theResponseContains)
}
