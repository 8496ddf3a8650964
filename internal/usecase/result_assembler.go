package usecase

import (
	"context"
	"log"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/pricescout/backend/internal/domain"
)

const defaultMaxResults = 20

// AssemblerConfig holds configuration for the result assembler
type AssemblerConfig struct {
	MaxResults int
}

// Assembly is the ranked, capped offer list
type Assembly struct {
	Offers []domain.Offer
	// Synthetic is set when the offers came from the synthetic generator
	Synthetic bool
}

// ResultAssembler filters, ranks and caps offers, degrading to generated offers when nothing survives
type ResultAssembler struct {
	generator  domain.OfferGenerator
	maxResults int
}

// NewResultAssembler creates an assembler. generator may be nil.
func NewResultAssembler(generator domain.OfferGenerator, config AssemblerConfig) *ResultAssembler {
	maxResults := config.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	return &ResultAssembler{generator: generator, maxResults: maxResults}
}

// pricedOffer pairs an offer with its parsed price for ranking
type pricedOffer struct {
	offer domain.Offer
	value decimal.Decimal
}

// Assemble ranks offers ascending by price. Ties keep arrival order.
// An empty result is not an error.
func (a *ResultAssembler) Assemble(ctx context.Context, offers []domain.Offer, query domain.ProductQuery) Assembly {
	priced := keepPriced(offers)
	synthetic := false

	if len(priced) == 0 && a.generator != nil {
		generated := a.generator.Generate(ctx, query)
		log.Printf("[ASSEMBLE] no usable live offers, generator produced %d", len(generated))
		synthetic = len(generated) > 0
		priced = keepPriced(generated)
	}

	slices.SortStableFunc(priced, func(x, y pricedOffer) int {
		return x.value.Cmp(y.value)
	})

	if len(priced) > a.maxResults {
		priced = priced[:a.maxResults]
	}

	result := make([]domain.Offer, len(priced))
	for i, p := range priced {
		result[i] = p.offer
	}
	return Assembly{Offers: result, Synthetic: synthetic}
}

// keepPriced drops offers whose price is missing, unparsable, zero or negative
func keepPriced(offers []domain.Offer) []pricedOffer {
	out := make([]pricedOffer, 0, len(offers))
	for _, o := range offers {
		if o.Price == "" {
			continue
		}
		value, err := decimal.NewFromString(o.Price)
		if err != nil || !value.IsPositive() {
			continue
		}
		out = append(out, pricedOffer{offer: o, value: value})
	}
	return out
}
