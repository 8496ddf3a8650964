package retailer

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pricescout/backend/internal/domain"
)

const defaultMaxListings = 10

// Site is a scraping profile shared by every retailer that uses the same storefront
type Site struct {
	SearchURL     string            `yaml:"search_url"`
	LinkPrefix    string            `yaml:"link_prefix"`
	DefaultDomain string            `yaml:"default_domain"`
	Domains       map[string]string `yaml:"domains"`
	Selectors     Selectors         `yaml:"selectors"`
	PricePattern  string            `yaml:"price_pattern"`
}

// Selectors are ordered fallback CSS selector lists; the first one that hits wins
type Selectors struct {
	Item  []string `yaml:"item"`
	Name  []string `yaml:"name"`
	Price []string `yaml:"price"`
	Link  []string `yaml:"link"`
}

// Implemented reports whether the site has a search page to scrape
func (s Site) Implemented() bool {
	return s.SearchURL != ""
}

// domainFor picks the storefront domain for a country
func (s Site) domainFor(countryCode string) string {
	if d, ok := s.Domains[countryCode]; ok {
		return d
	}
	return s.DefaultDomain
}

// NewAdapter builds the adapter for a retailer entry. Sites without a search
// URL yield a NoopAdapter.
func NewAdapter(entry RetailerEntry, site Site, countryCode string, fetcher PageFetcher, maxListings int) domain.RetailerAdapter {
	if !site.Implemented() {
		return &NoopAdapter{name: entry.Name, priority: entry.Priority}
	}
	if maxListings <= 0 {
		maxListings = defaultMaxListings
	}

	a := &HTMLAdapter{
		name:        entry.Name,
		priority:    entry.Priority,
		siteKey:     entry.Site,
		site:        site,
		country:     countryCode,
		fetcher:     fetcher,
		maxListings: maxListings,
	}
	if site.PricePattern != "" {
		re, err := regexp.Compile(site.PricePattern)
		if err != nil {
			log.Printf("[SCRAPE] %s: ignoring bad price pattern %q: %v", entry.Name, site.PricePattern, err)
		} else {
			a.pricePattern = re
		}
	}
	return a
}

// NoopAdapter stands in for a retailer whose scraper is not implemented
type NoopAdapter struct {
	name     string
	priority int
}

// Name returns the retailer name
func (a *NoopAdapter) Name() string { return a.name }

// Priority returns the retailer priority
func (a *NoopAdapter) Priority() int { return a.priority }

// Fetch returns no listings
func (a *NoopAdapter) Fetch(ctx context.Context, query domain.ProductQuery) ([]domain.RawListing, error) {
	return nil, nil
}

// HTMLAdapter scrapes a retailer search results page with CSS selectors
type HTMLAdapter struct {
	name         string
	priority     int
	siteKey      string
	site         Site
	country      string
	fetcher      PageFetcher
	maxListings  int
	pricePattern *regexp.Regexp
}

// Name returns the retailer name
func (a *HTMLAdapter) Name() string { return a.name }

// Priority returns the retailer priority
func (a *HTMLAdapter) Priority() int { return a.priority }

// SearchURL builds the search page URL for a query
func (a *HTMLAdapter) SearchURL(query domain.ProductQuery) string {
	return a.expand(a.site.SearchURL, url.QueryEscape(query.SearchText()))
}

// Fetch downloads the search page and extracts up to maxListings raw listings
func (a *HTMLAdapter) Fetch(ctx context.Context, query domain.ProductQuery) ([]domain.RawListing, error) {
	if strings.TrimSpace(query.SearchText()) == "" {
		return nil, nil
	}

	searchURL := a.SearchURL(query)
	log.Printf("[SCRAPE] %s: %s", a.name, searchURL)

	body, err := a.fetcher.Fetch(ctx, a.siteKey, searchURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse %s page: %w", a.name, err)
	}

	items, selector := firstHit(doc.Selection, a.site.Selectors.Item)
	if items == nil {
		log.Printf("[SCRAPE] %s: no product containers found", a.name)
		return nil, nil
	}
	log.Printf("[SCRAPE] %s: %d products via %q", a.name, items.Length(), selector)

	var listings []domain.RawListing
	items.EachWithBreak(func(_ int, item *goquery.Selection) bool {
		if listing, ok := a.extract(item, searchURL); ok {
			listings = append(listings, listing)
		}
		return len(listings) < a.maxListings
	})

	return listings, nil
}

// extract pulls name, price text and link out of one product container
func (a *HTMLAdapter) extract(item *goquery.Selection, searchURL string) (domain.RawListing, bool) {
	name := firstText(item, a.site.Selectors.Name)
	price := firstText(item, a.site.Selectors.Price)
	if a.pricePattern != nil {
		if price == "" {
			price = a.matchPrice(item.Text())
		} else if amount := a.matchPrice(price); amount != "" {
			price = amount
		}
	}
	if name == "" || price == "" {
		return domain.RawListing{}, false
	}

	link := ""
	if sel, _ := firstHit(item, a.site.Selectors.Link); sel != nil {
		link, _ = sel.First().Attr("href")
	}
	link = a.absoluteLink(link)
	if link == "" {
		link = searchURL
	}

	return domain.RawListing{
		ProductName: name,
		PriceText:   price,
		Link:        link,
		Source:      a.name,
	}, true
}

// matchPrice finds the price pattern in text and returns its amount group,
// or the whole match when the pattern has no group
func (a *HTMLAdapter) matchPrice(text string) string {
	m := a.pricePattern.FindStringSubmatch(text)
	switch {
	case m == nil:
		return ""
	case len(m) > 1 && m[1] != "":
		return m[1]
	default:
		return m[0]
	}
}

// absoluteLink prefixes site-relative links with the storefront origin
func (a *HTMLAdapter) absoluteLink(href string) string {
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, "/") && !strings.HasPrefix(href, "//") && a.site.LinkPrefix != "" {
		return a.expand(a.site.LinkPrefix, "") + href
	}
	return href
}

// expand fills the {domain} and {query} placeholders of a template
func (a *HTMLAdapter) expand(template, escapedQuery string) string {
	return strings.NewReplacer(
		"{domain}", a.site.domainFor(a.country),
		"{query}", escapedQuery,
	).Replace(template)
}

// firstHit returns the matches of the first selector that finds anything
func firstHit(root *goquery.Selection, selectors []string) (*goquery.Selection, string) {
	for _, s := range selectors {
		if sel := root.Find(s); sel.Length() > 0 {
			return sel, s
		}
	}
	return nil, ""
}

// firstText returns the trimmed text of the first selector that yields non-empty text
func firstText(root *goquery.Selection, selectors []string) string {
	for _, s := range selectors {
		sel := root.Find(s)
		if sel.Length() == 0 {
			continue
		}
		if text := strings.Join(strings.Fields(sel.First().Text()), " "); text != "" {
			return text
		}
	}
	return ""
}
