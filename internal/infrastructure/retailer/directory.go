// Package retailer holds the retailer directory and the adapters that scrape retailer search pages.
package retailer

import (
	_ "embed"
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pricescout/backend/internal/domain"
)

//go:embed data/retailers.yaml
var defaultTables []byte

const fallbackCurrency = "USD"

// Tables is the decoded form of the directory data file
type Tables struct {
	Sites     map[string]Site `yaml:"sites"`
	Countries []Country       `yaml:"countries"`
}

// Country lists the retailers registered for one country
type Country struct {
	Code      string          `yaml:"code"`
	Name      string          `yaml:"name"`
	Currency  string          `yaml:"currency"`
	Aliases   []string        `yaml:"aliases"`
	Retailers []RetailerEntry `yaml:"retailers"`
}

// RetailerEntry binds a retailer name and priority to a site profile
type RetailerEntry struct {
	Name     string `yaml:"name"`
	Site     string `yaml:"site"`
	Priority int    `yaml:"priority"`
}

// DecodeTables parses directory data
func DecodeTables(data []byte) (*Tables, error) {
	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode retailer tables: %w", err)
	}
	for _, c := range t.Countries {
		if len(c.Code) != 2 {
			return nil, fmt.Errorf("decode retailer tables: country code %q is not two letters", c.Code)
		}
		for _, r := range c.Retailers {
			if _, ok := t.Sites[r.Site]; !ok {
				return nil, fmt.Errorf("decode retailer tables: %s/%s references unknown site %q", c.Code, r.Name, r.Site)
			}
		}
	}
	return &t, nil
}

// DefaultTables returns the embedded directory data
func DefaultTables() *Tables {
	t, err := DecodeTables(defaultTables)
	if err != nil {
		panic(err)
	}
	return t
}

// AdapterFactory builds the adapter for one retailer entry
type AdapterFactory func(entry RetailerEntry, site Site, countryCode string) domain.RetailerAdapter

// DirectoryConfig holds configuration for building a directory
type DirectoryConfig struct {
	MaxListingsPerSite int
}

// Directory resolves countries to their retailer adapters.
// It is built once and never mutated, so it is safe for concurrent use.
type Directory struct {
	aliases   map[string]string
	countries map[string]Country
	adapters  map[string][]domain.RetailerAdapter
	codes     []string
}

// NewDirectory builds a directory whose adapters scrape through fetcher
func NewDirectory(tables *Tables, fetcher PageFetcher, config DirectoryConfig) *Directory {
	return NewDirectoryWithFactory(tables, func(entry RetailerEntry, site Site, code string) domain.RetailerAdapter {
		return NewAdapter(entry, site, code, fetcher, config.MaxListingsPerSite)
	})
}

// NewDirectoryWithFactory builds a directory using a custom adapter factory
func NewDirectoryWithFactory(tables *Tables, factory AdapterFactory) *Directory {
	d := &Directory{
		aliases:   make(map[string]string),
		countries: make(map[string]Country),
		adapters:  make(map[string][]domain.RetailerAdapter),
	}

	for _, c := range tables.Countries {
		code := strings.ToUpper(c.Code)
		c.Code = code
		d.countries[code] = c
		for _, alias := range c.Aliases {
			d.aliases[strings.ToLower(alias)] = code
		}

		if len(c.Retailers) == 0 {
			continue
		}
		entries := slices.Clone(c.Retailers)
		slices.SortStableFunc(entries, func(a, b RetailerEntry) int { return a.Priority - b.Priority })

		adapters := make([]domain.RetailerAdapter, 0, len(entries))
		for _, e := range entries {
			adapters = append(adapters, factory(e, tables.Sites[e.Site], code))
		}
		d.adapters[code] = adapters
		d.codes = append(d.codes, code)
	}
	slices.Sort(d.codes)

	return d
}

// Normalize maps a country code or alias to its two-letter code.
// The boolean reports whether the country is known at all.
func (d *Directory) Normalize(countryOrAlias string) (string, bool) {
	trimmed := strings.TrimSpace(countryOrAlias)
	if code, ok := d.aliases[strings.ToLower(trimmed)]; ok {
		return code, true
	}
	code := strings.ToUpper(trimmed)
	_, ok := d.countries[code]
	return code, ok
}

// Resolve returns the adapters of a country ordered by ascending priority.
// Unknown countries resolve to an empty list.
func (d *Directory) Resolve(countryOrAlias string) []domain.RetailerAdapter {
	code, _ := d.Normalize(countryOrAlias)
	return slices.Clone(d.adapters[code])
}

// SupportedCountries returns the codes of countries with at least one retailer
func (d *Directory) SupportedCountries() []string {
	return slices.Clone(d.codes)
}

// CurrencyFor returns the primary currency of a country, USD when unknown
func (d *Directory) CurrencyFor(countryOrAlias string) string {
	code, _ := d.Normalize(countryOrAlias)
	if c, ok := d.countries[code]; ok && c.Currency != "" {
		return c.Currency
	}
	return fallbackCurrency
}

// Countries describes every supported country, sorted by code
func (d *Directory) Countries() []domain.CountryInfo {
	infos := make([]domain.CountryInfo, 0, len(d.codes))
	for _, code := range d.codes {
		c := d.countries[code]
		names := make([]string, len(d.adapters[code]))
		for i, a := range d.adapters[code] {
			names[i] = a.Name()
		}
		infos = append(infos, domain.CountryInfo{
			Code:               code,
			Name:               c.Name,
			Currency:           c.Currency,
			SupportedRetailers: names,
		})
	}
	return infos
}
