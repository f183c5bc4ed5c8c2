package tokenfolio

import (
	"context"
	"log"
	"slices"
	"time"

	"github.com/etnz/tokenfolio/bucket"
	"golang.org/x/sync/errgroup"
)

// windowPadding widens each tier's fetch window so that the quotes around
// the edges are returned as well.
const windowPadding = time.Hour

// PriceProvider returns USD price quotes for a set of symbols over a date
// range, sampled at the tier's interval.
type PriceProvider interface {
	FetchPrices(ctx context.Context, symbols []string, from, to time.Time, tier bucket.Tier) ([]PriceQuote, error)
}

// Quotes maps a symbol to its price.
type Quotes map[string]Money

// PriceSurface is a dense price table: it has a price for every bucket date
// and every symbol it was built for.
type PriceSurface struct {
	symbols []string
	prices  bucket.Series[Quotes]
}

// Symbols returns the symbols of the surface, sorted.
func (p *PriceSurface) Symbols() []string { return slices.Clone(p.symbols) }

// Dates returns the bucket dates of the surface, ascending.
func (p *PriceSurface) Dates() []time.Time { return p.prices.Dates() }

// Len returns the number of bucket dates.
func (p *PriceSurface) Len() int { return p.prices.Len() }

// Quotes returns the prices at a bucket date, or nil if the date is not part of the surface.
func (p *PriceSurface) Quotes(on time.Time) Quotes {
	q, _ := p.prices.Get(on)
	return q
}

// Price returns the price of a symbol at a bucket date. Unknown dates and
// symbols are priced zero.
func (p *PriceSurface) Price(on time.Time, symbol string) Money {
	return p.Quotes(on)[symbol]
}

// Has reports whether the bucket date is part of the surface.
func (p *PriceSurface) Has(on time.Time) bool {
	_, ok := p.prices.Get(on)
	return ok
}

// FetchQuotes requests the quotes of every tier touched by the buckets, in
// parallel. The returned map is keyed by the quote's own bucket date.
//
// A tier that fails or returns nothing does not stop the others: it is
// reported in the returned warnings and simply contributes no quote.
func FetchQuotes(ctx context.Context, provider PriceProvider, buckets bucket.Buckets, symbols []string, ref time.Time) (*bucket.Series[Quotes], []error) {
	merged := new(bucket.Series[Quotes])
	if provider == nil || len(symbols) == 0 {
		return merged, nil
	}

	tiers := make([]bucket.Tier, 0, len(buckets.Windows))
	for _, tier := range bucket.Tiers() {
		if _, ok := buckets.Windows[tier]; ok {
			tiers = append(tiers, tier)
		}
	}

	// Each goroutine writes only its own slot.
	results := make([][]PriceQuote, len(tiers))
	failures := make([]error, len(tiers))
	var g errgroup.Group
	for i, tier := range tiers {
		w := buckets.Windows[tier]
		g.Go(func() error {
			quotes, err := provider.FetchPrices(ctx, symbols, w.From.Add(-windowPadding), w.To.Add(windowPadding), tier)
			switch {
			case err != nil:
				failures[i] = &PriceProviderError{Tier: tier, Err: err}
			case len(quotes) == 0:
				failures[i] = &PriceProviderError{Tier: tier}
			default:
				results[i] = quotes
			}
			return nil
		})
	}
	g.Wait()

	var warnings []error
	for i, tier := range tiers {
		if failures[i] != nil {
			log.Printf("prices %s: %v", tier, failures[i])
			warnings = append(warnings, failures[i])
			continue
		}
		for _, q := range results[i] {
			on := bucket.SnapBackward(ref, q.Time)
			prices, ok := merged.Get(on)
			if !ok {
				prices = make(Quotes)
				merged.Set(on, prices)
			}
			prices[q.Symbol] = q.Price
		}
	}
	return merged, warnings
}

// FillPrices builds the dense surface over the bucket dates. For each
// symbol, the last non-zero price is carried forward into the buckets that
// have none; before its first known price a symbol is zero.
func FillPrices(dates []time.Time, symbols []string, sparse *bucket.Series[Quotes]) *PriceSurface {
	surface := &PriceSurface{symbols: slices.Clone(symbols)}
	slices.Sort(surface.symbols)
	surface.symbols = slices.Compact(surface.symbols)
	if sparse == nil {
		sparse = new(bucket.Series[Quotes])
	}

	last := make(Quotes, len(surface.symbols))
	for _, on := range dates {
		known, _ := sparse.Get(on)
		row := make(Quotes, len(surface.symbols))
		for _, symbol := range surface.symbols {
			if price := known[symbol]; !price.IsZero() {
				last[symbol] = price
			}
			row[symbol] = last[symbol]
		}
		surface.prices.Set(on, row)
	}
	return surface
}

// BuildPriceSurface fetches the quotes for the buckets and fills the gaps.
// Failed tiers are returned as warnings, the surface is complete anyway.
func BuildPriceSurface(ctx context.Context, provider PriceProvider, buckets bucket.Buckets, symbols []string, ref time.Time) (*PriceSurface, []error) {
	sparse, warnings := FetchQuotes(ctx, provider, buckets, symbols, ref)
	return FillPrices(buckets.Dates, symbols, sparse), warnings
}
