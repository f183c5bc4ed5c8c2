// Package quotes implements a price provider on top of the quote service
// GraphQL API.
package quotes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/tokenfolio"
	"github.com/etnz/tokenfolio/bucket"
	"github.com/shopspring/decimal"
)

const query = `query quotes($tokens: [String]!, $start_date: Date, $end_date: Date) {
  quotes(symbols: $tokens, start_date: $start_date, end_date: $end_date, interval: %s) {
    id,
    symbol,
    fiat_symbol,
    count,
    quotes {
      price,
      last_updated,
    },
  }
}`

// Client fetches USD quotes from the quote service.
type Client struct {
	URL    string
	APIKey string
	HTTP   *http.Client
}

// New returns a client for the service at url. If cacheDir is not empty,
// responses are cached there for the day.
func New(url, apiKey, cacheDir string) *Client {
	c := &Client{URL: url, APIKey: apiKey, HTTP: new(http.Client)}
	if cacheDir != "" {
		c.HTTP.Transport = &diskCache{base: http.DefaultTransport, dir: cacheDir}
	}
	return c
}

type request struct {
	Query     string    `json:"query"`
	Variables variables `json:"variables"`
}

type variables struct {
	Tokens    []string `json:"tokens"`
	StartDate int64    `json:"start_date"` // unix milliseconds
	EndDate   int64    `json:"end_date"`
}

// FetchPrices implements tokenfolio.PriceProvider.
func (c *Client) FetchPrices(ctx context.Context, symbols []string, from, to time.Time, tier bucket.Tier) ([]tokenfolio.PriceQuote, error) {
	body, err := json.Marshal(request{
		Query: fmt.Sprintf(query, tier),
		Variables: variables{
			Tokens:    symbols,
			StartDate: from.UnixMilli(),
			EndDate:   to.UnixMilli(),
		},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cannot http POST %v%v: %v", req.URL.Host, req.URL.Path, resp.Status)
	}

	// numbers are kept as json.Number, prices are exact decimals.
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	var jobj any
	if err := dec.Decode(&jobj); err != nil {
		return nil, fmt.Errorf("quotes %s: %w", tier, err)
	}
	return parse(jobj)
}

// parse extracts the quotes out of a GraphQL response.
func parse(jobj any) ([]tokenfolio.PriceQuote, error) {
	if msg, err := jsonpath.Get("$.errors[0].message", jobj); err == nil {
		return nil, fmt.Errorf("quote service: %v", msg)
	}

	jval, err := jsonpath.Get("$.data.quotes[*]", jobj)
	if err != nil {
		return nil, fmt.Errorf("error parsing quotes: %w", err)
	}
	items, _ := jval.([]any)

	var out []tokenfolio.PriceQuote
	for _, item := range items {
		symbol, err := jsonpath.Get("$.symbol", item)
		if err != nil {
			return nil, fmt.Errorf("error parsing quotes: %w", err)
		}
		sym, ok := symbol.(string)
		if !ok {
			return nil, fmt.Errorf("error parsing quotes: symbol %v is not a string", symbol)
		}
		points, err := jsonpath.Get("$.quotes[*]", item)
		if err != nil {
			// a symbol without quotes
			continue
		}
		list, _ := points.([]any)
		for _, p := range list {
			m, ok := p.(map[string]any)
			if !ok {
				continue
			}
			price, err := readPrice(m["price"])
			if err != nil {
				return nil, fmt.Errorf("price of %s: %w", sym, err)
			}
			on, err := readTime(m["last_updated"])
			if err != nil {
				return nil, fmt.Errorf("last_updated of %s: %w", sym, err)
			}
			out = append(out, tokenfolio.PriceQuote{Symbol: sym, Time: on, Price: tokenfolio.USD(price)})
		}
	}
	return out, nil
}

// readPrice accepts a number or, as the service sometimes does, a decimal string.
func readPrice(v any) (decimal.Decimal, error) {
	switch p := v.(type) {
	case json.Number:
		return decimal.NewFromString(p.String())
	case string:
		return decimal.NewFromString(p)
	case nil:
		return decimal.Zero, nil
	default:
		return decimal.Zero, fmt.Errorf("unexpected price %v", v)
	}
}

// readTime accepts an RFC 3339 date or unix milliseconds.
func readTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case string:
		if ms, err := strconv.ParseInt(t, 10, 64); err == nil {
			return time.UnixMilli(ms).UTC(), nil
		}
		on, err := time.Parse(time.RFC3339, t)
		return on.UTC(), err
	case json.Number:
		ms, err := t.Int64()
		if err != nil {
			return time.Time{}, fmt.Errorf("unexpected date %v", v)
		}
		return time.UnixMilli(ms).UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("unexpected date %v", v)
	}
}
