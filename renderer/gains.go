package renderer

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/etnz/tokenfolio"
)

// GainsMarkdown renders the FIFO profits, marking the held lots to market
// with prices.
func GainsMarkdown(p *tokenfolio.Profits, prices tokenfolio.Quotes) string {
	var b strings.Builder
	unrealized := p.Unrealized(prices)

	fmt.Fprint(&b, "# Capital Gains Report\n\n")
	fmt.Fprint(&b, "Method: FIFO\n\n")

	fmt.Fprint(&b, "## Gains per Token\n\n")
	fmt.Fprintln(&b, "| Token | Realized | Unrealized |")
	fmt.Fprintln(&b, "|:---|---:|---:|")

	set := make(map[string]struct{})
	for token := range p.Realized {
		set[token] = struct{}{}
	}
	for token := range p.Lots {
		set[token] = struct{}{}
	}
	var totalUnrealized tokenfolio.Money
	for _, token := range slices.Sorted(maps.Keys(set)) {
		realized, open := p.Realized[token], unrealized[token]
		if realized.IsZero() && open.IsZero() && len(p.Lots[token]) == 0 {
			continue
		}
		totalUnrealized = totalUnrealized.Add(open)
		fmt.Fprintf(&b, "| %s | %s | %s |\n", token, realized.SignedString(), open.SignedString())
	}
	fmt.Fprintf(&b, "| **%s** | **%s** | **%s** |\n",
		"Total",
		p.TotalRealized().SignedString(),
		totalUnrealized.SignedString(),
	)

	ConditionalBlock(&b, func(w *strings.Builder) bool {
		fmt.Fprint(w, "\n## Open Lots\n\n")
		fmt.Fprintln(w, "| Token | Acquired | Quantity | Price | Cost |")
		fmt.Fprintln(w, "|:---|:---|---:|---:|---:|")
		n := 0
		for _, token := range slices.Sorted(maps.Keys(p.Lots)) {
			for _, l := range p.Lots[token] {
				n++
				price := l.Price.String()
				if l.Unpriced {
					price = "unknown"
				}
				fmt.Fprintf(w, "| %s | %s | %s | %s | %s |\n", token, l.Date.Format(time.DateTime), l.Quantity, price, l.Cost)
			}
		}
		return n > 0
	})
	return b.String()
}
