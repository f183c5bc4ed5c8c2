package renderer

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/etnz/tokenfolio"
)

// HistoryMarkdown renders the valued snapshots of a wallet as a table, one
// row per bucket and one column per token.
func HistoryMarkdown(w tokenfolio.Wallet, snapshots []tokenfolio.PortfolioSnapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Portfolio History of %s\n\n", w.Address)
	if len(snapshots) == 0 {
		fmt.Fprint(&b, "No buckets in range.\n")
		return b.String()
	}
	fmt.Fprintf(&b, "From %s to %s, %d buckets.\n\n",
		snapshots[0].DateTime.Format(time.DateTime),
		snapshots[len(snapshots)-1].DateTime.Format(time.DateTime),
		len(snapshots))

	set := make(map[string]struct{})
	for _, s := range snapshots {
		for token := range s.BalancesUSD {
			set[token] = struct{}{}
		}
	}
	tokens := slices.Sorted(maps.Keys(set))

	fmt.Fprintf(&b, "| Date | %s | Total |\n", strings.Join(tokens, " | "))
	fmt.Fprintf(&b, "|:---|%s---:|\n", strings.Repeat("---:|", len(tokens)))
	for _, s := range snapshots {
		cells := make([]string, 0, len(tokens)+2)
		cells = append(cells, s.DateTime.Format(time.DateTime))
		for _, token := range tokens {
			cells = append(cells, s.BalancesUSD[token].String())
		}
		cells = append(cells, s.TotalUSD().String())
		fmt.Fprintf(&b, "| %s |\n", strings.Join(cells, " | "))
	}

	last := snapshots[len(snapshots)-1]
	ConditionalBlock(&b, func(s *strings.Builder) bool {
		fmt.Fprint(s, "\n## Balances\n\n")
		fmt.Fprintln(s, "| Token | Quantity | Value |")
		fmt.Fprintln(s, "|:---|---:|---:|")
		held := false
		for _, token := range last.Balances.Tokens() {
			q := last.Balances[token]
			if q.IsNegligible() {
				continue
			}
			held = true
			fmt.Fprintf(s, "| %s | %s | %s |\n", token, q, last.BalancesUSD[token])
		}
		return held
	})
	return b.String()
}
