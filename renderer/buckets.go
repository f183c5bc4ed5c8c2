package renderer

import (
	"fmt"
	"strings"
	"time"

	"github.com/etnz/tokenfolio/bucket"
)

// BucketsMarkdown renders the bucket grid of a range: the fetch window of
// each tier, and optionally every bucket date.
func BucketsMarkdown(b bucket.Buckets, ref time.Time, dates bool) string {
	var s strings.Builder

	fmt.Fprintf(&s, "# Buckets seen from %s\n\n", ref.UTC().Format(time.DateTime))
	fmt.Fprintln(&s, "| Tier | Grid | From | To | Points |")
	fmt.Fprintln(&s, "|:---|---:|:---|:---|---:|")

	count := make(map[bucket.Tier]int)
	for _, on := range b.Dates {
		count[bucket.TierFor(ref, on)]++
	}
	for _, tier := range bucket.Tiers() {
		w, ok := b.Windows[tier]
		if !ok {
			continue
		}
		fmt.Fprintf(&s, "| %s | %s | %s | %s | %d |\n",
			tier, tier.Grid(), w.From.Format(time.DateTime), w.To.Format(time.DateTime), count[tier])
	}
	fmt.Fprintf(&s, "| **Total** | | | | **%d** |\n", b.Len())

	if dates {
		fmt.Fprint(&s, "\n## Dates\n\n")
		for _, on := range b.Descending() {
			fmt.Fprintf(&s, "- %s (%s)\n", on.Format(time.DateTime), bucket.TierFor(ref, on))
		}
	}
	return s.String()
}
