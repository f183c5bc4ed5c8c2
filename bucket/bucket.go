// Package bucket computes the time grid of a portfolio chart.
//
// Points are spaced according to their age relative to a reference date:
//   - last 24 hours: 30 minutes
//   - last 7 days: 2 hours
//   - last 30 days: 6 hours
//   - older: 1 day
//
// All dates are handled in UTC.
package bucket

import (
	"fmt"
	"slices"
	"time"
)

const Day = 24 * time.Hour

// Tier is a recency band that decides the grid width of a bucket.
type Tier int

const (
	FortyEight Tier = iota // 30 minutes grid, last day
	Twelve                 // 2 hours grid, last week
	Four                   // 6 hours grid, last month
	One                    // 1 day grid, older
)

// Tiers returns all tiers from the most to the least recent.
func Tiers() []Tier { return []Tier{FortyEight, Twelve, Four, One} }

// String returns the interval name used by the price quote service.
func (t Tier) String() string {
	switch t {
	case FortyEight:
		return "FORTYEIGHT"
	case Twelve:
		return "TWELVE"
	case Four:
		return "FOUR"
	case One:
		return "ONE"
	default:
		return fmt.Sprintf("Tier(%d)", int(t))
	}
}

// ParseTier parses a tier name as returned by String.
func ParseTier(s string) (Tier, error) {
	for _, t := range Tiers() {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown tier: %q", s)
}

// Grid returns the distance between two consecutive buckets of the tier.
func (t Tier) Grid() time.Duration {
	switch t {
	case FortyEight:
		return 30 * time.Minute
	case Twelve:
		return 2 * time.Hour
	case Four:
		return 6 * time.Hour
	default:
		return Day
	}
}

// maxAge is the oldest age (inclusive) a date can have to belong to the tier.
func (t Tier) maxAge() time.Duration {
	switch t {
	case FortyEight:
		return Day
	case Twelve:
		return 7 * Day
	case Four:
		return 30 * Day
	default:
		return 1<<63 - 1
	}
}

// TierFor returns the tier of date t seen from the reference date ref.
//
// Dates at or after ref are in the most recent tier.
func TierFor(ref, t time.Time) Tier {
	age := ref.Sub(t)
	for _, tier := range Tiers() {
		if age <= tier.maxAge() {
			return tier
		}
	}
	return One
}

// minute drops seconds and sub-seconds.
func minute(t time.Time) time.Time { return t.UTC().Truncate(time.Minute) }

// SnapForward returns the first bucket boundary at or after t.
// It is used to assign a transaction to its bucket.
func SnapForward(ref, t time.Time) time.Time {
	t = minute(t)
	grid := TierFor(ref, t).Grid()
	floor := t.Truncate(grid)
	if floor.Before(t) {
		return floor.Add(grid)
	}
	return floor
}

// SnapBackward returns the last bucket boundary at or before t.
// It is used to assign a price quote to its bucket.
func SnapBackward(ref, t time.Time) time.Time {
	t = minute(t)
	return t.Truncate(TierFor(ref, t).Grid())
}

// StepBackward returns the bucket boundary strictly before p.
func StepBackward(ref, p time.Time) time.Time {
	p = minute(p)
	grid := TierFor(ref, p).Grid()
	prev := p.Truncate(grid)
	if !prev.Before(p) {
		prev = prev.Add(-grid)
	}
	return prev
}

// Range snaps both ends of a requested range onto the grid.
func Range(ref, from, to time.Time) (time.Time, time.Time) {
	return SnapForward(ref, from), SnapForward(ref, to)
}

// Window is the span of bucket dates produced with a given tier's grid.
type Window struct {
	From, To time.Time
}

// extend widens the window to include on.
func (w Window) extend(on time.Time) Window {
	if w.From.IsZero() || on.Before(w.From) {
		w.From = on
	}
	if w.To.IsZero() || on.After(w.To) {
		w.To = on
	}
	return w
}

// Buckets is the result of an enumeration.
type Buckets struct {
	// Dates are the bucket boundaries in ascending order.
	Dates []time.Time
	// Windows holds, for each tier touched, the span of its bucket dates.
	Windows map[Tier]Window
}

// Len returns the number of buckets.
func (b Buckets) Len() int { return len(b.Dates) }

// Descending returns the bucket dates from the newest to the oldest.
func (b Buckets) Descending() []time.Time {
	dates := slices.Clone(b.Dates)
	slices.Reverse(dates)
	return dates
}

// Enumerate walks from 'to' back to 'from' (never below) and returns every
// bucket boundary on the way. The tier is re-evaluated at every step, so the
// grid widens as the walk goes into the past.
//
// The caller is responsible for from <= to. If from == to there is exactly
// one bucket.
func Enumerate(from, to, ref time.Time) Buckets {
	from, to = from.UTC(), to.UTC()
	b := Buckets{Windows: make(map[Tier]Window)}

	desc := []time.Time{to}
	first := TierFor(ref, to)
	b.Windows[first] = b.Windows[first].extend(to)

	for p := to; p.After(from); {
		tier := TierFor(ref, p)
		prev := StepBackward(ref, p)
		if prev.Before(from) {
			break
		}
		desc = append(desc, prev)
		b.Windows[tier] = b.Windows[tier].extend(prev)
		p = prev
	}

	slices.Reverse(desc)
	b.Dates = desc
	return b
}
