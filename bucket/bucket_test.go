package bucket

import (
	"slices"
	"testing"
	"time"
)

var ref = time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestTierFor(t *testing.T) {
	testCases := []struct {
		on   time.Time
		want Tier
	}{
		{ref.Add(time.Hour), FortyEight},
		{ref, FortyEight},
		{ref.Add(-13 * time.Minute), FortyEight},
		{ref.Add(-Day), FortyEight},
		{ref.Add(-Day - time.Minute), Twelve},
		{ref.Add(-7 * Day), Twelve},
		{ref.Add(-7*Day - time.Minute), Four},
		{ref.Add(-30 * Day), Four},
		{ref.Add(-31 * Day), One},
	}
	for _, tc := range testCases {
		if got := TierFor(ref, tc.on); got != tc.want {
			t.Errorf("TierFor(%v) = %v, want %v", tc.on, got, tc.want)
		}
	}
}

func TestTier_Grid(t *testing.T) {
	want := []time.Duration{30 * time.Minute, 2 * time.Hour, 6 * time.Hour, Day}
	for i, tier := range Tiers() {
		if got := tier.Grid(); got != want[i] {
			t.Errorf("%v.Grid() = %v, want %v", tier, got, want[i])
		}
		parsed, err := ParseTier(tier.String())
		if err != nil || parsed != tier {
			t.Errorf("ParseTier(%q) = %v, %v want %v", tier.String(), parsed, err, tier)
		}
	}
	if _, err := ParseTier("LATEST"); err == nil {
		t.Error("ParseTier(LATEST) succeeded, want error")
	}
}

func TestSnapForward(t *testing.T) {
	testCases := []struct {
		on, want string
	}{
		{"2024-03-09T23:47:00Z", "2024-03-10T00:00:00Z"},
		{"2024-03-09T23:47:31Z", "2024-03-10T00:00:00Z"},
		{"2024-03-09T23:30:00Z", "2024-03-09T23:30:00Z"},
		{"2024-03-09T23:30:45Z", "2024-03-09T23:30:00Z"},
		{"2024-03-07T10:15:00Z", "2024-03-07T12:00:00Z"},
		{"2024-03-07T10:00:00Z", "2024-03-07T10:00:00Z"},
		{"2024-03-07T11:15:00Z", "2024-03-07T12:00:00Z"},
		{"2024-02-20T01:10:00Z", "2024-02-20T06:00:00Z"},
		{"2024-01-15T01:10:00Z", "2024-01-16T00:00:00Z"},
		{"2024-01-15T00:00:00Z", "2024-01-15T00:00:00Z"},
	}
	for _, tc := range testCases {
		if got := SnapForward(ref, at(tc.on)); !got.Equal(at(tc.want)) {
			t.Errorf("SnapForward(%s) = %v, want %s", tc.on, got, tc.want)
		}
	}
}

func TestSnapBackward(t *testing.T) {
	testCases := []struct {
		on, want string
	}{
		{"2024-03-09T23:47:00Z", "2024-03-09T23:30:00Z"},
		{"2024-03-09T23:30:00Z", "2024-03-09T23:30:00Z"},
		{"2024-03-07T10:15:00Z", "2024-03-07T10:00:00Z"},
		{"2024-03-07T11:15:00Z", "2024-03-07T10:00:00Z"},
		{"2024-02-20T05:59:00Z", "2024-02-20T00:00:00Z"},
		{"2024-01-15T23:10:00Z", "2024-01-15T00:00:00Z"},
	}
	for _, tc := range testCases {
		if got := SnapBackward(ref, at(tc.on)); !got.Equal(at(tc.want)) {
			t.Errorf("SnapBackward(%s) = %v, want %s", tc.on, got, tc.want)
		}
	}
}

func TestStepBackward(t *testing.T) {
	testCases := []struct {
		on, want string
	}{
		{"2024-03-10T00:00:00Z", "2024-03-09T23:30:00Z"},
		{"2024-03-09T23:47:00Z", "2024-03-09T23:30:00Z"},
		{"2024-03-08T00:00:00Z", "2024-03-07T22:00:00Z"},
		{"2024-03-08T01:00:00Z", "2024-03-08T00:00:00Z"},
		{"2024-02-20T06:00:00Z", "2024-02-20T00:00:00Z"},
		{"2024-02-20T05:00:00Z", "2024-02-20T00:00:00Z"},
		{"2024-01-16T00:00:00Z", "2024-01-15T00:00:00Z"},
		{"2024-01-16T10:00:00Z", "2024-01-16T00:00:00Z"},
	}
	for _, tc := range testCases {
		if got := StepBackward(ref, at(tc.on)); !got.Equal(at(tc.want)) {
			t.Errorf("StepBackward(%s) = %v, want %s", tc.on, got, tc.want)
		}
	}
}

func TestEnumerate_SinglePoint(t *testing.T) {
	b := Enumerate(ref, ref, ref)
	if b.Len() != 1 {
		t.Fatalf("Enumerate(ref, ref).Len() = %d, want 1", b.Len())
	}
	if !b.Dates[0].Equal(ref) {
		t.Errorf("Enumerate(ref, ref)[0] = %v, want %v", b.Dates[0], ref)
	}
	w, ok := b.Windows[FortyEight]
	if !ok || !w.From.Equal(ref) || !w.To.Equal(ref) {
		t.Errorf("Windows[FORTYEIGHT] = %v, %v want [%v, %v]", w, ok, ref, ref)
	}
}

func TestEnumerate_LastHours(t *testing.T) {
	b := Enumerate(ref.Add(-2*time.Hour), ref, ref)
	want := []time.Time{
		at("2024-03-09T22:00:00Z"),
		at("2024-03-09T22:30:00Z"),
		at("2024-03-09T23:00:00Z"),
		at("2024-03-09T23:30:00Z"),
		at("2024-03-10T00:00:00Z"),
	}
	if !slices.EqualFunc(b.Dates, want, time.Time.Equal) {
		t.Errorf("Enumerate() = %v, want %v", b.Dates, want)
	}
	if len(b.Windows) != 1 {
		t.Errorf("len(Windows) = %d, want 1: %v", len(b.Windows), b.Windows)
	}
	if w := b.Windows[FortyEight]; !w.From.Equal(want[0]) || !w.To.Equal(ref) {
		t.Errorf("Windows[FORTYEIGHT] = %v, want [%v, %v]", w, want[0], ref)
	}
}

func TestEnumerate_NotBelowFrom(t *testing.T) {
	from := at("2024-03-09T22:10:00Z")
	b := Enumerate(from, ref, ref)
	if first := b.Dates[0]; !first.Equal(at("2024-03-09T22:30:00Z")) {
		t.Errorf("Enumerate()[0] = %v, want 2024-03-09T22:30:00Z", first)
	}
}

func TestEnumerate_Properties(t *testing.T) {
	from := ref.Add(-60 * Day)
	b := Enumerate(from, ref, ref)

	if got := b.Dates[len(b.Dates)-1]; !got.Equal(ref) {
		t.Errorf("last date = %v, want %v", got, ref)
	}
	for i, on := range b.Dates {
		if on.Before(from) {
			t.Errorf("Dates[%d] = %v is before from %v", i, on, from)
		}
		if i == 0 {
			continue
		}
		gap := on.Sub(b.Dates[i-1])
		if gap <= 0 || gap > TierFor(ref, on).Grid() {
			t.Errorf("gap before Dates[%d] = %v, want within (0, %v]", i, gap, TierFor(ref, on).Grid())
		}
	}

	// last day is 48 points of 30 minutes plus the reference point.
	var recent int
	for _, on := range b.Dates {
		if TierFor(ref, on) == FortyEight {
			recent++
		}
	}
	if recent != 49 {
		t.Errorf("points in last 24h = %d, want 49", recent)
	}

	if len(b.Windows) != 4 {
		t.Errorf("len(Windows) = %d, want 4", len(b.Windows))
	}
	for tier, w := range b.Windows {
		if w.From.After(w.To) {
			t.Errorf("Windows[%v] = %v is inverted", tier, w)
		}
	}

	desc := b.Descending()
	slices.SortFunc(desc, time.Time.Compare)
	if !slices.EqualFunc(desc, b.Dates, time.Time.Equal) {
		t.Error("sorting Descending() ascending does not reproduce Dates")
	}
	for i := 1; i < len(b.Dates); i++ {
		if !b.Dates[i].After(b.Dates[i-1]) {
			t.Fatalf("Dates not strictly ascending at %d: %v, %v", i, b.Dates[i-1], b.Dates[i])
		}
	}
}

func TestRange(t *testing.T) {
	from, to := Range(ref, at("2024-03-09T20:05:00Z"), at("2024-03-09T23:47:00Z"))
	if !from.Equal(at("2024-03-09T20:30:00Z")) {
		t.Errorf("Range().from = %v, want 2024-03-09T20:30:00Z", from)
	}
	if !to.Equal(ref) {
		t.Errorf("Range().to = %v, want %v", to, ref)
	}
}
