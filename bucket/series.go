package bucket

import (
	"iter"
	"slices"
	"time"
)

// Series stores values keyed by bucket date, always sorted chronologically.
// Its zero value is an empty series ready to use.
type Series[T any] struct {
	dates  []time.Time
	values []T
}

// Len returns the number of items in the series.
func (s *Series[T]) Len() int { return len(s.dates) }

// index returns the position of on, or where it would be inserted.
func (s *Series[T]) index(on time.Time) (int, bool) {
	return slices.BinarySearchFunc(s.dates, on, func(d, t time.Time) int { return d.Compare(t) })
}

// Set stores a value on a date.
//
// Existing value at that date is overwritten.
func (s *Series[T]) Set(on time.Time, v T) *Series[T] {
	on = on.UTC()
	i, found := s.index(on)
	if found {
		s.values[i] = v
		return s
	}
	s.dates = slices.Insert(s.dates, i, on)
	s.values = slices.Insert(s.values, i, v)
	return s
}

// SetIfAbsent stores a value on a date only if there is none yet.
// It reports whether the value was stored.
func (s *Series[T]) SetIfAbsent(on time.Time, v T) bool {
	if _, found := s.index(on.UTC()); found {
		return false
	}
	s.Set(on, v)
	return true
}

// Get returns the value at 'on' and true or zero value and false.
func (s *Series[T]) Get(on time.Time) (T, bool) {
	var zero T
	if i, found := s.index(on.UTC()); found {
		return s.values[i], true
	}
	return zero, false
}

// ValueAsOf returns the value on a given date, or the most recent value before it.
func (s *Series[T]) ValueAsOf(on time.Time) (T, bool) {
	i, found := s.index(on.UTC())
	if found {
		return s.values[i], true
	}
	// i is where 'on' would be inserted, the previous entry is the last one before.
	if i == 0 {
		var zero T
		return zero, false
	}
	return s.values[i-1], true
}

// First returns the oldest entry of the series.
func (s *Series[T]) First() (time.Time, T, bool) {
	if len(s.dates) == 0 {
		var zero T
		return time.Time{}, zero, false
	}
	return s.dates[0], s.values[0], true
}

// Latest returns the newest entry of the series.
func (s *Series[T]) Latest() (time.Time, T, bool) {
	last := len(s.dates) - 1
	if last < 0 {
		var zero T
		return time.Time{}, zero, false
	}
	return s.dates[last], s.values[last], true
}

// Dates returns a copy of the dates, ascending.
func (s *Series[T]) Dates() []time.Time { return slices.Clone(s.dates) }

// Values returns an iterator over all date/value pairs, in chronological order.
func (s *Series[T]) Values() iter.Seq2[time.Time, T] {
	return func(yield func(time.Time, T) bool) {
		for i, on := range s.dates {
			if !yield(on, s.values[i]) {
				return
			}
		}
	}
}
