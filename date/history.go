package date

import (
	"iter"
	"slices"
)

// History stores a chronological series of values, each associated with a specific date.
// It ensures that dates are unique and the series is always sorted.
type History[T any] struct {
	days   []Date
	values []T
}

// Len returns the number of items in the history.
func (h *History[T]) Len() int { return len(h.days) }

// Clear removes all items from the history.
func (h *History[T]) Clear() {
	h.days = h.days[:0]
	h.values = h.values[:0]
}

// Latest returns the latest date and value in the history.
// If the history is empty, it returns zero value.
func (h *History[T]) Latest() (day Date, value T) {
	last := len(h.days) - 1
	if last < 0 {
		return Date{}, value
	}
	return h.days[last], h.values[last]
}

// search returns the insertion index of day and whether it is present.
func (h *History[T]) search(day Date) (int, bool) {
	return slices.BinarySearchFunc(h.days, day, func(d, t Date) int {
		switch {
		case d.After(t):
			return 1
		case d.Before(t):
			return -1
		default:
			return 0
		}
	})
}

// Append adds a point to the history.
//
// Existing value at that date are overwritten.
func (h *History[T]) Append(on Date, v T) *History[T] {
	i, found := h.search(on)
	if found {
		// last write wins
		h.values[i] = v
		return h
	}
	h.days = slices.Insert(h.days, i, on)
	h.values = slices.Insert(h.values, i, v)
	return h
}

// Values returns an iterator over all date/value pairs in the history, in chronological order.
func (h *History[T]) Values() iter.Seq2[Date, T] {
	return func(yield func(Date, T) bool) {
		for i, on := range h.days {
			if !yield(on, h.values[i]) {
				return
			}
		}
	}
}

// Get returns the value at 'day' and true or zero value and false.
func (h *History[T]) Get(day Date) (v T, ok bool) {
	if i, found := h.search(day); found {
		return h.values[i], true
	}
	return v, false
}

// ValueAsOf returns the value on a given day, or the most recent value before it.
// It returns the value and true if found, otherwise it returns the zero value and false.
func (h *History[T]) ValueAsOf(day Date) (T, bool) {
	_, v, ok := h.ValueWithin(day, -1)
	return v, ok
}

// ValueWithin is like ValueAsOf but ignores values older than maxAge days.
// A negative maxAge means no limit. It also returns the day of the value found.
func (h *History[T]) ValueWithin(day Date, maxAge int) (on Date, v T, ok bool) {
	i, found := h.search(day)
	if found {
		return h.days[i], h.values[i], true
	}
	// i is where day would be inserted, the candidate is at i-1.
	if i == 0 {
		return on, v, false
	}
	if maxAge >= 0 && day.DaysSince(h.days[i-1]) > maxAge {
		return on, v, false
	}
	return h.days[i-1], h.values[i-1], true
}

// Sub returns a new History restricted to the range r.
func (h *History[T]) Sub(r Range) *History[T] {
	sub := new(History[T])
	for on, v := range h.Values() {
		if r.Contains(on) {
			sub.days = append(sub.days, on)
			sub.values = append(sub.values, v)
		}
	}
	return sub
}
