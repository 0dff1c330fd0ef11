// Package recurrence expands a calendar date range and a repeat pattern into concrete dates.
package recurrence

import (
	"errors"
	"iter"
	"slices"
	"time"
)

var ErrInvalidRange = errors.New("start date must not be after end date")

type Kind string

const (
	KindDaily  Kind = "daily"
	KindWeekly Kind = "weekly"
)

var KindValues = []string{
	string(KindDaily),
	string(KindWeekly),
}

// Pattern selects which days of a range are included.
type Pattern struct {
	kind Kind
	days [7]bool
}

// Daily includes every day of the range.
func Daily() Pattern {
	return Pattern{kind: KindDaily}
}

// Weekly includes only the given weekdays (time.Sunday=0 .. time.Saturday=6).
// An empty set is valid and yields no dates.
func Weekly(days ...time.Weekday) Pattern {
	p := Pattern{kind: KindWeekly}
	for _, d := range days {
		if d >= time.Sunday && d <= time.Saturday {
			p.days[d] = true
		}
	}
	return p
}

func (p Pattern) Kind() Kind { return p.kind }

// Includes reports whether a day falling on weekday wd belongs to the pattern.
func (p Pattern) Includes(wd time.Weekday) bool {
	if p.kind == KindDaily {
		return true
	}
	return wd >= time.Sunday && wd <= time.Saturday && p.days[wd]
}

// Sequence is a finite, lazily evaluated run of calendar dates. It holds no iteration
// state, so All may be ranged over any number of times.
type Sequence struct {
	start   time.Time
	end     time.Time
	pattern Pattern
}

// Expand walks every calendar day from start to end inclusive and keeps the days the
// pattern includes. Only the calendar date of start and end is used; the returned dates
// are midnight UTC.
func Expand(start, end time.Time, pattern Pattern) (Sequence, error) {
	s, e := Date(start), Date(end)
	if s.After(e) {
		return Sequence{}, ErrInvalidRange
	}
	return Sequence{start: s, end: e, pattern: pattern}, nil
}

// All yields the dates of the sequence in chronological order.
func (s Sequence) All() iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		if s.start.IsZero() {
			return
		}
		for d := s.start; !d.After(s.end); d = d.AddDate(0, 0, 1) {
			if !s.pattern.Includes(d.Weekday()) {
				continue
			}
			if !yield(d) {
				return
			}
		}
	}
}

// Collect materializes the sequence.
func (s Sequence) Collect() []time.Time {
	return slices.Collect(s.All())
}

// Len counts the dates without allocating them.
func (s Sequence) Len() int {
	n := 0
	for range s.All() {
		n++
	}
	return n
}

// Date truncates t to its calendar date at midnight UTC, keeping the year, month and day
// as observed in t's own location.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
