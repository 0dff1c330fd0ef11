// Package interval implements half-open time interval checks used by shift conflict detection.
//
// An interval [start, end) includes its start instant and excludes its end instant, so two
// intervals that only touch at an endpoint do not overlap and back-to-back shifts are legal.
package interval

import (
	"errors"
	"time"
)

var ErrInvalidInterval = errors.New("interval start must be before end")

// Validate returns ErrInvalidInterval unless start < end.
func Validate(start, end time.Time) error {
	if !start.Before(end) {
		return ErrInvalidInterval
	}
	return nil
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) share any instant.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) (bool, error) {
	if err := Validate(aStart, aEnd); err != nil {
		return false, err
	}
	if err := Validate(bStart, bEnd); err != nil {
		return false, err
	}
	return aStart.Before(bEnd) && bStart.Before(aEnd), nil
}
