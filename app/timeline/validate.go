package timeline

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidationKind identifies the class of a date validation failure.
type ValidationKind string

const (
	InvalidYear      ValidationKind = "invalid_year"
	InvalidMonth     ValidationKind = "invalid_month"
	InvalidDay       ValidationKind = "invalid_day"
	InvalidTime      ValidationKind = "invalid_time"
	InvalidDateShape ValidationKind = "invalid_date_shape"
)

// ValidationError describes a present-but-invalid date field or a gap in the
// year→month→day→time precision cascade. It is always recovered locally: the
// affected instant resolves to absent and the row continues through
// normalization.
type ValidationError struct {
	Kind   ValidationKind
	Column string
	Value  string
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case InvalidDateShape:
		return fmt.Sprintf("invalid date construction: %q (parts must fill in year, month, day, time order)", e.Value)
	default:
		return fmt.Sprintf("%s: column %q has value %q", e.Kind, e.Column, e.Value)
	}
}

// cellValue reads a cell, treating a missing key and a blank (post-trim)
// string alike as absent.
func cellValue(row Row, column string) (string, bool) {
	raw, ok := row[column]
	if !ok {
		return "", false
	}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}
	return trimmed, true
}

// ResolveDateParts validates the four date cells of a row and builds the
// corresponding instant. Fields are checked in year, month, day, time order
// and the first invalid one wins. Any supplied integer year is accepted
// (zero and negatives included); month must be 1..12 and is converted to
// zero-based; day must be 1..31 with no month-length cross-check; time must
// satisfy the clock-time grammar. After individual validation the ordered
// tuple is checked for gaps: an absent part followed by a present one makes
// the whole date invalid. Returns (nil, nil) when every part is absent.
func ResolveDateParts(row Row, yearCol, monthCol, dayCol, timeCol string) (*Instant, *ValidationError) {
	var year, month, day *int
	var tod *TimeOfDay

	if raw, ok := cellValue(row, yearCol); ok {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, &ValidationError{Kind: InvalidYear, Column: yearCol, Value: raw}
		}
		year = &v
	}

	if raw, ok := cellValue(row, monthCol); ok {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > 12 {
			return nil, &ValidationError{Kind: InvalidMonth, Column: monthCol, Value: raw}
		}
		v--
		month = &v
	}

	if raw, ok := cellValue(row, dayCol); ok {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > 31 {
			return nil, &ValidationError{Kind: InvalidDay, Column: dayCol, Value: raw}
		}
		day = &v
	}

	if raw, ok := cellValue(row, timeCol); ok {
		tod = ParseClockTime(raw)
		if tod == nil {
			return nil, &ValidationError{Kind: InvalidTime, Column: timeCol, Value: raw}
		}
	}

	if err := checkDateShape(year, month, day, tod); err != nil {
		return nil, err
	}

	return ConstructInstant(year, month, day, tod), nil
}

// checkDateShape enforces the no-gaps rule over [year, month, day, time]:
// a month without a year, a day without a month, or a time without a day is
// nonsensical. Hour and minute count as a single unit.
func checkDateShape(year, month, day *int, tod *TimeOfDay) *ValidationError {
	present := []bool{year != nil, month != nil, day != nil, tod != nil}
	for i := range present {
		if present[i] {
			continue
		}
		for _, later := range present[i+1:] {
			if later {
				return &ValidationError{
					Kind:  InvalidDateShape,
					Value: describeParts(year, month, day, tod),
				}
			}
		}
	}
	return nil
}

func describeParts(year, month, day *int, tod *TimeOfDay) string {
	part := func(p *int) string {
		if p == nil {
			return "-"
		}
		return strconv.Itoa(*p)
	}
	timePart := "-,-"
	if tod != nil {
		timePart = fmt.Sprintf("%d,%d", tod.Hour, tod.Minute)
	}
	return fmt.Sprintf("%s,%s,%s,%s", part(year), part(month), part(day), timePart)
}
