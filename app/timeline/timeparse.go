package timeline

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	pmSuffixPattern = regexp.MustCompile(`(?i)^(.*)pm\s*$`)
	amSuffixPattern = regexp.MustCompile(`(?i)^(.*)am\s*$`)
)

// TimeOfDay is a parsed clock time. Hour ranges 0..27 rather than 0..23:
// a "pm" suffix adds 12, and "12pm" is encoded as hour 24 so the display
// layer can tell noon apart from midnight. Downstream formatting depends on
// that exact signal, so it is not normalized here.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseClockTime parses a clock-time string such as "10:30" or "10:30pm".
// The optional trailing "pm" is case-insensitive and may be preceded by
// whitespace. Returns nil if the remainder does not split into exactly two
// integer parts. An "am" suffix is stripped without adjustment; hours are
// used as-is.
func ParseClockTime(text string) *TimeOfDay {
	pm := false
	rest := text
	if m := pmSuffixPattern.FindStringSubmatch(text); m != nil {
		pm = true
		rest = m[1]
	} else if m := amSuffixPattern.FindStringSubmatch(text); m != nil {
		rest = m[1]
	}

	parts := strings.Split(rest, ":")
	if len(parts) != 2 {
		return nil
	}

	hour, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return nil
	}
	minute, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil
	}

	if pm {
		hour += 12
		if hour == 12 {
			// Keeps noon-adjacent pm values clear of plain 12:00.
			hour = 24
		}
	}

	return &TimeOfDay{Hour: hour, Minute: minute}
}

// PadYear zero-pads the absolute value of year to at least digits characters,
// keeping a leading minus sign outside the padding: PadYear(-6, 4) == "-0006".
func PadYear(year int, digits int) string {
	s := strconv.Itoa(year)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign = "-"
		s = s[1:]
	}
	for len(s) < digits {
		s = "0" + s
	}
	return sign + s
}

// epochPlaceholder is the fixed base instant date construction starts from:
// year 1, January 1, 00:00.
var epochPlaceholder = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)

// ConstructInstant builds an instant from independently optional parts.
// month is zero-based (callers subtract 1 from the human month first).
// Precision cascades strictly outward-in: month is only applied when year is
// set, day only when month is, and hour/minute only when day is. Negative
// years set the year field alone (BCE); non-negative years are rebuilt from a
// zero-padded ISO string so low-digit years do not roll into the 1900s.
// Returns nil when no information was supplied at all.
func ConstructInstant(year, month, day *int, tod *TimeOfDay) *Instant {
	date := epochPlaceholder

	if year != nil {
		if *year < 0 {
			date = time.Date(*year, date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
		} else {
			rebuilt, err := time.Parse("2006-01-02T15:04", PadYear(*year, 4)+"-01-01T00:00")
			if err == nil {
				date = rebuilt.UTC()
			}
		}
		if month != nil {
			date = time.Date(date.Year(), time.Month(*month+1), date.Day(), date.Hour(), date.Minute(), 0, 0, time.UTC)
			if day != nil {
				date = time.Date(date.Year(), date.Month(), *day, date.Hour(), date.Minute(), 0, 0, time.UTC)
				if tod != nil {
					// Hour 24 rolls over to 00:00 the next day, same as the
					// clock encoding expects.
					date = time.Date(date.Year(), date.Month(), date.Day(), tod.Hour, tod.Minute, 0, 0, time.UTC)
				}
			}
		}
	}

	if !date.Equal(epochPlaceholder) || year != nil {
		return &Instant{
			Time:     date,
			HasYear:  year != nil,
			HasMonth: year != nil && month != nil,
			HasDay:   year != nil && month != nil && day != nil,
			HasTime:  year != nil && month != nil && day != nil && tod != nil,
		}
	}
	return nil
}
