package leases

import (
	"strconv"
	"strings"
	"time"
)

const (
	dateLayout = "2006/01/02"
	utcMarker  = "UTC"
)

// Date is a point in time read from a lease file. Lease files always
// record UTC, whether or not the trailing "UTC" marker is written.
type Date struct {
	t time.Time
}

// NewDate wraps an instant, normalised to UTC
func NewDate(t time.Time) Date {
	return Date{t: t.UTC()}
}

// ParseDate converts the weekday, date and time tokens of a date statement,
// with an optional trailing timezone token, into a Date. The weekday is
// only checked for being a weekday; a mismatch with the calendar date is
// tolerated since servers never write one and the date itself is authoritative.
func ParseDate(weekday, date, clock string, tz ...string) (Date, error) {
	if len(tz) > 1 {
		return Date{}, newError(ErrMalformedDate, 0, "too many timezone tokens")
	}
	if len(tz) == 1 && tz[0] != utcMarker {
		return Date{}, newError(ErrMalformedDate, 0, "unsupported timezone %q", tz[0])
	}
	if _, ok := parseWeekday(weekday); !ok {
		return Date{}, newError(ErrMalformedDate, 0, "invalid weekday %q", weekday)
	}

	ymd, err := splitInts(date, "/", [][2]int{{0, 9999}, {1, 12}, {1, 31}})
	if err != nil {
		return Date{}, newError(ErrMalformedDate, 0, "invalid date %q: %v", date, err)
	}
	hms, err := splitInts(clock, ":", [][2]int{{0, 23}, {0, 59}, {0, 59}})
	if err != nil {
		return Date{}, newError(ErrMalformedDate, 0, "invalid time %q: %v", clock, err)
	}

	t := time.Date(ymd[0], time.Month(ymd[1]), ymd[2], hms[0], hms[1], hms[2], 0, time.UTC)
	if t.Day() != ymd[2] {
		// time.Date normalises 2019/02/31 into March
		return Date{}, newError(ErrMalformedDate, 0, "invalid date %q: day out of range for month", date)
	}
	return Date{t: t}, nil
}

// MustParseDate is like ParseDate but panics on error. Intended for tests
// and package-level values.
func MustParseDate(weekday, date, clock string) Date {
	d, err := ParseDate(weekday, date, clock)
	if err != nil {
		panic(err)
	}
	return d
}

func splitInts(s, sep string, ranges [][2]int) ([]int, error) {
	parts := strings.Split(s, sep)
	if len(parts) != len(ranges) {
		return nil, strconv.ErrSyntax
	}
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, strconv.ErrSyntax
		}
		if n < ranges[i][0] || n > ranges[i][1] {
			return nil, strconv.ErrRange
		}
		out[i] = n
	}
	return out, nil
}

func parseWeekday(s string) (time.Weekday, bool) {
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 || n > 6 {
			return 0, false
		}
		return time.Weekday(n), true
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(s, d.String()) || strings.EqualFold(s, d.String()[:3]) {
			return d, true
		}
	}
	return 0, false
}

// Time returns the instant the date denotes
func (d Date) Time() time.Time {
	return d.t
}

// IsZero reports whether d was never set
func (d Date) IsZero() bool {
	return d.t.IsZero()
}

func (d Date) Before(o Date) bool { return d.t.Before(o.t) }
func (d Date) After(o Date) bool  { return d.t.After(o.t) }
func (d Date) Equal(o Date) bool  { return d.t.Equal(o.t) }

// Compare returns -1, 0 or +1 depending on whether d is before, equal to
// or after o.
func (d Date) Compare(o Date) int {
	switch {
	case d.t.Before(o.t):
		return -1
	case d.t.After(o.t):
		return 1
	}
	return 0
}

// String renders the date as "Monday 1985/01/01 00:00:00"
func (d Date) String() string {
	return d.t.Weekday().String() + " " + d.t.Format(dateLayout) + " " + d.t.Format(time.TimeOnly)
}
