package leases

import (
	"fmt"
	"io"
	"log"
	"time"
)

// Binding states that IsActive interprets. Linux (ISC) servers write others
// too (expired, released, backup...), which are reported with a warning.
const (
	StateActive = "active"
	StateFree   = "free"
)

// WarnLogger receives the advisories raised by IsActive. Set it to
// log.New(io.Discard, "", 0) to silence them.
var WarnLogger = log.New(log.Writer(), "", log.LstdFlags)

// DisableWarnings silences the activity advisories
func DisableWarnings() {
	WarnLogger = log.New(io.Discard, "", 0)
}

// Hardware is the link-layer identity of the client holding a lease
type Hardware struct {
	Type string `json:"type"`
	MAC  string `json:"mac"`
}

// LeaseDates holds the date statements of a lease. A nil field means the
// statement was absent. Tstp, Tsfp, Atsfp and Cltt are only written by
// Linux (ISC) servers.
type LeaseDates struct {
	Starts *Date
	Ends   *Date
	Tstp   *Date
	Tsfp   *Date
	Atsfp  *Date
	Cltt   *Date
}

// Lease is one "lease <ip> { ... }" block. Empty strings mean the
// statement was absent.
type Lease struct {
	IP             string
	Dates          LeaseDates
	Hardware       *Hardware
	UID            string
	ClientHostname string
	Hostname       string
	Abandoned      bool

	// Linux (ISC) only
	BindingState       string
	NextBindingState   string
	RewindBindingState string
	ByteOrder          string
}

// IsLinux reports whether the lease was written by a Linux (ISC) server
func (l Lease) IsLinux() bool {
	return l.BindingState != ""
}

// Client returns the hardware address of the client, or "" if unknown
func (l Lease) Client() string {
	if l.Hardware == nil {
		return ""
	}
	return l.Hardware.MAC
}

// EndTime returns the end of the lease, or the zero time when the lease
// has no ends statement.
func (l Lease) EndTime() time.Time {
	if l.Dates.Ends == nil {
		return time.Time{}
	}
	return l.Dates.Ends.Time()
}

// IsActiveAt reports whether when falls within [starts, ends]. A missing
// bound does not restrict.
func (l Lease) IsActiveAt(when Date) bool {
	if l.Dates.Starts != nil && l.Dates.Starts.After(when) {
		return false
	}
	if l.Dates.Ends != nil && l.Dates.Ends.Before(when) {
		return false
	}
	return true
}

// ActiveAfter reports whether the lease ends strictly after t. Leases
// without an ends statement are not.
func (l Lease) ActiveAfter(t time.Time) bool {
	if l.Dates.Ends == nil {
		return false
	}
	return l.Dates.Ends.Time().After(t)
}

// Activity decides whether the lease is active at now. Precedence is
// abandoned, then binding state, then the ends date. The returned warning
// is non-empty when the answer rests on an unrecognised binding state or
// on a missing ends date; it is advisory, not an error.
func (l Lease) Activity(now time.Time) (bool, string) {
	if l.Abandoned {
		return false, ""
	}

	var warning string
	switch l.BindingState {
	case "", StateActive:
	case StateFree:
		return false, ""
	default:
		warning = fmt.Sprintf("lease %s: unrecognised binding state %q treated as active", l.IP, l.BindingState)
	}

	if l.Dates.Ends == nil {
		if warning != "" {
			warning += "; "
		}
		return false, warning + fmt.Sprintf("lease %s: no ends date, activity is indeterminate", l.IP)
	}
	return l.Dates.Ends.Time().After(now), warning
}

// IsActive is Activity evaluated now, with any warning sent to WarnLogger
func (l Lease) IsActive() bool {
	active, warning := l.Activity(time.Now())
	if warning != "" {
		WarnLogger.Printf("Warning: %s", warning)
	}
	return active
}

// Clone returns a deep copy of the lease
func (l Lease) Clone() Lease {
	c := l
	if l.Hardware != nil {
		hw := *l.Hardware
		c.Hardware = &hw
	}
	c.Dates = LeaseDates{
		Starts: cloneDate(l.Dates.Starts),
		Ends:   cloneDate(l.Dates.Ends),
		Tstp:   cloneDate(l.Dates.Tstp),
		Tsfp:   cloneDate(l.Dates.Tsfp),
		Atsfp:  cloneDate(l.Dates.Atsfp),
		Cltt:   cloneDate(l.Dates.Cltt),
	}
	return c
}

func cloneDate(d *Date) *Date {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}
