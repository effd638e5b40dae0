package leases

import (
	"strings"
	"time"
)

// ByMACAll returns every lease whose hardware address starts with prefix.
// A whole address or an OUI such as "00:ea:d4" both work.
func ByMACAll(leases Leases, prefix string) Leases {
	return leases.where(func(l *Lease) bool {
		return l.Hardware != nil && strings.HasPrefix(l.Hardware.MAC, prefix)
	})
}

// ByMACActive is ByMACAll restricted to leases that are active now
func ByMACActive(leases Leases, prefix string) Leases {
	return ByMACAll(leases, prefix).where(func(l *Lease) bool { return l.IsActive() })
}

// Filter narrows a copy of a Leases collection. Each On* call keeps only
// the leases that also match its predicate, so calls chain as a logical
// AND and should go from broad to narrow:
//
//	latest := leases.NewFilter(res.Leases).
//		OnMAC("00:ea:d4:39:0d:04").
//		OnActiveNow(time.Time{}).
//		Latest().
//		Collect()
//
// A Filter is not safe for concurrent use; the Leases it was built from
// is never modified.
type Filter struct {
	leases  []Lease
	matches []int
}

// NewFilter creates a filter over a copy of leases, initially matching all
func NewFilter(leases Leases) *Filter {
	f := &Filter{
		leases:  leases.All(),
		matches: make([]int, leases.Len()),
	}
	for i := range f.matches {
		f.matches[i] = i
	}
	return f
}

func (f *Filter) keep(pred func(*Lease) bool) *Filter {
	kept := f.matches[:0]
	for _, i := range f.matches {
		if pred(&f.leases[i]) {
			kept = append(kept, i)
		}
	}
	f.matches = kept
	return f
}

// OnIP keeps leases whose address starts with prefix. An address is
// offered to many clients over time, so this reviews its history.
func (f *Filter) OnIP(prefix string) *Filter {
	return f.keep(func(l *Lease) bool { return strings.HasPrefix(l.IP, prefix) })
}

// OnMAC keeps leases whose hardware address starts with prefix
func (f *Filter) OnMAC(prefix string) *Filter {
	return f.keep(func(l *Lease) bool { return l.Hardware != nil && strings.HasPrefix(l.Hardware.MAC, prefix) })
}

// OnActive keeps leases for which IsActive is true
func (f *Filter) OnActive() *Filter {
	return f.keep(func(l *Lease) bool { return l.IsActive() })
}

// OnActiveNow keeps leases that end strictly after at. The zero time
// means now.
func (f *Filter) OnActiveNow(at time.Time) *Filter {
	if at.IsZero() {
		at = time.Now()
	}
	return f.keep(func(l *Lease) bool { return l.ActiveAfter(at) })
}

// Latest reduces the matches to the single lease with the latest ends
// date. On a tie the later lease in the file wins; leases without an ends
// date lose to any that have one.
func (f *Filter) Latest() *Filter {
	best := -1
	for _, i := range f.matches {
		if best < 0 || !laterEnd(&f.leases[best], &f.leases[i]) {
			best = i
		}
	}
	if best < 0 {
		f.matches = f.matches[:0]
	} else {
		f.matches = append(f.matches[:0], best)
	}
	return f
}

// laterEnd reports whether a ends strictly after b
func laterEnd(a, b *Lease) bool {
	switch {
	case a.Dates.Ends == nil:
		return false
	case b.Dates.Ends == nil:
		return true
	}
	return a.Dates.Ends.After(*b.Dates.Ends)
}

// Count returns the number of leases currently matching
func (f *Filter) Count() int {
	return len(f.matches)
}

// Collect returns copies of the matching leases in source order
func (f *Filter) Collect() Leases {
	var out Leases
	for _, i := range f.matches {
		out.Push(f.leases[i])
	}
	return out
}
