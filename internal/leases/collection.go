package leases

import (
	"sort"
)

// Leases is an ordered collection of leases as they appeared in the file.
// Servers append the newest state of a lease at the end, so lookups that
// return a single lease prefer the highest index.
type Leases struct {
	items []Lease
}

// NewLeases builds a collection holding copies of items
func NewLeases(items ...Lease) Leases {
	var ls Leases
	for _, l := range items {
		ls.Push(l)
	}
	return ls
}

// Push appends a copy of l
func (ls *Leases) Push(l Lease) {
	ls.items = append(ls.items, l.Clone())
}

// Len returns the number of leases
func (ls Leases) Len() int {
	return len(ls.items)
}

// At returns a copy of the i'th lease. It panics if i is out of range.
func (ls Leases) At(i int) Lease {
	return ls.items[i].Clone()
}

// All returns a copy of every lease in source order
func (ls Leases) All() []Lease {
	out := make([]Lease, len(ls.items))
	for i, l := range ls.items {
		out[i] = l.Clone()
	}
	return out
}

// Clone returns an independent copy of the collection
func (ls Leases) Clone() Leases {
	return Leases{items: ls.All()}
}

// last returns the highest-indexed lease matching keep
func (ls Leases) last(keep func(*Lease) bool) (Lease, bool) {
	for i := len(ls.items) - 1; i >= 0; i-- {
		if keep(&ls.items[i]) {
			return ls.items[i].Clone(), true
		}
	}
	return Lease{}, false
}

func (ls Leases) where(keep func(*Lease) bool) Leases {
	var out Leases
	for i := range ls.items {
		if keep(&ls.items[i]) {
			out.Push(ls.items[i])
		}
	}
	return out
}

// ByLeased returns the most recent lease for ip
func (ls Leases) ByLeased(ip string) (Lease, bool) {
	return ls.last(func(l *Lease) bool { return l.IP == ip })
}

// ByLeasedAll returns every lease for ip
func (ls Leases) ByLeasedAll(ip string) Leases {
	return ls.where(func(l *Lease) bool { return l.IP == ip })
}

// ByMAC returns the most recent lease held by the client with exactly mac
func (ls Leases) ByMAC(mac string) (Lease, bool) {
	return ls.last(func(l *Lease) bool { return l.Hardware != nil && l.Hardware.MAC == mac })
}

// ByMACAll returns every lease held by the client with exactly mac
func (ls Leases) ByMACAll(mac string) Leases {
	return ls.where(func(l *Lease) bool { return l.Hardware != nil && l.Hardware.MAC == mac })
}

// ByHostname returns the most recent lease with the given hostname
func (ls Leases) ByHostname(hostname string) (Lease, bool) {
	return ls.last(func(l *Lease) bool { return l.Hostname != "" && l.Hostname == hostname })
}

// ActiveByHostname returns the most recent lease with the given hostname
// that is active at when.
func (ls Leases) ActiveByHostname(hostname string, when Date) (Lease, bool) {
	return ls.last(func(l *Lease) bool {
		return l.Hostname != "" && l.Hostname == hostname && l.IsActiveAt(when)
	})
}

// ByClientHostname returns the leases with the given client hostname,
// most recent first.
func (ls Leases) ByClientHostname(hostname string) Leases {
	var out Leases
	for i := len(ls.items) - 1; i >= 0; i-- {
		if l := ls.items[i]; l.ClientHostname != "" && l.ClientHostname == hostname {
			out.Push(l)
		}
	}
	return out
}

// ActiveByClientHostname returns the most recent lease with the given
// client hostname that is active at when.
func (ls Leases) ActiveByClientHostname(hostname string, when Date) (Lease, bool) {
	return ls.last(func(l *Lease) bool {
		return l.ClientHostname != "" && l.ClientHostname == hostname && l.IsActiveAt(when)
	})
}

// Hostnames returns the distinct hostnames, sorted
func (ls Leases) Hostnames() []string {
	return ls.distinct(func(l *Lease) string { return l.Hostname })
}

// ClientHostnames returns the distinct client hostnames, sorted
func (ls Leases) ClientHostnames() []string {
	return ls.distinct(func(l *Lease) string { return l.ClientHostname })
}

func (ls Leases) distinct(field func(*Lease) string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for i := range ls.items {
		v := field(&ls.items[i])
		if v == "" {
			continue
		}
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}
