/*
Package leases parses the contents of a dhcpd.leases file, as written by the
OpenBSD dhcpd ("BSD") and by ISC dhcpd on Linux, into a collection of Lease
records, and answers questions about them.

The file is handled in two passes: Lex turns the text into tokens, then Parse
walks them with one token of lookahead. Parse does not read files; callers
hand it the whole file contents.

	res, err := leases.Parse(string(content))
	if err != nil {
		return err
	}
	current := leases.NewFilter(res.Leases).OnMAC("00:ea:d4").OnActive().Collect()

Q: Which leases are "active"?
A: Lease.IsActiveAt only compares against the starts and ends dates.
Lease.IsActive also honours the abandoned flag and, for Linux files, the
binding state: "free" is inactive, "active" falls through to the ends date,
anything else is treated like "active" and logged as a warning. A lease with
no ends date is reported inactive, with a warning.

References:
  - https://man.openbsd.org/dhcpd.leases.5
  - https://linux.die.net/man/5/dhcpd.leases
*/
package leases
