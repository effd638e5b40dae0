// ===== pkg/utils/network.go =====
package utils

import (
	"encoding/binary"
	"net"
	"strings"
)

// IPToInt converts an IPv4 address to a 32-bit integer for sorting.
// Anything that is not IPv4 sorts as 0.
func IPToInt(addr string) uint32 {
	ip := net.ParseIP(addr).To4()
	if ip == nil {
		return 0
	}
	return binary.BigEndian.Uint32(ip)
}

// IsPrivateMAC checks if a MAC address is a locally administered (private) MAC
func IsPrivateMAC(mac string) bool {
	hw, err := net.ParseMAC(mac)
	if err != nil || len(hw) == 0 {
		return false
	}
	// locally administered bit is bit 1 of the first octet
	return (hw[0] & 0x02) != 0
}

// NormalizeMAC normalizes a MAC address string to uppercase with colons.
// Strings that are not MAC addresses, such as OUI prefixes, are only
// upper-cased.
func NormalizeMAC(mac string) string {
	if hwAddr, err := net.ParseMAC(mac); err == nil {
		return strings.ToUpper(hwAddr.String())
	}
	return strings.ToUpper(mac)
}
