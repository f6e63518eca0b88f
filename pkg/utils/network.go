// ===== pkg/utils/network.go =====
package utils

import (
	"net"
	"strconv"
	"strings"
)

// IsPrivateMAC checks if a MAC address is a locally administered (private) MAC
func IsPrivateMAC(mac net.HardwareAddr) bool {
	if len(mac) == 0 {
		return false
	}
	// Check if the locally administered bit (bit 1 of the first octet) is set
	return (mac[0] & 0x02) != 0
}

// NormalizeMAC normalizes a MAC address string to lowercase with colons
func NormalizeMAC(mac string) string {
	if hwAddr, err := net.ParseMAC(strings.TrimSpace(mac)); err == nil {
		return hwAddr.String()
	}
	return strings.ToLower(strings.TrimSpace(mac))
}

// FrequencyToChannel converts a centre frequency in MHz to an IEEE 802.11 channel number.
// It returns 0 for frequencies outside the 2.4/5 GHz formulas.
func FrequencyToChannel(freq int) int {
	switch {
	case freq == 2484:
		return 14
	case freq >= 2412 && freq < 2484:
		return (freq - 2407) / 5
	case freq >= 5000 && freq <= 5900:
		return freq/5 - 1000
	default:
		return 0
	}
}

// ParseFrequency parses a radiotap.channel.freq field. When several values
// are present the first one wins.
func ParseFrequency(field string) (int, bool) {
	fields := strings.Fields(field)
	if len(fields) == 0 {
		return 0, false
	}
	freq, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, false
	}
	return freq, true
}
