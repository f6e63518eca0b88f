// ===== internal/frame/macfilter.go =====
package frame

import "strings"

// MacFilterRule matches an address either exactly or by prefix.
type MacFilterRule struct {
	Pattern string
	Exact   bool
	Reason  string
}

// Match reports whether mac (any case) is covered by the rule.
func (r MacFilterRule) Match(mac string) bool {
	if mac == "" {
		return false
	}
	mac = strings.ToLower(strings.TrimSpace(mac))
	if r.Exact {
		return mac == r.Pattern
	}
	return strings.HasPrefix(mac, r.Pattern)
}

const (
	reasonIPv4Multicast = "IPv4 multicast group"
	reasonIPv6Multicast = "IPv6 multicast group"
	reasonIEEE8021      = "IEEE 802.1D/802.1Q reserved address"
	reasonIEEE8025      = "IEEE 802.5 locally administered group address"
	reasonESIS          = "ISO 9542 ES-IS group address"
	reasonCisco         = "Cisco Systems / IEEE reserved address"
	reasonIEC           = "IEC 61850 group address"
)

// Patterns are lower case.
var macFilterRules = []MacFilterRule{
	{Pattern: "01:00:5e", Reason: reasonIPv4Multicast},
	{Pattern: "33:33", Reason: reasonIPv6Multicast},
	{Pattern: "01:80:c2:00:00", Reason: reasonIEEE8021},
	{Pattern: "03:00:00:00:00", Reason: reasonIEEE8025},
	{Pattern: "09:00:2b:00:00:04", Exact: true, Reason: reasonESIS},
	{Pattern: "09:00:2b:00:00:05", Exact: true, Reason: reasonESIS},
	{Pattern: "01:00:0c:cc:cc:cc", Exact: true, Reason: reasonCisco},
	{Pattern: "01:00:0c:cc:cc:cd", Exact: true, Reason: reasonCisco},
	{Pattern: "01:1b:19:00:00:00", Exact: true, Reason: reasonCisco},
	{Pattern: "01:0c:cd:01:00", Reason: reasonIEC},
	{Pattern: "01:0c:cd:02:0", Reason: reasonIEC},
	{Pattern: "01:0c:cd:04:0", Reason: reasonIEC},
}

// MacFilterRules returns a copy of the address suppression table.
func MacFilterRules() []MacFilterRule {
	rules := make([]MacFilterRule, len(macFilterRules))
	copy(rules, macFilterRules)
	return rules
}

// MatchMAC returns the first rule covering mac.
func MatchMAC(mac string) (MacFilterRule, bool) {
	for _, rule := range macFilterRules {
		if rule.Match(mac) {
			return rule, true
		}
	}
	return MacFilterRule{}, false
}
