// ===== internal/frame/subtype.go =====
package frame

import (
	"strconv"
	"strings"

	"github.com/google/gopacket/layers"
)

// allowedManagement lists the management subtypes worth forwarding; every other
// management subtype is noise for a device/network view.
var allowedManagement = map[layers.Dot11Type]bool{
	layers.Dot11TypeMgmtAssociationReq:    true,
	layers.Dot11TypeMgmtAssociationResp:   true,
	layers.Dot11TypeMgmtReassociationReq:  true,
	layers.Dot11TypeMgmtReassociationResp: true,
	layers.Dot11TypeMgmtProbeReq:          true,
	layers.Dot11TypeMgmtProbeResp:         true,
	layers.Dot11TypeMgmtBeacon:            true,
	layers.Dot11TypeMgmtDeauthentication:  true,
}

// ManagementSubtypeAllowed reports whether a management subtype is forwarded.
func ManagementSubtypeAllowed(t layers.Dot11Type) bool {
	return allowedManagement[t]
}

// ParseType parses the wlan.fc.type field (0 management, 1 control, 2 data, 3 extension).
func ParseType(code string) (layers.Dot11Type, bool) {
	v, err := strconv.ParseUint(strings.TrimSpace(code), 0, 8)
	if err != nil || v > uint64(layers.Dot11TypeReserved) {
		return 0, false
	}
	return layers.Dot11Type(v), true
}

// ParseSubtype parses the wlan.fc.type_subtype field ("0x0008") into a
// layers.Dot11Type. tshark packs the value as type<<4 | subtype while gopacket
// uses subtype<<2 | type.
func ParseSubtype(code string) (layers.Dot11Type, bool) {
	v, err := strconv.ParseUint(strings.TrimSpace(code), 0, 16)
	if err != nil || v > 0x3f {
		return 0, false
	}
	mainType := v >> 4
	subtype := v & 0x0f
	return layers.Dot11Type(subtype<<2 | mainType), true
}

// SubtypeCode renders a layers.Dot11Type in tshark's type_subtype notation.
func SubtypeCode(t layers.Dot11Type) string {
	code := uint64(t.MainType())<<4 | uint64(t>>2)
	s := strconv.FormatUint(code, 16)
	return "0x" + strings.Repeat("0", 4-len(s)) + s
}
