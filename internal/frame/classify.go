// ===== internal/frame/classify.go =====

// Package frame decides which captured frames are noise.
//
// Classification is a pure function of one parsed capture line. Address rules
// run first because they are the cheapest and match most of the chatter; the
// frame type/subtype policy only sees frames that survived them.
package frame

import "github.com/google/gopacket/layers"

// Verdict reasons that are not taken from a MAC rule.
const (
	ReasonForward           = "forward"
	ReasonControlFrame      = "control frame"
	ReasonManagementSubtype = "management subtype not allowed"
	ReasonNullData          = "null data frame"
	ReasonUnknownType       = "unknown frame type"
	ReasonUnknownSubtype    = "unknown frame subtype"
)

// Verdict is the outcome of classifying one frame.
type Verdict struct {
	Forward bool
	Reason  string
	// Field names the address (ta, ra, sa, da) that matched a MAC rule.
	Field string
}

// Unknown reports whether the frame was forwarded only because a code could not be interpreted.
func (v Verdict) Unknown() bool {
	return v.Reason == ReasonUnknownType || v.Reason == ReasonUnknownSubtype
}

func suppress(reason string) Verdict {
	return Verdict{Reason: reason}
}

func forward(reason string) Verdict {
	return Verdict{Forward: true, Reason: reason}
}

// Classify applies the address rules and then the type/subtype policy.
func Classify(line Line) Verdict {
	for _, addr := range line.addresses() {
		if rule, ok := MatchMAC(addr[1]); ok {
			return Verdict{Reason: rule.Reason, Field: addr[0]}
		}
	}

	frameType, ok := ParseType(line.Type)
	if !ok {
		return forward(ReasonUnknownType)
	}

	switch frameType {
	case layers.Dot11TypeCtrl:
		return suppress(ReasonControlFrame)
	case layers.Dot11TypeMgmt, layers.Dot11TypeData:
	default:
		return forward(ReasonForward)
	}

	subtype, ok := ParseSubtype(line.Subtype)
	if !ok || subtype.MainType() != frameType {
		return forward(ReasonUnknownSubtype)
	}

	if frameType == layers.Dot11TypeMgmt && !ManagementSubtypeAllowed(subtype) {
		return suppress(ReasonManagementSubtype)
	}
	if subtype == layers.Dot11TypeDataNull {
		return suppress(ReasonNullData)
	}
	return forward(ReasonForward)
}
