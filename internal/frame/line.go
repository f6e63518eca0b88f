// ===== internal/frame/line.go =====
package frame

import (
	"errors"
	"fmt"
	"strings"
)

// FieldCount is the number of fields tshark emits per frame.
const FieldCount = 11

// ErrMalformedFrameLine is returned when a capture line does not split into FieldCount fields.
var ErrMalformedFrameLine = errors.New("malformed frame line")

// CaptureFields are the tshark field names, in output order.
var CaptureFields = []string{
	"wlan.ta",
	"wlan.ra",
	"wlan.sa",
	"wlan.da",
	"frame.len",
	"wlan.ssid",
	"wlan.bssid",
	"radiotap.channel.freq",
	"wlan.flags.str",
	"wlan.fc.type",
	"wlan.fc.type_subtype",
}

// Line is one captured frame reduced to the extracted fields.
type Line struct {
	Raw string

	TA, RA, SA, DA string
	Length         string
	SSID           string
	BSSID          string
	Frequency      string
	Flags          string
	Type           string
	Subtype        string
}

// ParseLine splits a comma separated capture line.
func ParseLine(raw string) (Line, error) {
	fields := strings.Split(raw, ",")
	if len(fields) != FieldCount {
		return Line{}, fmt.Errorf("%w: got %d fields, want %d", ErrMalformedFrameLine, len(fields), FieldCount)
	}

	return Line{
		Raw:       raw,
		TA:        fields[0],
		RA:        fields[1],
		SA:        fields[2],
		DA:        fields[3],
		Length:    fields[4],
		SSID:      fields[5],
		BSSID:     fields[6],
		Frequency: fields[7],
		Flags:     fields[8],
		Type:      fields[9],
		Subtype:   fields[10],
	}, nil
}

// addresses returns the four MAC fields paired with their names.
func (l Line) addresses() [4][2]string {
	return [4][2]string{
		{"ta", l.TA},
		{"ra", l.RA},
		{"sa", l.SA},
		{"da", l.DA},
	}
}
