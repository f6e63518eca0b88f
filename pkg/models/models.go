// ===== pkg/models/models.go =====
package models

import (
	"time"
)

// OUIEntry represents MAC address vendor information
type OUIEntry struct {
	OUI         string `json:"oui"`
	Private     bool   `json:"isPrivate"`
	Company     string `json:"companyName"`
	Address     string `json:"companyAddress"`
	CountryCode string `json:"countryCode"`
	BlockSize   string `json:"assignmentBlockSize"`
	Created     string `json:"dateCreated"`
	Updated     string `json:"dateUpdated"`
}

// LogEntry represents a line of capture tool output
type LogEntry struct {
	Timestamp time.Time `json:"when"`
	UnixTime  int64     `json:"utime"`
	Channel   string    `json:"channel"`
	Message   string    `json:"message"`
}

// Capture states reported for an interface
const (
	StateStarting  = "starting"
	StateCapturing = "capturing"
	StateStopped   = "stopped"
	StateFailed    = "failed"
)

// InterfaceStatus describes one radio under capture
type InterfaceStatus struct {
	Name    string `json:"name"`
	State   string `json:"state"`
	Channel int    `json:"channel,omitempty"`
	Error   string `json:"error,omitempty"`
}

// CaptureCounters are per-interface capture pipeline counters
type CaptureCounters struct {
	Lines      uint64            `json:"lines"`
	Duplicates uint64            `json:"duplicates"`
	Malformed  uint64            `json:"malformed"`
	Suppressed map[string]uint64 `json:"suppressed"`
	Forwarded  uint64            `json:"forwarded"`
	ByChannel  map[int]uint64    `json:"byChannel"`
}

// SubscriberCounters track delivery to one subscriber
type SubscriberCounters struct {
	Sent    uint64 `json:"sent"`
	Dropped uint64 `json:"dropped"`
}

// HubStats is a snapshot of the broadcast hub
type HubStats struct {
	TotalPublished uint64                        `json:"totalPublished"`
	TotalSent      uint64                        `json:"totalSent"`
	TotalDropped   uint64                        `json:"totalDropped"`
	Subscribers    map[string]SubscriberCounters `json:"subscribers"`
}
