package logs

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAddAndGetLogs(t *testing.T) {
	m := NewManager(zap.NewNop())
	m.Add("wlan0", "Capturing on 'wlan0'")
	m.Add("wlan1", "Capturing on 'wlan1'")

	entries := m.GetLogs()
	require.Len(t, entries, 2)
	assert.Equal(t, "wlan0", entries[0].Channel)
	assert.Equal(t, "Capturing on 'wlan1'", entries[1].Message)
	assert.False(t, entries[0].Timestamp.IsZero())
}

func TestLogsBounded(t *testing.T) {
	m := NewManager(zap.NewNop())
	for i := 0; i < maxLogEntries+25; i++ {
		m.Add("wlan0", fmt.Sprintf("line %d", i))
	}

	entries := m.GetLogs()
	require.Len(t, entries, maxLogEntries)
	assert.Equal(t, "line 25", entries[0].Message)
	assert.Equal(t, fmt.Sprintf("line %d", maxLogEntries+24), entries[len(entries)-1].Message)
}

func TestScanLogs(t *testing.T) {
	m := NewManager(zap.NewNop())
	m.ScanLogs(strings.NewReader("Capturing on 'wlan0'\n\ntshark: interface went down\n"), "wlan0")

	entries := m.GetLogs()
	require.Len(t, entries, 2)
	assert.Equal(t, "tshark: interface went down", entries[1].Message)
}

func TestGetLogsEmpty(t *testing.T) {
	m := NewManager(zap.NewNop())
	assert.NotNil(t, m.GetLogs())
	assert.Empty(t, m.GetLogs())
}
