// ===== internal/logs/manager.go =====
package logs

import (
	"bufio"
	"container/list"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"wifigaze/pkg/models"
)

const maxLogEntries = 100

// Manager keeps the most recent diagnostic lines written by capture tools
type Manager struct {
	logs   *list.List
	max    int
	logger *zap.Logger
	mu     sync.RWMutex
}

// NewManager creates a new log manager
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{
		logs:   list.New(),
		max:    maxLogEntries,
		logger: logger,
	}
}

// GetLogs returns current log entries, oldest first
func (m *Manager) GetLogs() []models.LogEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := make([]models.LogEntry, 0, m.logs.Len())
	for e := m.logs.Front(); e != nil; e = e.Next() {
		entries = append(entries, *(e.Value.(*models.LogEntry)))
	}

	return entries
}

// Add records one line for a channel (an interface name)
func (m *Manager) Add(channel, message string) {
	now := time.Now()
	m.addLogEntry(&models.LogEntry{
		Timestamp: now,
		UnixTime:  now.Unix(),
		Channel:   channel,
		Message:   message,
	})
}

// addLogEntry adds a new log entry to the collection
func (m *Manager) addLogEntry(entry *models.LogEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Remove old entries if we exceed the limit
	if m.logs.Len() >= m.max {
		m.logs.Remove(m.logs.Front())
	}

	m.logs.PushBack(entry)
}

// ScanLogs reads reader until EOF, storing and logging every line
func (m *Manager) ScanLogs(reader io.Reader, channel string) {
	scanner := bufio.NewScanner(reader)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		m.Add(channel, line)
		m.logger.Warn("capture tool output", zap.String("iface", channel), zap.String("line", line))
	}

	if err := scanner.Err(); err != nil {
		m.logger.Debug("capture tool output closed", zap.String("iface", channel), zap.Error(err))
	}
}
