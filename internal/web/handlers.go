// ===== internal/web/handlers.go =====
package web

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"wifigaze/internal/logging"
	"wifigaze/pkg/models"
)

// LogEntryJSON represents a log entry in JSON format
type LogEntryJSON struct {
	Timestamp string `json:"when"`
	UnixTime  int64  `json:"utime"`
	Channel   string `json:"channel"`
	Message   string `json:"message"`
}

// StatsJSON combines hub and capture counters
type StatsJSON struct {
	Hub        models.HubStats                   `json:"hub"`
	Interfaces map[string]models.CaptureCounters `json:"interfaces"`
}

// ErrorResponse is the body of every failed API request
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// handleStatusAPI reports every interface's capture state and channel
func (s *Server) handleStatusAPI(w http.ResponseWriter, r *http.Request) {
	logging.Trace(s.logger, "handling status API request")
	s.writeJSON(w, map[string]interface{}{"data": s.monitor.Status()})
}

// handleStatsAPI reports hub and capture counters
func (s *Server) handleStatsAPI(w http.ResponseWriter, r *http.Request) {
	logging.Trace(s.logger, "handling stats API request")
	s.writeJSON(w, map[string]interface{}{"data": StatsJSON{
		Hub:        s.hub.Stats(),
		Interfaces: s.monitor.CaptureStats(),
	}})
}

// handleLogsAPI handles logs API requests
func (s *Server) handleLogsAPI(w http.ResponseWriter, r *http.Request) {
	logEntries := s.monitor.GetLogs()
	logging.Trace(s.logger, "handling logs API request", zap.Int("entries", len(logEntries)))

	jsonLogs := make([]LogEntryJSON, len(logEntries))
	for i, entry := range logEntries {
		jsonLogs[i] = LogEntryJSON{
			Timestamp: entry.Timestamp.Format(time.RFC3339),
			UnixTime:  entry.UnixTime,
			Channel:   entry.Channel,
			Message:   entry.Message,
		}
	}

	s.writeJSON(w, map[string]interface{}{"data": jsonLogs})
}

// handleVendorAPI looks up the vendor of ?mac=
func (s *Server) handleVendorAPI(w http.ResponseWriter, r *http.Request) {
	mac := strings.TrimSpace(r.URL.Query().Get("mac"))
	if mac == "" {
		s.writeJSONError(w, "MAC address parameter is required", http.StatusBadRequest)
		return
	}

	s.writeJSON(w, map[string]interface{}{"data": s.monitor.LookupVendor(mac)})
}

// handleGraphAPI serves the preload graph file
func (s *Server) handleGraphAPI(w http.ResponseWriter, r *http.Request) {
	if s.cfg.PreloadGraph == "" {
		s.writeJSONError(w, "no preload graph configured", http.StatusNotFound)
		return
	}

	content, err := os.ReadFile(s.cfg.PreloadGraph)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.writeJSONError(w, "preload graph not found", http.StatusNotFound)
			return
		}
		s.logger.Error("failed to read preload graph", zap.String("file", s.cfg.PreloadGraph), zap.Error(err))
		s.writeJSONError(w, "failed to read preload graph", http.StatusInternalServerError)
		return
	}
	if !json.Valid(content) {
		s.logger.Warn("preload graph is not valid JSON", zap.String("file", s.cfg.PreloadGraph))
		s.writeJSONError(w, "preload graph is not valid JSON", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Write(content)
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// Helper function to write JSON error responses
func (s *Server) writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Success: false, Error: message})
}
