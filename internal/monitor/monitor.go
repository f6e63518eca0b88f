// ===== internal/monitor/monitor.go =====
package monitor

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"wifigaze/internal/capture"
	"wifigaze/internal/channel"
	"wifigaze/internal/config"
	"wifigaze/internal/hub"
	"wifigaze/internal/logs"
	"wifigaze/internal/mac"
	"wifigaze/pkg/models"
)

// ErrAlreadyStarted is returned by Start on a running monitor
var ErrAlreadyStarted = errors.New("monitor already started")

// Monitor owns the capture supervisors, the channel scheduler and the
// vendor database watcher
type Monitor struct {
	cfg        *config.Config
	logger     *zap.Logger
	hub        *hub.Hub
	macDB      *mac.Database
	logManager *logs.Manager
	supervisor *capture.Supervisor
	scheduler  *channel.Scheduler

	watcher *fsnotify.Watcher
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu     sync.RWMutex
	status map[string]*models.InterfaceStatus
}

// New creates a new monitor instance
func New(cfg *config.Config, logger *zap.Logger, h *hub.Hub, macDB *mac.Database) *Monitor {
	captureLogger := logger.Named("capture")
	channelLogger := logger.Named("channel")
	logManager := logs.NewManager(captureLogger)

	m := &Monitor{
		cfg:        cfg,
		logger:     logger.Named("monitor"),
		hub:        h,
		macDB:      macDB,
		logManager: logManager,
		supervisor: capture.New(cfg.Tshark, logManager, captureLogger, capture.WithWaitDelay(cfg.ShutdownTimeout)),
		scheduler: channel.NewScheduler(cfg.Interfaces, cfg.Channels, cfg.ChannelDwellTime,
			channel.NewCommandTuner(cfg.TuneCommand, channelLogger), channelLogger),
		status: make(map[string]*models.InterfaceStatus),
	}
	for _, iface := range cfg.Interfaces {
		m.status[iface] = &models.InterfaceStatus{Name: iface, State: models.StateStarting}
	}
	return m
}

// Start launches one capture per interface, the scheduler and the file watcher
func (m *Monitor) Start(ctx context.Context) error {
	if m.cancel != nil {
		return ErrAlreadyStarted
	}
	ctx, m.cancel = context.WithCancel(ctx)

	for _, iface := range m.cfg.Interfaces {
		m.wg.Add(1)
		go m.capture(ctx, iface)
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.scheduler.Run(ctx)
	}()

	if m.macDB != nil && m.macDB.Filename() != "" {
		if err := m.watchVendorFile(ctx); err != nil {
			m.logger.Warn("vendor database will not be reloaded", zap.Error(err))
		}
	}

	m.logger.Info("monitor started", zap.Strings("interfaces", m.cfg.Interfaces), zap.Ints("channels", m.cfg.Channels))
	return nil
}

// capture runs the supervisor for one interface and records how it ended.
// A failed interface does not stop the others.
func (m *Monitor) capture(ctx context.Context, iface string) {
	defer m.wg.Done()

	m.setState(iface, models.StateCapturing, nil)
	err := m.supervisor.Run(ctx, iface, m.hub)
	if err != nil {
		m.logger.Error("capture failed", zap.String("iface", iface), zap.Error(err))
		m.setState(iface, models.StateFailed, err)
		return
	}
	m.setState(iface, models.StateStopped, nil)
}

func (m *Monitor) setState(iface, state string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := m.status[iface]
	st.State = state
	st.Error = ""
	if err != nil {
		st.Error = err.Error()
	}
}

// watchVendorFile reloads the vendor database whenever its file is written.
// The directory is watched so editors that replace the file are noticed.
func (m *Monitor) watchVendorFile(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	target, err := filepath.Abs(m.macDB.Filename())
	if err != nil {
		watcher.Close()
		return err
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", target, err)
	}
	m.watcher = watcher

	m.wg.Add(1)
	go m.watchFiles(ctx, target)
	return nil
}

func (m *Monitor) watchFiles(ctx context.Context, target string) {
	defer m.wg.Done()

	for {
		select {
		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if path, _ := filepath.Abs(event.Name); path != target {
				continue
			}

			m.logger.Info("vendor database modified", zap.String("file", event.Name))
			if err := m.macDB.Reload(); err != nil {
				m.logger.Error("error reloading vendor database", zap.Error(err))
			}

		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			m.logger.Warn("file watcher error", zap.Error(err))

		case <-ctx.Done():
			return
		}
	}
}

// Stop cancels every task and waits for them, capture tools included
func (m *Monitor) Stop() {
	if m.cancel == nil {
		return
	}
	m.cancel()
	m.wg.Wait()

	if m.watcher != nil {
		m.watcher.Close()
	}
	m.logger.Info("monitor stopped")
}

// Status returns the state and current channel of every interface, in configured order
func (m *Monitor) Status() []models.InterfaceStatus {
	assignments := m.scheduler.Assignments()

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.InterfaceStatus, 0, len(m.cfg.Interfaces))
	for _, iface := range m.cfg.Interfaces {
		st := *m.status[iface]
		st.Channel = assignments[iface]
		out = append(out, st)
	}
	return out
}

// CaptureStats returns the capture counters of every interface that has run
func (m *Monitor) CaptureStats() map[string]models.CaptureCounters {
	out := make(map[string]models.CaptureCounters)
	for iface, st := range m.supervisor.Stats() {
		out[iface] = st.Snapshot()
	}
	return out
}

// GetLogs returns recent capture tool output
func (m *Monitor) GetLogs() []models.LogEntry {
	return m.logManager.GetLogs()
}

// LookupVendor resolves a MAC address to its OUI entry
func (m *Monitor) LookupVendor(addr string) models.OUIEntry {
	if m.macDB == nil {
		return models.OUIEntry{Company: "UNKNOWN", Address: "UNKNOWN"}
	}
	return m.macDB.Lookup(addr)
}
