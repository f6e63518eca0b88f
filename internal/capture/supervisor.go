// ===== internal/capture/supervisor.go =====

// Package capture supervises one capture tool subprocess per radio interface
// and turns its output into forwarded frame lines.
package capture

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"wifigaze/internal/frame"
	"wifigaze/internal/logging"
	"wifigaze/internal/logs"
)

var (
	// ErrCaptureToolUnavailable is returned when the capture tool cannot be started.
	ErrCaptureToolUnavailable = errors.New("capture tool unavailable")

	// ErrCaptureToolExecution is returned when the capture tool fails while running.
	ErrCaptureToolExecution = errors.New("capture tool execution failed")
)

// DefaultWaitDelay is how long a terminated tool gets before it is killed.
const DefaultWaitDelay = 5 * time.Second

const maxLineSize = 1024 * 1024

// Sink receives forwarded frame lines.
type Sink interface {
	Broadcast(line string)
}

// TsharkArgs returns the tshark arguments extracting the frame fields from iface.
func TsharkArgs(iface string) []string {
	args := []string{"-i", iface, "-l", "-Y", "wlan", "-T", "fields"}
	for _, field := range frame.CaptureFields {
		args = append(args, "-e", field)
	}
	return append(args, "-E", "separator=,")
}

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithArgs replaces the argument builder (TsharkArgs by default).
func WithArgs(args func(iface string) []string) Option {
	return func(s *Supervisor) { s.args = args }
}

// WithWaitDelay sets the grace period between terminate and kill.
func WithWaitDelay(d time.Duration) Option {
	return func(s *Supervisor) { s.waitDelay = d }
}

// Supervisor runs the capture tool for each interface it is given.
type Supervisor struct {
	tool      string
	args      func(iface string) []string
	waitDelay time.Duration
	toolLogs  *logs.Manager
	logger    *zap.Logger

	mu    sync.Mutex
	stats map[string]*Stats
}

// New creates a supervisor for the given tool binary.
func New(tool string, toolLogs *logs.Manager, logger *zap.Logger, opts ...Option) *Supervisor {
	s := &Supervisor{
		tool:      tool,
		args:      TsharkArgs,
		waitDelay: DefaultWaitDelay,
		toolLogs:  toolLogs,
		logger:    logger,
		stats:     make(map[string]*Stats),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Stats returns counters for every interface seen so far.
func (s *Supervisor) Stats() map[string]*Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]*Stats, len(s.stats))
	for iface, st := range s.stats {
		out[iface] = st
	}
	return out
}

func (s *Supervisor) statsFor(iface string) *Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.stats[iface]
	if !ok {
		st = NewStats()
		s.stats[iface] = st
	}
	return st
}

// Run captures on iface until ctx is cancelled or the tool exits. The tool
// is always reaped before Run returns. Cancellation is not an error.
func (s *Supervisor) Run(ctx context.Context, iface string, sink Sink) error {
	log := s.logger.With(zap.String("iface", iface))
	args := s.args(iface)

	cmd := exec.Command(s.tool, args...)
	setProcessGroup(cmd)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("%w: stdout pipe: %w", ErrCaptureToolExecution, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("%w: stderr pipe: %w", ErrCaptureToolExecution, err)
	}

	logging.Trace(log, "running capture tool", zap.String("tool", s.tool), zap.Strings("args", args))
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrCaptureToolUnavailable, s.tool, err)
	}
	log.Info("capture started", zap.Int("pid", cmd.Process.Pid))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	exited := make(chan struct{})
	closePipes := func() {
		stdout.Close()
		stderr.Close()
	}
	go s.terminateOnCancel(runCtx, cmd, exited, closePipes, log)

	stderrDone := make(chan struct{})
	go func() {
		defer close(stderrDone)
		s.toolLogs.ScanLogs(stderr, iface)
	}()

	readErr := s.Consume(runCtx, iface, stdout, sink)
	if readErr != nil && ctx.Err() == nil {
		// stop a tool whose output can no longer be read
		cancel()
	}
	// every stderr line must be stored before Wait closes the pipe
	<-stderrDone
	waitErr := cmd.Wait()
	close(exited)

	if ctx.Err() != nil {
		// sweep anything left in the tool's process group
		signalGroup(cmd, syscall.SIGKILL)
		log.Info("capture stopped")
		return nil
	}
	if readErr != nil {
		return fmt.Errorf("%w: reading %s output on %s: %w", ErrCaptureToolExecution, s.tool, iface, readErr)
	}
	if waitErr != nil {
		return fmt.Errorf("%w: %s on %s: %w", ErrCaptureToolExecution, s.tool, iface, waitErr)
	}

	log.Warn("capture tool exited")
	return nil
}

// terminateOnCancel sends SIGTERM to the tool's process group once ctx is
// done and SIGKILL if it has not exited after the wait delay. A process that
// left the group can keep the pipes open past the kill, so after a second
// wait delay the pipes are closed from this side.
func (s *Supervisor) terminateOnCancel(ctx context.Context, cmd *exec.Cmd, exited <-chan struct{}, closePipes func(), log *zap.Logger) {
	select {
	case <-exited:
		return
	case <-ctx.Done():
	}

	if err := signalGroup(cmd, syscall.SIGTERM); err != nil {
		log.Debug("terminate capture tool", zap.Error(err))
	}

	timer := time.NewTimer(s.waitDelay)
	defer timer.Stop()

	select {
	case <-exited:
		return
	case <-timer.C:
	}

	log.Warn("capture tool did not exit after terminate, killing", zap.Duration("waited", s.waitDelay))
	if err := signalGroup(cmd, syscall.SIGKILL); err != nil {
		log.Error("kill capture tool", zap.Error(err))
	}

	timer.Reset(s.waitDelay)
	select {
	case <-exited:
	case <-timer.C:
		log.Warn("capture tool output still open after kill, closing it")
		closePipes()
	}
}

// Consume reads capture lines from r, drops immediate repeats, classifies
// each line and forwards the survivors to sink in arrival order. It stops at
// EOF or once ctx is done.
func (s *Supervisor) Consume(ctx context.Context, iface string, r io.Reader, sink Sink) error {
	stats := s.statsFor(iface)
	log := s.logger.With(zap.String("iface", iface))

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var last string
	first := true
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}

		raw := strings.TrimSpace(scanner.Text())
		stats.line()
		if !first && raw == last {
			stats.duplicate()
			logging.Trace(log, "ignored duplicate frame", zap.String("line", raw))
			continue
		}
		first = false
		last = raw

		line, err := frame.ParseLine(raw)
		if err != nil {
			stats.malformedLine()
			log.Debug("dropping frame line", zap.String("line", raw), zap.Error(err))
			continue
		}

		verdict := frame.Classify(line)
		stats.record(line, verdict)
		if !verdict.Forward {
			logging.Trace(log, "ignored frame", zap.String("reason", verdict.Reason), zap.String("field", verdict.Field), zap.String("line", raw))
			continue
		}
		if verdict.Unknown() {
			log.Debug("forwarding frame with unrecognised type code", zap.String("reason", verdict.Reason),
				zap.String("type", line.Type), zap.String("subtype", line.Subtype))
		}

		logging.Trace(log, "frame", zap.String("line", raw))
		sink.Broadcast(raw)
	}

	return scanner.Err()
}
