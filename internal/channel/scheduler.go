// ===== internal/channel/scheduler.go =====

// Package channel rotates radios across the configured channel plan.
package channel

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"wifigaze/internal/logging"
)

// ErrTuningCommand wraps a failed channel change.
var ErrTuningCommand = errors.New("tuning command failed")

// maxLoopCount bounds the tick counter; selection only depends on it modulo the plan length.
const maxLoopCount = 1000000

// Tuner sets the channel of one interface.
type Tuner interface {
	Tune(ctx context.Context, iface string, channel int) error
}

// CommandTuner runs an external command such as "sudo iwconfig <iface> channel <n>".
type CommandTuner struct {
	command []string
	logger  *zap.Logger
}

// NewCommandTuner splits command ("sudo iwconfig") into the program and its leading arguments.
func NewCommandTuner(command string, logger *zap.Logger) *CommandTuner {
	return &CommandTuner{command: strings.Fields(command), logger: logger}
}

// Tune runs the command and waits for it. Cancelling ctx stops the wait but
// not the command, which is left to finish and is reaped in the background.
func (t *CommandTuner) Tune(ctx context.Context, iface string, channel int) error {
	if len(t.command) == 0 {
		return fmt.Errorf("%w: empty command", ErrTuningCommand)
	}

	args := append(append([]string{}, t.command[1:]...), iface, "channel", strconv.Itoa(channel))
	logging.Trace(t.logger, "tuning", zap.String("command", t.command[0]), zap.Strings("args", args))

	var output bytes.Buffer
	cmd := exec.Command(t.command[0], args...)
	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %s channel %d: %w", ErrTuningCommand, iface, channel, err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("%w: %s channel %d: %w: %s", ErrTuningCommand, iface, channel, err, strings.TrimSpace(output.String()))
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Scheduler hops every interface across the channel plan.
type Scheduler struct {
	interfaces []string
	channels   []int
	dwell      time.Duration
	tuner      Tuner
	logger     *zap.Logger

	loopCount int

	mu          sync.RWMutex
	assignments map[string]int
}

// NewScheduler creates a scheduler. interfaces and channels must be non-empty and dwell positive.
func NewScheduler(interfaces []string, channels []int, dwell time.Duration, tuner Tuner, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		interfaces:  append([]string(nil), interfaces...),
		channels:    append([]int(nil), channels...),
		dwell:       dwell,
		tuner:       tuner,
		logger:      logger,
		assignments: make(map[string]int, len(interfaces)),
	}
}

// Run ticks until ctx is cancelled. When there are exactly as many channels
// as interfaces it tunes once and returns.
func (s *Scheduler) Run(ctx context.Context) {
	rotate := len(s.interfaces) != len(s.channels)

	for {
		s.tick(ctx)
		if ctx.Err() != nil {
			return
		}

		if !rotate {
			s.logger.Info("one channel per interface, no rotation needed",
				zap.Strings("interfaces", s.interfaces), zap.Ints("channels", s.channels))
			return
		}

		s.loopCount++
		if s.loopCount > maxLoopCount {
			s.loopCount = 0
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.dwell):
		}
	}
}

// tick tunes every interface in configuration order, stopping early on cancellation.
func (s *Scheduler) tick(ctx context.Context) {
	selected := EvenlyDistributedSelection(s.channels, len(s.interfaces), s.loopCount)

	for i, iface := range s.interfaces {
		if ctx.Err() != nil {
			return
		}
		channel := selected[i]

		err := s.tuner.Tune(ctx, iface, channel)
		switch {
		case err == nil:
			s.setAssignment(iface, channel)
			logging.Trace(s.logger, "channel set", zap.String("iface", iface), zap.Int("channel", channel))
		case ctx.Err() != nil:
			return
		default:
			s.logger.Error("channel change failed", zap.String("iface", iface), zap.Int("channel", channel), zap.Error(err))
		}
	}
}

func (s *Scheduler) setAssignment(iface string, channel int) {
	s.mu.Lock()
	s.assignments[iface] = channel
	s.mu.Unlock()
}

// Assignments returns the last channel successfully set on each interface.
func (s *Scheduler) Assignments() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]int, len(s.assignments))
	for iface, ch := range s.assignments {
		out[iface] = ch
	}
	return out
}
