package channel

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var defaultPlan = []int{1, 6, 11, 36, 40, 44, 48, 149, 153, 157, 161}

func TestEvenlyDistributedSelection(t *testing.T) {
	tests := []struct {
		name     string
		channels []int
		count    int
		tick     int
		want     []int
	}{
		{"two radios tick 0", []int{1, 6, 11, 36}, 2, 0, []int{1, 11}},
		{"two radios tick 1", []int{1, 6, 11, 36}, 2, 1, []int{6, 36}},
		{"two radios wraps", []int{1, 6, 11, 36}, 2, 3, []int{36, 6}},
		{"one per radio", []int{1, 6, 11}, 3, 0, []int{1, 6, 11}},
		{"single channel", []int{6}, 3, 17, []int{6, 6, 6}},
		{"single radio rotates", []int{1, 6, 11}, 1, 4, []int{6}},
		{"uneven split", defaultPlan, 3, 0, []int{1, 36, 48}},
		{"more radios than channels", []int{1, 6}, 3, 0, []int{1, 6, 1}},
		{"negative tick", []int{1, 6, 11}, 1, -1, []int{11}},
		{"no channels", nil, 2, 0, nil},
		{"no radios", []int{1, 6}, 0, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EvenlyDistributedSelection(tt.channels, tt.count, tt.tick))
		})
	}
}

func TestSelectionIsPartition(t *testing.T) {
	for count := 1; count <= len(defaultPlan); count++ {
		for tick := 0; tick < 2*len(defaultPlan); tick++ {
			selected := EvenlyDistributedSelection(defaultPlan, count, tick)
			require.Len(t, selected, count)

			seen := make(map[int]bool)
			for _, ch := range selected {
				assert.False(t, seen[ch], "count %d tick %d repeats %d", count, tick, ch)
				assert.Contains(t, defaultPlan, ch)
				seen[ch] = true
			}
		}
	}
}

func TestSelectionVisitsEveryChannel(t *testing.T) {
	seen := make(map[int]bool)
	for tick := 0; tick < len(defaultPlan); tick++ {
		for _, ch := range EvenlyDistributedSelection(defaultPlan, 2, tick) {
			seen[ch] = true
		}
	}
	assert.Len(t, seen, len(defaultPlan))
}

type tuneCall struct {
	iface   string
	channel int
}

type fakeTuner struct {
	mu    sync.Mutex
	calls []tuneCall
	fail  map[string]bool
}

func (f *fakeTuner) Tune(_ context.Context, iface string, channel int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, tuneCall{iface, channel})
	if f.fail[iface] {
		return ErrTuningCommand
	}
	return nil
}

func (f *fakeTuner) snapshot() []tuneCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tuneCall(nil), f.calls...)
}

func runScheduler(ctx context.Context, s *Scheduler) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx)
	}()
	return done
}

func TestSchedulerStopsWhenNoRotationNeeded(t *testing.T) {
	tuner := &fakeTuner{}
	s := NewScheduler([]string{"wlan0", "wlan1", "wlan2"}, []int{1, 6, 11}, 10*time.Millisecond, tuner, zap.NewNop())

	select {
	case <-runScheduler(context.Background(), s):
	case <-time.After(time.Second):
		t.Fatal("scheduler kept running with one channel per interface")
	}

	assert.Equal(t, []tuneCall{{"wlan0", 1}, {"wlan1", 6}, {"wlan2", 11}}, tuner.snapshot())
	assert.Equal(t, map[string]int{"wlan0": 1, "wlan1": 6, "wlan2": 11}, s.Assignments())
}

func TestSchedulerRotates(t *testing.T) {
	tuner := &fakeTuner{}
	s := NewScheduler([]string{"wlan0", "wlan1"}, []int{1, 6, 11, 36}, 5*time.Millisecond, tuner, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := runScheduler(ctx, s)

	require.Eventually(t, func() bool { return len(tuner.snapshot()) >= 6 }, time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop on cancel")
	}

	calls := tuner.snapshot()
	assert.Equal(t, []tuneCall{{"wlan0", 1}, {"wlan1", 11}, {"wlan0", 6}, {"wlan1", 36}, {"wlan0", 11}, {"wlan1", 1}}, calls[:6])
}

func TestSchedulerContinuesAfterTuneFailure(t *testing.T) {
	tuner := &fakeTuner{fail: map[string]bool{"wlan0": true}}
	s := NewScheduler([]string{"wlan0", "wlan1"}, []int{1, 6}, time.Millisecond, tuner, zap.NewNop())

	<-runScheduler(context.Background(), s)

	assert.Len(t, tuner.snapshot(), 2)
	assert.Equal(t, map[string]int{"wlan1": 6}, s.Assignments())
}

func TestSchedulerInterruptibleDuringDwell(t *testing.T) {
	tuner := &fakeTuner{}
	s := NewScheduler([]string{"wlan0"}, []int{1, 6}, time.Hour, tuner, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := runScheduler(ctx, s)

	require.Eventually(t, func() bool { return len(tuner.snapshot()) == 1 }, time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop while sleeping")
	}
}

func lookPath(t *testing.T, name string) string {
	t.Helper()
	path, err := exec.LookPath(name)
	if err != nil {
		t.Skipf("%s not available: %v", name, err)
	}
	return path
}

func TestCommandTuner(t *testing.T) {
	ok := NewCommandTuner(lookPath(t, "true"), zap.NewNop())
	assert.NoError(t, ok.Tune(context.Background(), "wlan0", 6))

	failing := NewCommandTuner(lookPath(t, "false"), zap.NewNop())
	assert.ErrorIs(t, failing.Tune(context.Background(), "wlan0", 6), ErrTuningCommand)

	missing := NewCommandTuner("/nonexistent/iwconfig", zap.NewNop())
	assert.ErrorIs(t, missing.Tune(context.Background(), "wlan0", 6), ErrTuningCommand)

	empty := NewCommandTuner("", zap.NewNop())
	assert.ErrorIs(t, empty.Tune(context.Background(), "wlan0", 6), ErrTuningCommand)
}

func TestCommandTunerCancelDoesNotWait(t *testing.T) {
	lookPath(t, "sh")
	script := filepath.Join(t.TempDir(), "slow-iwconfig")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\nsleep 2\n"), 0o755))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := NewCommandTuner(script, zap.NewNop()).Tune(ctx, "wlan0", 1)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Less(t, time.Since(start), time.Second)
}
