package monitor

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"wifigaze/internal/config"
	"wifigaze/internal/hub"
	"wifigaze/internal/mac"
	"wifigaze/pkg/models"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	tune, err := exec.LookPath("true")
	if err != nil {
		t.Skipf("true not available: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Interfaces = []string{"wlan0", "wlan1"}
	cfg.Channels = []int{1, 6}
	cfg.Tshark = "/nonexistent/tshark"
	cfg.TuneCommand = tune
	cfg.ShutdownTimeout = 100 * time.Millisecond
	return cfg
}

func TestMissingCaptureToolFailsEachInterface(t *testing.T) {
	cfg := testConfig(t)
	h := hub.New(zap.NewNop(), 4)
	defer h.Close()

	m := New(cfg, zap.NewNop(), h, nil)
	require.NoError(t, m.Start(context.Background()))
	defer m.Stop()

	assert.ErrorIs(t, m.Start(context.Background()), ErrAlreadyStarted)

	require.Eventually(t, func() bool {
		for _, st := range m.Status() {
			if st.State != models.StateFailed || st.Channel == 0 {
				return false
			}
		}
		return true
	}, 2*time.Second, 10*time.Millisecond)

	status := m.Status()
	require.Len(t, status, 2)
	assert.Equal(t, "wlan0", status[0].Name)
	assert.Equal(t, 1, status[0].Channel)
	assert.Equal(t, "wlan1", status[1].Name)
	assert.Equal(t, 6, status[1].Channel)
	assert.Contains(t, status[0].Error, "capture tool unavailable")
}

func TestStopWithoutStart(t *testing.T) {
	cfg := testConfig(t)
	m := New(cfg, zap.NewNop(), hub.New(zap.NewNop(), 4), nil)
	m.Stop()

	for _, st := range m.Status() {
		assert.Equal(t, models.StateStarting, st.State)
	}
	assert.Empty(t, m.CaptureStats())
	assert.Empty(t, m.GetLogs())
	assert.Equal(t, "UNKNOWN", m.LookupVendor("a4:2b:b0:11:22:33").Company)
}

func TestVendorFileReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oui.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(`{"oui":"A4:2B:B0","companyName":"First Vendor"}`+"\n"), 0o644))

	db, err := mac.NewDatabase(path, zap.NewNop())
	require.NoError(t, err)

	cfg := testConfig(t)
	cfg.OUIFile = path
	h := hub.New(zap.NewNop(), 4)
	defer h.Close()

	m := New(cfg, zap.NewNop(), h, db)
	require.NoError(t, m.Start(context.Background()))
	defer m.Stop()

	assert.Equal(t, "First Vendor", m.LookupVendor("a4:2b:b0:11:22:33").Company)

	require.NoError(t, os.WriteFile(path, []byte(`{"oui":"A4:2B:B0","companyName":"Second Vendor"}`+"\n"), 0o644))

	assert.Eventually(t, func() bool {
		return m.LookupVendor("a4:2b:b0:11:22:33").Company == "Second Vendor"
	}, 2*time.Second, 10*time.Millisecond)
}
