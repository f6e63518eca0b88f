package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeINI(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wifigaze.ini")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, []int{1, 6, 11, 36, 40, 44, 48, 149, 153, 157, 161}, cfg.Channels)
	assert.Equal(t, time.Second, cfg.ChannelDwellTime)
	assert.Equal(t, "127.0.0.1:8765", cfg.ListenAddr())
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Empty(t, cfg.Interfaces)
}

func TestLoadFromFile(t *testing.T) {
	path := writeINI(t, `
Interfaces = wlan0, wlan1
channels = 1,6,11
ChannelDwellTime = 2
listenport = 9000
loglevel = TRACE
sendtimeout = 250ms
`)

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, []string{"wlan0", "wlan1"}, cfg.Interfaces)
	assert.Equal(t, []int{1, 6, 11}, cfg.Channels)
	assert.Equal(t, 2*time.Second, cfg.ChannelDwellTime)
	assert.Equal(t, 9000, cfg.ListenPort)
	assert.Equal(t, "TRACE", cfg.LogLevel)
	assert.Equal(t, 250*time.Millisecond, cfg.SendTimeout)
	// untouched keys keep their defaults
	assert.Equal(t, "tshark", cfg.Tshark)
}

func TestLoadFromFileBadChannel(t *testing.T) {
	path := writeINI(t, "channels = 1,six,11\n")

	err := DefaultConfig().LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "six")
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeINI(t, "interfaces = wlan0\nchannels = 1,6\n")
	t.Setenv("INTERFACES", "wlan5")
	t.Setenv("CHANNELDWELLTIME", "500ms")
	t.Setenv("LISTENPORT", "8080")

	cfg, err := New(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"wlan5"}, cfg.Interfaces)
	assert.Equal(t, []int{1, 6}, cfg.Channels)
	assert.Equal(t, 500*time.Millisecond, cfg.ChannelDwellTime)
	assert.Equal(t, 8080, cfg.ListenPort)
}

func TestNewMissingFile(t *testing.T) {
	cfg, err := New(filepath.Join(t.TempDir(), "absent.ini"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Channels, cfg.Channels)
}

func TestParseDwellTime(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
		err  bool
	}{
		{"1", time.Second, false},
		{" 3 ", 3 * time.Second, false},
		{"200ms", 200 * time.Millisecond, false},
		{"soon", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseDwellTime(tt.in)
		if tt.err {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := DefaultConfig()
		cfg.Interfaces = []string{"wlan0"}
		return cfg
	}

	require.NoError(t, valid().Validate())

	tests := map[string]func(*Config){
		"no interfaces": func(c *Config) { c.Interfaces = nil },
		"duplicate":     func(c *Config) { c.Interfaces = []string{"wlan0", "wlan0"} },
		"no channels":   func(c *Config) { c.Channels = nil },
		"zero channel":  func(c *Config) { c.Channels = []int{0} },
		"zero dwell":    func(c *Config) { c.ChannelDwellTime = 0 },
		"bad port":      func(c *Config) { c.ListenPort = 70000 },
		"no queue":      func(c *Config) { c.SubscriberQueue = 0 },
		"no tune cmd":   func(c *Config) { c.TuneCommand = "  " },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := valid()
			mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}
