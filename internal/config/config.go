// ===== internal/config/config.go =====
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/ini.v1"
)

// ErrInvalidConfig is returned by Validate when a required value is missing or out of range
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all application configuration
type Config struct {
	// Radios and channel plan
	Interfaces       []string
	Channels         []int
	ChannelDwellTime time.Duration

	// File paths
	HTMLDir      string
	OUIFile      string
	PreloadGraph string

	// Network settings
	ListenIP   string
	ListenPort int

	// Binary paths
	Tshark      string
	TuneCommand string

	// Logging
	LogLevel string

	// Subscriber and shutdown tuning
	SubscriberQueue int
	SendTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Channels:         []int{1, 6, 11, 36, 40, 44, 48, 149, 153, 157, 161},
		ChannelDwellTime: time.Second,
		HTMLDir:          "/usr/share/wifigaze/static",
		ListenIP:         "127.0.0.1",
		ListenPort:       8765,
		Tshark:           "tshark",
		TuneCommand:      "sudo iwconfig",
		LogLevel:         "INFO",
		SubscriberQueue:  256,
		SendTimeout:      5 * time.Second,
		ShutdownTimeout:  5 * time.Second,
	}
}

// LoadFromFile loads configuration from INI file
func (c *Config) LoadFromFile(filename string) error {
	cfg, err := ini.LoadSources(ini.LoadOptions{Insensitive: true}, filename)
	if err != nil {
		return fmt.Errorf("failed to load config file %s: %w", filename, err)
	}

	section := cfg.Section("")
	if section.HasKey("interfaces") {
		c.Interfaces = SplitList(section.Key("interfaces").String())
	}
	if section.HasKey("channels") {
		channels, err := ParseChannels(section.Key("channels").String())
		if err != nil {
			return fmt.Errorf("channels: %w", err)
		}
		c.Channels = channels
	}
	if section.HasKey("channeldwelltime") {
		dwell, err := ParseDwellTime(section.Key("channeldwelltime").String())
		if err != nil {
			return fmt.Errorf("channeldwelltime: %w", err)
		}
		c.ChannelDwellTime = dwell
	}
	c.HTMLDir = section.Key("htmldir").MustString(c.HTMLDir)
	c.OUIFile = section.Key("ouifile").MustString(c.OUIFile)
	c.PreloadGraph = section.Key("preloadgraph").MustString(c.PreloadGraph)
	c.ListenIP = section.Key("listenip").MustString(c.ListenIP)
	c.ListenPort = section.Key("listenport").MustInt(c.ListenPort)
	c.Tshark = section.Key("tshark").MustString(c.Tshark)
	c.TuneCommand = section.Key("tunecommand").MustString(c.TuneCommand)
	c.LogLevel = section.Key("loglevel").MustString(c.LogLevel)
	c.SubscriberQueue = section.Key("subscriberqueue").MustInt(c.SubscriberQueue)
	c.SendTimeout = section.Key("sendtimeout").MustDuration(c.SendTimeout)
	c.ShutdownTimeout = section.Key("shutdowntimeout").MustDuration(c.ShutdownTimeout)

	return nil
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("INTERFACES"); v != "" {
		c.Interfaces = SplitList(v)
	}
	if v := os.Getenv("CHANNELS"); v != "" {
		channels, err := ParseChannels(v)
		if err != nil {
			return fmt.Errorf("CHANNELS: %w", err)
		}
		c.Channels = channels
	}
	if v := os.Getenv("CHANNELDWELLTIME"); v != "" {
		dwell, err := ParseDwellTime(v)
		if err != nil {
			return fmt.Errorf("CHANNELDWELLTIME: %w", err)
		}
		c.ChannelDwellTime = dwell
	}
	if v := os.Getenv("HTMLDIR"); v != "" {
		c.HTMLDir = v
	}
	if v := os.Getenv("OUIFILE"); v != "" {
		c.OUIFile = v
	}
	if v := os.Getenv("PRELOADGRAPH"); v != "" {
		c.PreloadGraph = v
	}
	if v := os.Getenv("LISTENIP"); v != "" {
		c.ListenIP = v
	}
	if v := os.Getenv("LISTENPORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("LISTENPORT: %w", err)
		}
		c.ListenPort = port
	}
	if v := os.Getenv("TSHARK"); v != "" {
		c.Tshark = v
	}
	if v := os.Getenv("TUNECOMMAND"); v != "" {
		c.TuneCommand = v
	}
	if v := os.Getenv("LOGLEVEL"); v != "" {
		c.LogLevel = v
	}
	return nil
}

// Validate checks the values the capture core relies on
func (c *Config) Validate() error {
	if len(c.Interfaces) == 0 {
		return fmt.Errorf("%w: at least one interface is required", ErrInvalidConfig)
	}
	seen := make(map[string]bool, len(c.Interfaces))
	for _, iface := range c.Interfaces {
		if seen[iface] {
			return fmt.Errorf("%w: interface %s listed twice", ErrInvalidConfig, iface)
		}
		seen[iface] = true
	}
	if len(c.Channels) == 0 {
		return fmt.Errorf("%w: at least one channel is required", ErrInvalidConfig)
	}
	for _, ch := range c.Channels {
		if ch <= 0 {
			return fmt.Errorf("%w: channel %d is not positive", ErrInvalidConfig, ch)
		}
	}
	if c.ChannelDwellTime <= 0 {
		return fmt.Errorf("%w: channel dwell time must be positive", ErrInvalidConfig)
	}
	if c.ListenPort <= 0 || c.ListenPort > 65535 {
		return fmt.Errorf("%w: listen port %d out of range", ErrInvalidConfig, c.ListenPort)
	}
	if c.SubscriberQueue <= 0 {
		return fmt.Errorf("%w: subscriber queue must be positive", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.TuneCommand) == "" {
		return fmt.Errorf("%w: tune command is empty", ErrInvalidConfig)
	}
	return nil
}

// ListenAddr returns the host:port the subscriber transport binds to
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.ListenIP, c.ListenPort)
}

// New creates a new configuration instance. A missing config file is not an error.
func New(configFile string) (*Config, error) {
	cfg := DefaultConfig()

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			if err := cfg.LoadFromFile(configFile); err != nil {
				return nil, err
			}
		}
	}

	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ParseChannels parses a comma separated channel list such as "1,6,11"
func ParseChannels(s string) ([]int, error) {
	var channels []int
	for _, field := range SplitList(s) {
		ch, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("invalid channel %q: %w", field, err)
		}
		channels = append(channels, ch)
	}
	return channels, nil
}

// ParseDwellTime accepts whole seconds ("2") or a Go duration ("500ms")
func ParseDwellTime(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if secs, err := strconv.Atoi(s); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(s)
}

// SplitList splits a comma separated list, dropping empty items
func SplitList(s string) []string {
	var out []string
	for _, field := range strings.Split(s, ",") {
		if field = strings.TrimSpace(field); field != "" {
			out = append(out, field)
		}
	}
	return out
}
