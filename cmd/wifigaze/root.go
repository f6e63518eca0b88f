// ===== cmd/wifigaze/root.go =====
package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"wifigaze/internal/config"
	"wifigaze/internal/hub"
	"wifigaze/internal/logging"
	"wifigaze/internal/mac"
	"wifigaze/internal/monitor"
	"wifigaze/internal/web"
)

const defaultConfigFile = "wifigaze.ini"

type flags struct {
	configFile   string
	interfaces   string
	channels     string
	dwell        string
	preloadGraph string
	listenIP     string
	listenPort   int
	logLevel     string
	htmlDir      string
	ouiFile      string
}

func newRootCmd() *cobra.Command {
	f := &flags{}

	cmd := &cobra.Command{
		Use:   "wifigaze",
		Short: "Stream interesting wifi frames from monitor-mode radios",
		Long: `wifigaze captures frames on one or more monitor-mode interfaces,
drops multicast and administrative chatter, rotates the radios across the
channel plan and streams what is left to websocket subscribers.`,
		Version:       fmt.Sprintf("%s (built %s)", sha1ver, buildTime),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	bindFlags(cmd, f)
	return cmd
}

func bindFlags(cmd *cobra.Command, f *flags) {
	fl := cmd.Flags()
	fl.StringVarP(&f.configFile, "config", "c", defaultConfigFile, "INI config file")
	fl.StringVar(&f.interfaces, "interfaces", "", "comma separated monitor-mode interfaces")
	fl.StringVar(&f.channels, "channels", "", "comma separated channel plan")
	fl.StringVar(&f.dwell, "channel-dwell-time", "", "time on each channel, seconds or a duration")
	fl.StringVar(&f.preloadGraph, "preload-graph", "", "graph JSON file served at /api/graph")
	fl.StringVar(&f.listenIP, "listen-ip", "", "address to listen on")
	fl.IntVar(&f.listenPort, "listen-port", 0, "port to listen on")
	fl.StringVar(&f.logLevel, "log-level", "", "TRACE, DEBUG, INFO, WARNING or ERROR")
	fl.StringVar(&f.htmlDir, "html-dir", "", "directory of front-end files")
	fl.StringVar(&f.ouiFile, "oui-file", "", "JSON lines OUI vendor database")
}

// loadConfig layers flags the user set over file and environment values
func loadConfig(cmd *cobra.Command, f *flags) (*config.Config, error) {
	cfg, err := config.New(f.configFile)
	if err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed
	if changed("interfaces") {
		cfg.Interfaces = config.SplitList(f.interfaces)
	}
	if changed("channels") {
		if cfg.Channels, err = config.ParseChannels(f.channels); err != nil {
			return nil, fmt.Errorf("--channels: %w", err)
		}
	}
	if changed("channel-dwell-time") {
		if cfg.ChannelDwellTime, err = config.ParseDwellTime(f.dwell); err != nil {
			return nil, fmt.Errorf("--channel-dwell-time: %w", err)
		}
	}
	if changed("preload-graph") {
		cfg.PreloadGraph = f.preloadGraph
	}
	if changed("listen-ip") {
		cfg.ListenIP = f.listenIP
	}
	if changed("listen-port") {
		cfg.ListenPort = f.listenPort
	}
	if changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if changed("html-dir") {
		cfg.HTMLDir = f.htmlDir
	}
	if changed("oui-file") {
		cfg.OUIFile = f.ouiFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(parent context.Context, cfg *config.Config) error {
	logger := logging.New(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("starting", zap.String("repo", repoName), zap.String("build", sha1ver), zap.String("time", buildTime))

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	macDB, err := mac.NewDatabase(cfg.OUIFile, logger.Named("mac"))
	if err != nil {
		logger.Warn("vendor lookups disabled", zap.Error(err))
		macDB = nil
	}

	h := hub.New(logger.Named("hub"), cfg.SubscriberQueue)
	mon := monitor.New(cfg, logger, h, macDB)
	if err := mon.Start(ctx); err != nil {
		return fmt.Errorf("failed to start monitor: %w", err)
	}

	server := web.NewServer(cfg, mon, h, logger.Named("web"))
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case runErr = <-serverErr:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.Warn("HTTP server shutdown", zap.Error(shutdownErr))
	}

	mon.Stop()
	h.Close()
	return runErr
}
