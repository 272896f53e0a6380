package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"netmcp/internal/config"
	"netmcp/internal/server"
)

var (
	version    = "0.3.0"
	logger     *slog.Logger
	configPath string // overridable via --config flag
)

func main() {
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	root := &cobra.Command{
		Use:   "netmcp",
		Short: "netmcp: network automation MCP server",
		Long:  "netmcp exposes a YAML device inventory to MCP clients and runs getters, show commands and config changes against the matching devices over SSH.",
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.yaml (default: ~/.netmcp/config.yaml)")

	root.AddCommand(initCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(doctorCmd())
	root.AddCommand(inventoryCmd())
	root.AddCommand(backupsCmd())
	root.AddCommand(auditCmd())
	root.AddCommand(versionCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveConfigPath returns the config path from the --config flag, the
// NETMCP_CONFIG environment variable, or the default, in that order.
func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	if env, err := config.ReadEnv(); err == nil && env.ConfigPath != "" {
		return env.ConfigPath
	}
	return config.DefaultConfigPath()
}

// loadConfig reads the config file and applies NETMCP_* overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		return nil, err
	}
	env, err := config.ReadEnv()
	if err != nil {
		return nil, err
	}
	if env.LogLevel != "" {
		cfg.Log.Level = env.LogLevel
	}
	if env.LogFile != "" {
		cfg.Log.File = config.ExpandPath(env.LogFile)
	}
	return cfg, nil
}

// buildLogger replaces the bootstrap logger with one matching the config.
// Output goes to the configured file or stderr; never stdout, which
// carries the MCP transport when serving.
func buildLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	switch cfg.Log.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var w io.Writer = os.Stderr
	cleanup := func() {}
	if cfg.Log.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Log.File), 0o755); err != nil {
			return nil, cleanup, fmt.Errorf("cannot create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, cleanup, fmt.Errorf("cannot open log file: %w", err)
		}
		w = f
		cleanup = func() { f.Close() }
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), cleanup, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server on stdio",
		Long:  "Starts the MCP server. The client speaks JSON-RPC over stdin/stdout; logs go to stderr or the configured log file.",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, logCleanup, err := buildLogger(cfg)
	if err != nil {
		return err
	}
	defer logCleanup()
	logger = log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, cleanup, err := server.New(cfg, version, logger)
	defer cleanup()
	if err != nil {
		return err
	}

	logger.Info("serving MCP on stdio", "version", version, "driver", cfg.Driver.Kind)
	if err := server.Serve(ctx, s); err != nil && ctx.Err() == nil {
		return err
	}
	logger.Info("shutdown complete")
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the netmcp version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("netmcp", version)
		},
	}
}
