// Package server wires the inventory, driver, security and tool layers
// into an MCP server instance. It is the composition root: concrete
// implementations are built here and injected into the tools that
// depend on them. No pipeline logic lives in this package.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"netmcp/internal/audit"
	"netmcp/internal/backup"
	"netmcp/internal/config"
	"netmcp/internal/domain"
	"netmcp/internal/driver"
	"netmcp/internal/inventory"
	"netmcp/internal/runner"
	"netmcp/internal/security"
	"netmcp/internal/task"
	"netmcp/internal/tool"
)

// New builds a fully wired MCP server from the loaded configuration.
// The returned cleanup function closes the audit store and must be
// called on shutdown; it is always non-nil.
func New(cfg *config.Config, version string, logger *slog.Logger) (*server.MCPServer, func(), error) {
	cleanup := func() {}

	var auditLog domain.AuditLogger = audit.Nop{}
	if cfg.Audit.Enabled {
		store, err := audit.NewSQLiteStore(cfg.Audit.DBPath, logger)
		if err != nil {
			return nil, cleanup, fmt.Errorf("opening audit store: %w", err)
		}
		auditLog = store
		cleanup = func() {
			if err := store.Close(); err != nil {
				logger.Error("closing audit store", "err", err)
			}
		}
	}

	gate, err := security.LoadGate(cfg.Security.DenylistFile, auditLog, logger)
	if err != nil {
		return nil, cleanup, fmt.Errorf("loading denylist: %w", err)
	}

	backups, err := backup.NewWriter(cfg.Backup.Directory)
	if err != nil {
		return nil, cleanup, fmt.Errorf("preparing backup directory: %w", err)
	}

	connector, err := buildConnector(cfg, logger)
	if err != nil {
		return nil, cleanup, err
	}

	provider := inventory.NewYAMLProvider(
		cfg.Inventory.HostsFile,
		cfg.Inventory.GroupsFile,
		cfg.Inventory.DefaultsFile,
		logger,
	)

	deps := &tool.Deps{
		Runner:  runner.New(provider, time.Duration(cfg.Execution.DefaultTimeoutSeconds)*time.Second, logger),
		Tasks:   task.NewFactory(connector),
		Gate:    gate,
		Backups: backups,
		Audit:   auditLog,
		Logger:  logger,
	}

	s := server.NewMCPServer(
		"netmcp",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	registerTools(s, deps, version)
	registerResources(s, provider)

	return s, cleanup, nil
}

// Serve runs the server over stdio until the context is cancelled.
// stdout carries the protocol; all logging goes to stderr.
func Serve(ctx context.Context, s *server.MCPServer) error {
	return server.NewStdioServer(s).Listen(ctx, os.Stdin, os.Stdout)
}

func buildConnector(cfg *config.Config, logger *slog.Logger) (driver.Connector, error) {
	switch cfg.Driver.Kind {
	case "static":
		fixtures, err := driver.LoadStaticFixtures(cfg.Driver.FixturesFile)
		if err != nil {
			return nil, fmt.Errorf("loading static fixtures: %w", err)
		}
		return driver.NewStaticConnector(fixtures), nil
	default:
		return driver.NewSSHConnector(driver.SSHConfig{
			ConnectTimeout: time.Duration(cfg.Driver.ConnectTimeoutSeconds) * time.Second,
			RetryAttempts:  uint(cfg.Driver.RetryAttempts),
			RetryDelay:     time.Duration(cfg.Driver.RetryDelayMs) * time.Millisecond,
			RetryMaxDelay:  time.Duration(cfg.Driver.RetryMaxDelayMs) * time.Millisecond,
			Logger:         logger,
		}), nil
	}
}

func registerTools(s *server.MCPServer, deps *tool.Deps, version string) {
	listDevices := tool.NewListDevicesTool(deps)
	s.AddTool(listDevices.Definition(), listDevices.Handle)

	listGroups := tool.NewListGroupsTool(deps)
	s.AddTool(listGroups.Definition(), listGroups.Handle)

	checkFilter := tool.NewCheckFilterTool(deps)
	s.AddTool(checkFilter.Definition(), checkFilter.Handle)

	for _, t := range tool.FixedGetterTools(deps) {
		s.AddTool(t.Definition(), t.Handle)
	}

	runGetters := tool.NewRunGettersTool(deps)
	s.AddTool(runGetters.Definition(), runGetters.Handle)

	getConfig := tool.NewGetConfigTool(deps)
	s.AddTool(getConfig.Definition(), getConfig.Handle)

	showCommands := tool.NewShowCommandsTool(deps)
	s.AddTool(showCommands.Definition(), showCommands.Handle)

	configCommands := tool.NewConfigCommandsTool(deps)
	s.AddTool(configCommands.Definition(), configCommands.Handle)

	backupConfigs := tool.NewBackupConfigsTool(deps)
	s.AddTool(backupConfigs.Definition(), backupConfigs.Handle)

	pushFile := tool.NewPushFileTool(deps)
	s.AddTool(pushFile.Definition(), pushFile.Handle)

	ping := tool.NewPingTool(deps)
	s.AddTool(ping.Definition(), ping.Handle)

	traceroute := tool.NewTracerouteTool(deps)
	s.AddTool(traceroute.Definition(), traceroute.Handle)

	stats := tool.NewServerStatsTool(version)
	s.AddTool(stats.Definition(), stats.Handle)
}

func serverInstructions() string {
	return `netmcp exposes a YAML-defined network device inventory and runs
read and write operations against the matching devices over SSH.

Targeting: every device tool accepts the same optional filter arguments
(name, group, platform, pattern, data). Filters combine with AND; an
omitted filter targets the whole inventory. Use check_filter first to
preview which devices a filter matches without touching any of them.

Results: tools return one JSON envelope per device, keyed by device
name. Each envelope is {"success": true, "result": ...} or
{"success": false, "error": {"kind", "message", "context"}}. A failure
that precedes device fan-out (bad filter, denylisted command,
unsupported getter, batch timeout) is reported under the single key
"_batch".

Safety: send_config_commands and push_file are checked against a
configurable denylist before any device is contacted; a rejected batch
names the command and the rule that matched. Destructive commands
(erase, format, reload, pipe characters) are blocked by default.`
}
