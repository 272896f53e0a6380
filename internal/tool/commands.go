package tool

import (
	"context"
	"errors"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"netmcp/internal/domain"
	"netmcp/internal/metrics"
)

// ShowCommandsTool runs read-only CLI commands across the filtered
// device set.
type ShowCommandsTool struct {
	deps *Deps
}

func NewShowCommandsTool(deps *Deps) *ShowCommandsTool { return &ShowCommandsTool{deps: deps} }

func (t *ShowCommandsTool) Definition() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Execute show/display commands on the filtered devices and return raw output keyed by command. Commands run sequentially per device over one connection."),
		mcp.WithArray("commands",
			mcp.Description("Commands to execute, in order"),
			mcp.Required(),
			mcp.Items(map[string]any{"type": "string"})),
	}
	opts = append(opts, filterOptions()...)
	return mcp.NewTool("run_show_commands", opts...)
}

func (t *ShowCommandsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	commands, result := requireCommands(req)
	if result != nil {
		return result, nil
	}
	return t.deps.dispatch(ctx, "run_show_commands", filterFromRequest(req),
		t.deps.Tasks.ShowCommands(commands), optionsFromRequest(req, false))
}

// ConfigCommandsTool pushes configuration commands. Every command is
// screened by the denylist gate before any device is touched.
type ConfigCommandsTool struct {
	deps *Deps
}

func NewConfigCommandsTool(deps *Deps) *ConfigCommandsTool { return &ConfigCommandsTool{deps: deps} }

func (t *ConfigCommandsTool) Definition() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Send configuration commands to the filtered devices. Modifies device state; commands are screened against the configured denylist first. A failed step reports which command broke and what ran before it."),
		mcp.WithArray("commands",
			mcp.Description("Configuration commands to apply, in order"),
			mcp.Required(),
			mcp.Items(map[string]any{"type": "string"})),
	}
	opts = append(opts, filterOptions()...)
	return mcp.NewTool("send_config_commands", opts...)
}

func (t *ConfigCommandsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	commands, result := requireCommands(req)
	if result != nil {
		return result, nil
	}

	if err := t.deps.Gate.CheckAll(ctx, commands); err != nil {
		return securityError(err)
	}

	return t.deps.dispatch(ctx, "send_config_commands", filterFromRequest(req),
		t.deps.Tasks.ConfigCommands(commands), optionsFromRequest(req, false))
}

// PushFileTool uploads a file to a single device. Targeting is strict:
// the filter must match at least one device.
type PushFileTool struct {
	deps *Deps
}

func NewPushFileTool(deps *Deps) *PushFileTool { return &PushFileTool{deps: deps} }

func (t *PushFileTool) Definition() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Upload a file to the filtered devices over SCP. The destination path is screened against the denylist."),
		mcp.WithString("remote_path",
			mcp.Description("Destination path on the device (e.g. flash:/config.txt)"),
			mcp.Required()),
		mcp.WithString("content",
			mcp.Description("File content to upload"),
			mcp.Required()),
	}
	opts = append(opts, filterOptions()...)
	return mcp.NewTool("push_file", opts...)
}

func (t *PushFileTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	remotePath, err := req.RequireString("remote_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := t.deps.Gate.Check(ctx, remotePath); err != nil {
		return securityError(err)
	}

	return t.deps.dispatch(ctx, "push_file", filterFromRequest(req),
		t.deps.Tasks.PushFile([]byte(content), remotePath), optionsFromRequest(req, true))
}

// requireCommands extracts and validates the commands array shared by
// the command tools.
func requireCommands(req mcp.CallToolRequest) ([]string, *mcp.CallToolResult) {
	commands := req.GetStringSlice("commands", nil)
	if len(commands) == 0 {
		return nil, mcp.NewToolResultError("commands must not be empty")
	}
	for _, c := range commands {
		if strings.TrimSpace(c) == "" {
			return nil, mcp.NewToolResultError("commands must not contain empty strings")
		}
	}
	return commands, nil
}

func securityError(err error) (*mcp.CallToolResult, error) {
	metrics.SecurityRejects.Inc()

	var viol *domain.SecurityViolationError
	if errors.As(err, &viol) {
		return batchError(domain.KindSecurityViolation, viol.Error(), map[string]any{
			"command": viol.Command,
			"rule":    viol.Rule,
			"match":   viol.Match,
		})
	}
	return batchError(domain.KindSecurityViolation, err.Error(), nil)
}
