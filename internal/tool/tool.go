// Package tool defines the MCP tools exposed by netmcp. Each tool is a
// small struct pairing an mcp.Tool definition with its handler; the
// server package wires them onto the MCP server. Tools contain no device
// logic of their own: they parse arguments, call the runner, and shape
// the response.
package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"netmcp/internal/backup"
	"netmcp/internal/domain"
	"netmcp/internal/inventory"
	"netmcp/internal/metrics"
	"netmcp/internal/runner"
	"netmcp/internal/security"
	"netmcp/internal/task"
)

// Deps carries the shared collaborators injected into every tool.
type Deps struct {
	Runner  *runner.Runner
	Tasks   *task.Factory
	Gate    *security.Gate
	Backups *backup.Writer
	Audit   domain.AuditLogger
	Logger  *slog.Logger
}

// filterOptions are the common device-targeting arguments accepted by
// every batch tool.
func filterOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("name",
			mcp.Description("Device name or connection address; comma-separated for multiple devices")),
		mcp.WithString("group",
			mcp.Description("Target devices belonging to this inventory group")),
		mcp.WithString("platform",
			mcp.Description("Target devices with this exact platform tag (e.g. ios, eos, junos)")),
		mcp.WithString("pattern",
			mcp.Description("Glob pattern matched against device name and address (e.g. 'edge-*')")),
		mcp.WithObject("data",
			mcp.Description("Attribute equality filters as dotted paths into device data (e.g. {\"site.region\": \"emea\"})")),
		mcp.WithNumber("timeout_seconds",
			mcp.Description("Wall-clock timeout for the whole batch; overrides the configured default")),
	}
}

// filterFromRequest builds the inventory filter from the common
// arguments. Absent arguments produce the zero filter, which targets the
// whole inventory.
func filterFromRequest(req mcp.CallToolRequest) inventory.Filter {
	f := inventory.Filter{
		Name:     req.GetString("name", ""),
		Group:    req.GetString("group", ""),
		Platform: req.GetString("platform", ""),
		Pattern:  req.GetString("pattern", ""),
	}
	if data, ok := req.GetArguments()["data"].(map[string]any); ok && len(data) > 0 {
		f.Attrs = make(map[string]string, len(data))
		for k, v := range data {
			f.Attrs[k] = fmt.Sprint(v)
		}
	}
	return f
}

func optionsFromRequest(req mcp.CallToolRequest, strict bool) runner.Options {
	opts := runner.Options{Strict: strict}
	if secs := req.GetFloat("timeout_seconds", 0); secs > 0 {
		opts.Timeout = time.Duration(secs * float64(time.Second))
	}
	return opts
}

// dispatch runs a task through the runner, records the invocation in the
// audit log, and renders the envelope map as a JSON tool result.
func (d *Deps) dispatch(ctx context.Context, toolName string, f inventory.Filter, t domain.Task, opts runner.Options) (*mcp.CallToolResult, error) {
	metrics.ToolCallsTotal.Inc()

	result := d.Runner.Execute(ctx, f, t, opts)
	ok, failed := result.Counts()

	deviceCount := len(result)
	if _, aggregate := result[domain.BatchKey]; aggregate {
		deviceCount--
	}
	if err := d.Audit.LogRun(ctx, domain.RunRecord{
		RunID:       uuid.NewString(),
		Tool:        toolName,
		DeviceCount: deviceCount,
		OKCount:     ok,
		FailCount:   failed,
		Detail:      f.String(),
	}); err != nil {
		d.Logger.Error("audit write failed", "tool", toolName, "err", err)
	}

	return jsonResult(result)
}

// batchError renders a pre-dispatch failure in the same shape the runner
// uses: a single aggregate envelope under the reserved batch key.
func batchError(kind, message string, context map[string]any) (*mcp.CallToolResult, error) {
	return jsonResult(domain.BatchResult{
		domain.BatchKey: domain.Fail(kind, message, context),
	})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
