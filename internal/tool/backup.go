package tool

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"netmcp/internal/domain"
	"netmcp/internal/metrics"
)

// BackupConfigsTool retrieves running configs and writes them to
// timestamped files under the guarded backup root.
type BackupConfigsTool struct {
	deps *Deps
}

func NewBackupConfigsTool(deps *Deps) *BackupConfigsTool { return &BackupConfigsTool{deps: deps} }

func (t *BackupConfigsTool) Definition() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Retrieve running configurations from the filtered devices and save each to a timestamped .cfg file under the backup directory."),
		mcp.WithString("directory",
			mcp.Description("Subdirectory of the backup root to write into (optional; must not escape the root)")),
	}
	opts = append(opts, filterOptions()...)
	return mcp.NewTool("backup_configs", opts...)
}

func (t *BackupConfigsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	metrics.ToolCallsTotal.Inc()
	dir := req.GetString("directory", "")

	// Reject a bad directory before touching any device.
	if _, err := t.deps.Backups.EnsureDir(dir); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	f := filterFromRequest(req)
	result := t.deps.Runner.Execute(ctx, f, t.deps.Tasks.GetConfig("running"), optionsFromRequest(req, false))

	// Persist successes; failures pass through untouched.
	out := make(domain.BatchResult, len(result))
	for name, env := range result {
		if name == domain.BatchKey {
			out[name] = env
			continue
		}
		out[name] = t.persist(name, env, dir)
	}

	ok, failed := out.Counts()
	deviceCount := len(out)
	if _, aggregate := out[domain.BatchKey]; aggregate {
		deviceCount--
	}
	if err := t.deps.Audit.LogRun(ctx, domain.RunRecord{
		RunID:       uuid.NewString(),
		Tool:        "backup_configs",
		DeviceCount: deviceCount,
		OKCount:     ok,
		FailCount:   failed,
		Detail:      f.String(),
	}); err != nil {
		t.deps.Logger.Error("audit write failed", "tool", "backup_configs", "err", err)
	}

	return jsonResult(out)
}

func (t *BackupConfigsTool) persist(device string, env domain.Envelope, dir string) domain.Envelope {
	if !env.Success {
		return env
	}

	configs, ok := env.Result.(map[string]string)
	if !ok || configs["running"] == "" {
		return domain.Fail(domain.KindEmptyResult, "no configuration content to back up", nil)
	}

	path, err := t.deps.Backups.WriteConfig(dir, device, configs["running"])
	if err != nil {
		return domain.Fail(domain.KindTaskFailed, err.Error(), map[string]any{
			"error_type": fmt.Sprintf("%T", err),
		})
	}
	return domain.OK(fmt.Sprintf("configuration backed up to %s", path))
}
