package tool

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"netmcp/internal/metrics"
)

// ServerStatsTool reports uptime and the pipeline counters. There is no
// metrics endpoint (stdout belongs to the MCP transport), so this tool is
// the exposition surface.
type ServerStatsTool struct {
	version string
}

func NewServerStatsTool(version string) *ServerStatsTool {
	return &ServerStatsTool{version: version}
}

func (t *ServerStatsTool) Definition() mcp.Tool {
	return mcp.NewTool("server_stats",
		mcp.WithDescription("Report server version, uptime and execution counters (batches, devices, failures, timeouts, denylist rejections)."))
}

func (t *ServerStatsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uptime, values := metrics.Collector.Snapshot()
	return jsonResult(map[string]any{
		"version":        t.version,
		"uptime_seconds": int64(uptime.Seconds()),
		"metrics":        values,
	})
}
