package tool

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// PingTool runs a ping from the targeted devices. Targeting is strict so
// a typoed device name surfaces as no_match instead of silently doing
// nothing.
type PingTool struct {
	deps *Deps
}

func NewPingTool(deps *Deps) *PingTool { return &PingTool{deps: deps} }

func (t *PingTool) Definition() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Run a ping from the filtered devices toward a target address and return raw output."),
		mcp.WithString("target",
			mcp.Description("IP address or hostname to ping"),
			mcp.Required()),
	}
	opts = append(opts, filterOptions()...)
	return mcp.NewTool("ping", opts...)
}

func (t *PingTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	target, err := req.RequireString("target")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return t.deps.dispatch(ctx, "ping", filterFromRequest(req),
		t.deps.Tasks.Ping(target), optionsFromRequest(req, true))
}

// TracerouteTool runs a traceroute from the targeted devices.
type TracerouteTool struct {
	deps *Deps
}

func NewTracerouteTool(deps *Deps) *TracerouteTool { return &TracerouteTool{deps: deps} }

func (t *TracerouteTool) Definition() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Run a traceroute from the filtered devices toward a target address and return raw output."),
		mcp.WithString("target",
			mcp.Description("IP address or hostname to trace"),
			mcp.Required()),
	}
	opts = append(opts, filterOptions()...)
	return mcp.NewTool("traceroute", opts...)
}

func (t *TracerouteTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	target, err := req.RequireString("target")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return t.deps.dispatch(ctx, "traceroute", filterFromRequest(req),
		t.deps.Tasks.Traceroute(target), optionsFromRequest(req, true))
}
