package tool

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"netmcp/internal/domain"
	"netmcp/internal/metrics"
)

// ListDevicesTool returns the (sanitized) inventory, optionally filtered.
type ListDevicesTool struct {
	deps *Deps
}

func NewListDevicesTool(deps *Deps) *ListDevicesTool { return &ListDevicesTool{deps: deps} }

func (t *ListDevicesTool) Definition() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("List inventory devices with platform, groups and data attributes. Credentials are never returned. Accepts the common filter arguments."),
	}
	opts = append(opts, filterOptions()...)
	return mcp.NewTool("list_devices", opts...)
}

func (t *ListDevicesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	metrics.ToolCallsTotal.Inc()

	devices, err := t.deps.Runner.Resolve(ctx, filterFromRequest(req), false)
	if err != nil {
		return resolveError(err)
	}

	sanitized := make([]domain.Device, 0, len(devices))
	for _, d := range devices {
		sanitized = append(sanitized, d.Sanitized())
	}
	return jsonResult(map[string]any{
		"count":   len(sanitized),
		"devices": sanitized,
	})
}

// ListGroupsTool returns all inventory groups and their members.
type ListGroupsTool struct {
	deps *Deps
}

func NewListGroupsTool(deps *Deps) *ListGroupsTool { return &ListGroupsTool{deps: deps} }

func (t *ListGroupsTool) Definition() mcp.Tool {
	return mcp.NewTool("list_groups",
		mcp.WithDescription("List inventory groups and the devices belonging to each."))
}

func (t *ListGroupsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	metrics.ToolCallsTotal.Inc()

	snap, err := t.deps.Runner.Snapshot(ctx)
	if err != nil {
		return batchError(domain.KindInventoryError, err.Error(), nil)
	}
	return jsonResult(map[string]any{
		"count":  len(snap.Groups),
		"groups": snap.Groups,
	})
}

// CheckFilterTool dry-runs filter resolution so callers can see which
// devices a filter would target before executing anything.
type CheckFilterTool struct {
	deps *Deps
}

func NewCheckFilterTool(deps *Deps) *CheckFilterTool { return &CheckFilterTool{deps: deps} }

func (t *CheckFilterTool) Definition() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Resolve a device filter without executing anything; returns the matched device names."),
	}
	opts = append(opts, filterOptions()...)
	return mcp.NewTool("check_filter", opts...)
}

func (t *CheckFilterTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	metrics.ToolCallsTotal.Inc()

	f := filterFromRequest(req)
	devices, err := t.deps.Runner.Resolve(ctx, f, false)
	if err != nil {
		return resolveError(err)
	}

	names := make([]string, 0, len(devices))
	for _, d := range devices {
		names = append(names, d.Name)
	}
	return jsonResult(map[string]any{
		"filter":  f.String(),
		"count":   len(names),
		"matched": names,
	})
}

// resolveError maps a resolution failure onto the aggregate-envelope
// shape used everywhere else.
func resolveError(err error) (*mcp.CallToolResult, error) {
	switch e := err.(type) {
	case *domain.FilterSyntaxError:
		return batchError(domain.KindFilterSyntax, e.Error(), nil)
	case *domain.NoMatchError:
		return batchError(domain.KindNoMatch, e.Error(), nil)
	default:
		return batchError(domain.KindInventoryError, err.Error(), nil)
	}
}
