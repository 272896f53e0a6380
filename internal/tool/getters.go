package tool

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"netmcp/internal/capability"
	"netmcp/internal/domain"
)

// GetterTool is one fixed-getter tool (get_facts, get_interfaces, ...).
// All of them share the same handler: capability pre-flight, then a
// getter task dispatched across the filtered device set.
type GetterTool struct {
	deps        *Deps
	name        string
	description string
	getters     []string
}

func NewGetterTool(deps *Deps, name, description string, getters ...string) *GetterTool {
	return &GetterTool{deps: deps, name: name, description: description, getters: getters}
}

// FixedGetterTools builds the standard per-getter tool set.
func FixedGetterTools(deps *Deps) []*GetterTool {
	return []*GetterTool{
		NewGetterTool(deps, "get_facts",
			"Retrieve device facts (vendor, model, OS version, uptime) as raw output.", "facts"),
		NewGetterTool(deps, "get_interfaces",
			"Retrieve interface status and IP assignments as raw output.", "interfaces", "interfaces_ip"),
		NewGetterTool(deps, "get_bgp_neighbors",
			"Retrieve BGP neighbor summaries as raw output.", "bgp_neighbors"),
		NewGetterTool(deps, "get_lldp_neighbors",
			"Retrieve LLDP neighbor details as raw output.", "lldp_neighbors"),
		NewGetterTool(deps, "get_network_instances",
			"Retrieve VRF / routing-instance information as raw output.", "network_instances"),
	}
}

func (t *GetterTool) Definition() mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(t.description)}
	opts = append(opts, filterOptions()...)
	return mcp.NewTool(t.name, opts...)
}

func (t *GetterTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return t.deps.runGetters(ctx, t.name, req, t.getters)
}

// RunGettersTool is the generic variant: the caller names the getters.
type RunGettersTool struct {
	deps *Deps
}

func NewRunGettersTool(deps *Deps) *RunGettersTool { return &RunGettersTool{deps: deps} }

func (t *RunGettersTool) Definition() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Run arbitrary getters against the filtered devices. Getters are validated against each platform's support table before any device is touched. Known getters include: facts, interfaces, interfaces_ip, bgp_neighbors, lldp_neighbors, network_instances, arp_table, mac_address_table, vlans, users, environment."),
		mcp.WithArray("getters",
			mcp.Description("Getter names to execute"),
			mcp.Required(),
			mcp.Items(map[string]any{"type": "string"})),
	}
	opts = append(opts, filterOptions()...)
	return mcp.NewTool("run_getters", opts...)
}

func (t *RunGettersTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	getters := req.GetStringSlice("getters", nil)
	if len(getters) == 0 {
		return mcp.NewToolResultError("getters must not be empty"), nil
	}
	return t.deps.runGetters(ctx, "run_getters", req, getters)
}

// runGetters is the shared getter pipeline: resolve, validate
// capabilities, dispatch.
func (d *Deps) runGetters(ctx context.Context, toolName string, req mcp.CallToolRequest, getters []string) (*mcp.CallToolResult, error) {
	f := filterFromRequest(req)

	devices, err := d.Runner.Resolve(ctx, f, false)
	if err != nil {
		return resolveError(err)
	}

	// Fail fast on unsupported getters before any device I/O.
	if err := capability.Validate(devices, getters); err != nil {
		var capErr *domain.UnsupportedCapabilityError
		if errors.As(err, &capErr) {
			return batchError(domain.KindUnsupportedCapability, capErr.Error(), map[string]any{
				"violations": capErr.Violations,
			})
		}
		return batchError(domain.KindUnsupportedCapability, err.Error(), nil)
	}

	return d.dispatch(ctx, toolName, f, d.Tasks.Getters(getters), optionsFromRequest(req, false))
}

// GetConfigTool retrieves one configuration source.
type GetConfigTool struct {
	deps *Deps
}

func NewGetConfigTool(deps *Deps) *GetConfigTool { return &GetConfigTool{deps: deps} }

func (t *GetConfigTool) Definition() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Retrieve a device configuration (running, startup or candidate) as raw text."),
		mcp.WithString("source",
			mcp.Description("Configuration source: running, startup or candidate (default: running)"),
			mcp.Enum("running", "startup", "candidate")),
	}
	opts = append(opts, filterOptions()...)
	return mcp.NewTool("get_config", opts...)
}

func (t *GetConfigTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source := strings.ToLower(req.GetString("source", "running"))
	switch source {
	case "running", "startup", "candidate":
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown config source %q", source)), nil
	}
	return t.deps.dispatch(ctx, "get_config", filterFromRequest(req),
		t.deps.Tasks.GetConfig(source), optionsFromRequest(req, false))
}
