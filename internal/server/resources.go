package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"netmcp/internal/domain"
)

// registerResources exposes the inventory as read-only MCP resources.
// Credentials never leave the server: devices are sanitized before
// serialization.
func registerResources(s *server.MCPServer, provider domain.InventoryProvider) {
	hosts := mcp.NewResource(
		"inventory://hosts",
		"Device inventory",
		mcp.WithResourceDescription("All managed devices with platform, address and group membership. Credentials are redacted."),
		mcp.WithMIMEType("application/json"),
	)
	s.AddResource(hosts, func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		snap, err := provider.Snapshot(ctx)
		if err != nil {
			return nil, fmt.Errorf("reading inventory: %w", err)
		}
		devices := make([]domain.Device, 0, len(snap.Devices))
		for _, dev := range snap.Devices {
			devices = append(devices, dev.Sanitized())
		}
		return resourceJSON(req.Params.URI, devices)
	})

	groups := mcp.NewResource(
		"inventory://groups",
		"Inventory groups",
		mcp.WithResourceDescription("All inventory groups with their member devices and shared attributes."),
		mcp.WithMIMEType("application/json"),
	)
	s.AddResource(groups, func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		snap, err := provider.Snapshot(ctx)
		if err != nil {
			return nil, fmt.Errorf("reading inventory: %w", err)
		}
		return resourceJSON(req.Params.URI, snap.Groups)
	})
}

func resourceJSON(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
