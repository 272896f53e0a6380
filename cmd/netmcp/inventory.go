package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"netmcp/internal/domain"
	"netmcp/internal/inventory"
)

func inventoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inventory",
		Short: "Inspect the device inventory without contacting any device",
	}
	cmd.AddCommand(inventoryListCmd())
	cmd.AddCommand(inventoryResolveCmd())
	return cmd
}

func inventoryListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all devices with resolved platform, address and groups",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := loadSnapshot()
			if err != nil {
				return err
			}
			for _, dev := range snap.Devices {
				groups := strings.Join(dev.Groups, ",")
				if groups == "" {
					groups = "-"
				}
				fmt.Printf("%-20s %-16s %-12s %s\n", dev.Name, dev.Hostname, dev.Platform, groups)
			}
			fmt.Printf("\n%d devices, %d groups\n", len(snap.Devices), len(snap.Groups))
			return nil
		},
	}
}

func inventoryResolveCmd() *cobra.Command {
	var f inventory.Filter
	var attrs []string

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Preview which devices a filter matches",
		Long: `Applies the same filter semantics as the MCP tools (all criteria
must hold) and prints the matching devices. No device is contacted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := loadSnapshot()
			if err != nil {
				return err
			}

			f.Attrs = map[string]string{}
			for _, kv := range attrs {
				key, val, ok := strings.Cut(kv, "=")
				if !ok {
					return fmt.Errorf("bad --data %q, want path=value", kv)
				}
				f.Attrs[key] = val
			}

			devices, err := inventory.Resolve(snap, f)
			if err != nil {
				return err
			}

			names := make([]string, 0, len(devices))
			for _, dev := range devices {
				names = append(names, dev.Name)
			}
			out, _ := json.MarshalIndent(map[string]any{
				"filter":  f.String(),
				"count":   len(names),
				"matched": names,
			}, "", "  ")
			fmt.Println(string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&f.Name, "name", "", "comma-separated device names or addresses")
	cmd.Flags().StringVar(&f.Group, "group", "", "group membership")
	cmd.Flags().StringVar(&f.Platform, "platform", "", "exact platform tag")
	cmd.Flags().StringVar(&f.Pattern, "pattern", "", "glob matched against name and address")
	cmd.Flags().StringArrayVar(&attrs, "data", nil, "dotted-path predicate, e.g. site.region=emea (repeatable)")
	return cmd
}

func loadSnapshot() (*domain.Snapshot, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	provider := inventory.NewYAMLProvider(
		cfg.Inventory.HostsFile, cfg.Inventory.GroupsFile, cfg.Inventory.DefaultsFile, logger)
	return provider.Snapshot(context.Background())
}
