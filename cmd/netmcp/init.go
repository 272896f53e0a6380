package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"netmcp/internal/config"
)

const starterHosts = `# One entry per device. Unset fields inherit from the device's groups
# (in listed order), then from defaults.yaml.
r1:
  hostname: 192.0.2.1
  platform: ios
  groups: [edge]
r2:
  hostname: 192.0.2.2
  platform: eos
  groups: [core]
`

const starterGroups = `edge:
  data:
    site: branch
core:
  data:
    site: datacenter
`

const starterDefaults = `port: 22
username: ${NETMCP_SSH_USER:-admin}
password: ${NETMCP_SSH_PASSWORD}
`

const starterDenylist = `# Commands rejected before any device is contacted. Matching is
# case-insensitive: patterns are substrings, exact_commands match the
# whole command, keywords match on word boundaries.
disallowed_patterns: [";", "&&", "||", "|", ">", "<", "` + "`" + `", "$("]
exact_commands:
  - write erase
  - erase startup-config
  - delete flash:
keywords: [erase, format, delete, reload, shutdown]
`

func initCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a starter config, inventory and denylist",
		Long: `Writes config.yaml plus starter hosts/groups/defaults/denylist files
under ~/.netmcp. Existing files are left alone unless --force is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgDir := config.DefaultConfigDir()
			confDir := filepath.Join(cfgDir, "conf")
			if err := os.MkdirAll(confDir, 0o755); err != nil {
				return err
			}

			cfg := config.Defaults()
			cfg.Inventory.HostsFile = filepath.Join(confDir, "hosts.yaml")
			cfg.Inventory.GroupsFile = filepath.Join(confDir, "groups.yaml")
			cfg.Inventory.DefaultsFile = filepath.Join(confDir, "defaults.yaml")
			cfg.Security.DenylistFile = filepath.Join(confDir, "denylist.yaml")
			cfg.Backup.Directory = filepath.Join(cfgDir, "backups")

			cfgPath := config.DefaultConfigPath()
			if err := writeStarter(cfgPath, "", force, func(path string) error {
				return config.Save(path, cfg)
			}); err != nil {
				return err
			}

			starters := []struct {
				path    string
				content string
			}{
				{cfg.Inventory.HostsFile, starterHosts},
				{cfg.Inventory.GroupsFile, starterGroups},
				{cfg.Inventory.DefaultsFile, starterDefaults},
				{cfg.Security.DenylistFile, starterDenylist},
			}
			for _, s := range starters {
				if err := writeStarter(s.path, s.content, force, nil); err != nil {
					return err
				}
			}

			if err := os.MkdirAll(cfg.Backup.Directory, 0o755); err != nil {
				return err
			}

			logger.Info("initialized", "config", cfgPath, "inventory", confDir)
			fmt.Println("Edit", cfg.Inventory.HostsFile, "to describe your devices, then run 'netmcp doctor'.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing files")
	return cmd
}

// writeStarter writes a starter file, skipping existing files unless
// force is set. When write is non-nil it is used instead of content.
func writeStarter(path, content string, force bool, write func(string) error) error {
	if _, err := os.Stat(path); err == nil && !force {
		logger.Info("exists, skipping", "path", path)
		return nil
	}
	if write != nil {
		return write(path)
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
