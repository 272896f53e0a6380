package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"netmcp/internal/backup"
	"netmcp/internal/domain"
	"netmcp/internal/driver"
	"netmcp/internal/inventory"
	"netmcp/internal/runner"
	"netmcp/internal/task"
)

func backupsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backups",
		Short: "Manage saved configuration backups",
	}
	cmd.AddCommand(backupsListCmd())
	cmd.AddCommand(backupsPruneCmd())
	cmd.AddCommand(backupsRunCmd())
	return cmd
}

func backupsRunCmd() *cobra.Command {
	var f inventory.Filter

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Back up running configs from the filtered devices now",
		Long: `Connects to the filtered devices, retrieves their running
configuration and writes each to a timestamped .cfg file under the
backup directory. The same operation the backup_configs MCP tool runs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			writer, err := backup.NewWriter(cfg.Backup.Directory)
			if err != nil {
				return err
			}

			connector := driver.NewSSHConnector(driver.SSHConfig{
				ConnectTimeout: time.Duration(cfg.Driver.ConnectTimeoutSeconds) * time.Second,
				RetryAttempts:  uint(cfg.Driver.RetryAttempts),
				RetryDelay:     time.Duration(cfg.Driver.RetryDelayMs) * time.Millisecond,
				RetryMaxDelay:  time.Duration(cfg.Driver.RetryMaxDelayMs) * time.Millisecond,
				Logger:         logger,
			})
			provider := inventory.NewYAMLProvider(
				cfg.Inventory.HostsFile, cfg.Inventory.GroupsFile, cfg.Inventory.DefaultsFile, logger)
			run := runner.New(provider, time.Duration(cfg.Execution.DefaultTimeoutSeconds)*time.Second, logger)
			tasks := task.NewFactory(connector)

			result := run.Execute(cmd.Context(), f, tasks.GetConfig("running"), runner.Options{})

			saved, failed := 0, 0
			for name, env := range result {
				if name == domain.BatchKey || !env.Success {
					failed++
					if env.Error != nil {
						fmt.Printf("  [FAIL] %-20s %s\n", name, env.Error.Message)
					}
					continue
				}
				configs, ok := env.Result.(map[string]string)
				if !ok || configs["running"] == "" {
					failed++
					fmt.Printf("  [FAIL] %-20s empty configuration\n", name)
					continue
				}
				path, err := writer.WriteConfig("", name, configs["running"])
				if err != nil {
					failed++
					fmt.Printf("  [FAIL] %-20s %v\n", name, err)
					continue
				}
				saved++
				fmt.Printf("  [ OK ] %-20s %s\n", name, path)
			}

			fmt.Printf("\n%d saved, %d failed\n", saved, failed)
			if failed > 0 {
				return fmt.Errorf("%d device(s) failed", failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&f.Name, "name", "", "comma-separated device names or addresses")
	cmd.Flags().StringVar(&f.Group, "group", "", "group membership")
	cmd.Flags().StringVar(&f.Platform, "platform", "", "exact platform tag")
	cmd.Flags().StringVar(&f.Pattern, "pattern", "", "glob matched against name and address")
	return cmd
}

// backupFile is one saved config under the backup root.
type backupFile struct {
	path   string
	device string
	size   int64
}

func backupsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved backups grouped by device",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			byDevice, err := scanBackups(cfg.Backup.Directory)
			if err != nil {
				return err
			}
			if len(byDevice) == 0 {
				fmt.Printf("No backups under %s\n", cfg.Backup.Directory)
				return nil
			}

			devices := make([]string, 0, len(byDevice))
			for dev := range byDevice {
				devices = append(devices, dev)
			}
			sort.Strings(devices)

			total := 0
			for _, dev := range devices {
				files := byDevice[dev]
				fmt.Printf("%s (%d)\n", dev, len(files))
				for _, f := range files {
					fmt.Printf("  %s (%s)\n", filepath.Base(f.path), humanSize(f.size))
				}
				total += len(files)
			}
			fmt.Printf("\n%d backups, %d devices\n", total, len(devices))
			return nil
		},
	}
}

func backupsPruneCmd() *cobra.Command {
	var keep int
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete old backups, keeping the newest N per device",
		RunE: func(cmd *cobra.Command, args []string) error {
			if keep < 1 {
				return fmt.Errorf("--keep must be at least 1")
			}
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			byDevice, err := scanBackups(cfg.Backup.Directory)
			if err != nil {
				return err
			}

			removed := 0
			for dev, files := range byDevice {
				if len(files) <= keep {
					continue
				}
				// Timestamped names sort chronologically; newest last.
				for _, f := range files[:len(files)-keep] {
					if dryRun {
						fmt.Printf("would remove %s\n", f.path)
						removed++
						continue
					}
					if err := os.Remove(f.path); err != nil {
						return fmt.Errorf("remove %s: %w", f.path, err)
					}
					logger.Info("pruned backup", "device", dev, "path", f.path)
					removed++
				}
			}
			if dryRun {
				fmt.Printf("%d backups would be removed\n", removed)
			} else {
				fmt.Printf("%d backups removed\n", removed)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&keep, "keep", 5, "newest backups to keep per device")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print what would be removed without deleting")
	return cmd
}

// scanBackups walks the backup root and groups .cfg files by the device
// name encoded in the filename (<device>_<timestamp>.cfg). Files per
// device are sorted oldest first.
func scanBackups(root string) (map[string][]backupFile, error) {
	byDevice := map[string][]backupFile{}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == root {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".cfg") {
			return nil
		}
		base := strings.TrimSuffix(d.Name(), ".cfg")
		idx := strings.LastIndex(base, "_")
		if idx <= 0 {
			return nil
		}
		// The timestamp is the last two underscore-separated fields.
		if i := strings.LastIndex(base[:idx], "_"); i > 0 {
			idx = i
		}
		device := base[:idx]
		info, err := d.Info()
		if err != nil {
			return err
		}
		byDevice[device] = append(byDevice[device], backupFile{path: path, device: device, size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, err
	}

	for dev := range byDevice {
		files := byDevice[dev]
		sort.Slice(files, func(i, j int) bool { return files[i].path < files[j].path })
		byDevice[dev] = files
	}
	return byDevice, nil
}

func humanSize(bytes int64) string {
	const (
		kb = 1024
		mb = 1024 * kb
	)
	switch {
	case bytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(mb))
	case bytes >= kb:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(kb))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
