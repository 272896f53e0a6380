package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"

	"netmcp/internal/audit"
	"netmcp/internal/capability"
	"netmcp/internal/inventory"
	"netmcp/internal/security"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Run diagnostic checks on your netmcp installation",
		Long: `Verifies that netmcp's configuration, inventory, denylist, backup
directory and audit store are correctly set up. Reports pass/fail for
each check.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := resolveConfigPath()
			fmt.Printf("netmcp doctor v%s\n", version)
			fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

			passed := 0
			failed := 0
			warned := 0

			// 1. Config file exists
			if _, err := os.Stat(cfgPath); err != nil {
				printFail("Config file", fmt.Sprintf("not found at %s", cfgPath))
				fmt.Printf("\nRun 'netmcp init' to create a starter configuration.\n")
				return nil
			}
			printPass("Config file", cfgPath)
			passed++

			// 2. Config loads and validates
			cfg, err := loadConfig()
			if err != nil {
				printFail("Config validation", err.Error())
				failed++
				fmt.Printf("\n%d passed, %d failed\n", passed, failed)
				return nil
			}
			printPass("Config validation", "valid")
			passed++

			// 3. Inventory loads; every device needs a known platform to
			// pass capability validation later.
			provider := inventory.NewYAMLProvider(
				cfg.Inventory.HostsFile, cfg.Inventory.GroupsFile, cfg.Inventory.DefaultsFile, logger)
			snap, err := provider.Snapshot(context.Background())
			if err != nil {
				printFail("Inventory", err.Error())
				failed++
			} else {
				printPass("Inventory", fmt.Sprintf("%d devices, %d groups", len(snap.Devices), len(snap.Groups)))
				passed++

				known := map[string]bool{}
				for _, p := range capability.Platforms() {
					known[p] = true
				}
				for _, dev := range snap.Devices {
					switch {
					case dev.Platform == "":
						printWarn("Device: "+dev.Name, "no platform set; getter validation will skip it")
						warned++
					case !known[dev.Platform]:
						printWarn("Device: "+dev.Name, fmt.Sprintf("unknown platform %q", dev.Platform))
						warned++
					}
					if dev.Username == "" || dev.Password == "" {
						printWarn("Device: "+dev.Name, "missing SSH credentials")
						warned++
					}
				}
			}

			// 4. Denylist parses
			if _, err := security.LoadGate(cfg.Security.DenylistFile, audit.Nop{}, logger); err != nil {
				printFail("Denylist", err.Error())
				failed++
			} else if _, statErr := os.Stat(cfg.Security.DenylistFile); statErr != nil {
				printWarn("Denylist", fmt.Sprintf("%s not found; built-in rules in effect", cfg.Security.DenylistFile))
				warned++
			} else {
				printPass("Denylist", cfg.Security.DenylistFile)
				passed++
			}

			// 5. Backup directory writable
			if err := checkWritableDir(cfg.Backup.Directory); err != nil {
				printFail("Backup directory", err.Error())
				failed++
			} else {
				printPass("Backup directory", cfg.Backup.Directory)
				passed++
			}

			// 6. Audit store writable
			if cfg.Audit.Enabled {
				if err := checkDatabase(cfg.Audit.DBPath); err != nil {
					printFail("Audit store", err.Error())
					failed++
				} else {
					printPass("Audit store", cfg.Audit.DBPath)
					passed++
				}
			} else {
				printWarn("Audit store", "disabled; runs and denylist rejections will not be recorded")
				warned++
			}

			// 7. Log file writable
			if cfg.Log.File != "" {
				if err := os.MkdirAll(filepath.Dir(cfg.Log.File), 0o755); err != nil {
					printWarn("Log file", fmt.Sprintf("cannot create log directory: %v", err))
					warned++
				} else {
					printPass("Log file", cfg.Log.File)
					passed++
				}
			}

			// Summary
			fmt.Printf("\n━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
			fmt.Printf("Results: %d passed, %d warnings, %d failed\n", passed, warned, failed)
			if failed > 0 {
				fmt.Printf("\nPlease fix the failed checks before serving.\n")
				return fmt.Errorf("%d check(s) failed", failed)
			}
			if warned > 0 {
				fmt.Printf("\nnetmcp should work but consider fixing the warnings.\n")
			} else {
				fmt.Printf("\nAll checks passed! Run 'netmcp serve' to start.\n")
			}
			return nil
		},
	}
}

func checkWritableDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create: %w", err)
	}
	probe := filepath.Join(dir, ".doctor_probe")
	if err := os.WriteFile(probe, nil, 0o644); err != nil {
		return fmt.Errorf("not writable: %w", err)
	}
	os.Remove(probe)
	return nil
}

func checkDatabase(dbPath string) error {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("cannot create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return fmt.Errorf("cannot open: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("cannot ping: %w", err)
	}

	// Try a write.
	if _, err := db.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS _doctor_test (id INTEGER PRIMARY KEY)"); err != nil {
		return fmt.Errorf("not writable: %w", err)
	}
	db.ExecContext(ctx, "DROP TABLE IF EXISTS _doctor_test")

	return nil
}

func printPass(check, detail string) {
	fmt.Printf("  [PASS] %-20s %s\n", check, detail)
}

func printFail(check, detail string) {
	fmt.Printf("  [FAIL] %-20s %s\n", check, detail)
}

func printWarn(check, detail string) {
	fmt.Printf("  [WARN] %-20s %s\n", check, detail)
}
