package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"netmcp/internal/audit"
)

func auditCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show recent tool runs and denylist rejections",
	}
	cmd.PersistentFlags().IntVar(&limit, "limit", 20, "maximum entries to show")

	cmd.AddCommand(&cobra.Command{
		Use:   "runs",
		Short: "Show recent tool runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openAuditStore()
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("No runs recorded.")
				return nil
			}
			for _, r := range runs {
				fmt.Printf("%s  %-22s devices=%d ok=%d failed=%d  %s\n",
					r.CreatedAt.Format(time.RFC3339), r.Tool, r.DeviceCount, r.OKCount, r.FailCount, r.Detail)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "security",
		Short: "Show recent denylist rejections",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openAuditStore()
			if err != nil {
				return err
			}
			defer store.Close()

			events, err := store.RecentSecurity(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(events) == 0 {
				fmt.Println("No rejections recorded.")
				return nil
			}
			for _, e := range events {
				fmt.Printf("rule=%s match=%q command=%q\n", e.Rule, e.Match, e.Command)
			}
			return nil
		},
	})

	return cmd
}

func openAuditStore() (*audit.SQLiteStore, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if !cfg.Audit.Enabled {
		return nil, fmt.Errorf("auditing is disabled in the config")
	}
	if _, err := os.Stat(cfg.Audit.DBPath); err != nil {
		return nil, fmt.Errorf("no audit store at %s", cfg.Audit.DBPath)
	}
	return audit.NewSQLiteStore(cfg.Audit.DBPath, logger)
}
