package config

import "path/filepath"

// Defaults returns the configuration used when a value is absent from the
// config file. Paths are relative to the working directory unless
// overridden.
func Defaults() *Config {
	return &Config{
		Log: LogConfig{
			Level: "info",
		},
		Inventory: InventoryConfig{
			HostsFile:    filepath.Join("conf", "hosts.yaml"),
			GroupsFile:   filepath.Join("conf", "groups.yaml"),
			DefaultsFile: filepath.Join("conf", "defaults.yaml"),
		},
		Driver: DriverConfig{
			Kind:                  "ssh",
			ConnectTimeoutSeconds: 10,
			RetryAttempts:         3,
			RetryDelayMs:          500,
			RetryMaxDelayMs:       5000,
		},
		Execution: ExecutionConfig{
			DefaultTimeoutSeconds: 120,
		},
		Security: SecurityConfig{
			DenylistFile: filepath.Join("conf", "denylist.yaml"),
		},
		Backup: BackupConfig{
			Directory: "backups",
		},
		Audit: AuditConfig{
			Enabled: true,
			DBPath:  filepath.Join(DefaultConfigDir(), "audit.db"),
		},
	}
}
