package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/caarlos0/env/v9"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration for netmcp.
type Config struct {
	Log       LogConfig       `yaml:"log"`
	Inventory InventoryConfig `yaml:"inventory"`
	Driver    DriverConfig    `yaml:"driver"`
	Execution ExecutionConfig `yaml:"execution"`
	Security  SecurityConfig  `yaml:"security"`
	Backup    BackupConfig    `yaml:"backup"`
	Audit     AuditConfig     `yaml:"audit"`
}

type LogConfig struct {
	Level string `yaml:"level"` // debug | info | warn | error
	File  string `yaml:"file"`  // optional; stderr when empty (stdout carries the MCP transport)
}

type InventoryConfig struct {
	HostsFile    string `yaml:"hostsFile"`
	GroupsFile   string `yaml:"groupsFile"`
	DefaultsFile string `yaml:"defaultsFile"`
}

type DriverConfig struct {
	Kind                  string `yaml:"kind"` // "ssh" | "static"
	FixturesFile          string `yaml:"fixturesFile,omitempty"`
	ConnectTimeoutSeconds int    `yaml:"connectTimeoutSeconds"`
	RetryAttempts         int    `yaml:"retryAttempts"`
	RetryDelayMs          int    `yaml:"retryDelayMs"`
	RetryMaxDelayMs       int    `yaml:"retryMaxDelayMs"`
}

type ExecutionConfig struct {
	// DefaultTimeoutSeconds bounds one whole batch, not one device.
	DefaultTimeoutSeconds int `yaml:"defaultTimeoutSeconds"`
}

type SecurityConfig struct {
	DenylistFile string `yaml:"denylistFile"`
}

type BackupConfig struct {
	Directory string `yaml:"directory"`
}

type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	DBPath  string `yaml:"dbPath"`
}

// Env holds process-level overrides read from the environment. These win
// over flags so container deployments can steer the server without a
// config file edit.
type Env struct {
	ConfigPath string `env:"NETMCP_CONFIG"`
	LogLevel   string `env:"NETMCP_LOG_LEVEL"`
	LogFile    string `env:"NETMCP_LOG_FILE"`
}

// ReadEnv parses the NETMCP_* environment overrides.
func ReadEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse environment: %w", err)
	}
	return e, nil
}

// DefaultConfigDir returns the default config directory (~/.netmcp).
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".netmcp"
	}
	return filepath.Join(home, ".netmcp")
}

func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

func Load(path string) (*Config, error) {
	path = ExpandPath(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	// Substitute environment variables: ${VAR} and ${VAR:-default}
	data = []byte(ExpandEnvVars(string(data)))

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config file %s: %w", path, err)
	}

	cfg.Log.File = ExpandPath(cfg.Log.File)
	cfg.Inventory.HostsFile = ExpandPath(cfg.Inventory.HostsFile)
	cfg.Inventory.GroupsFile = ExpandPath(cfg.Inventory.GroupsFile)
	cfg.Inventory.DefaultsFile = ExpandPath(cfg.Inventory.DefaultsFile)
	cfg.Security.DenylistFile = ExpandPath(cfg.Security.DenylistFile)
	cfg.Backup.Directory = ExpandPath(cfg.Backup.Directory)
	cfg.Audit.DBPath = ExpandPath(cfg.Audit.DBPath)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns in config strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-(.*?))?\}`)

// ExpandEnvVars replaces ${VAR} with the environment variable value.
// Supports default values: ${VAR:-default} uses "default" when VAR is unset or empty.
func ExpandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		varName := groups[1]
		defaultVal := ""
		hasDefault := len(groups) >= 3 && groups[2] != ""
		if hasDefault {
			defaultVal = groups[2]
		}

		val, exists := os.LookupEnv(varName)
		if !exists || val == "" {
			if hasDefault {
				return defaultVal
			}
			return match // keep original if no env var and no default
		}
		return val
	})
}

func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}

// Validate checks that the config has valid values.
func Validate(cfg *Config) error {
	var errs []string

	switch cfg.Log.Level {
	case "", "debug", "info", "warn", "error":
		// valid
	default:
		errs = append(errs, "log.level must be one of: debug, info, warn, error")
	}

	switch cfg.Driver.Kind {
	case "ssh", "static":
		// valid
	default:
		errs = append(errs, "driver.kind must be one of: ssh, static")
	}
	if cfg.Driver.Kind == "static" && cfg.Driver.FixturesFile == "" {
		errs = append(errs, "driver.fixturesFile is required for the static driver")
	}
	if cfg.Driver.ConnectTimeoutSeconds < 1 {
		errs = append(errs, "driver.connectTimeoutSeconds must be >= 1")
	}
	if cfg.Driver.RetryAttempts < 1 {
		errs = append(errs, "driver.retryAttempts must be >= 1")
	}

	if cfg.Execution.DefaultTimeoutSeconds < 1 {
		errs = append(errs, "execution.defaultTimeoutSeconds must be >= 1")
	}

	if cfg.Inventory.HostsFile == "" {
		errs = append(errs, "inventory.hostsFile is required")
	}
	if cfg.Backup.Directory == "" {
		errs = append(errs, "backup.directory is required")
	}
	if cfg.Audit.Enabled && cfg.Audit.DBPath == "" {
		errs = append(errs, "audit.dbPath is required when audit is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// ExpandPath resolves ~/ to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
