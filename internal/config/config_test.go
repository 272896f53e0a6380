package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, "log:\n  level: debug\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Log.Level)
	}
	if cfg.Driver.Kind != "ssh" {
		t.Errorf("driver kind = %q, want ssh default", cfg.Driver.Kind)
	}
	if cfg.Execution.DefaultTimeoutSeconds != 120 {
		t.Errorf("default timeout = %d, want 120", cfg.Execution.DefaultTimeoutSeconds)
	}
}

func TestLoad_RejectsBadDriver(t *testing.T) {
	path := writeConfig(t, "driver:\n  kind: telnet\n")

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected validation error for driver.kind=telnet")
	}
	if !strings.Contains(err.Error(), "driver.kind") {
		t.Errorf("error %q does not mention driver.kind", err)
	}
}

func TestLoad_StaticDriverNeedsFixtures(t *testing.T) {
	path := writeConfig(t, "driver:\n  kind: static\n")

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for static driver without fixturesFile")
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("NETMCP_TEST_HOST", "10.1.1.1")

	tests := []struct {
		in   string
		want string
	}{
		{"${NETMCP_TEST_HOST}", "10.1.1.1"},
		{"${NETMCP_TEST_UNSET:-fallback}", "fallback"},
		{"${NETMCP_TEST_UNSET}", "${NETMCP_TEST_UNSET}"},
		{"host: ${NETMCP_TEST_HOST}:22", "host: 10.1.1.1:22"},
	}
	for _, tt := range tests {
		if got := ExpandEnvVars(tt.in); got != tt.want {
			t.Errorf("ExpandEnvVars(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestReadEnv(t *testing.T) {
	t.Setenv("NETMCP_CONFIG", "/etc/netmcp/config.yaml")
	t.Setenv("NETMCP_LOG_LEVEL", "warn")

	e, err := ReadEnv()
	if err != nil {
		t.Fatalf("ReadEnv: %v", err)
	}
	if e.ConfigPath != "/etc/netmcp/config.yaml" {
		t.Errorf("ConfigPath = %q", e.ConfigPath)
	}
	if e.LogLevel != "warn" {
		t.Errorf("LogLevel = %q", e.LogLevel)
	}
}
