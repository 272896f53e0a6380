package inventory

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func writeFixtures(t *testing.T, hosts, groups, defaults string) *YAMLProvider {
	t.Helper()
	dir := t.TempDir()

	hostsPath := filepath.Join(dir, "hosts.yaml")
	if err := os.WriteFile(hostsPath, []byte(hosts), 0o644); err != nil {
		t.Fatalf("write hosts: %v", err)
	}

	groupsPath := ""
	if groups != "" {
		groupsPath = filepath.Join(dir, "groups.yaml")
		if err := os.WriteFile(groupsPath, []byte(groups), 0o644); err != nil {
			t.Fatalf("write groups: %v", err)
		}
	}

	defaultsPath := ""
	if defaults != "" {
		defaultsPath = filepath.Join(dir, "defaults.yaml")
		if err := os.WriteFile(defaultsPath, []byte(defaults), 0o644); err != nil {
			t.Fatalf("write defaults: %v", err)
		}
	}

	return NewYAMLProvider(hostsPath, groupsPath, defaultsPath, testLogger())
}

const fixtureHosts = `
r1:
  hostname: 10.0.0.1
  platform: ios
  groups: [edge]
  data:
    role: access
r2:
  groups: [core]
`

const fixtureGroups = `
edge:
  username: edgeadmin
  data:
    site: nyc
core:
  platform: eos
  port: 2222
`

const fixtureDefaults = `
username: admin
password: secret
platform: junos
data:
  site: default-site
  tier: prod
`

func TestSnapshot_Inheritance(t *testing.T) {
	p := writeFixtures(t, fixtureHosts, fixtureGroups, fixtureDefaults)

	snap, err := p.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(snap.Devices) != 2 {
		t.Fatalf("got %d devices, want 2", len(snap.Devices))
	}

	r1, ok := snap.Device("r1")
	if !ok {
		t.Fatal("r1 missing from snapshot")
	}
	if r1.Platform != "ios" {
		t.Errorf("r1 platform = %q, host value must win over defaults", r1.Platform)
	}
	if r1.Username != "edgeadmin" {
		t.Errorf("r1 username = %q, want group value edgeadmin", r1.Username)
	}
	if r1.Password != "secret" {
		t.Errorf("r1 password not inherited from defaults")
	}
	if r1.Data["role"] != "access" {
		t.Errorf("r1 role = %v, want host data", r1.Data["role"])
	}
	if r1.Data["site"] != "nyc" {
		t.Errorf("r1 site = %v, group data must win over defaults", r1.Data["site"])
	}
	if r1.Data["tier"] != "prod" {
		t.Errorf("r1 tier = %v, want defaults data", r1.Data["tier"])
	}

	r2, _ := snap.Device("r2")
	if r2.Hostname != "r2" {
		t.Errorf("r2 hostname = %q, want name fallback", r2.Hostname)
	}
	if r2.Platform != "eos" {
		t.Errorf("r2 platform = %q, want group value eos", r2.Platform)
	}
	if r2.Port != 2222 {
		t.Errorf("r2 port = %d, want group value 2222", r2.Port)
	}
}

func TestSnapshot_GroupMembership(t *testing.T) {
	p := writeFixtures(t, fixtureHosts, fixtureGroups, "")

	snap, err := p.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(snap.Groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(snap.Groups))
	}
	for _, g := range snap.Groups {
		switch g.Name {
		case "edge":
			if len(g.Members) != 1 || g.Members[0] != "r1" {
				t.Errorf("edge members = %v, want [r1]", g.Members)
			}
		case "core":
			if len(g.Members) != 1 || g.Members[0] != "r2" {
				t.Errorf("core members = %v, want [r2]", g.Members)
			}
		}
	}
}

func TestSnapshot_FreshPerCall(t *testing.T) {
	dir := t.TempDir()
	hostsPath := filepath.Join(dir, "hosts.yaml")
	if err := os.WriteFile(hostsPath, []byte("r1: {hostname: 10.0.0.1}\n"), 0o644); err != nil {
		t.Fatalf("write hosts: %v", err)
	}
	p := NewYAMLProvider(hostsPath, "", "", testLogger())

	snap, err := p.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(snap.Devices) != 1 {
		t.Fatalf("got %d devices, want 1", len(snap.Devices))
	}

	// A second call must observe on-disk changes: no caching between
	// operations.
	if err := os.WriteFile(hostsPath, []byte("r1: {hostname: 10.0.0.1}\nr2: {hostname: 10.0.0.2}\n"), 0o644); err != nil {
		t.Fatalf("rewrite hosts: %v", err)
	}
	snap, err = p.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(snap.Devices) != 2 {
		t.Fatalf("second snapshot has %d devices, want 2", len(snap.Devices))
	}
}
