package driver

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"netmcp/internal/domain"
)

func TestStaticConnector_RunScriptedCommand(t *testing.T) {
	c := NewStaticConnector(StaticFixtures{
		"r1": {"show version": "Cisco IOS Software, Version 15.2"},
	})
	ctx := context.Background()

	sess, err := c.Dial(ctx, domain.Device{Name: "r1"})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer sess.Close()

	out, err := sess.Run(ctx, "show version")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(out, "15.2") {
		t.Errorf("output = %q", out)
	}

	if _, err := sess.Run(ctx, "show unscripted"); err == nil {
		t.Error("unscripted command must fail")
	}
}

func TestStaticConnector_UnknownDeviceRefusesDial(t *testing.T) {
	c := NewStaticConnector(StaticFixtures{})
	if _, err := c.Dial(context.Background(), domain.Device{Name: "ghost"}); err == nil {
		t.Fatal("expected dial error for unknown device")
	}
}

func TestStaticConnector_RecordsUploads(t *testing.T) {
	c := NewStaticConnector(StaticFixtures{"r1": {}})
	ctx := context.Background()

	sess, err := c.Dial(ctx, domain.Device{Name: "r1"})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	payload := strings.NewReader("image contents")
	if err := sess.Upload(ctx, payload, payload.Size(), "flash:/image.bin"); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	uploads := c.Uploads("r1")
	if len(uploads) != 1 || uploads[0] != "flash:/image.bin" {
		t.Errorf("uploads = %v", uploads)
	}
}

func TestLoadStaticFixtures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixtures.yaml")
	content := "r1:\n  show version: \"IOS 15.2\"\n  show clock: \"12:00:00\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixtures: %v", err)
	}

	fx, err := LoadStaticFixtures(path)
	if err != nil {
		t.Fatalf("LoadStaticFixtures: %v", err)
	}
	if fx["r1"]["show clock"] != "12:00:00" {
		t.Errorf("fixtures = %v", fx)
	}
}
