package backup

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteConfig(t *testing.T) {
	w, err := NewWriter(filepath.Join(t.TempDir(), "backups"))
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	path, err := w.WriteConfig("", "r1", "hostname r1\n!")
	if err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}

	base := filepath.Base(path)
	if !strings.HasPrefix(base, "r1_") || !strings.HasSuffix(base, ".cfg") {
		t.Errorf("filename = %q, want r1_<timestamp>.cfg", base)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if string(data) != "hostname r1\n!" {
		t.Errorf("content = %q", data)
	}
}

func TestEnsureDir_Subdirectory(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	dir, err := w.EnsureDir("site-a/routers")
	if err != nil {
		t.Fatalf("EnsureDir: %v", err)
	}
	if !strings.HasPrefix(dir, w.Root()) {
		t.Errorf("dir %q outside root %q", dir, w.Root())
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("subdirectory not created: %v", err)
	}
}

func TestEnsureDir_RejectsTraversal(t *testing.T) {
	w, err := NewWriter(filepath.Join(t.TempDir(), "backups"))
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	for _, dir := range []string{"../outside", "a/../../outside", "/etc/netmcp-evil"} {
		if _, err := w.EnsureDir(dir); err == nil {
			t.Errorf("EnsureDir(%q) must be rejected", dir)
		}
	}
}
