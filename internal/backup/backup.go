// Package backup writes retrieved device configurations to timestamped
// files under a guarded root directory.
package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Writer persists config backups. The root is fixed at construction; any
// requested subdirectory must resolve inside it.
type Writer struct {
	root string
}

// NewWriter resolves and creates the backup root.
func NewWriter(root string) (*Writer, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve backup root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create backup root: %w", err)
	}
	return &Writer{root: abs}, nil
}

// Root returns the resolved backup root.
func (w *Writer) Root() string { return w.root }

// EnsureDir resolves dir (relative to the root, or absolute) and creates
// it, rejecting any path that escapes the root. Traversal through ".." is
// the attack this guards against.
func (w *Writer) EnsureDir(dir string) (string, error) {
	target := dir
	if target == "" {
		target = w.root
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(w.root, target)
	}
	target = filepath.Clean(target)

	rel, err := filepath.Rel(w.root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("backup directory %q escapes backup root %s", dir, w.root)
	}

	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", fmt.Errorf("create backup directory: %w", err)
	}
	return target, nil
}

// WriteConfig writes content to <dir>/<device>_<YYYYMMDD_HHMMSS>.cfg and
// returns the written path.
func (w *Writer) WriteConfig(dir, device, content string) (string, error) {
	target, err := w.EnsureDir(dir)
	if err != nil {
		return "", err
	}

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(target, fmt.Sprintf("%s_%s.cfg", device, timestamp))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write backup for %s: %w", device, err)
	}
	return path, nil
}
