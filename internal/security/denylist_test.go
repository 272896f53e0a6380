package security

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"netmcp/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// recordingAudit captures security records for assertions.
type recordingAudit struct {
	mu      sync.Mutex
	records []domain.SecurityRecord
}

func (a *recordingAudit) LogRun(ctx context.Context, rec domain.RunRecord) error { return nil }

func (a *recordingAudit) LogSecurity(ctx context.Context, rec domain.SecurityRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, rec)
	return nil
}

func mustGate(t *testing.T, rules Rules) (*Gate, *recordingAudit) {
	t.Helper()
	audit := &recordingAudit{}
	g, err := NewGate(rules, audit, testLogger())
	if err != nil {
		t.Fatalf("NewGate: %v", err)
	}
	return g, audit
}

func TestCheck_KeywordRejects(t *testing.T) {
	g, audit := mustGate(t, Rules{Keywords: []string{"erase"}})
	ctx := context.Background()

	err := g.Check(ctx, "erase startup-config")
	var viol *domain.SecurityViolationError
	if !errors.As(err, &viol) {
		t.Fatalf("got %v, want SecurityViolationError", err)
	}
	if viol.Rule != "keywords" || viol.Match != "erase" {
		t.Errorf("violation = %+v, want keywords/erase", viol)
	}
	if len(audit.records) != 1 {
		t.Errorf("got %d audit records, want 1", len(audit.records))
	}

	if err := g.Check(ctx, "show version"); err != nil {
		t.Errorf("show version must pass, got %v", err)
	}
}

func TestCheck_KeywordWordBoundary(t *testing.T) {
	g, _ := mustGate(t, Rules{Keywords: []string{"erase"}})

	// "erase" inside a longer token must not fire.
	if err := g.Check(context.Background(), "show erased_flag status"); err != nil {
		t.Fatalf("word-boundary match fired inside a token: %v", err)
	}
}

func TestCheck_PatternBeforeExact(t *testing.T) {
	g, _ := mustGate(t, Rules{
		DisallowedPatterns: []string{";"},
		ExactCommands:      []string{"show version; reload"},
	})

	err := g.Check(context.Background(), "show version; reload")
	var viol *domain.SecurityViolationError
	if !errors.As(err, &viol) {
		t.Fatalf("got %v, want SecurityViolationError", err)
	}
	if viol.Rule != "disallowed_patterns" || viol.Match != ";" {
		t.Errorf("patterns must be checked first, got %+v", viol)
	}
}

func TestCheck_ExactMatch(t *testing.T) {
	g, _ := mustGate(t, Rules{ExactCommands: []string{"reload"}})
	ctx := context.Background()

	if err := g.Check(ctx, "  Reload  "); err == nil {
		t.Fatal("exact match must be case-insensitive and trimmed")
	}
	// Not an exact match: passes in the absence of keyword rules.
	if err := g.Check(ctx, "reload in 5"); err != nil {
		t.Fatalf("non-exact command must pass, got %v", err)
	}
}

func TestCheckAll_FailsFast(t *testing.T) {
	g, audit := mustGate(t, Rules{Keywords: []string{"erase", "format"}})

	err := g.CheckAll(context.Background(), []string{
		"show version",
		"erase flash:",
		"format bootflash:",
	})
	var viol *domain.SecurityViolationError
	if !errors.As(err, &viol) {
		t.Fatalf("got %v, want SecurityViolationError", err)
	}
	if viol.Match != "erase" {
		t.Errorf("first violation must win, got %q", viol.Match)
	}
	if len(audit.records) != 1 {
		t.Errorf("fail-fast must stop after the first rejection, got %d records", len(audit.records))
	}
}

func TestLoadGate_MissingFileUsesDefaults(t *testing.T) {
	g, _ := func() (*Gate, error) {
		return LoadGate(filepath.Join(t.TempDir(), "absent.yaml"), &recordingAudit{}, testLogger())
	}()
	if g == nil {
		t.Fatal("missing file must degrade to defaults, not fail")
	}
	if err := g.Check(context.Background(), "write erase"); err == nil {
		t.Fatal("default rules must reject 'write erase'")
	}
}

func TestLoadGate_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "denylist.yaml")
	content := "keywords:\n  - ERASE\ndisallowed_patterns:\n  - \";\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write denylist: %v", err)
	}

	g, err := LoadGate(path, &recordingAudit{}, testLogger())
	if err != nil {
		t.Fatalf("LoadGate: %v", err)
	}
	// Rules are normalized to lowercase on load.
	if err := g.Check(context.Background(), "erase nvram:"); err == nil {
		t.Fatal("uppercase rule must still match lowercase command")
	}
}
