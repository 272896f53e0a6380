package inventory

import (
	"errors"
	"testing"

	"netmcp/internal/domain"
)

func testSnapshot() *domain.Snapshot {
	return &domain.Snapshot{
		Devices: []domain.Device{
			{
				Name: "r1", Hostname: "10.0.0.1", Platform: "ios",
				Groups: []string{"edge"},
				Data:   map[string]any{"role": "access", "site": map[string]any{"region": "emea"}},
			},
			{
				Name: "r2", Hostname: "10.0.0.2", Platform: "eos",
				Groups: []string{"core"},
				Data:   map[string]any{"role": "core"},
			},
			{
				Name: "sw-lab-1", Hostname: "10.0.1.1", Platform: "eos",
				Groups: []string{"lab", "core"},
			},
		},
	}
}

func deviceNames(devs []domain.Device) []string {
	names := make([]string, 0, len(devs))
	for _, d := range devs {
		names = append(names, d.Name)
	}
	return names
}

func TestResolve_EmptyFilterReturnsAll(t *testing.T) {
	snap := testSnapshot()

	devs, err := Resolve(snap, Filter{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(devs) != len(snap.Devices) {
		t.Fatalf("empty filter matched %d devices, want %d", len(devs), len(snap.Devices))
	}
}

func TestResolve_ByGroup(t *testing.T) {
	devs, err := Resolve(testSnapshot(), Filter{Group: "edge"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := deviceNames(devs); len(got) != 1 || got[0] != "r1" {
		t.Fatalf("group=edge matched %v, want [r1]", got)
	}
}

func TestResolve_NameMatchesIdentifierOrAddress(t *testing.T) {
	tests := []struct {
		name string
		want []string
	}{
		{"r1", []string{"r1"}},
		{"10.0.0.2", []string{"r2"}},
		{"r1,10.0.0.2", []string{"r1", "r2"}},
		{"r1, r2", []string{"r1", "r2"}},
		{"nope", nil},
	}
	for _, tt := range tests {
		devs, err := Resolve(testSnapshot(), Filter{Name: tt.name})
		if err != nil {
			t.Fatalf("Resolve(%q): %v", tt.name, err)
		}
		got := deviceNames(devs)
		if len(got) != len(tt.want) {
			t.Errorf("name=%q matched %v, want %v", tt.name, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("name=%q matched %v, want %v", tt.name, got, tt.want)
			}
		}
	}
}

func TestResolve_FiltersAreConjunctive(t *testing.T) {
	// platform=eos alone matches r2 and sw-lab-1; adding group=lab must
	// narrow it down to sw-lab-1.
	devs, err := Resolve(testSnapshot(), Filter{Platform: "eos", Group: "lab"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := deviceNames(devs); len(got) != 1 || got[0] != "sw-lab-1" {
		t.Fatalf("matched %v, want [sw-lab-1]", got)
	}
}

func TestResolve_AttributePath(t *testing.T) {
	devs, err := Resolve(testSnapshot(), Filter{Attrs: map[string]string{"site.region": "emea"}})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := deviceNames(devs); len(got) != 1 || got[0] != "r1" {
		t.Fatalf("matched %v, want [r1]", got)
	}

	// Unknown path is no match, not an error.
	devs, err = Resolve(testSnapshot(), Filter{Attrs: map[string]string{"absent.path": "x"}})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(devs) != 0 {
		t.Fatalf("unknown attribute path matched %v, want none", deviceNames(devs))
	}
}

func TestResolve_Pattern(t *testing.T) {
	devs, err := Resolve(testSnapshot(), Filter{Pattern: "sw-*"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := deviceNames(devs); len(got) != 1 || got[0] != "sw-lab-1" {
		t.Fatalf("matched %v, want [sw-lab-1]", got)
	}

	// Address is also pattern-matched.
	devs, err = Resolve(testSnapshot(), Filter{Pattern: "10.0.0.*"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(devs) != 2 {
		t.Fatalf("address glob matched %v, want r1 and r2", deviceNames(devs))
	}
}

func TestResolve_BadPatternIsSyntaxError(t *testing.T) {
	_, err := Resolve(testSnapshot(), Filter{Pattern: "[unclosed"})
	var syntaxErr *domain.FilterSyntaxError
	if !errors.As(err, &syntaxErr) {
		t.Fatalf("got %v, want FilterSyntaxError", err)
	}
}

func TestResolveStrict_ZeroMatches(t *testing.T) {
	_, err := ResolveStrict(testSnapshot(), Filter{Name: "ghost"})
	var noMatch *domain.NoMatchError
	if !errors.As(err, &noMatch) {
		t.Fatalf("got %v, want NoMatchError", err)
	}

	// Permissive mode: same filter, empty result, no error.
	devs, err := Resolve(testSnapshot(), Filter{Name: "ghost"})
	if err != nil || len(devs) != 0 {
		t.Fatalf("permissive resolve = (%v, %v), want empty success", deviceNames(devs), err)
	}
}
