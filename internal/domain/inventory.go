package domain

import (
	"context"
	"strings"
)

// InventoryProvider yields a fresh inventory snapshot per call. Callers must
// not cache snapshots across top-level operations: re-querying is what keeps
// one operation's device failures from leaking into the next.
type InventoryProvider interface {
	Snapshot(ctx context.Context) (*Snapshot, error)
}

// Snapshot is an immutable view of the inventory taken at the start of a
// single operation.
type Snapshot struct {
	Devices []Device
	Groups  []Group
}

// Device looks up a device by exact name.
func (s *Snapshot) Device(name string) (Device, bool) {
	for _, d := range s.Devices {
		if d.Name == name {
			return d, true
		}
	}
	return Device{}, false
}

// Names returns all device names in the snapshot.
func (s *Snapshot) Names() []string {
	names := make([]string, 0, len(s.Devices))
	for _, d := range s.Devices {
		names = append(names, d.Name)
	}
	return names
}

// lookupPath resolves a dotted path inside a nested string-keyed map.
func lookupPath(data map[string]any, path string) (any, bool) {
	if data == nil || path == "" {
		return nil, false
	}
	segments := strings.Split(path, ".")
	var cur any = data
	for _, seg := range segments {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}
