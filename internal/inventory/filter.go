package inventory

import (
	"fmt"
	"path"
	"strings"

	"netmcp/internal/domain"
)

// Filter selects a subset of the inventory. The zero value matches every
// device: an absent filter is a deliberate default-open policy, not an
// error. Fields combine with AND; the Name list is OR within itself, and
// each name matches the device identifier or its connection address.
type Filter struct {
	// Name is a comma-separated list of device names or connection
	// addresses.
	Name string
	// Group matches devices whose membership set contains the group.
	Group string
	// Platform is an exact match on the platform tag.
	Platform string
	// Pattern is a glob matched against name and connection address, the
	// free-form alternative to the structured fields.
	Pattern string
	// Attrs are dotted-path equality predicates into the device data bag,
	// e.g. {"site.region": "emea"}. An unknown path matches nothing.
	Attrs map[string]string
}

// IsZero reports whether no selection criteria are set.
func (f Filter) IsZero() bool {
	return f.Name == "" && f.Group == "" && f.Platform == "" && f.Pattern == "" && len(f.Attrs) == 0
}

// String renders the filter for error messages and logs.
func (f Filter) String() string {
	if f.IsZero() {
		return "all"
	}
	var parts []string
	if f.Name != "" {
		parts = append(parts, "name="+f.Name)
	}
	if f.Group != "" {
		parts = append(parts, "group="+f.Group)
	}
	if f.Platform != "" {
		parts = append(parts, "platform="+f.Platform)
	}
	if f.Pattern != "" {
		parts = append(parts, "pattern="+f.Pattern)
	}
	for k, v := range f.Attrs {
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, ",")
}

// Resolve returns the devices of snap matched by f. An empty filter
// returns the whole inventory; zero matches is a legal empty result. The
// only error is a malformed spec (*domain.FilterSyntaxError).
func Resolve(snap *domain.Snapshot, f Filter) ([]domain.Device, error) {
	if f.IsZero() {
		return snap.Devices, nil
	}

	// Validate the glob up front so a bad pattern fails the call instead
	// of silently matching nothing.
	if f.Pattern != "" {
		if _, err := path.Match(f.Pattern, "probe"); err != nil {
			return nil, &domain.FilterSyntaxError{Spec: f.Pattern, Err: err}
		}
	}

	var names []string
	if f.Name != "" {
		for _, n := range strings.Split(f.Name, ",") {
			if n = strings.TrimSpace(n); n != "" {
				names = append(names, n)
			}
		}
	}

	var matched []domain.Device
	for _, dev := range snap.Devices {
		if len(names) > 0 && !matchesName(dev, names) {
			continue
		}
		if f.Group != "" && !dev.InGroup(f.Group) {
			continue
		}
		if f.Platform != "" && dev.Platform != f.Platform {
			continue
		}
		if f.Pattern != "" {
			okName, _ := path.Match(f.Pattern, dev.Name)
			okAddr, _ := path.Match(f.Pattern, dev.Hostname)
			if !okName && !okAddr {
				continue
			}
		}
		if !matchesAttrs(dev, f.Attrs) {
			continue
		}
		matched = append(matched, dev)
	}
	return matched, nil
}

// ResolveStrict is Resolve for call sites that demand at least one match;
// it returns *domain.NoMatchError when the filters exclude every device.
func ResolveStrict(snap *domain.Snapshot, f Filter) ([]domain.Device, error) {
	devices, err := Resolve(snap, f)
	if err != nil {
		return nil, err
	}
	if len(devices) == 0 {
		return nil, &domain.NoMatchError{Spec: f.String()}
	}
	return devices, nil
}

// matchesName accepts either the device identifier or its connection
// address; callers routinely pass whichever they have at hand.
func matchesName(dev domain.Device, names []string) bool {
	for _, n := range names {
		if dev.Name == n || dev.Hostname == n {
			return true
		}
	}
	return false
}

func matchesAttrs(dev domain.Device, attrs map[string]string) bool {
	for p, want := range attrs {
		v, ok := dev.Attr(p)
		if !ok {
			return false
		}
		if fmt.Sprint(v) != want {
			return false
		}
	}
	return true
}
