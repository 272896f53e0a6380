package domain

// Device is a single managed network endpoint from the inventory.
// Identity is the Name; Hostname is the connection address. Devices are
// value objects: the pipeline only reads them, never mutates them.
type Device struct {
	Name     string         `json:"name" yaml:"name"`
	Hostname string         `json:"hostname" yaml:"hostname"`
	Platform string         `json:"platform" yaml:"platform"`
	Port     int            `json:"port" yaml:"port"`
	Username string         `json:"username,omitempty" yaml:"username,omitempty"`
	Password string         `json:"-" yaml:"password,omitempty"`
	Groups   []string       `json:"groups" yaml:"groups"`
	Data     map[string]any `json:"data,omitempty" yaml:"data,omitempty"`
}

// InGroup reports whether the device is a member of the named group.
func (d Device) InGroup(group string) bool {
	for _, g := range d.Groups {
		if g == group {
			return true
		}
	}
	return false
}

// Attr walks a dotted path into the device data bag ("site.rack" looks up
// data["site"]["rack"]). The second return is false when any segment is
// missing or a non-map value is traversed.
func (d Device) Attr(path string) (any, bool) {
	return lookupPath(d.Data, path)
}

// Sanitized returns a copy safe to hand to callers: credentials stripped.
func (d Device) Sanitized() Device {
	d.Username = ""
	d.Password = ""
	return d
}

// Group is a named collection of devices. Membership is implicit: devices
// reference groups, not the other way around.
type Group struct {
	Name    string         `json:"name"`
	Members []string       `json:"members"`
	Data    map[string]any `json:"data,omitempty"`
}
