// Package inventory provides the YAML-backed device inventory and the
// filter resolver that turns a filter spec into a concrete device set.
package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"netmcp/internal/config"
	"netmcp/internal/domain"
)

// hostEntry is one host in hosts.yaml. Unset fields inherit from the
// host's groups (in listed order), then from defaults.yaml.
type hostEntry struct {
	Hostname string         `yaml:"hostname"`
	Platform string         `yaml:"platform"`
	Port     int            `yaml:"port"`
	Username string         `yaml:"username"`
	Password string         `yaml:"password"`
	Groups   []string       `yaml:"groups"`
	Data     map[string]any `yaml:"data"`
}

// groupEntry is one group in groups.yaml.
type groupEntry struct {
	Platform string         `yaml:"platform"`
	Port     int            `yaml:"port"`
	Username string         `yaml:"username"`
	Password string         `yaml:"password"`
	Data     map[string]any `yaml:"data"`
}

// defaultsEntry is the single document in defaults.yaml.
type defaultsEntry struct {
	Platform string         `yaml:"platform"`
	Port     int            `yaml:"port"`
	Username string         `yaml:"username"`
	Password string         `yaml:"password"`
	Data     map[string]any `yaml:"data"`
}

// YAMLProvider reads hosts/groups/defaults files on every Snapshot call,
// so each top-level operation sees the inventory fresh and carries no
// state from a previous run.
type YAMLProvider struct {
	hostsFile    string
	groupsFile   string
	defaultsFile string
	logger       *slog.Logger
}

func NewYAMLProvider(hostsFile, groupsFile, defaultsFile string, logger *slog.Logger) *YAMLProvider {
	return &YAMLProvider{
		hostsFile:    hostsFile,
		groupsFile:   groupsFile,
		defaultsFile: defaultsFile,
		logger:       logger,
	}
}

func (p *YAMLProvider) Snapshot(ctx context.Context) (*domain.Snapshot, error) {
	hosts := map[string]hostEntry{}
	if err := readYAML(p.hostsFile, &hosts); err != nil {
		return nil, fmt.Errorf("load hosts: %w", err)
	}

	groups := map[string]groupEntry{}
	if p.groupsFile != "" {
		if err := readYAMLOptional(p.groupsFile, &groups); err != nil {
			return nil, fmt.Errorf("load groups: %w", err)
		}
	}

	var defaults defaultsEntry
	if p.defaultsFile != "" {
		if err := readYAMLOptional(p.defaultsFile, &defaults); err != nil {
			return nil, fmt.Errorf("load defaults: %w", err)
		}
	}

	snap := &domain.Snapshot{}
	names := make([]string, 0, len(hosts))
	for name := range hosts {
		names = append(names, name)
	}
	sort.Strings(names)

	membership := map[string][]string{}
	for _, name := range names {
		h := hosts[name]
		dev := resolveHost(name, h, groups, defaults)
		snap.Devices = append(snap.Devices, dev)
		for _, g := range dev.Groups {
			membership[g] = append(membership[g], name)
		}
	}

	groupNames := make([]string, 0, len(groups))
	for g := range groups {
		groupNames = append(groupNames, g)
	}
	sort.Strings(groupNames)
	for _, g := range groupNames {
		snap.Groups = append(snap.Groups, domain.Group{
			Name:    g,
			Members: membership[g],
			Data:    groups[g].Data,
		})
	}

	p.logger.Debug("inventory snapshot", "devices", len(snap.Devices), "groups", len(snap.Groups))
	return snap, nil
}

// resolveHost applies the inheritance chain: host, then its groups in
// listed order, then defaults. Data keys merge with the same precedence.
func resolveHost(name string, h hostEntry, groups map[string]groupEntry, defaults defaultsEntry) domain.Device {
	dev := domain.Device{
		Name:     name,
		Hostname: h.Hostname,
		Platform: h.Platform,
		Port:     h.Port,
		Username: h.Username,
		Password: h.Password,
		Groups:   h.Groups,
		Data:     map[string]any{},
	}
	if dev.Hostname == "" {
		dev.Hostname = name
	}

	for _, gname := range h.Groups {
		g, ok := groups[gname]
		if !ok {
			continue
		}
		if dev.Platform == "" {
			dev.Platform = g.Platform
		}
		if dev.Port == 0 {
			dev.Port = g.Port
		}
		if dev.Username == "" {
			dev.Username = g.Username
		}
		if dev.Password == "" {
			dev.Password = g.Password
		}
		mergeData(dev.Data, g.Data)
	}

	if dev.Platform == "" {
		dev.Platform = defaults.Platform
	}
	if dev.Port == 0 {
		dev.Port = defaults.Port
	}
	if dev.Username == "" {
		dev.Username = defaults.Username
	}
	if dev.Password == "" {
		dev.Password = defaults.Password
	}
	mergeData(dev.Data, defaults.Data)

	// Host's own data wins over anything inherited.
	for k, v := range h.Data {
		dev.Data[k] = v
	}

	if dev.Port == 0 {
		dev.Port = 22
	}
	return dev
}

// mergeData copies keys from src that dst does not already have.
func mergeData(dst, src map[string]any) {
	for k, v := range src {
		if _, exists := dst[k]; !exists {
			dst[k] = v
		}
	}
}

func readYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	// Inventory files support the same ${VAR} / ${VAR:-default}
	// substitution as the config file, so credentials can stay out of
	// the files themselves.
	expanded := config.ExpandEnvVars(string(data))
	if err := yaml.Unmarshal([]byte(expanded), out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// readYAMLOptional treats a missing file as empty.
func readYAMLOptional(path string, out any) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return readYAML(path, out)
}
