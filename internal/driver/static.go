package driver

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"netmcp/internal/domain"
)

// StaticFixtures scripts the static connector: device name → command →
// canned output. Devices absent from the map refuse to dial.
type StaticFixtures map[string]map[string]string

// LoadStaticFixtures reads a fixtures YAML file.
func LoadStaticFixtures(path string) (StaticFixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures %s: %w", path, err)
	}
	var fx StaticFixtures
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("parse fixtures %s: %w", path, err)
	}
	return fx, nil
}

// StaticConnector replays fixture output instead of touching the network.
// It backs tests and the "static" driver mode used for offline demos.
type StaticConnector struct {
	fixtures StaticFixtures

	mu      sync.Mutex
	uploads map[string][]string // device -> uploaded remote paths
}

func NewStaticConnector(fixtures StaticFixtures) *StaticConnector {
	return &StaticConnector{fixtures: fixtures, uploads: map[string][]string{}}
}

// Uploads returns the remote paths uploaded to a device, for assertions.
func (c *StaticConnector) Uploads(device string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.uploads[device]...)
}

func (c *StaticConnector) Dial(ctx context.Context, dev domain.Device) (Session, error) {
	responses, ok := c.fixtures[dev.Name]
	if !ok {
		return nil, fmt.Errorf("dial %s: no fixture for device", dev.Name)
	}
	return &staticSession{connector: c, device: dev.Name, responses: responses}, nil
}

type staticSession struct {
	connector *StaticConnector
	device    string
	responses map[string]string
}

func (s *staticSession) Run(ctx context.Context, command string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	out, ok := s.responses[command]
	if !ok {
		return "", fmt.Errorf("run %q on %s: command not scripted", command, s.device)
	}
	return out, nil
}

func (s *staticSession) Upload(ctx context.Context, r io.Reader, size int64, remotePath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return err
	}
	s.connector.mu.Lock()
	defer s.connector.mu.Unlock()
	s.connector.uploads[s.device] = append(s.connector.uploads[s.device], remotePath)
	return nil
}

func (s *staticSession) Close() error { return nil }
