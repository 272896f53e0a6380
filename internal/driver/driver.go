// Package driver abstracts device transport. The pipeline only sees the
// Connector and Session interfaces; the SSH implementation talks to real
// devices, the static implementation replays scripted fixtures.
package driver

import (
	"context"
	"io"

	"netmcp/internal/domain"
)

// Connector opens a session to one device.
type Connector interface {
	Dial(ctx context.Context, dev domain.Device) (Session, error)
}

// Session is an open connection to a device. Run calls within one session
// execute sequentially over the same connection.
type Session interface {
	// Run executes one command and returns its raw output.
	Run(ctx context.Context, command string) (string, error)
	// Upload copies size bytes from r to the remote path.
	Upload(ctx context.Context, r io.Reader, size int64, remotePath string) error
	Close() error
}
