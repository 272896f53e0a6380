package driver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"path"
	"strconv"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"golang.org/x/crypto/ssh"

	"netmcp/internal/domain"
)

// SSHConfig tunes the SSH connector. Retry values cover the initial dial
// only; command execution is never retried (a config command must not run
// twice).
type SSHConfig struct {
	ConnectTimeout time.Duration
	RetryAttempts  uint
	RetryDelay     time.Duration
	RetryMaxDelay  time.Duration
	Logger         *slog.Logger
}

// SSHConnector dials devices over SSH with password authentication from
// the inventory.
type SSHConnector struct {
	cfg SSHConfig
}

func NewSSHConnector(cfg SSHConfig) *SSHConnector {
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
	if cfg.RetryAttempts == 0 {
		cfg.RetryAttempts = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 500 * time.Millisecond
	}
	if cfg.RetryMaxDelay == 0 {
		cfg.RetryMaxDelay = 5 * time.Second
	}
	return &SSHConnector{cfg: cfg}
}

func (c *SSHConnector) Dial(ctx context.Context, dev domain.Device) (Session, error) {
	addr := net.JoinHostPort(dev.Hostname, strconv.Itoa(dev.Port))

	clientCfg := &ssh.ClientConfig{
		User: dev.Username,
		Auth: []ssh.AuthMethod{
			ssh.Password(dev.Password),
			ssh.KeyboardInteractive(func(name, instruction string, questions []string, echos []bool) ([]string, error) {
				// Network gear frequently offers keyboard-interactive
				// instead of plain password auth.
				answers := make([]string, len(questions))
				for i := range questions {
					answers[i] = dev.Password
				}
				return answers, nil
			}),
		},
		// Device fleets rotate host keys on RMA; pinning them is the
		// operator's job via a bastion, not this adapter's.
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), //nolint:gosec
		Timeout:         c.cfg.ConnectTimeout,
	}

	client, err := retry.DoWithData(func() (*ssh.Client, error) {
		if err := ctx.Err(); err != nil {
			return nil, retry.Unrecoverable(err)
		}
		d := net.Dialer{Timeout: c.cfg.ConnectTimeout}
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, err
		}
		sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, clientCfg)
		if err != nil {
			conn.Close()
			return nil, err
		}
		return ssh.NewClient(sshConn, chans, reqs), nil
	}, retry.Attempts(c.cfg.RetryAttempts), retry.Delay(c.cfg.RetryDelay), retry.MaxDelay(c.cfg.RetryMaxDelay))
	if err != nil {
		return nil, fmt.Errorf("dial %s (%s): %w", dev.Name, addr, err)
	}

	c.cfg.Logger.Debug("ssh connected", "device", dev.Name, "addr", addr)
	return &sshSession{client: client, device: dev.Name, logger: c.cfg.Logger}, nil
}

// sshSession wraps one SSH client. Each Run opens a fresh exec channel;
// the TCP connection is shared.
type sshSession struct {
	client *ssh.Client
	device string
	logger *slog.Logger
}

func (s *sshSession) Run(ctx context.Context, command string) (string, error) {
	sess, err := s.client.NewSession()
	if err != nil {
		return "", fmt.Errorf("open session on %s: %w", s.device, err)
	}
	defer sess.Close()

	type result struct {
		out []byte
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, err := sess.CombinedOutput(command)
		done <- result{out, err}
	}()

	select {
	case <-ctx.Done():
		// Best effort: tear the channel down so the remote side stops.
		sess.Close()
		return "", ctx.Err()
	case r := <-done:
		if r.err != nil {
			return string(r.out), fmt.Errorf("run %q on %s: %w", command, s.device, r.err)
		}
		return string(r.out), nil
	}
}

// Upload copies a file with the SCP sink protocol ("scp -t"). Plenty of
// network gear supports SCP but not SFTP, so this stays on the plain
// protocol.
func (s *sshSession) Upload(ctx context.Context, r io.Reader, size int64, remotePath string) error {
	sess, err := s.client.NewSession()
	if err != nil {
		return fmt.Errorf("open session on %s: %w", s.device, err)
	}
	defer sess.Close()

	stdin, err := sess.StdinPipe()
	if err != nil {
		return err
	}

	dir, file := path.Split(remotePath)
	if dir == "" {
		dir = "."
	}

	errCh := make(chan error, 1)
	go func() {
		defer stdin.Close()
		if _, err := fmt.Fprintf(stdin, "C0644 %d %s\n", size, file); err != nil {
			errCh <- err
			return
		}
		if _, err := io.Copy(stdin, r); err != nil {
			errCh <- err
			return
		}
		_, err := fmt.Fprint(stdin, "\x00")
		errCh <- err
	}()

	runDone := make(chan error, 1)
	go func() {
		runDone <- sess.Run("scp -t " + dir)
	}()

	select {
	case <-ctx.Done():
		sess.Close()
		return ctx.Err()
	case err := <-runDone:
		if err != nil {
			return fmt.Errorf("scp to %s:%s: %w", s.device, remotePath, err)
		}
	}
	if err := <-errCh; err != nil {
		return fmt.Errorf("scp write to %s:%s: %w", s.device, remotePath, err)
	}
	return nil
}

func (s *sshSession) Close() error {
	return s.client.Close()
}
