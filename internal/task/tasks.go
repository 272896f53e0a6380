package task

import (
	"bytes"
	"context"
	"fmt"

	"netmcp/internal/domain"
	"netmcp/internal/driver"
)

// Factory builds tasks bound to a transport. One factory serves all
// tools; tasks it produces are safe for concurrent Run calls because each
// Run dials its own session.
type Factory struct {
	connector driver.Connector
}

func NewFactory(connector driver.Connector) *Factory {
	return &Factory{connector: connector}
}

// Getters retrieves the named getters and returns raw CLI output keyed by
// getter name.
func (f *Factory) Getters(getters []string) domain.Task {
	return domain.TaskFunc{TaskName: "get_getters", Fn: func(ctx context.Context, dev domain.Device) (any, error) {
		sess, err := f.connector.Dial(ctx, dev)
		if err != nil {
			return nil, err
		}
		defer sess.Close()

		out := make(map[string]string, len(getters))
		for _, getter := range getters {
			cmd, err := GetterCommand(dev.Platform, getter)
			if err != nil {
				return nil, err
			}
			raw, err := sess.Run(ctx, cmd)
			if err != nil {
				return nil, fmt.Errorf("getter %s: %w", getter, err)
			}
			out[getter] = raw
		}
		return out, nil
	}}
}

// GetConfig retrieves one configuration source ("running", "startup" or
// "candidate") as raw text.
func (f *Factory) GetConfig(source string) domain.Task {
	return domain.TaskFunc{TaskName: "get_config", Fn: func(ctx context.Context, dev domain.Device) (any, error) {
		cmd, err := ConfigCommand(dev.Platform, source)
		if err != nil {
			return nil, err
		}
		sess, err := f.connector.Dial(ctx, dev)
		if err != nil {
			return nil, err
		}
		defer sess.Close()

		raw, err := sess.Run(ctx, cmd)
		if err != nil {
			return nil, err
		}
		return map[string]string{source: raw}, nil
	}}
}

// ShowCommands runs read-only commands sequentially over one session and
// returns output keyed by command. A failure partway produces a
// *domain.StepError so callers see which command broke and what ran
// before it.
func (f *Factory) ShowCommands(commands []string) domain.Task {
	return domain.TaskFunc{TaskName: "run_show_commands", Fn: func(ctx context.Context, dev domain.Device) (any, error) {
		sess, err := f.connector.Dial(ctx, dev)
		if err != nil {
			return nil, err
		}
		defer sess.Close()

		out := make(map[string]string, len(commands))
		var completed []domain.StepResult
		for i, cmd := range commands {
			raw, err := sess.Run(ctx, cmd)
			if err != nil {
				return nil, &domain.StepError{
					Step:      cmd,
					Index:     i,
					Output:    raw,
					Completed: completed,
					Err:       err,
				}
			}
			out[cmd] = raw
			completed = append(completed, domain.StepResult{Step: cmd, Output: raw})
		}
		return out, nil
	}}
}

// ConfigCommands pushes configuration commands bracketed by the
// platform's config-mode enter/exit commands. Steps run strictly in
// order; the first failure stops the push and is reported as a
// *domain.StepError with the preceding steps' output.
func (f *Factory) ConfigCommands(commands []string) domain.Task {
	return domain.TaskFunc{TaskName: "send_config_commands", Fn: func(ctx context.Context, dev domain.Device) (any, error) {
		mode, ok := configModes[canonicalPlatform(dev.Platform)]
		if !ok {
			return nil, fmt.Errorf("no config mode for platform %q", dev.Platform)
		}

		sess, err := f.connector.Dial(ctx, dev)
		if err != nil {
			return nil, err
		}
		defer sess.Close()

		steps := make([]string, 0, len(commands)+2)
		steps = append(steps, mode.enter)
		steps = append(steps, commands...)
		steps = append(steps, mode.exit)

		var completed []domain.StepResult
		for i, cmd := range steps {
			raw, err := sess.Run(ctx, cmd)
			if err != nil {
				return nil, &domain.StepError{
					Step:      cmd,
					Index:     i,
					Output:    raw,
					Completed: completed,
					Err:       err,
				}
			}
			completed = append(completed, domain.StepResult{Step: cmd, Output: raw})
		}
		return map[string]any{"steps": completed}, nil
	}}
}

// Ping runs the platform's ping toward target and returns raw output.
func (f *Factory) Ping(target string) domain.Task {
	return f.singleCommand("ping", func(dev domain.Device) string {
		return pingCommand(dev.Platform, target)
	})
}

// Traceroute runs the platform's traceroute toward target.
func (f *Factory) Traceroute(target string) domain.Task {
	return f.singleCommand("traceroute", func(dev domain.Device) string {
		return tracerouteCommand(dev.Platform, target)
	})
}

func (f *Factory) singleCommand(name string, build func(dev domain.Device) string) domain.Task {
	return domain.TaskFunc{TaskName: name, Fn: func(ctx context.Context, dev domain.Device) (any, error) {
		sess, err := f.connector.Dial(ctx, dev)
		if err != nil {
			return nil, err
		}
		defer sess.Close()
		return sess.Run(ctx, build(dev))
	}}
}

// PushFile uploads content to remotePath on the device.
func (f *Factory) PushFile(content []byte, remotePath string) domain.Task {
	return domain.TaskFunc{TaskName: "push_file", Fn: func(ctx context.Context, dev domain.Device) (any, error) {
		sess, err := f.connector.Dial(ctx, dev)
		if err != nil {
			return nil, err
		}
		defer sess.Close()

		if err := sess.Upload(ctx, bytes.NewReader(content), int64(len(content)), remotePath); err != nil {
			return nil, err
		}
		return fmt.Sprintf("uploaded %d bytes to %s", len(content), remotePath), nil
	}}
}
