package domain

import "context"

// Task is one unit of work executed against a single device. Run returns an
// opaque success value or an error; a multi-step task returns *StepError on
// partial failure so the caller can see which step broke.
//
// Implementations must be safe for concurrent Run calls on distinct devices.
type Task interface {
	Name() string
	Run(ctx context.Context, dev Device) (any, error)
}

// TaskFunc adapts a plain function into a Task.
type TaskFunc struct {
	TaskName string
	Fn       func(ctx context.Context, dev Device) (any, error)
}

func (t TaskFunc) Name() string { return t.TaskName }

func (t TaskFunc) Run(ctx context.Context, dev Device) (any, error) {
	return t.Fn(ctx, dev)
}
