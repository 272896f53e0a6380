package domain

import (
	"fmt"
	"strings"
)

// FilterSyntaxError reports a malformed filter spec (e.g. a bad glob
// pattern). Surfaced before any device is touched.
type FilterSyntaxError struct {
	Spec string
	Err  error
}

func (e *FilterSyntaxError) Error() string {
	return fmt.Sprintf("invalid filter %q: %v", e.Spec, e.Err)
}

func (e *FilterSyntaxError) Unwrap() error { return e.Err }

// NoMatchError reports that filters excluded every device. Only strict
// call sites produce it; the default mode treats zero matches as an empty
// success.
type NoMatchError struct {
	Spec string
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no devices matched filter %q", e.Spec)
}

// CapabilityViolation records one device that does not support a requested
// getter, for aggregation into an UnsupportedCapabilityError.
type CapabilityViolation struct {
	Device      string   `json:"device"`
	Platform    string   `json:"platform"`
	Unsupported []string `json:"unsupported"`
	Supported   []string `json:"supported"`
}

// UnsupportedCapabilityError aggregates capability violations across all
// offending devices. The batch fails fast before dispatch rather than
// partially executing.
type UnsupportedCapabilityError struct {
	Violations []CapabilityViolation
}

func (e *UnsupportedCapabilityError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s (%s): %s", v.Device, v.Platform, strings.Join(v.Unsupported, ", ")))
	}
	return "unsupported getters: " + strings.Join(parts, "; ")
}

// SecurityViolationError reports a command rejected by the denylist gate.
// Rule names which list matched; Match is the offending fragment.
type SecurityViolationError struct {
	Command string
	Rule    string
	Match   string
}

func (e *SecurityViolationError) Error() string {
	return fmt.Sprintf("command %q rejected by denylist rule %s (matched %q)", e.Command, e.Rule, e.Match)
}

// StepResult is the output of one completed step of a multi-step task.
type StepResult struct {
	Step   string `json:"step"`
	Output string `json:"output"`
}

// StepError is the structured partial-failure payload of a multi-step task:
// step Index failed after Completed steps succeeded. The normalizer
// preserves this detail verbatim instead of collapsing it to a message.
type StepError struct {
	Step      string
	Index     int
	Output    string
	Completed []StepResult
	Err       error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%q) failed: %v", e.Index, e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }
