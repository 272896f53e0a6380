package domain

// BatchKey is the reserved result-map key for failures that concern the
// whole batch rather than a single device (timeouts, filter errors,
// inventory errors). It starts with an underscore so it can never collide
// with a device name from a YAML inventory.
const BatchKey = "_batch"

// Error kinds carried inside an ErrorInfo. These are the only failure
// shapes the pipeline produces; every producer emits envelopes, nothing
// else.
const (
	KindFilterSyntax          = "filter_syntax"
	KindNoMatch               = "no_match"
	KindInventoryError        = "inventory_error"
	KindUnsupportedCapability = "unsupported_capability"
	KindSecurityViolation     = "security_violation"
	KindTimeout               = "timeout"
	KindTaskFailed            = "task_failed"
	KindEmptyResult           = "empty_result"
	KindConfigCommandFailed   = "config_command_failed"
)

// Envelope is the uniform per-device result wrapper. Exactly one of Result
// or Error is meaningful, discriminated by Success.
type Envelope struct {
	Success bool       `json:"success"`
	Result  any        `json:"result,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo describes a failure without interpreting it. Context carries
// kind-specific detail (platform, exception type, failed step output).
type ErrorInfo struct {
	Kind    string         `json:"kind"`
	Message string         `json:"message"`
	Context map[string]any `json:"context,omitempty"`
}

// OK wraps a success value. The value passes through unmodified.
func OK(result any) Envelope {
	return Envelope{Success: true, Result: result}
}

// Fail builds a failure envelope.
func Fail(kind, message string, context map[string]any) Envelope {
	return Envelope{Success: false, Error: &ErrorInfo{Kind: kind, Message: message, Context: context}}
}

// BatchResult is the outcome of one dispatched operation, keyed by device
// name (plus BatchKey for aggregate failures).
type BatchResult map[string]Envelope

// Counts returns how many envelopes succeeded and failed.
func (b BatchResult) Counts() (ok, failed int) {
	for _, env := range b {
		if env.Success {
			ok++
		} else {
			failed++
		}
	}
	return ok, failed
}
