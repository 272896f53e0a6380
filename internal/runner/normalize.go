package runner

import (
	"errors"
	"fmt"

	"netmcp/internal/domain"
)

// Outcome is the raw per-device result before normalization. Recorded is
// false when the task never wrote a result for the device.
type Outcome struct {
	Recorded bool
	Value    any
	Err      error
}

// Normalize converts raw outcomes into the uniform envelope map. It is a
// pure discriminator over shape: success values pass through unmodified,
// and the structured detail of a multi-step failure is preserved verbatim.
// Every device in devices gets exactly one envelope.
func Normalize(devices []domain.Device, outcomes []Outcome) domain.BatchResult {
	result := make(domain.BatchResult, len(devices))
	for i, dev := range devices {
		var out Outcome
		if i < len(outcomes) {
			out = outcomes[i]
		}
		result[dev.Name] = normalizeOne(dev, out)
	}
	return result
}

func normalizeOne(dev domain.Device, out Outcome) domain.Envelope {
	if !out.Recorded {
		return domain.Fail(domain.KindEmptyResult, "no result recorded for device", map[string]any{
			"platform": dev.Platform,
		})
	}

	if out.Err != nil {
		var stepErr *domain.StepError
		if errors.As(out.Err, &stepErr) {
			return domain.Fail(domain.KindConfigCommandFailed, stepErr.Error(), map[string]any{
				"failed_step":     stepErr.Step,
				"step_index":      stepErr.Index,
				"output":          stepErr.Output,
				"completed_steps": stepErr.Completed,
				"platform":        dev.Platform,
			})
		}
		return domain.Fail(domain.KindTaskFailed, out.Err.Error(), map[string]any{
			"error_type": fmt.Sprintf("%T", out.Err),
			"platform":   dev.Platform,
		})
	}

	return domain.OK(out.Value)
}
