package runner

import (
	"errors"
	"fmt"
	"testing"

	"netmcp/internal/domain"
)

func TestNormalize_MissingOutcomeIsEmptyResult(t *testing.T) {
	devices := []domain.Device{{Name: "r1", Platform: "ios"}}

	result := Normalize(devices, []Outcome{{Recorded: false}})
	env := result["r1"]
	if env.Success || env.Error.Kind != domain.KindEmptyResult {
		t.Fatalf("envelope = %+v, want empty_result", env)
	}
}

func TestNormalize_SuccessPassesValueThroughUnmodified(t *testing.T) {
	devices := []domain.Device{{Name: "r1"}}
	payload := map[string]any{"facts": map[string]any{"uptime": 12345.6, "os_version": "15.2"}}

	result := Normalize(devices, []Outcome{{Recorded: true, Value: payload}})
	env := result["r1"]
	if !env.Success {
		t.Fatalf("envelope = %+v", env)
	}
	got, ok := env.Result.(map[string]any)
	if !ok {
		t.Fatalf("result type changed: %T", env.Result)
	}
	// The normalizer is a shape discriminator, not a transformer.
	if got["facts"].(map[string]any)["uptime"] != 12345.6 {
		t.Errorf("value was reshaped: %v", got)
	}
}

func TestNormalize_ErrorBecomesTaskFailed(t *testing.T) {
	devices := []domain.Device{{Name: "r1", Platform: "junos"}}
	err := fmt.Errorf("dial r1: %w", errors.New("connection refused"))

	result := Normalize(devices, []Outcome{{Recorded: true, Err: err}})
	env := result["r1"]
	if env.Error.Kind != domain.KindTaskFailed {
		t.Fatalf("kind = %q", env.Error.Kind)
	}
	if env.Error.Message != "dial r1: connection refused" {
		t.Errorf("message = %q", env.Error.Message)
	}
	if env.Error.Context["platform"] != "junos" {
		t.Errorf("context = %v", env.Error.Context)
	}
	if env.Error.Context["error_type"] == "" {
		t.Error("error_type missing from context")
	}
}

func TestNormalize_StepErrorKeepsStructuredDetail(t *testing.T) {
	devices := []domain.Device{{Name: "r1", Platform: "ios"}}
	stepErr := &domain.StepError{
		Step:   "no shutdown",
		Index:  2,
		Output: "% Invalid input detected",
		Completed: []domain.StepResult{
			{Step: "interface Gi0/1", Output: ""},
			{Step: "description uplink", Output: ""},
		},
		Err: errors.New("command rejected"),
	}

	result := Normalize(devices, []Outcome{{Recorded: true, Err: stepErr}})
	env := result["r1"]
	if env.Error.Kind != domain.KindConfigCommandFailed {
		t.Fatalf("kind = %q, want config_command_failed", env.Error.Kind)
	}
	if env.Error.Context["failed_step"] != "no shutdown" {
		t.Errorf("failed_step = %v", env.Error.Context["failed_step"])
	}
	if env.Error.Context["step_index"] != 2 {
		t.Errorf("step_index = %v", env.Error.Context["step_index"])
	}
	if env.Error.Context["output"] != "% Invalid input detected" {
		t.Errorf("output = %v", env.Error.Context["output"])
	}
	completed, ok := env.Error.Context["completed_steps"].([]domain.StepResult)
	if !ok || len(completed) != 2 {
		t.Errorf("completed_steps = %v", env.Error.Context["completed_steps"])
	}
}

func TestNormalize_WrappedStepErrorIsStillRecognized(t *testing.T) {
	devices := []domain.Device{{Name: "r1"}}
	wrapped := fmt.Errorf("config push: %w", &domain.StepError{Step: "bad", Index: 0, Err: errors.New("rejected")})

	result := Normalize(devices, []Outcome{{Recorded: true, Err: wrapped}})
	if kind := result["r1"].Error.Kind; kind != domain.KindConfigCommandFailed {
		t.Fatalf("kind = %q, want config_command_failed for wrapped StepError", kind)
	}
}
