package capability

import (
	"errors"
	"testing"

	"netmcp/internal/domain"
)

func TestValidate_SupportedGettersPass(t *testing.T) {
	devices := []domain.Device{
		{Name: "r1", Platform: "ios"},
		{Name: "r2", Platform: "eos"},
	}
	if err := Validate(devices, []string{"facts", "interfaces"}); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidate_AggregatesViolations(t *testing.T) {
	devices := []domain.Device{
		{Name: "r1", Platform: "ios"},
		{Name: "r2", Platform: "iosxr_netconf"},
		{Name: "r3", Platform: "eos"},
	}

	// vlans is unsupported on ios and iosxr_netconf but fine on eos.
	err := Validate(devices, []string{"facts", "vlans"})
	var capErr *domain.UnsupportedCapabilityError
	if !errors.As(err, &capErr) {
		t.Fatalf("got %v, want UnsupportedCapabilityError", err)
	}
	if len(capErr.Violations) != 2 {
		t.Fatalf("got %d violations, want 2", len(capErr.Violations))
	}
	for _, v := range capErr.Violations {
		if len(v.Unsupported) != 1 || v.Unsupported[0] != "vlans" {
			t.Errorf("%s: unsupported = %v, want [vlans]", v.Device, v.Unsupported)
		}
		if len(v.Supported) == 0 {
			t.Errorf("%s: supported list missing from violation", v.Device)
		}
	}
}

func TestValidate_UnknownPlatformSkipsValidation(t *testing.T) {
	devices := []domain.Device{
		{Name: "x1", Platform: "sros"},
		{Name: "x2", Platform: ""},
	}
	if err := Validate(devices, []string{"definitely_not_a_getter"}); err != nil {
		t.Fatalf("unknown platform must skip validation, got %v", err)
	}
}

func TestValidate_NoGettersIsNoop(t *testing.T) {
	if err := Validate([]domain.Device{{Name: "r1", Platform: "ios"}}, nil); err != nil {
		t.Fatalf("Validate with no getters: %v", err)
	}
}

func TestSupportedGetters(t *testing.T) {
	getters, ok := SupportedGetters("junos")
	if !ok || len(getters) == 0 {
		t.Fatal("junos must be a known platform")
	}
	if _, ok := SupportedGetters("unknown-os"); ok {
		t.Fatal("unknown-os must not be a known platform")
	}
}
