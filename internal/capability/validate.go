package capability

import "netmcp/internal/domain"

// Validate checks that every requested getter is supported on every
// targeted device. Devices with an empty or unknown platform skip
// validation (permissive default: an unlisted platform may still have a
// working driver). Any violation fails the whole batch before dispatch.
func Validate(devices []domain.Device, getters []string) error {
	if len(getters) == 0 {
		return nil
	}

	var violations []domain.CapabilityViolation
	for _, dev := range devices {
		if dev.Platform == "" {
			continue
		}
		supported, known := SupportedGetters(dev.Platform)
		if !known {
			continue
		}

		supportedSet := make(map[string]bool, len(supported))
		for _, g := range supported {
			supportedSet[g] = true
		}

		var unsupported []string
		for _, g := range getters {
			if !supportedSet[g] {
				unsupported = append(unsupported, g)
			}
		}
		if len(unsupported) > 0 {
			violations = append(violations, domain.CapabilityViolation{
				Device:      dev.Name,
				Platform:    dev.Platform,
				Unsupported: unsupported,
				Supported:   supported,
			})
		}
	}

	if len(violations) > 0 {
		return &domain.UnsupportedCapabilityError{Violations: violations}
	}
	return nil
}
