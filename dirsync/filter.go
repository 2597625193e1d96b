package dirsync

import (
	"strings"

	"github.com/rs/zerolog"
)

const (
	requiredPlatform       = "Windows"
	requiredManagementType = "MDM"
)

// eligibleDevice is the baseline cut applied to every candidate:
// corporate-managed Windows devices under MDM management.
func eligibleDevice(d Device) bool {
	return strings.EqualFold(d.OperatingSystem, requiredPlatform) &&
		d.IsManaged &&
		strings.EqualFold(d.ManagementType, requiredManagementType)
}

// matchesProfile reports whether the device's enrollment profile name
// contains any of the fragments, ignoring case.
func matchesProfile(d Device, fragments []string) bool {
	profile := strings.ToLower(d.EnrollmentProfileName)
	for _, frag := range fragments {
		if strings.Contains(profile, strings.ToLower(frag)) {
			return true
		}
	}
	return false
}

// FilterDevices narrows the candidate set to the devices the record
// wants in the device group. Stages run in a fixed order: platform
// baseline, then compliance when the record requires it, then the
// enrollment profile filter when one is set.
func FilterDevices(record MappingRecord, candidates []Device, log zerolog.Logger) []Device {
	devices := filterStage(candidates, "platform", eligibleDevice, log)

	if record.RequireCompliant {
		devices = filterStage(devices, "compliance", func(d Device) bool { return d.IsCompliant }, log)
	}

	if fragments := record.ProfileFragments(); len(fragments) > 0 {
		devices = filterStage(devices, "profile", func(d Device) bool { return matchesProfile(d, fragments) }, log)
	}

	return devices
}

func filterStage(in []Device, stage string, keep func(Device) bool, log zerolog.Logger) []Device {
	var out []Device
	for _, d := range in {
		if keep(d) {
			out = append(out, d)
		}
	}
	if removed := len(in) - len(out); removed > 0 {
		log.Debug().
			Str("stage", stage).
			Int("removed", removed).
			Int("remaining", len(out)).
			Msg("devices filtered")
	}
	return out
}
