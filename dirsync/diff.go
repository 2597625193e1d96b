package dirsync

// Delta is the set of changes required to converge a device group
// onto its desired membership.
type Delta struct {
	Add    []Device
	Remove []string
}

func (d Delta) Empty() bool {
	return len(d.Add) == 0 && len(d.Remove) == 0
}

// Diff computes the changes between the desired device set and the
// group's current members. Desired devices are deduplicated by ID and
// keep their input order.
func Diff(desired []Device, current MemberList) Delta {
	currentIDs := make(map[string]struct{}, len(current.Members))
	for _, member := range current.Members {
		currentIDs[member.ID] = struct{}{}
	}

	delta := Delta{}
	desiredIDs := make(map[string]struct{}, len(desired))
	for _, device := range desired {
		if _, dup := desiredIDs[device.ID]; dup {
			continue
		}
		desiredIDs[device.ID] = struct{}{}
		if _, ok := currentIDs[device.ID]; !ok {
			delta.Add = append(delta.Add, device)
		}
	}

	// A group the directory explicitly reported as empty has nothing
	// to remove, whatever the listing decoded to.
	if current.Empty {
		return delta
	}

	seen := make(map[string]struct{}, len(current.Members))
	for _, member := range current.Members {
		if _, dup := seen[member.ID]; dup {
			continue
		}
		seen[member.ID] = struct{}{}
		if _, ok := desiredIDs[member.ID]; !ok {
			delta.Remove = append(delta.Remove, member.ID)
		}
	}

	return delta
}
