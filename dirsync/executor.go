package dirsync

import (
	"context"
)

// ApplyResult counts what a delta application actually changed.
// FailedAdds counts failed bind chunks, not individual devices.
type ApplyResult struct {
	Added         int
	Removed       int
	FailedAdds    int
	FailedRemoves int
}

// Apply pushes a delta at the device group. Additions are bound in
// chunks of BatchLimit, removals issued one member at a time. A failed
// chunk or removal is logged and skipped so the rest of the delta still
// lands; whatever is left converges on a later pass. In dry-run mode
// changes are logged and counted but never issued.
func (e *Engine) Apply(ctx context.Context, groupID string, delta Delta) ApplyResult {
	log := e.logger(ctx)
	result := ApplyResult{}

	addIDs := make([]string, 0, len(delta.Add))
	for _, device := range delta.Add {
		addIDs = append(addIDs, device.ID)
	}

	for i, chunk := range chunkStrings(addIDs, BatchLimit) {
		if e.dryRun {
			log.Info().Int("chunk", i+1).Strs("devices", chunk).Msg("dry-run: would bind devices")
			result.Added += len(chunk)
			continue
		}
		if err := e.directory.AddGroupMembers(ctx, groupID, chunk); err != nil {
			result.FailedAdds++
			log.Warn().
				Err(err).
				Int("chunk", i+1).
				Int("devices", len(chunk)).
				Msg("device bind chunk failed")
			continue
		}
		result.Added += len(chunk)
	}

	for _, objectID := range delta.Remove {
		if e.dryRun {
			log.Info().Str("device", objectID).Msg("dry-run: would remove device")
			result.Removed++
			continue
		}
		if err := e.directory.RemoveGroupMember(ctx, groupID, objectID); err != nil {
			result.FailedRemoves++
			log.Warn().Err(err).Str("device", objectID).Msg("device removal failed")
			continue
		}
		result.Removed++
	}

	return result
}
