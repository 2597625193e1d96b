package dirsync

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ResolveDevices looks up the registered devices of the given users,
// BatchLimit users per directory round trip. Batches run concurrently;
// a failed batch is logged and dropped so the rest still resolve. The
// result keeps batch order and is deduplicated by device ID. Returns
// the devices and the number of failed batches.
func (e *Engine) ResolveDevices(ctx context.Context, userIDs []string) ([]Device, int) {
	log := e.logger(ctx)

	batches := chunkStrings(userIDs, BatchLimit)
	results := make([][]Device, len(batches))
	errs := make([]error, len(batches))

	eg := errgroup.Group{}
	eg.SetLimit(e.concurrency)
	for i, batch := range batches {
		eg.Go(func() error {
			results[i], errs[i] = e.directory.RegisteredDevices(ctx, batch)
			return nil
		})
	}
	_ = eg.Wait()

	var devices []Device
	seen := make(map[string]struct{})
	failed := 0
	for i, result := range results {
		if errs[i] != nil {
			failed++
			log.Warn().
				Err(errs[i]).
				Int("batch", i+1).
				Int("users", len(batches[i])).
				Msg("device lookup batch failed")
			continue
		}
		for _, device := range result {
			if _, dup := seen[device.ID]; dup {
				continue
			}
			seen[device.ID] = struct{}{}
			devices = append(devices, device)
		}
	}
	return devices, failed
}

func chunkStrings(items []string, size int) [][]string {
	if len(items) == 0 {
		return nil
	}
	chunks := make([][]string, 0, (len(items)+size-1)/size)
	for size < len(items) {
		chunks = append(chunks, items[:size])
		items = items[size:]
	}
	return append(chunks, items)
}
