package dirsync

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addDelta(n int) Delta {
	delta := Delta{}
	for i := 0; i < n; i++ {
		delta.Add = append(delta.Add, Device{ID: fmt.Sprintf("d%02d", i+1)})
	}
	return delta
}

func TestApplyChunksAdditions(t *testing.T) {
	dir := newFakeDirectory()
	engine := NewEngine(dir)

	result := engine.Apply(context.Background(), "dg-1", addDelta(45))

	assert.Equal(t, 45, result.Added)
	assert.Zero(t, result.FailedAdds)
	require.Len(t, dir.addCalls, 3)
	assert.Len(t, dir.addCalls[0], 20)
	assert.Len(t, dir.addCalls[1], 20)
	assert.Len(t, dir.addCalls[2], 5)
	assert.Equal(t, "d01", dir.addCalls[0][0])
	assert.Equal(t, "d45", dir.addCalls[2][4])
}

func TestApplyChunkFailureIsolated(t *testing.T) {
	dir := newFakeDirectory()
	dir.failAddCall[1] = true
	engine := NewEngine(dir)

	result := engine.Apply(context.Background(), "dg-1", addDelta(45))

	// The failed middle chunk is skipped, the final chunk still lands.
	assert.Equal(t, 25, result.Added)
	assert.Equal(t, 1, result.FailedAdds)
	assert.Len(t, dir.addCalls, 3)
}

func TestApplyRemovesIndividually(t *testing.T) {
	dir := newFakeDirectory()
	engine := NewEngine(dir)

	delta := Delta{Remove: []string{"d1", "d2", "d3"}}
	result := engine.Apply(context.Background(), "dg-1", delta)

	assert.Equal(t, 3, result.Removed)
	assert.Zero(t, result.FailedRemoves)
	assert.Equal(t, []string{"d1", "d2", "d3"}, dir.removeCalls)
}

func TestApplyRemoveFailureIsolated(t *testing.T) {
	dir := newFakeDirectory()
	dir.failRemove["d2"] = true
	engine := NewEngine(dir)

	delta := Delta{Remove: []string{"d1", "d2", "d3"}}
	result := engine.Apply(context.Background(), "dg-1", delta)

	assert.Equal(t, 2, result.Removed)
	assert.Equal(t, 1, result.FailedRemoves)
	assert.Equal(t, []string{"d1", "d2", "d3"}, dir.removeCalls)
}

func TestApplyDryRun(t *testing.T) {
	dir := newFakeDirectory()
	engine := NewEngine(dir, WithDryRun(true))

	delta := addDelta(25)
	delta.Remove = []string{"d90", "d91"}
	result := engine.Apply(context.Background(), "dg-1", delta)

	assert.Equal(t, 25, result.Added)
	assert.Equal(t, 2, result.Removed)
	assert.Empty(t, dir.addCalls)
	assert.Empty(t, dir.removeCalls)
}

func TestApplyEmptyDelta(t *testing.T) {
	dir := newFakeDirectory()
	engine := NewEngine(dir)

	result := engine.Apply(context.Background(), "dg-1", Delta{})

	assert.Zero(t, result.Added)
	assert.Zero(t, result.Removed)
	assert.Empty(t, dir.addCalls)
	assert.Empty(t, dir.removeCalls)
}
