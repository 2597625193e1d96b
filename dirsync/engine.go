package dirsync

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// BatchLimit is the directory's hard per-request object cap. It bounds
// both the users in a single device lookup batch and the objects bound
// by a single membership update.
const BatchLimit = 20

// Directory is the slice of the directory API the engine drives.
// Implementations resolve paging and wire shapes; the engine only sees
// typed results.
type Directory interface {
	// GroupMembers lists the group's direct members across all pages.
	GroupMembers(ctx context.Context, groupID string) (MemberList, error)
	// RegisteredDevices resolves the registered devices of up to
	// BatchLimit users in a single round trip.
	RegisteredDevices(ctx context.Context, userIDs []string) ([]Device, error)
	// AddGroupMembers binds up to BatchLimit directory objects to the group.
	AddGroupMembers(ctx context.Context, groupID string, objectIDs []string) error
	// RemoveGroupMember unbinds a single member from the group.
	RemoveGroupMember(ctx context.Context, groupID, objectID string) error
}

// Engine reconciles device group membership from mapping records.
type Engine struct {
	directory   Directory
	log         zerolog.Logger
	dryRun      bool
	concurrency int
}

type EngineOption func(*Engine)

func WithLogger(log zerolog.Logger) EngineOption {
	return func(e *Engine) { e.log = log }
}

// WithDryRun makes the engine log membership changes without issuing
// them.
func WithDryRun(dryRun bool) EngineOption {
	return func(e *Engine) { e.dryRun = dryRun }
}

// WithLookupConcurrency caps how many device lookup batches are in
// flight at once.
func WithLookupConcurrency(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

func NewEngine(directory Directory, opts ...EngineOption) *Engine {
	e := &Engine{
		directory:   directory,
		log:         zerolog.Nop(),
		concurrency: 4,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) logger(ctx context.Context) zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return *l
	}
	return e.log
}

// Run reconciles each record in turn. Records fail independently; one
// bad record never stops the pass. A cancelled context ends the pass
// early, leaving the remaining records for the next one.
func (e *Engine) Run(ctx context.Context, records []MappingRecord) PassReport {
	pass := PassReport{Started: time.Now()}
	for _, record := range records {
		if ctx.Err() != nil {
			break
		}
		pass.Records = append(pass.Records, e.SyncRecord(ctx, record))
	}
	pass.Duration = time.Since(pass.Started)
	return pass
}

// SyncRecord converges one device group onto the registered devices of
// its user group's members. The record is skipped when inactive or when
// the user group has no members, and fails only when one of the two
// membership reads fails. Apply failures are partial: they surface in
// the report but the record still completes.
func (e *Engine) SyncRecord(ctx context.Context, record MappingRecord) (report RecordReport) {
	report = RecordReport{Record: record, Started: time.Now()}
	defer func() { report.Duration = time.Since(report.Started) }()

	log := e.log.With().
		Str("partition", record.Partition).
		Str("userGroup", record.UserGroupID).
		Str("deviceGroup", record.DeviceGroupID).
		Logger()
	ctx = log.WithContext(ctx)

	if !record.Active() {
		log.Debug().Str("state", string(record.State)).Msg("skipping mapping record")
		report.Outcome = OutcomeSkipped
		report.Reason = "record inactive"
		return report
	}

	members, err := e.directory.GroupMembers(ctx, record.UserGroupID)
	if err != nil {
		log.Error().Err(err).Msg("unable to list user group members")
		report.Outcome = OutcomeFailed
		report.Reason = "user group unreadable"
		report.Err = fmt.Errorf("list user group members: %w", err)
		return report
	}
	report.Users = len(members.Members)
	if report.Users == 0 {
		log.Info().Msg("user group has no members")
		report.Outcome = OutcomeSkipped
		report.Reason = "user group empty"
		return report
	}

	candidates, failedLookups := e.ResolveDevices(ctx, members.IDs())
	report.Candidates = len(candidates)
	report.Failures += failedLookups

	desired := FilterDevices(record, candidates, log)
	report.Desired = len(desired)

	current, err := e.directory.GroupMembers(ctx, record.DeviceGroupID)
	if err != nil {
		log.Error().Err(err).Msg("unable to list device group members")
		report.Outcome = OutcomeFailed
		report.Reason = "device group unreadable"
		report.Err = fmt.Errorf("list device group members: %w", err)
		return report
	}
	report.Current = len(current.Members)

	delta := Diff(desired, current)
	if delta.Empty() {
		log.Info().Int("members", report.Current).Msg("device group already converged")
		report.Outcome = OutcomeSynced
		return report
	}

	applied := e.Apply(ctx, record.DeviceGroupID, delta)
	report.Added = applied.Added
	report.Removed = applied.Removed
	report.Failures += applied.FailedAdds + applied.FailedRemoves

	report.Outcome = OutcomeSynced
	if report.Failures > 0 {
		report.Reason = "partial apply"
	}
	log.Info().
		Int("desired", report.Desired).
		Int("current", report.Current).
		Int("added", report.Added).
		Int("removed", report.Removed).
		Int("failures", report.Failures).
		Msg("device group synced")
	return report
}
