package sql

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kubex/rubix-dirsync/dirsync"
)

func newTestProvider(t *testing.T) *Provider {
	t.Helper()
	tdir := t.TempDir()
	dbPath := filepath.Join(tdir, "dirsync_it.db")
	p := &Provider{Driver: DriverSQLite, PrimaryDSN: "file:" + dbPath}
	if err := p.Initialize(); err != nil {
		t.Fatalf("init provider: %v", err)
	}
	// Ensure file created
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("sqlite file not created: %v", err)
	}
	return p
}

func TestIntegration_SQLite_MappingRecords(t *testing.T) {
	p := newTestProvider(t)
	defer func() { _ = p.Close() }()

	// Initialize must be re-runnable without reapplying migrations.
	if err := p.Initialize(); err != nil {
		t.Fatalf("second initialize: %v", err)
	}

	updates := 0
	_ = p.AfterUpdate(func() { updates++ })

	first := dirsync.MappingRecord{
		Partition:       "default",
		UserGroupID:     "ug-1",
		UserGroupName:   "Field Staff",
		DeviceGroupID:   "dg-1",
		DeviceGroupName: "Field Devices",
	}
	if err := p.CreateMappingRecord(first); err != nil {
		t.Fatalf("create first record: %v", err)
	}
	second := dirsync.MappingRecord{
		Partition:               "default",
		UserGroupID:             "ug-2",
		DeviceGroupID:           "dg-2",
		State:                   dirsync.StateActive,
		RequireCompliant:        true,
		EnrollmentProfileFilter: "Kiosk;Lab",
	}
	if err := p.CreateMappingRecord(second); err != nil {
		t.Fatalf("create second record: %v", err)
	}
	if err := p.CreateMappingRecord(first); !errors.Is(err, dirsync.ErrDuplicate) {
		t.Fatalf("duplicate create: expected ErrDuplicate, got %v", err)
	}
	if updates != 2 {
		t.Fatalf("expected 2 update callbacks, got %d", updates)
	}

	records, err := p.GetMappingRecords("default")
	if err != nil {
		t.Fatalf("get records: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].UserGroupID != "ug-1" || records[1].UserGroupID != "ug-2" {
		t.Fatalf("unexpected record order: %q, %q", records[0].UserGroupID, records[1].UserGroupID)
	}
	if records[0].State != dirsync.StateActive {
		t.Fatalf("create should default state to Active, got %q", records[0].State)
	}
	if records[0].LastUpdate.IsZero() {
		t.Fatalf("lastUpdate not populated")
	}
	if !records[1].RequireCompliant || records[1].EnrollmentProfileFilter != "Kiosk;Lab" {
		t.Fatalf("filter fields lost: %+v", records[1])
	}

	if others, err := p.GetMappingRecords("other-tenant"); err != nil || len(others) != 0 {
		t.Fatalf("partition isolation broken: %v %v", others, err)
	}

	got, err := p.GetMappingRecord("default", "ug-1", "dg-1")
	if err != nil {
		t.Fatalf("get single record: %v", err)
	}
	if got.UserGroupName != "Field Staff" {
		t.Fatalf("unexpected record: %+v", got)
	}
	if _, err := p.GetMappingRecord("default", "ug-9", "dg-9"); !errors.Is(err, dirsync.ErrNoResultFound) {
		t.Fatalf("missing record: expected ErrNoResultFound, got %v", err)
	}

	if err := p.MutateMappingRecord("default", "ug-1", "dg-1",
		dirsync.WithState(dirsync.StateInactive),
		dirsync.WithUserGroupName("Field Staff EMEA"),
		dirsync.WithRequireCompliant(true)); err != nil {
		t.Fatalf("mutate record: %v", err)
	}
	got, err = p.GetMappingRecord("default", "ug-1", "dg-1")
	if err != nil {
		t.Fatalf("get mutated record: %v", err)
	}
	if got.State != dirsync.StateInactive || got.UserGroupName != "Field Staff EMEA" || !got.RequireCompliant {
		t.Fatalf("mutation not applied: %+v", got)
	}
	if err := p.MutateMappingRecord("default", "ug-9", "dg-9", dirsync.WithState(dirsync.StateActive)); !errors.Is(err, dirsync.ErrNoResultFound) {
		t.Fatalf("mutate missing record: expected ErrNoResultFound, got %v", err)
	}
	// A mutation without options is a no-op, not an error.
	if err := p.MutateMappingRecord("default", "ug-9", "dg-9"); err != nil {
		t.Fatalf("empty mutation: %v", err)
	}

	if err := p.DeleteMappingRecord("default", "ug-2", "dg-2"); err != nil {
		t.Fatalf("delete record: %v", err)
	}
	if records, err = p.GetMappingRecords("default"); err != nil || len(records) != 1 {
		t.Fatalf("expected 1 record after delete, got %d (%v)", len(records), err)
	}
	if _, err := p.GetMappingRecord("default", "ug-2", "dg-2"); !errors.Is(err, dirsync.ErrNoResultFound) {
		t.Fatalf("deleted record still readable: %v", err)
	}
}

func TestIntegration_SQLite_SyncActivity(t *testing.T) {
	p := newTestProvider(t)
	defer func() { _ = p.Close() }()

	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	for i, outcome := range []string{"synced", "skipped", "failed"} {
		activity := dirsync.SyncActivity{
			ID:            "act-" + outcome,
			Partition:     "default",
			UserGroupID:   "ug-1",
			DeviceGroupID: "dg-1",
			Started:       base.Add(time.Duration(i) * time.Minute),
			DurationMS:    int64(100 * (i + 1)),
			Outcome:       outcome,
			Desired:       5,
			Current:       3,
			Added:         2,
			Removed:       1,
			Failures:      i,
			Detail:        "detail " + outcome,
		}
		if err := p.AppendSyncActivity(activity); err != nil {
			t.Fatalf("append activity %q: %v", outcome, err)
		}
	}

	if err := p.AppendSyncActivity(dirsync.SyncActivity{ID: "act-synced", Partition: "default"}); !errors.Is(err, dirsync.ErrDuplicate) {
		t.Fatalf("duplicate activity: expected ErrDuplicate, got %v", err)
	}

	activities, err := p.GetSyncActivity("default", 2)
	if err != nil {
		t.Fatalf("get activity: %v", err)
	}
	if len(activities) != 2 {
		t.Fatalf("expected 2 activities, got %d", len(activities))
	}
	// Newest first
	if activities[0].ID != "act-failed" || activities[1].ID != "act-skipped" {
		t.Fatalf("unexpected activity order: %q, %q", activities[0].ID, activities[1].ID)
	}
	if activities[0].Started.Unix() != base.Add(2*time.Minute).Unix() {
		t.Fatalf("started timestamp mangled: %v", activities[0].Started)
	}
	if activities[0].Outcome != "failed" || activities[0].Failures != 2 || activities[0].Detail != "detail failed" {
		t.Fatalf("activity fields lost: %+v", activities[0])
	}

	all, err := p.GetSyncActivity("default", 0)
	if err != nil || len(all) != 3 {
		t.Fatalf("default limit fetch: got %d (%v)", len(all), err)
	}
	if none, err := p.GetSyncActivity("other-tenant", 10); err != nil || len(none) != 0 {
		t.Fatalf("partition isolation broken for activity: %v %v", none, err)
	}
}
