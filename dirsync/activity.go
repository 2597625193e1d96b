package dirsync

import (
	"time"

	"github.com/google/uuid"
)

// SyncActivity records the outcome of one mapping record sync, as
// persisted by the configuration store.
type SyncActivity struct {
	ID            string    `json:"id"`
	Partition     string    `json:"partition"`
	UserGroupID   string    `json:"userGroupID"`
	DeviceGroupID string    `json:"deviceGroupID"`
	Started       time.Time `json:"started"`
	DurationMS    int64     `json:"durationMS"`
	Outcome       string    `json:"outcome"`
	Desired       int       `json:"desired"`
	Current       int       `json:"current"`
	Added         int       `json:"added"`
	Removed       int       `json:"removed"`
	Failures      int       `json:"failures"`
	Detail        string    `json:"detail"`
}

// ActivityFromReport flattens a record report into a storable activity
// entry.
func ActivityFromReport(report RecordReport) SyncActivity {
	detail := report.Reason
	if report.Err != nil {
		detail = report.Err.Error()
	}
	return SyncActivity{
		ID:            uuid.NewString(),
		Partition:     report.Record.Partition,
		UserGroupID:   report.Record.UserGroupID,
		DeviceGroupID: report.Record.DeviceGroupID,
		Started:       report.Started,
		DurationMS:    report.Duration.Milliseconds(),
		Outcome:       string(report.Outcome),
		Desired:       report.Desired,
		Current:       report.Current,
		Added:         report.Added,
		Removed:       report.Removed,
		Failures:      report.Failures,
		Detail:        detail,
	}
}
