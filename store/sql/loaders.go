package sql

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/kubex/rubix-dirsync/dirsync"
)

const (
	mySQLDuplicateEntry   = 1062
	sqlLiteDuplicateEntry = 1555
)

func (p *Provider) isDuplicateConflict(err error) bool {
	var me1 *mysql.MySQLError
	if errors.As(err, &me1) && (me1.Number == mySQLDuplicateEntry || me1.Number == sqlLiteDuplicateEntry) {
		return true
	}
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return true
	}
	return false
}

func (p *Provider) CreateMappingRecord(record dirsync.MappingRecord) error {
	if record.State == "" {
		record.State = dirsync.StateActive
	}

	_, err := p.primaryConnection.Exec(
		"INSERT INTO group_mappings (`partition`, user_group_id, user_group_name, device_group_id, device_group_name, state, require_compliant, enrollment_profile_filter) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		record.Partition, record.UserGroupID, record.UserGroupName,
		record.DeviceGroupID, record.DeviceGroupName,
		string(record.State), record.RequireCompliant, record.EnrollmentProfileFilter)

	if p.isDuplicateConflict(err) {
		return dirsync.ErrDuplicate
	}
	p.update()
	return err
}

func (p *Provider) GetMappingRecords(partition string) ([]dirsync.MappingRecord, error) {
	rows, err := p.primaryConnection.Query(
		"SELECT `partition`, user_group_id, user_group_name, device_group_id, device_group_name, state, require_compliant, enrollment_profile_filter, lastUpdate "+
			"FROM group_mappings WHERE `partition` = ? ORDER BY user_group_id, device_group_id", partition)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []dirsync.MappingRecord
	for rows.Next() {
		record, scanErr := scanMappingRecord(rows.Scan)
		if scanErr != nil {
			return nil, scanErr
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (p *Provider) GetMappingRecord(partition, userGroupID, deviceGroupID string) (*dirsync.MappingRecord, error) {
	row := p.primaryConnection.QueryRow(
		"SELECT `partition`, user_group_id, user_group_name, device_group_id, device_group_name, state, require_compliant, enrollment_profile_filter, lastUpdate "+
			"FROM group_mappings WHERE `partition` = ? AND user_group_id = ? AND device_group_id = ?",
		partition, userGroupID, deviceGroupID)

	record, err := scanMappingRecord(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, dirsync.ErrNoResultFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func scanMappingRecord(scan func(...any) error) (dirsync.MappingRecord, error) {
	record := dirsync.MappingRecord{}
	var state string
	var lastUpdate any
	if err := scan(&record.Partition, &record.UserGroupID, &record.UserGroupName,
		&record.DeviceGroupID, &record.DeviceGroupName, &state,
		&record.RequireCompliant, &record.EnrollmentProfileFilter, &lastUpdate); err != nil {
		return record, err
	}
	record.State = dirsync.RecordState(state)
	record.LastUpdate = timeFromValue(lastUpdate)
	return record, nil
}

func (p *Provider) MutateMappingRecord(partition, userGroupID, deviceGroupID string, options ...dirsync.MutateRecordOption) error {
	payload := dirsync.MutateRecordPayload{}
	for _, opt := range options {
		opt(&payload)
	}

	var sets []string
	var values []any
	if payload.UserGroupName != nil {
		sets = append(sets, "user_group_name = ?")
		values = append(values, *payload.UserGroupName)
	}
	if payload.DeviceGroupName != nil {
		sets = append(sets, "device_group_name = ?")
		values = append(values, *payload.DeviceGroupName)
	}
	if payload.State != nil {
		sets = append(sets, "state = ?")
		values = append(values, string(*payload.State))
	}
	if payload.RequireCompliant != nil {
		sets = append(sets, "require_compliant = ?")
		values = append(values, *payload.RequireCompliant)
	}
	if payload.EnrollmentProfileFilter != nil {
		sets = append(sets, "enrollment_profile_filter = ?")
		values = append(values, *payload.EnrollmentProfileFilter)
	}
	if len(sets) == 0 {
		return nil
	}

	if _, err := p.GetMappingRecord(partition, userGroupID, deviceGroupID); err != nil {
		return err
	}

	sets = append(sets, "lastUpdate = CURRENT_TIMESTAMP")
	values = append(values, partition, userGroupID, deviceGroupID)
	_, err := p.primaryConnection.Exec(
		"UPDATE group_mappings SET "+strings.Join(sets, ", ")+
			" WHERE `partition` = ? AND user_group_id = ? AND device_group_id = ?", values...)
	if err != nil {
		return err
	}
	p.update()
	return nil
}

func (p *Provider) DeleteMappingRecord(partition, userGroupID, deviceGroupID string) error {
	_, err := p.primaryConnection.Exec(
		"DELETE FROM group_mappings WHERE `partition` = ? AND user_group_id = ? AND device_group_id = ?",
		partition, userGroupID, deviceGroupID)
	if err != nil {
		return err
	}
	p.update()
	return nil
}

func (p *Provider) AppendSyncActivity(activity dirsync.SyncActivity) error {
	// Bind the timestamp as canonical DATETIME text so both dialects
	// store a shape timeFromValue can read back.
	_, err := p.primaryConnection.Exec(
		"INSERT INTO sync_activity (id, `partition`, user_group_id, device_group_id, started, duration_ms, outcome, `desired`, `current`, `added`, `removed`, failures, detail) "+
			"VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		activity.ID, activity.Partition, activity.UserGroupID, activity.DeviceGroupID,
		activity.Started.UTC().Format(time.DateTime), activity.DurationMS, activity.Outcome,
		activity.Desired, activity.Current, activity.Added, activity.Removed,
		activity.Failures, activity.Detail)

	if p.isDuplicateConflict(err) {
		return dirsync.ErrDuplicate
	}
	return err
}

func (p *Provider) GetSyncActivity(partition string, limit int) ([]dirsync.SyncActivity, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := p.primaryConnection.Query(
		"SELECT id, `partition`, user_group_id, device_group_id, started, duration_ms, outcome, `desired`, `current`, `added`, `removed`, failures, detail "+
			"FROM sync_activity WHERE `partition` = ? ORDER BY started DESC LIMIT ?", partition, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []dirsync.SyncActivity
	for rows.Next() {
		activity := dirsync.SyncActivity{}
		var started any
		if scanErr := rows.Scan(&activity.ID, &activity.Partition, &activity.UserGroupID,
			&activity.DeviceGroupID, &started, &activity.DurationMS, &activity.Outcome,
			&activity.Desired, &activity.Current, &activity.Added, &activity.Removed,
			&activity.Failures, &activity.Detail); scanErr != nil {
			return nil, scanErr
		}
		activity.Started = timeFromValue(started)
		activities = append(activities, activity)
	}
	return activities, rows.Err()
}
