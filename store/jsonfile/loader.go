package jsonfile

import (
	"encoding/json"
	"os"
	"sort"
	"time"

	"github.com/kubex/rubix-dirsync/dirsync"
)

const (
	mappingData  = "mappings"
	activityData = "activity"
)

func (p Provider) readMappings(partition string) ([]dirsync.MappingRecord, error) {
	bytes, err := os.ReadFile(p.filePath(mappingData, partition))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var records []dirsync.MappingRecord
	if err := json.Unmarshal(bytes, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (p Provider) writeMappings(partition string, records []dirsync.MappingRecord) error {
	return p.writeJson(p.filePath(mappingData, partition), records)
}

func (p Provider) GetMappingRecords(partition string) ([]dirsync.MappingRecord, error) {
	records, err := p.readMappings(partition)
	if err != nil {
		return nil, err
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].UserGroupID == records[j].UserGroupID {
			return records[i].DeviceGroupID < records[j].DeviceGroupID
		}
		return records[i].UserGroupID < records[j].UserGroupID
	})
	return records, nil
}

func (p Provider) GetMappingRecord(partition, userGroupID, deviceGroupID string) (*dirsync.MappingRecord, error) {
	records, err := p.readMappings(partition)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].UserGroupID == userGroupID && records[i].DeviceGroupID == deviceGroupID {
			return &records[i], nil
		}
	}
	return nil, dirsync.ErrNoResultFound
}

func (p Provider) CreateMappingRecord(record dirsync.MappingRecord) error {
	records, err := p.readMappings(record.Partition)
	if err != nil {
		return err
	}
	for _, existing := range records {
		if existing.UserGroupID == record.UserGroupID && existing.DeviceGroupID == record.DeviceGroupID {
			return dirsync.ErrDuplicate
		}
	}

	if record.State == "" {
		record.State = dirsync.StateActive
	}
	if record.LastUpdate.IsZero() {
		record.LastUpdate = time.Now().UTC()
	}
	return p.writeMappings(record.Partition, append(records, record))
}

func (p Provider) MutateMappingRecord(partition, userGroupID, deviceGroupID string, options ...dirsync.MutateRecordOption) error {
	payload := dirsync.MutateRecordPayload{}
	for _, opt := range options {
		opt(&payload)
	}

	records, err := p.readMappings(partition)
	if err != nil {
		return err
	}
	for i := range records {
		if records[i].UserGroupID == userGroupID && records[i].DeviceGroupID == deviceGroupID {
			payload.Apply(&records[i])
			records[i].LastUpdate = time.Now().UTC()
			return p.writeMappings(partition, records)
		}
	}
	return dirsync.ErrNoResultFound
}

func (p Provider) DeleteMappingRecord(partition, userGroupID, deviceGroupID string) error {
	records, err := p.readMappings(partition)
	if err != nil {
		return err
	}
	for i := range records {
		if records[i].UserGroupID == userGroupID && records[i].DeviceGroupID == deviceGroupID {
			return p.writeMappings(partition, append(records[:i], records[i+1:]...))
		}
	}
	return dirsync.ErrNoResultFound
}

func (p Provider) readActivity(partition string) ([]dirsync.SyncActivity, error) {
	bytes, err := os.ReadFile(p.filePath(activityData, partition))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var activities []dirsync.SyncActivity
	if err := json.Unmarshal(bytes, &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

func (p Provider) AppendSyncActivity(activity dirsync.SyncActivity) error {
	activities, err := p.readActivity(activity.Partition)
	if err != nil {
		return err
	}
	for _, existing := range activities {
		if existing.ID == activity.ID {
			return dirsync.ErrDuplicate
		}
	}
	return p.writeJson(p.filePath(activityData, activity.Partition), append(activities, activity))
}

func (p Provider) GetSyncActivity(partition string, limit int) ([]dirsync.SyncActivity, error) {
	if limit <= 0 {
		limit = 50
	}

	activities, err := p.readActivity(partition)
	if err != nil {
		return nil, err
	}
	sort.Slice(activities, func(i, j int) bool {
		return activities[i].Started.After(activities[j].Started)
	})
	if len(activities) > limit {
		activities = activities[:limit]
	}
	return activities, nil
}
