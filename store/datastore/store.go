package datastore

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/datastore"
	"github.com/kubex/rubix-dirsync/dirsync"
)

func (p *Provider) CreateMappingRecord(record dirsync.MappingRecord) error {
	if record.State == "" {
		record.State = dirsync.StateActive
	}
	if record.LastUpdate.IsZero() {
		record.LastUpdate = time.Now().UTC()
	}

	m := mappingFromRecord(record)
	existing := mappingStore{}
	err := p.client.Get(context.Background(), m.dsID(), &existing)
	if err == nil {
		return dirsync.ErrDuplicate
	}
	if !errors.Is(err, datastore.ErrNoSuchEntity) {
		return err
	}

	_, err = p.client.Put(context.Background(), m.dsID(), &m)
	return err
}

func (p *Provider) MutateMappingRecord(partition, userGroupID, deviceGroupID string, options ...dirsync.MutateRecordOption) error {
	payload := dirsync.MutateRecordPayload{}
	for _, opt := range options {
		opt(&payload)
	}

	m := mappingStore{Partition: partition, UserGroupID: userGroupID, DeviceGroupID: deviceGroupID}
	if err := p.client.Get(context.Background(), m.dsID(), &m); err != nil {
		if errors.Is(err, datastore.ErrNoSuchEntity) {
			return dirsync.ErrNoResultFound
		}
		return err
	}

	record := m.record()
	payload.Apply(&record)
	record.LastUpdate = time.Now().UTC()

	updated := mappingFromRecord(record)
	_, err := p.client.Put(context.Background(), updated.dsID(), &updated)
	return err
}

func (p *Provider) DeleteMappingRecord(partition, userGroupID, deviceGroupID string) error {
	m := mappingStore{Partition: partition, UserGroupID: userGroupID, DeviceGroupID: deviceGroupID}
	return p.client.Delete(context.Background(), m.dsID())
}

func (p *Provider) AppendSyncActivity(activity dirsync.SyncActivity) error {
	a := activityStore{
		ID:            activity.ID,
		Partition:     activity.Partition,
		UserGroupID:   activity.UserGroupID,
		DeviceGroupID: activity.DeviceGroupID,
		Started:       activity.Started,
		DurationMS:    activity.DurationMS,
		Outcome:       activity.Outcome,
		Desired:       activity.Desired,
		Current:       activity.Current,
		Added:         activity.Added,
		Removed:       activity.Removed,
		Failures:      activity.Failures,
		Detail:        activity.Detail,
	}
	_, err := p.client.Put(context.Background(), a.dsID(), &a)
	return err
}
