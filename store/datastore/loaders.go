package datastore

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/datastore"
	"github.com/kubex/rubix-dirsync/dirsync"
)

type mappingStore struct {
	Partition               string
	UserGroupID             string
	UserGroupName           string
	DeviceGroupID           string
	DeviceGroupName         string
	State                   string
	RequireCompliant        bool
	EnrollmentProfileFilter string `datastore:",noindex"`
	LastUpdate              time.Time
}

func (m mappingStore) dsID() *datastore.Key {
	return datastore.NameKey(kindMapping, m.UserGroupID+"/"+m.DeviceGroupID, partitionKey(m.Partition))
}

func (m mappingStore) record() dirsync.MappingRecord {
	return dirsync.MappingRecord{
		Partition:               m.Partition,
		UserGroupID:             m.UserGroupID,
		UserGroupName:           m.UserGroupName,
		DeviceGroupID:           m.DeviceGroupID,
		DeviceGroupName:         m.DeviceGroupName,
		State:                   dirsync.RecordState(m.State),
		RequireCompliant:        m.RequireCompliant,
		EnrollmentProfileFilter: m.EnrollmentProfileFilter,
		LastUpdate:              m.LastUpdate,
	}
}

func mappingFromRecord(record dirsync.MappingRecord) mappingStore {
	return mappingStore{
		Partition:               record.Partition,
		UserGroupID:             record.UserGroupID,
		UserGroupName:           record.UserGroupName,
		DeviceGroupID:           record.DeviceGroupID,
		DeviceGroupName:         record.DeviceGroupName,
		State:                   string(record.State),
		RequireCompliant:        record.RequireCompliant,
		EnrollmentProfileFilter: record.EnrollmentProfileFilter,
		LastUpdate:              record.LastUpdate,
	}
}

type activityStore struct {
	ID            string
	Partition     string
	UserGroupID   string
	DeviceGroupID string
	Started       time.Time
	DurationMS    int64
	Outcome       string
	Desired       int
	Current       int
	Added         int
	Removed       int
	Failures      int
	Detail        string `datastore:",noindex"`
}

func (a activityStore) dsID() *datastore.Key {
	return datastore.NameKey(kindActivity, a.ID, partitionKey(a.Partition))
}

func (p *Provider) GetMappingRecords(partition string) ([]dirsync.MappingRecord, error) {
	q := datastore.NewQuery(kindMapping).
		Ancestor(partitionKey(partition)).
		Order("UserGroupID")

	var stored []mappingStore
	if _, err := p.client.GetAll(context.Background(), q, &stored); err != nil {
		return nil, err
	}

	var records []dirsync.MappingRecord
	for _, m := range stored {
		records = append(records, m.record())
	}
	return records, nil
}

func (p *Provider) GetMappingRecord(partition, userGroupID, deviceGroupID string) (*dirsync.MappingRecord, error) {
	m := mappingStore{Partition: partition, UserGroupID: userGroupID, DeviceGroupID: deviceGroupID}
	if err := p.client.Get(context.Background(), m.dsID(), &m); err != nil {
		if errors.Is(err, datastore.ErrNoSuchEntity) {
			return nil, dirsync.ErrNoResultFound
		}
		return nil, err
	}
	record := m.record()
	return &record, nil
}

func (p *Provider) GetSyncActivity(partition string, limit int) ([]dirsync.SyncActivity, error) {
	if limit <= 0 {
		limit = 50
	}
	q := datastore.NewQuery(kindActivity).
		Ancestor(partitionKey(partition)).
		Order("-Started").
		Limit(limit)

	var stored []activityStore
	if _, err := p.client.GetAll(context.Background(), q, &stored); err != nil {
		return nil, err
	}

	var activities []dirsync.SyncActivity
	for _, a := range stored {
		activities = append(activities, dirsync.SyncActivity{
			ID:            a.ID,
			Partition:     a.Partition,
			UserGroupID:   a.UserGroupID,
			DeviceGroupID: a.DeviceGroupID,
			Started:       a.Started,
			DurationMS:    a.DurationMS,
			Outcome:       a.Outcome,
			Desired:       a.Desired,
			Current:       a.Current,
			Added:         a.Added,
			Removed:       a.Removed,
			Failures:      a.Failures,
			Detail:        a.Detail,
		})
	}
	return activities, nil
}
