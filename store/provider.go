package store

import (
	"github.com/kubex/rubix-dirsync/dirsync"
)

type Provider interface {
	GetMappingRecords(partition string) ([]dirsync.MappingRecord, error)
	GetMappingRecord(partition, userGroupID, deviceGroupID string) (*dirsync.MappingRecord, error)
	CreateMappingRecord(record dirsync.MappingRecord) error
	MutateMappingRecord(partition, userGroupID, deviceGroupID string, options ...dirsync.MutateRecordOption) error
	DeleteMappingRecord(partition, userGroupID, deviceGroupID string) error

	AppendSyncActivity(activity dirsync.SyncActivity) error
	GetSyncActivity(partition string, limit int) ([]dirsync.SyncActivity, error)

	Connect() error
	Close() error
}
