package dirsync

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

type RecordState string

const (
	StateActive   RecordState = "Active"
	StateInactive RecordState = "Inactive"
)

// MappingRecord pairs a user group with the device group that should
// mirror its members' registered devices.
type MappingRecord struct {
	Partition               string      `json:"partition"`
	UserGroupID             string      `json:"userGroupID"`
	UserGroupName           string      `json:"userGroupName"`
	DeviceGroupID           string      `json:"deviceGroupID"`
	DeviceGroupName         string      `json:"deviceGroupName"`
	State                   RecordState `json:"state"`
	RequireCompliant        bool        `json:"requireCompliant"`
	EnrollmentProfileFilter string      `json:"enrollmentProfileFilter"`
	LastUpdate              time.Time   `json:"lastUpdate,omitempty"`
}

func (r MappingRecord) Active() bool {
	return r.State == StateActive
}

// ProfileFragments splits the enrollment profile filter on ';',
// dropping blanks. An empty result disables profile filtering.
func (r MappingRecord) ProfileFragments() []string {
	if strings.TrimSpace(r.EnrollmentProfileFilter) == "" {
		return nil
	}
	var frags []string
	for _, frag := range strings.Split(r.EnrollmentProfileFilter, ";") {
		if frag = strings.TrimSpace(frag); frag != "" {
			frags = append(frags, frag)
		}
	}
	return frags
}

func RecordFromJson(jsonBytes []byte) (*MappingRecord, error) {
	r := &MappingRecord{}
	if err := json.Unmarshal(jsonBytes, r); err != nil {
		return nil, errors.New("unable to decode mapping record json")
	}
	return r, nil
}

type MutateRecordPayload struct {
	UserGroupName           *string
	DeviceGroupName         *string
	State                   *RecordState
	RequireCompliant        *bool
	EnrollmentProfileFilter *string
}

type MutateRecordOption func(*MutateRecordPayload)

func WithUserGroupName(name string) MutateRecordOption {
	return func(p *MutateRecordPayload) { p.UserGroupName = &name }
}

func WithDeviceGroupName(name string) MutateRecordOption {
	return func(p *MutateRecordPayload) { p.DeviceGroupName = &name }
}

func WithState(state RecordState) MutateRecordOption {
	return func(p *MutateRecordPayload) { p.State = &state }
}

func WithRequireCompliant(require bool) MutateRecordOption {
	return func(p *MutateRecordPayload) { p.RequireCompliant = &require }
}

func WithEnrollmentProfileFilter(filter string) MutateRecordOption {
	return func(p *MutateRecordPayload) { p.EnrollmentProfileFilter = &filter }
}

// Apply folds the payload into the record, leaving unset fields alone.
func (p MutateRecordPayload) Apply(r *MappingRecord) {
	if p.UserGroupName != nil {
		r.UserGroupName = *p.UserGroupName
	}
	if p.DeviceGroupName != nil {
		r.DeviceGroupName = *p.DeviceGroupName
	}
	if p.State != nil {
		r.State = *p.State
	}
	if p.RequireCompliant != nil {
		r.RequireCompliant = *p.RequireCompliant
	}
	if p.EnrollmentProfileFilter != nil {
		r.EnrollmentProfileFilter = *p.EnrollmentProfileFilter
	}
}
