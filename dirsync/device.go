package dirsync

// Identity is a directory user as returned in a group member listing.
type Identity struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// Device is a registered device as returned by the directory.
type Device struct {
	ID                    string `json:"id"`
	DisplayName           string `json:"displayName"`
	OperatingSystem       string `json:"operatingSystem"`
	IsManaged             bool   `json:"isManaged"`
	ManagementType        string `json:"managementType"`
	IsCompliant           bool   `json:"isCompliant"`
	EnrollmentProfileName string `json:"enrollmentProfileName"`
}

// MemberList is the resolved membership of a group. Empty is only set
// when the directory explicitly reported the group as having no
// members, as opposed to a listing that happened to contain none.
type MemberList struct {
	Members []Identity
	Empty   bool
}

func (m MemberList) IDs() []string {
	if len(m.Members) == 0 {
		return nil
	}
	ids := make([]string, 0, len(m.Members))
	for _, member := range m.Members {
		ids = append(ids, member.ID)
	}
	return ids
}
