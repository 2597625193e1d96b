package directory

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kubex/rubix-dirsync/dirsync"
)

var _ dirsync.Directory = (*Client)(nil)

// bindPayload is the membership bind shape: absolute directory object
// references under the OData bind key.
type bindPayload struct {
	Members []string `json:"members@odata.bind"`
}

// GroupMembers lists the group's direct members, following
// continuation links until the listing is exhausted. A group the
// directory explicitly reports as having no members comes back with
// Empty set, which is not the same thing as a listing that merely
// contained nothing.
func (c *Client) GroupMembers(ctx context.Context, groupID string) (dirsync.MemberList, error) {
	list := dirsync.MemberList{}
	path := fmt.Sprintf("groups/%s/members", groupID)
	first := true

	for path != "" {
		var raw json.RawMessage
		if err := c.get(ctx, path, &raw); err != nil {
			return dirsync.MemberList{}, err
		}
		page, err := resolvePage(raw)
		if err != nil {
			return dirsync.MemberList{}, err
		}
		if first && page.empty {
			list.Empty = true
			return list, nil
		}
		first = false

		for _, item := range page.items {
			member := dirsync.Identity{}
			if err := json.Unmarshal(item, &member); err != nil {
				return dirsync.MemberList{}, fmt.Errorf("failed to decode group member: %w", err)
			}
			list.Members = append(list.Members, member)
		}
		path = page.nextLink
	}
	return list, nil
}

// AddGroupMembers binds up to dirsync.BatchLimit directory objects to
// the group in a single request.
func (c *Client) AddGroupMembers(ctx context.Context, groupID string, objectIDs []string) error {
	if len(objectIDs) == 0 {
		return nil
	}
	if len(objectIDs) > dirsync.BatchLimit {
		return fmt.Errorf("at most %d members per bind, got %d", dirsync.BatchLimit, len(objectIDs))
	}

	refs := make([]string, 0, len(objectIDs))
	for _, objectID := range objectIDs {
		refs = append(refs, c.objectRef(objectID))
	}
	return c.patch(ctx, "groups/"+groupID, bindPayload{Members: refs}, nil)
}

// RemoveGroupMember unbinds a single member from the group.
func (c *Client) RemoveGroupMember(ctx context.Context, groupID, objectID string) error {
	return c.delete(ctx, fmt.Sprintf("groups/%s/members/%s/$ref", groupID, objectID), nil)
}

func (c *Client) objectRef(objectID string) string {
	return c.baseURL + "/directoryObjects/" + objectID
}
