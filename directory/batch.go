package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/kubex/rubix-dirsync/dirsync"
)

// Wire shapes for the directory's $batch endpoint. The request field
// casing is the server's, not ours.
type batchRequest struct {
	Requests []batchEntry `json:"requests"`
}

type batchEntry struct {
	ID     int    `json:"Id"`
	Method string `json:"Method"`
	URL    string `json:"Url"`
}

type batchResponse struct {
	Responses []batchResult `json:"responses"`
}

type batchResult struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

// RegisteredDevices resolves the registered devices of up to
// dirsync.BatchLimit users in a single batched round trip. Sub-request
// IDs are numbered from one in input order. Failed, null or malformed
// sub-responses are dropped rather than failing the batch, so users
// without devices cost nothing.
func (c *Client) RegisteredDevices(ctx context.Context, userIDs []string) ([]dirsync.Device, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	if len(userIDs) > dirsync.BatchLimit {
		return nil, fmt.Errorf("at most %d users per batch, got %d", dirsync.BatchLimit, len(userIDs))
	}

	payload := batchRequest{}
	for i, userID := range userIDs {
		payload.Requests = append(payload.Requests, batchEntry{
			ID:     i + 1,
			Method: http.MethodGet,
			URL:    fmt.Sprintf("users/%s/registeredDevices", userID),
		})
	}

	var result batchResponse
	if err := c.post(ctx, "$batch", payload, &result); err != nil {
		return nil, err
	}

	var devices []dirsync.Device
	for _, sub := range result.Responses {
		if sub.Status >= 400 {
			continue
		}
		if len(sub.Body) == 0 || bytes.Equal(sub.Body, []byte("null")) {
			continue
		}
		var body struct {
			Value []dirsync.Device `json:"value"`
		}
		if err := json.Unmarshal(sub.Body, &body); err != nil {
			continue
		}
		devices = append(devices, body.Value...)
	}
	return devices, nil
}
