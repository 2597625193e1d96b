package directory

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// listPage is one page of a collection listing with the wire shape
// already resolved. The directory answers some listings with a bare
// JSON array and others with an OData envelope; empty is only set for
// the explicit no-members shape, an empty value array next to an
// @odata.context key with no continuation.
type listPage struct {
	items    []json.RawMessage
	nextLink string
	empty    bool
}

func resolvePage(data []byte) (listPage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return listPage{}, nil
	}

	if trimmed[0] == '[' {
		page := listPage{}
		if err := json.Unmarshal(trimmed, &page.items); err != nil {
			return listPage{}, fmt.Errorf("failed to decode listing array: %w", err)
		}
		return page, nil
	}

	var envelope struct {
		Context  json.RawMessage `json:"@odata.context"`
		NextLink string          `json:"@odata.nextLink"`
		Value    json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return listPage{}, fmt.Errorf("failed to decode listing envelope: %w", err)
	}

	page := listPage{nextLink: envelope.NextLink}
	valuePresent := len(envelope.Value) > 0 && !bytes.Equal(envelope.Value, []byte("null"))
	if valuePresent {
		if err := json.Unmarshal(envelope.Value, &page.items); err != nil {
			return listPage{}, fmt.Errorf("failed to decode listing value: %w", err)
		}
	}
	page.empty = valuePresent && len(page.items) == 0 &&
		len(envelope.Context) > 0 && page.nextLink == ""
	return page, nil
}
