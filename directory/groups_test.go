package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupMembersSinglePage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/groups/ug-1/members", r.URL.Path)
		_, _ = w.Write([]byte(`{"@odata.context":"ctx","value":[
			{"@odata.type":"#microsoft.graph.user","id":"u1","displayName":"One"},
			{"@odata.type":"#microsoft.graph.user","id":"u2","displayName":"Two"}
		]}`))
	}))
	defer server.Close()

	client := New(server.URL, nil)
	list, err := client.GroupMembers(context.Background(), "ug-1")
	require.NoError(t, err)

	assert.False(t, list.Empty)
	assert.Equal(t, []string{"u1", "u2"}, list.IDs())
	assert.Equal(t, "One", list.Members[0].DisplayName)
}

func TestGroupMembersBareArray(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"u1"},{"id":"u2"},{"id":"u3"}]`))
	}))
	defer server.Close()

	client := New(server.URL, nil)
	list, err := client.GroupMembers(context.Background(), "ug-1")
	require.NoError(t, err)

	assert.False(t, list.Empty)
	assert.Equal(t, []string{"u1", "u2", "u3"}, list.IDs())
}

func TestGroupMembersFollowsContinuation(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/groups/ug-1/members":
			_, _ = fmt.Fprintf(w, `{"@odata.context":"ctx","@odata.nextLink":"%s/page2","value":[{"id":"u1"}]}`, server.URL)
		case "/page2":
			_, _ = w.Write([]byte(`[{"id":"u2"}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := New(server.URL, nil)
	list, err := client.GroupMembers(context.Background(), "ug-1")
	require.NoError(t, err)

	assert.Equal(t, []string{"u1", "u2"}, list.IDs())
}

func TestGroupMembersEmptySentinel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"@odata.context":"ctx","value":[]}`))
	}))
	defer server.Close()

	client := New(server.URL, nil)
	list, err := client.GroupMembers(context.Background(), "ug-1")
	require.NoError(t, err)

	assert.True(t, list.Empty)
	assert.Empty(t, list.Members)
}

func TestGroupMembersReadError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":"Authorization_RequestDenied","message":"no"}}`))
	}))
	defer server.Close()

	client := New(server.URL, nil)
	_, err := client.GroupMembers(context.Background(), "ug-1")

	apiErr := &APIError{}
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsAuthError())
}

func TestAddGroupMembers(t *testing.T) {
	var body []byte
	var method, path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		path = r.URL.Path
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := New(server.URL, nil)
	err := client.AddGroupMembers(context.Background(), "dg-1", []string{"d1", "d2"})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPatch, method)
	assert.Equal(t, "/groups/dg-1", path)

	var payload map[string][]string
	require.NoError(t, json.Unmarshal(body, &payload))
	refs, ok := payload["members@odata.bind"]
	require.True(t, ok, "bind key missing from payload")
	assert.Equal(t, []string{
		server.URL + "/directoryObjects/d1",
		server.URL + "/directoryObjects/d2",
	}, refs)
}

func TestAddGroupMembersRejectsOversizedChunk(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	var objectIDs []string
	for i := 0; i < 21; i++ {
		objectIDs = append(objectIDs, fmt.Sprintf("d%d", i))
	}

	client := New(server.URL, nil)
	err := client.AddGroupMembers(context.Background(), "dg-1", objectIDs)
	require.Error(t, err)
	assert.Zero(t, calls)
}

func TestAddGroupMembersNothingToBind(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	client := New(server.URL, nil)
	require.NoError(t, client.AddGroupMembers(context.Background(), "dg-1", nil))
	assert.Zero(t, calls)
}

func TestRemoveGroupMember(t *testing.T) {
	var method, path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		path = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := New(server.URL, nil)
	err := client.RemoveGroupMember(context.Background(), "dg-1", "d9")
	require.NoError(t, err)

	assert.Equal(t, http.MethodDelete, method)
	assert.Equal(t, "/groups/dg-1/members/d9/$ref", path)
}
