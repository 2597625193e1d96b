package directory

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type failingTokenSource struct{}

func (failingTokenSource) Token() (*oauth2.Token, error) {
	return nil, errors.New("credential store unavailable")
}

func TestNew(t *testing.T) {
	client := New("https://directory.example.com/v1/", nil)
	assert.Equal(t, "https://directory.example.com/v1", client.baseURL)
	assert.NotNil(t, client.httpClient)
}

func TestDoSetsHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(server.URL, StaticToken("test-token"))
	err := client.get(context.Background(), "test", nil)
	require.NoError(t, err)
}

func TestDoWithoutTokenSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(server.URL, nil)
	err := client.get(context.Background(), "test", nil)
	require.NoError(t, err)
}

func TestDoTokenFailure(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	client := New(server.URL, failingTokenSource{})
	err := client.get(context.Background(), "test", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to acquire token")
	assert.Zero(t, calls)
}

func TestDoDecodesErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":"Request_ResourceNotFound","message":"group does not exist"}}`))
	}))
	defer server.Close()

	client := New(server.URL, nil)
	err := client.get(context.Background(), "groups/missing/members", nil)
	require.Error(t, err)

	apiErr := &APIError{}
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Request_ResourceNotFound", apiErr.Code)
	assert.Equal(t, "group does not exist", apiErr.Message)
	assert.True(t, apiErr.IsNotFound())
	assert.False(t, apiErr.IsAuthError())
}

func TestDoErrorWithoutEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream exploded"))
	}))
	defer server.Close()

	client := New(server.URL, nil)
	err := client.get(context.Background(), "test", nil)

	apiErr := &APIError{}
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Empty(t, apiErr.Code)
	assert.Equal(t, "upstream exploded", apiErr.Message)
}

func TestDoFollowsAbsolutePaths(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New("https://unreachable.example.com", nil,
		WithHTTPClient(server.Client()))
	err := client.get(context.Background(), server.URL+"/continued/page", nil)
	require.NoError(t, err)
	assert.Equal(t, "/continued/page", gotPath)
}

func TestClientCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.Form.Get("grant_type"))

		clientID, clientSecret, ok := r.BasicAuth()
		if !ok {
			clientID = r.Form.Get("client_id")
			clientSecret = r.Form.Get("client_secret")
		}
		if v, err := url.QueryUnescape(clientID); err == nil {
			clientID = v
		}
		if v, err := url.QueryUnescape(clientSecret); err == nil {
			clientSecret = v
		}
		assert.Equal(t, "app-id", clientID)
		assert.Equal(t, "app-secret", clientSecret)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "issued-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}))
	defer server.Close()

	tokens := ClientCredentials(context.Background(), server.URL, "app-id", "app-secret", []string{"directory.read"})
	token, err := tokens.Token()
	require.NoError(t, err)
	assert.Equal(t, "issued-token", token.AccessToken)
}
