package leanix

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"github.com/synchrotron/c4c4/internal/source"
)

func TestProviderFetch(t *testing.T) {
	ar, err := txtar.ParseFile("testdata/finance.txtar")
	require.NoError(t, err)
	files := map[string]json.RawMessage{}
	for _, f := range ar.Files {
		files[f.Name] = f.Data
	}

	var mu sync.Mutex
	var seen []string
	f := &fakeLeanIX{}
	f.gql = func(w http.ResponseWriter, req gqlRequest) {
		mu.Lock()
		seen = append(seen, strings.Fields(req.Query)[1])
		mu.Unlock()
		switch {
		case strings.Contains(req.Query, "TestConnection"):
			fmt.Fprint(w, `{"data":{"allFactSheets":{"totalCount":3}}}`)
		case strings.Contains(req.Query, "GetPlatformById"):
			writeJSON(w, map[string]any{"data": map[string]any{"factSheet": files["platform.json"]}})
		case strings.Contains(req.Query, "GetInterfaces"):
			var nodes []json.RawMessage
			assert.NoError(f.t, json.Unmarshal(files["interfaces.json"], &nodes))
			edges := make([]any, len(nodes))
			for i, n := range nodes {
				edges[i] = map[string]any{"node": n}
			}
			writeJSON(w, map[string]any{"data": map[string]any{"allFactSheets": map[string]any{"edges": edges}}})
		default:
			http.Error(w, "unexpected query", http.StatusBadRequest)
		}
	}
	f.t = t
	srv := httptest.NewServer(f)
	defer srv.Close()

	p := &Provider{HTTPClient: srv.Client()}
	var _ source.Provider = p
	assert.Equal(t, "leanix", p.Name())

	snap, err := p.Fetch(context.Background(), map[string]string{
		KeyGraphQLURL: srv.URL + graphqlPath,
		KeyAPIToken:   testToken,
		KeyPlatformID: testPlatID,
	})
	require.NoError(t, err)
	require.Len(t, snap.Platforms, 1)
	assert.Equal(t, "fsp", snap.Platforms[0].ID)
	assert.Len(t, snap.Platforms[0].Applications, 3)
	assert.Len(t, snap.Teams, 2)
	assert.Len(t, snap.Relationships, 6)
	assert.Equal(t, "TestConnection", seen[0], "connection check runs first")
}

func TestProviderFetchStopsWhenConnectionFails(t *testing.T) {
	f := &fakeLeanIX{}
	f.gql = func(w http.ResponseWriter, req gqlRequest) {
		assert.Contains(f.t, req.Query, "TestConnection")
		fmt.Fprint(w, `{"errors":[{"message":"workspace suspended"}]}`)
	}
	f.t = t
	srv := httptest.NewServer(f)
	defer srv.Close()

	_, err := (&Provider{HTTPClient: srv.Client()}).Fetch(context.Background(), map[string]string{
		KeyGraphQLURL: srv.URL + graphqlPath,
		KeyAPIToken:   testToken,
		KeyPlatformID: testPlatID,
	})
	var gqlErr *GraphQLError
	require.ErrorAs(t, err, &gqlErr)
	assert.Contains(t, err.Error(), "connect")
	assert.Equal(t, int32(1), f.gqlCalls.Load())
}

func TestProviderFetchNeedsConfig(t *testing.T) {
	_, err := (&Provider{}).Fetch(context.Background(), map[string]string{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API token")
}

func TestProviderConfigure(t *testing.T) {
	qs := (&Provider{}).Configure()
	keys := make([]string, len(qs))
	for i, q := range qs {
		keys[i] = q.Key
	}
	assert.Equal(t, []string{KeyGraphQLURL, KeyAPIToken, KeyPlatformID}, keys)
	assert.Equal(t, "secret", qs[1].Type)
}
