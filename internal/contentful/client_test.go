package contentful

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contentful-mcp/internal/mcp"
)

const entriesPage = `{
  "sys": {"type": "Array"},
  "total": 2, "skip": 0, "limit": 50,
  "items": [
    {
      "sys": {"id": "post-1", "type": "Entry", "contentType": {"sys": {"type": "Link", "linkType": "ContentType", "id": "blogPost"}}},
      "fields": {
        "title": "Hello",
        "author": {"sys": {"type": "Link", "linkType": "Entry", "id": "author-1"}},
        "hero": {"sys": {"type": "Link", "linkType": "Asset", "id": "img-1"}},
        "missing": {"sys": {"type": "Link", "linkType": "Entry", "id": "gone"}}
      }
    }
  ],
  "includes": {
    "Entry": [
      {
        "sys": {"id": "author-1", "type": "Entry", "contentType": {"sys": {"type": "Link", "linkType": "ContentType", "id": "person"}}},
        "fields": {"name": "Ada", "posts": [{"sys": {"type": "Link", "linkType": "Entry", "id": "post-1"}}]}
      }
    ],
    "Asset": [
      {"sys": {"id": "img-1", "type": "Asset"}, "fields": {"title": "Logo"}}
    ]
  }
}`

func newTestClient(t *testing.T, handler http.HandlerFunc, mutate ...func(*Config)) *HTTPClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := Config{
		AccessToken: "secret",
		SpaceID:     "space1",
		Environment: "staging",
		BaseURL:     server.URL,
		Timeout:     5 * time.Second,
	}
	for _, m := range mutate {
		m(&cfg)
	}

	client, err := NewHTTPClient(cfg, nil)
	require.NoError(t, err)
	return client
}

func TestNewHTTPClientRequiresCredentials(t *testing.T) {
	_, err := NewHTTPClient(Config{SpaceID: "s"}, nil)
	assert.Error(t, err)

	_, err = NewHTTPClient(Config{AccessToken: "t"}, nil)
	assert.Error(t, err)
}

func TestGetEntriesRequestAndLinkResolution(t *testing.T) {
	var gotPath, gotAuth string
	var gotQuery map[string][]string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(entriesPage))
	})

	collection, err := client.GetEntries(context.Background(), Query{Limit: 50, ContentTypeIDs: []string{"blogPost"}})
	require.NoError(t, err)

	assert.Equal(t, "/spaces/space1/environments/staging/entries", gotPath)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, []string{"50"}, gotQuery["limit"])
	assert.Equal(t, []string{"blogPost"}, gotQuery["content_type"])
	assert.Equal(t, []string{"2"}, gotQuery["include"])

	require.Len(t, collection.Items, 1)
	assert.Equal(t, 2, collection.Total)

	post := collection.Items[0]
	assert.Equal(t, "post-1", post.ID())
	assert.Equal(t, "blogPost", post.ContentTypeID())

	author := Object(post.Fields()["author"].(map[string]any))
	assert.Equal(t, "Ada", author.Fields()["name"])

	hero := Object(post.Fields()["hero"].(map[string]any))
	assert.Equal(t, "Logo", hero.Fields()["title"])

	unresolved := Object(post.Fields()["missing"].(map[string]any))
	assert.Equal(t, "Link", unresolved.Type())

	// the author links back to the post, closing a cycle
	backLink := Object(author.Fields()["posts"].([]any)[0].(map[string]any))
	assert.Equal(t, "Hello", backLink.Fields()["title"])
}

func TestGetEntryQueriesBySysID(t *testing.T) {
	var gotQuery map[string][]string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(entriesPage))
	})

	entry, err := client.GetEntry(context.Background(), "post-1")
	require.NoError(t, err)

	assert.Equal(t, []string{"post-1"}, gotQuery["sys.id"])
	assert.Equal(t, "post-1", entry.ID())
}

func TestGetEntryNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"total":0,"skip":0,"limit":100,"items":[]}`))
	})

	_, err := client.GetEntry(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, mcp.ErrNotFound))
	assert.Contains(t, err.Error(), "nope")
}

func TestGetAssetAndContentTypePaths(t *testing.T) {
	var paths []string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		_, _ = w.Write([]byte(`{"sys":{"id":"x","type":"Asset"},"fields":{}}`))
	})

	ctx := context.Background()

	asset, err := client.GetAsset(ctx, "img-1")
	require.NoError(t, err)
	assert.Equal(t, "x", asset.ID())

	_, err = client.GetContentType(ctx, "blogPost")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"/spaces/space1/environments/staging/assets/img-1",
		"/spaces/space1/environments/staging/content_types/blogPost",
	}, paths)
}

func TestListEndpoints(t *testing.T) {
	var paths []string
	var limits []string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		limits = append(limits, r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"total":1,"skip":0,"limit":100,"items":[{"sys":{"id":"a"}}]}`))
	})

	ctx := context.Background()

	assets, err := client.GetAssets(ctx, Query{Limit: 100})
	require.NoError(t, err)
	assert.Len(t, assets.Items, 1)

	types, err := client.GetContentTypes(ctx, Query{Limit: 5000})
	require.NoError(t, err)
	assert.Len(t, types.Items, 1)

	assert.Equal(t, []string{
		"/spaces/space1/environments/staging/assets",
		"/spaces/space1/environments/staging/content_types",
	}, paths)
	assert.Equal(t, []string{"100", "1000"}, limits)
}

func TestAPIErrorDecoding(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Contentful-Request-Id", "req-42")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"sys":{"type":"Error","id":"NotFound"},"message":"The resource could not be found."}`))
	})

	_, err := client.GetAsset(context.Background(), "missing")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "NotFound", apiErr.ID)
	assert.Equal(t, "req-42", apiErr.RequestID)
	assert.Equal(t, "The resource could not be found.", apiErr.Message)
	assert.True(t, errors.Is(err, mcp.ErrNotFound))
	assert.Contains(t, err.Error(), "req-42")
}

func TestAPIErrorWithoutBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.GetAssets(context.Background(), Query{})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Bad Gateway", apiErr.ID)
	assert.True(t, apiErr.Temporary())
	assert.False(t, errors.Is(err, mcp.ErrNotFound))
}

func TestCircuitBreakerOpensOnServerErrors(t *testing.T) {
	var calls atomic.Int32

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}, func(c *Config) {
		c.Breaker = BreakerConfig{MaxRequests: 1, Interval: time.Minute, Timeout: time.Minute}
	})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := client.GetAssets(ctx, Query{})
		require.Error(t, err)
	}

	assert.Equal(t, "open", client.BreakerStatus())

	_, err := client.GetAssets(ctx, Query{})
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(3), calls.Load())
}

func TestCircuitBreakerIgnoresClientErrors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for i := 0; i < 5; i++ {
		_, err := client.GetAsset(context.Background(), "missing")
		require.Error(t, err)
	}

	assert.Equal(t, "closed", client.BreakerStatus())
}

func TestAllowedContentTypeIDsIsACopy(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {}, func(c *Config) {
		c.ContentTypeIDs = []string{"a", "b"}
	})

	ids := client.AllowedContentTypeIDs()
	ids[0] = "changed"

	assert.Equal(t, []string{"a", "b"}, client.AllowedContentTypeIDs())
}
