package delivery

import (
	"context"
	"sync"

	"contentful-mcp/internal/contentful"
)

// fakeClient serves canned collections and records every call it receives
type fakeClient struct {
	mu sync.Mutex

	allowed      []string
	entries      []contentful.Entry
	assets       []contentful.Asset
	contentTypes []contentful.ContentType
	err          error
	catalogErr   error

	calls        []string
	entryQueries []contentful.Query
	listQueries  []contentful.Query
}

func (f *fakeClient) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeClient) GetEntry(_ context.Context, id string) (contentful.Entry, error) {
	f.record("GetEntry:" + id)
	if f.err != nil {
		return nil, f.err
	}
	for _, e := range f.entries {
		if e.ID() == id {
			return e, nil
		}
	}
	return nil, &contentful.APIError{StatusCode: 404, ID: "NotFound", Message: "The resource could not be found."}
}

func (f *fakeClient) GetEntries(_ context.Context, query contentful.Query) (*contentful.Collection, error) {
	f.record("GetEntries")
	f.mu.Lock()
	f.entryQueries = append(f.entryQueries, query)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &contentful.Collection{Total: len(f.entries), Limit: query.Limit, Items: f.entries}, nil
}

func (f *fakeClient) GetAsset(_ context.Context, id string) (contentful.Asset, error) {
	f.record("GetAsset:" + id)
	if f.err != nil {
		return nil, f.err
	}
	for _, a := range f.assets {
		if a.ID() == id {
			return a, nil
		}
	}
	return nil, &contentful.APIError{StatusCode: 404, ID: "NotFound", Message: "The resource could not be found."}
}

func (f *fakeClient) GetAssets(_ context.Context, query contentful.Query) (*contentful.Collection, error) {
	f.record("GetAssets")
	f.mu.Lock()
	f.listQueries = append(f.listQueries, query)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &contentful.Collection{Total: len(f.assets), Limit: query.Limit, Items: f.assets}, nil
}

func (f *fakeClient) GetContentType(_ context.Context, id string) (contentful.ContentType, error) {
	f.record("GetContentType:" + id)
	if f.err != nil {
		return nil, f.err
	}
	for _, ct := range f.contentTypes {
		if ct.ID() == id {
			return ct, nil
		}
	}
	return nil, &contentful.APIError{StatusCode: 404, ID: "NotFound", Message: "The resource could not be found."}
}

func (f *fakeClient) GetContentTypes(_ context.Context, query contentful.Query) (*contentful.Collection, error) {
	f.record("GetContentTypes")
	f.mu.Lock()
	f.listQueries = append(f.listQueries, query)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if f.catalogErr != nil {
		return nil, f.catalogErr
	}
	return &contentful.Collection{Total: len(f.contentTypes), Limit: query.Limit, Items: f.contentTypes}, nil
}

func (f *fakeClient) AllowedContentTypeIDs() []string {
	return f.allowed
}

func (f *fakeClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func articleType() contentful.ContentType {
	return contentful.ContentType{
		"sys":  map[string]any{"id": "article", "type": "ContentType"},
		"name": "Article",
		"fields": []any{
			map[string]any{"id": "title", "type": "Symbol"},
			map[string]any{"id": "slug", "type": "Symbol"},
		},
	}
}

func article(id, title string) contentful.Entry {
	return contentful.Entry{
		"sys": map[string]any{
			"id":          id,
			"type":        "Entry",
			"contentType": map[string]any{"sys": map[string]any{"type": "Link", "linkType": "ContentType", "id": "article"}},
		},
		"fields": map[string]any{"title": title, "slug": "ignored-" + id},
	}
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		entries:      []contentful.Entry{article("e1", "Hello"), article("e2", "World")},
		assets:       []contentful.Asset{{"sys": map[string]any{"id": "a1", "type": "Asset"}, "fields": map[string]any{"title": "Logo"}}},
		contentTypes: []contentful.ContentType{articleType()},
	}
}
