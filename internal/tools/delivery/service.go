// Package delivery implements the read tools backed by the Contentful
// Content Delivery API.
package delivery

import (
	"context"
	"fmt"
	"time"

	"contentful-mcp/internal/contentful"
	"contentful-mcp/internal/extract"
	"contentful-mcp/internal/logger"
	"contentful-mcp/internal/mcp"
	"contentful-mcp/internal/serialize"
)

const (
	// DefaultEntryLimit applies to get_entries and query_entries
	DefaultEntryLimit = 50
	// DefaultListLimit applies to get_assets and get_content_types
	DefaultListLimit = 100

	// DigestSeparator introduces the extracted text after the serialized entries
	DigestSeparator = "\n\nExtracted Content:\n"
)

// Service holds the delivery logic shared by every tool in this package
type Service struct {
	client    contentful.Client
	extractor *extract.Extractor
	logger    *logger.Logger
}

func NewService(client contentful.Client, extractor *extract.Extractor, log *logger.Logger) *Service {
	if extractor == nil {
		extractor = extract.New("")
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{client: client, extractor: extractor, logger: log}
}

// ContentTypeFilter picks the content types an entry query is restricted to.
// A configured allow-list always wins; otherwise contentTypeIds beats the
// single contentType argument.
func (s *Service) ContentTypeFilter(requestedIDs []string, requested string) []string {
	if allowed := s.client.AllowedContentTypeIDs(); len(allowed) > 0 {
		return allowed
	}
	if len(requestedIDs) > 0 {
		return requestedIDs
	}
	if requested != "" {
		return []string{requested}
	}
	return nil
}

func (s *Service) QueryEntries(ctx context.Context, text string, limit int, contentTypeIDs []string) (string, error) {
	collection, err := s.client.GetEntries(ctx, contentful.Query{
		Limit:          limit,
		ContentTypeIDs: contentTypeIDs,
		FullText:       text,
	})
	if err != nil {
		return "", upstream(fmt.Sprintf("query entries for %q", text), err)
	}
	return s.withDigest(ctx, collection.Items, "query entries")
}

func (s *Service) GetEntries(ctx context.Context, limit int, contentTypeIDs []string) (string, error) {
	collection, err := s.client.GetEntries(ctx, contentful.Query{
		Limit:          limit,
		ContentTypeIDs: contentTypeIDs,
	})
	if err != nil {
		return "", upstream("get entries", err)
	}
	return s.withDigest(ctx, collection.Items, "get entries")
}

func (s *Service) GetEntry(ctx context.Context, id string) (string, error) {
	entry, err := s.client.GetEntry(ctx, id)
	if err != nil {
		return "", upstream("get entry "+id, err)
	}
	return serialize.Serialize(entry), nil
}

func (s *Service) GetAsset(ctx context.Context, id string) (string, error) {
	asset, err := s.client.GetAsset(ctx, id)
	if err != nil {
		return "", upstream("get asset "+id, err)
	}
	return serialize.Serialize(asset), nil
}

func (s *Service) GetAssets(ctx context.Context, limit int) (string, error) {
	collection, err := s.client.GetAssets(ctx, contentful.Query{Limit: limit})
	if err != nil {
		return "", upstream("get assets", err)
	}
	return serialize.Serialize(collection.Items), nil
}

func (s *Service) GetContentType(ctx context.Context, id string) (string, error) {
	contentType, err := s.client.GetContentType(ctx, id)
	if err != nil {
		return "", upstream("get content type "+id, err)
	}
	return serialize.Serialize(contentType), nil
}

func (s *Service) GetContentTypes(ctx context.Context, limit int) (string, error) {
	collection, err := s.client.GetContentTypes(ctx, contentful.Query{Limit: limit})
	if err != nil {
		return "", upstream("get content types", err)
	}
	return serialize.Serialize(collection.Items), nil
}

// withDigest appends the extracted text of entries, resolved against the
// whole content type catalog. Any failure fails the call.
func (s *Service) withDigest(ctx context.Context, entries []contentful.Entry, op string) (string, error) {
	start := time.Now()

	catalog, err := s.client.GetContentTypes(ctx, contentful.Query{Limit: contentful.MaxLimit})
	if err != nil {
		return "", upstream(op+": get content types", err)
	}

	digest, err := s.extractor.Extract(entries, catalog.Items)
	if err != nil {
		return "", upstream(op, err)
	}

	s.logger.Debug("extracted entry content",
		"operation", op,
		"entries", len(entries),
		"content_types", len(catalog.Items),
		"duration", time.Since(start),
	)

	return serialize.Serialize(entries) + DigestSeparator + digest, nil
}

func upstream(op string, err error) error {
	return fmt.Errorf("%w: failed to %s: %w", mcp.ErrUpstreamFailure, op, err)
}
