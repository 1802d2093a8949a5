// Package contentful is a read-only client for the Contentful Content
// Delivery API covering the six calls the delivery tools need.
package contentful

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	"contentful-mcp/internal/logger"
)

// Client is the capability the tool modules consume. Every call may fail.
type Client interface {
	GetEntry(ctx context.Context, id string) (Entry, error)
	GetEntries(ctx context.Context, query Query) (*Collection, error)
	GetAsset(ctx context.Context, id string) (Asset, error)
	GetAssets(ctx context.Context, query Query) (*Collection, error)
	GetContentType(ctx context.Context, id string) (ContentType, error)
	GetContentTypes(ctx context.Context, query Query) (*Collection, error)

	// AllowedContentTypeIDs is the configured allow-list, empty when unrestricted
	AllowedContentTypeIDs() []string
}

// Config holds what the HTTP client needs to reach one space environment
type Config struct {
	AccessToken    string
	SpaceID        string
	Environment    string
	Host           string
	Timeout        time.Duration
	ContentTypeIDs []string
	UserAgent      string

	// BaseURL overrides https://{Host}, used against test servers
	BaseURL string
	Breaker BreakerConfig
}

// entryInclude is the link depth requested when fetching entries
const entryInclude = 2

const maxErrorBody = 64 << 10

// HTTPClient implements Client over net/http
type HTTPClient struct {
	config  Config
	baseURL string
	http    *http.Client
	breaker *breaker[[]byte]
	logger  *logger.Logger
}

// NewHTTPClient validates the credentials and builds a client
func NewHTTPClient(cfg Config, log *logger.Logger) (*HTTPClient, error) {
	if cfg.AccessToken == "" {
		return nil, fmt.Errorf("contentful access token is required")
	}
	if cfg.SpaceID == "" {
		return nil, fmt.Errorf("contentful space id is required")
	}
	if cfg.Environment == "" {
		cfg.Environment = "master"
	}
	if cfg.Host == "" {
		cfg.Host = "cdn.contentful.com"
	}
	if cfg.Breaker == (BreakerConfig{}) {
		cfg.Breaker = DefaultBreakerConfig()
	}
	if log == nil {
		log = logger.Nop()
	}

	base := cfg.BaseURL
	if base == "" {
		base = "https://" + cfg.Host
	}
	base = fmt.Sprintf("%s/spaces/%s/environments/%s",
		strings.TrimRight(base, "/"), url.PathEscape(cfg.SpaceID), url.PathEscape(cfg.Environment))

	c := &HTTPClient{
		config:  cfg,
		baseURL: base,
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  log,
	}
	c.breaker = newBreaker[[]byte](cfg.SpaceID, cfg.Breaker, func(name string, from, to gobreaker.State) {
		log.Warn("contentful circuit breaker state changed",
			"breaker", name,
			"from", from.String(),
			"to", to.String(),
		)
	})

	return c, nil
}

func (c *HTTPClient) AllowedContentTypeIDs() []string {
	return slices.Clone(c.config.ContentTypeIDs)
}

// BreakerStatus reports the circuit breaker state for readiness checks
func (c *HTTPClient) BreakerStatus() string {
	return c.breaker.Status()
}

// GetEntry looks the entry up through the collection endpoint so its links
// come back resolved
func (c *HTTPClient) GetEntry(ctx context.Context, id string) (Entry, error) {
	collection, err := c.GetEntries(ctx, Query{
		Include: entryInclude,
		Params:  map[string]string{"sys.id": id},
	})
	if err != nil {
		return nil, err
	}
	if len(collection.Items) == 0 {
		return nil, notFound("Entry", id)
	}
	return collection.Items[0], nil
}

func (c *HTTPClient) GetEntries(ctx context.Context, query Query) (*Collection, error) {
	if query.Include == 0 {
		query.Include = entryInclude
	}

	var collection Collection
	if err := c.get(ctx, "/entries", query.Values(), &collection); err != nil {
		return nil, err
	}
	resolveLinks(&collection)
	return &collection, nil
}

func (c *HTTPClient) GetAsset(ctx context.Context, id string) (Asset, error) {
	var asset Asset
	if err := c.get(ctx, "/assets/"+url.PathEscape(id), nil, &asset); err != nil {
		return nil, err
	}
	return asset, nil
}

func (c *HTTPClient) GetAssets(ctx context.Context, query Query) (*Collection, error) {
	var collection Collection
	if err := c.get(ctx, "/assets", query.Values(), &collection); err != nil {
		return nil, err
	}
	return &collection, nil
}

func (c *HTTPClient) GetContentType(ctx context.Context, id string) (ContentType, error) {
	var contentType ContentType
	if err := c.get(ctx, "/content_types/"+url.PathEscape(id), nil, &contentType); err != nil {
		return nil, err
	}
	return contentType, nil
}

func (c *HTTPClient) GetContentTypes(ctx context.Context, query Query) (*Collection, error) {
	var collection Collection
	if err := c.get(ctx, "/content_types", query.Values(), &collection); err != nil {
		return nil, err
	}
	return &collection, nil
}

func (c *HTTPClient) get(ctx context.Context, path string, values url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(values) > 0 {
		endpoint += "?" + values.Encode()
	}

	body, err := c.breaker.Execute(ctx, func(ctx context.Context) ([]byte, error) {
		return c.do(ctx, endpoint)
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}

func (c *HTTPClient) do(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.AccessToken)
	req.Header.Set("Accept", "application/json")
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("contentful request",
		"url", req.URL.Path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, decodeAPIError(resp, body)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}
