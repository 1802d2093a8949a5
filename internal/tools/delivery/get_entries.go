package delivery

import (
	"context"

	"contentful-mcp/internal/mcp"
	"contentful-mcp/internal/tools"
)

const getEntriesSchema = `{
	"type": "object",
	"properties": {
		"limit": {
			"type": "number",
			"description": "Maximum number of entries to return (default: 50)"
		},
		"contentType": {
			"type": "string",
			"description": "Filter by content type ID"
		},
		"contentTypeIds": {
			"type": "array",
			"items": {"type": "string"},
			"description": "Filter by several content type IDs, takes precedence over contentType"
		}
	}
}`

func NewGetEntriesTool(svc *Service) mcp.Tool {
	return newTool("get_entries", "Get multiple entries from Contentful with optional filters", getEntriesSchema,
		func(ctx context.Context, args map[string]any) (string, error) {
			filter := svc.ContentTypeFilter(tools.StringSlice(args, "contentTypeIds"), tools.OptionalString(args, "contentType"))
			return svc.GetEntries(ctx, tools.Limit(args, "limit", DefaultEntryLimit), filter)
		})
}

func RegisterGetEntriesTool(registry tools.ToolRegistry, svc *Service) error {
	return registry.Register(NewGetEntriesTool(svc))
}
