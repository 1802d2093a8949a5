package delivery

import (
	"context"

	"contentful-mcp/internal/mcp"
	"contentful-mcp/internal/tools"
)

const queryEntriesSchema = `{
	"type": "object",
	"properties": {
		"query": {
			"type": "string",
			"description": "Keywords or query value to search for"
		},
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
	},
	"required": ["query"]
}`

func NewQueryEntriesTool(svc *Service) mcp.Tool {
	return newTool("query_entries", "Query and find content in Contentful delivery API", queryEntriesSchema,
		func(ctx context.Context, args map[string]any) (string, error) {
			query, err := tools.RequiredString(args, "query", "Query parameter is required")
			if err != nil {
				return "", err
			}
			filter := svc.ContentTypeFilter(tools.StringSlice(args, "contentTypeIds"), tools.OptionalString(args, "contentType"))
			return svc.QueryEntries(ctx, query, tools.Limit(args, "limit", DefaultEntryLimit), filter)
		})
}

func RegisterQueryEntriesTool(registry tools.ToolRegistry, svc *Service) error {
	return registry.Register(NewQueryEntriesTool(svc))
}
