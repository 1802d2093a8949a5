package delivery

import (
	"context"

	"contentful-mcp/internal/mcp"
	"contentful-mcp/internal/tools"
)

const getContentTypesSchema = `{
	"type": "object",
	"properties": {
		"limit": {
			"type": "number",
			"description": "Maximum number of content types to return (default: 100)"
		}
	}
}`

func NewGetContentTypesTool(svc *Service) mcp.Tool {
	return newTool("get_content_types", "Get all content types from Contentful", getContentTypesSchema,
		func(ctx context.Context, args map[string]any) (string, error) {
			return svc.GetContentTypes(ctx, tools.Limit(args, "limit", DefaultListLimit))
		})
}

func RegisterGetContentTypesTool(registry tools.ToolRegistry, svc *Service) error {
	return registry.Register(NewGetContentTypesTool(svc))
}
