package delivery

import (
	"context"

	"contentful-mcp/internal/mcp"
	"contentful-mcp/internal/tools"
)

const getContentTypeSchema = `{
	"type": "object",
	"properties": {
		"contentTypeId": {
			"type": "string",
			"description": "The ID of the Contentful content type to retrieve"
		}
	},
	"required": ["contentTypeId"]
}`

func NewGetContentTypeTool(svc *Service) mcp.Tool {
	return newTool("get_content_type", "Get a specific Contentful content type by ID", getContentTypeSchema,
		func(ctx context.Context, args map[string]any) (string, error) {
			id, err := tools.RequiredString(args, "contentTypeId", "Content Type ID is required")
			if err != nil {
				return "", err
			}
			return svc.GetContentType(ctx, id)
		})
}

func RegisterGetContentTypeTool(registry tools.ToolRegistry, svc *Service) error {
	return registry.Register(NewGetContentTypeTool(svc))
}
