package delivery

import (
	"context"

	"contentful-mcp/internal/mcp"
	"contentful-mcp/internal/tools"
)

const getEntrySchema = `{
	"type": "object",
	"properties": {
		"entryId": {
			"type": "string",
			"description": "The ID of the Contentful entry to retrieve"
		}
	},
	"required": ["entryId"]
}`

func NewGetEntryTool(svc *Service) mcp.Tool {
	return newTool("get_entry", "Get a specific Contentful entry by ID", getEntrySchema,
		func(ctx context.Context, args map[string]any) (string, error) {
			id, err := tools.RequiredString(args, "entryId", "Entry ID is required")
			if err != nil {
				return "", err
			}
			return svc.GetEntry(ctx, id)
		})
}

func RegisterGetEntryTool(registry tools.ToolRegistry, svc *Service) error {
	return registry.Register(NewGetEntryTool(svc))
}
