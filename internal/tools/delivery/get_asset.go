package delivery

import (
	"context"

	"contentful-mcp/internal/mcp"
	"contentful-mcp/internal/tools"
)

const getAssetSchema = `{
	"type": "object",
	"properties": {
		"assetId": {
			"type": "string",
			"description": "The ID of the Contentful asset to retrieve"
		}
	},
	"required": ["assetId"]
}`

func NewGetAssetTool(svc *Service) mcp.Tool {
	return newTool("get_asset", "Get a specific Contentful asset by ID", getAssetSchema,
		func(ctx context.Context, args map[string]any) (string, error) {
			id, err := tools.RequiredString(args, "assetId", "Asset ID is required")
			if err != nil {
				return "", err
			}
			return svc.GetAsset(ctx, id)
		})
}

func RegisterGetAssetTool(registry tools.ToolRegistry, svc *Service) error {
	return registry.Register(NewGetAssetTool(svc))
}
