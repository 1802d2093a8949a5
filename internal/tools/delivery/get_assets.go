package delivery

import (
	"context"

	"contentful-mcp/internal/mcp"
	"contentful-mcp/internal/tools"
)

const getAssetsSchema = `{
	"type": "object",
	"properties": {
		"limit": {
			"type": "number",
			"description": "Maximum number of assets to return (default: 100)"
		}
	}
}`

func NewGetAssetsTool(svc *Service) mcp.Tool {
	return newTool("get_assets", "Get all assets from Contentful", getAssetsSchema,
		func(ctx context.Context, args map[string]any) (string, error) {
			return svc.GetAssets(ctx, tools.Limit(args, "limit", DefaultListLimit))
		})
}

func RegisterGetAssetsTool(registry tools.ToolRegistry, svc *Service) error {
	return registry.Register(NewGetAssetsTool(svc))
}
