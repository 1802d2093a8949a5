package delivery

import (
	"context"
	"encoding/json"

	"contentful-mcp/internal/mcp"
)

// operation turns call arguments into the tool's text output
type operation func(ctx context.Context, args map[string]any) (string, error)

// deliveryTool adapts one service operation to mcp.Tool
type deliveryTool struct {
	name        string
	description string
	schema      json.RawMessage
	handler     mcp.ToolHandler
}

func newTool(name, description, schema string, op operation) *deliveryTool {
	return &deliveryTool{
		name:        name,
		description: description,
		schema:      json.RawMessage(schema),
		handler: mcp.ToolHandlerFunc(func(ctx context.Context, request mcp.CallToolRequest) (mcp.ToolResult, error) {
			text, err := op(ctx, request.Arguments)
			if err != nil {
				return nil, err
			}
			return mcp.NewTextResult(text), nil
		}),
	}
}

func (t *deliveryTool) Name() string {
	return t.name
}

func (t *deliveryTool) Description() string {
	return t.description
}

func (t *deliveryTool) Parameters() json.RawMessage {
	return t.schema
}

func (t *deliveryTool) Handler() mcp.ToolHandler {
	return t.handler
}
