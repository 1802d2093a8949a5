package mcp

import (
	"context"
	"encoding/json"
)

type Tool interface {
	Name() string
	Description() string
	Parameters() json.RawMessage // JSON schema
	Handler() ToolHandler
}

type ToolHandler interface {
	Handle(ctx context.Context, request CallToolRequest) (ToolResult, error)
}

// ToolHandlerFunc adapts a plain function to ToolHandler
type ToolHandlerFunc func(ctx context.Context, request CallToolRequest) (ToolResult, error)

func (f ToolHandlerFunc) Handle(ctx context.Context, request CallToolRequest) (ToolResult, error) {
	return f(ctx, request)
}

type ToolResult interface {
	IsError() bool
	GetContent() []Content
	GetError() error
}

type Content interface {
	Type() string
	GetText() string
}

// Implementation contains server metadata
type Implementation struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// CallToolRequest is the inbound tools/call payload handed to tool handlers unchanged
type CallToolRequest struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// Argument returns the raw argument value and whether it was supplied
func (r CallToolRequest) Argument(key string) (any, bool) {
	if r.Arguments == nil {
		return nil, false
	}
	value, ok := r.Arguments[key]
	return value, ok
}
