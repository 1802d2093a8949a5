package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	mcpgo "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"contentful-mcp/internal/dispatcher"
	"contentful-mcp/internal/logger"
	"contentful-mcp/internal/mcp"
	"contentful-mcp/internal/notes"
)

// NoteTemplate matches every note resource URI
const NoteTemplate = notes.URIScheme + "{id}"

// Binding exposes a dispatcher through mark3labs/mcp-go
type Binding struct {
	impl       mcp.Implementation
	dispatcher *dispatcher.Dispatcher
	logger     *logger.Logger
	mcpServer  *mcpserver.MCPServer

	// tool names in dispatcher order, used to undo mcp-go's sorting
	order map[string]int
}

// NewBinding registers every tool, note resource and prompt the dispatcher
// offers. The dispatcher must already be serving.
func NewBinding(impl mcp.Implementation, d *dispatcher.Dispatcher, log *logger.Logger) (*Binding, error) {
	if log == nil {
		log = logger.Nop()
	}

	b := &Binding{
		impl:       impl,
		dispatcher: d,
		logger:     log,
		order:      make(map[string]int),
	}

	b.mcpServer = mcpserver.NewMCPServer(
		impl.Name,
		impl.Version,
		mcpserver.WithToolCapabilities(false),
		mcpserver.WithResourceCapabilities(false, true),
		mcpserver.WithPromptCapabilities(false),
		mcpserver.WithRecovery(),
		mcpserver.WithHooks(b.hooks()),
		mcpserver.WithToolFilter(b.orderTools),
	)

	ctx := context.Background()
	if err := b.registerTools(ctx); err != nil {
		return nil, err
	}
	if err := b.registerResources(ctx); err != nil {
		return nil, err
	}
	if err := b.registerPrompts(ctx); err != nil {
		return nil, err
	}

	d.OnNoteCreated(b.addNoteResource)

	return b, nil
}

// MCPServer returns the underlying mcp-go server
func (b *Binding) MCPServer() *mcpserver.MCPServer {
	return b.mcpServer
}

// ServeStdio serves newline-delimited JSON-RPC on in/out until ctx is done or in closes
func (b *Binding) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := mcpserver.NewStdioServer(b.mcpServer)
	stdio.SetErrorLogger(slog.NewLogLogger(b.logger.Handler(), slog.LevelError))

	b.logger.Info("serving MCP over stdio", "name", b.impl.Name, "version", b.impl.Version)

	err := stdio.Listen(ctx, in, out)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio transport failed: %w", err)
	}
	return nil
}

func (b *Binding) registerTools(ctx context.Context) error {
	descriptors, err := b.dispatcher.ListTools(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tools: %w", err)
	}

	for i, desc := range descriptors {
		b.order[desc.Name] = i
		tool := mcpgo.NewToolWithRawSchema(desc.Name, desc.Description, desc.InputSchema)
		b.mcpServer.AddTool(tool, b.toolHandler(desc.Name))
		b.logger.Debug("bound tool", "name", desc.Name)
	}
	return nil
}

func (b *Binding) registerResources(ctx context.Context) error {
	resources, err := b.dispatcher.ListResources(ctx)
	if err != nil {
		return fmt.Errorf("failed to list resources: %w", err)
	}
	for _, r := range resources {
		b.addResource(r)
	}

	// resolves notes created after listing was taken
	template := mcpgo.NewResourceTemplate(NoteTemplate, "note",
		mcpgo.WithTemplateDescription("A text note"),
		mcpgo.WithTemplateMIMEType(mcp.MimeTypeText),
	)
	b.mcpServer.AddResourceTemplate(template, b.readResource)
	return nil
}

func (b *Binding) registerPrompts(ctx context.Context) error {
	prompts, err := b.dispatcher.ListPrompts(ctx)
	if err != nil {
		return fmt.Errorf("failed to list prompts: %w", err)
	}
	for _, p := range prompts {
		b.mcpServer.AddPrompt(mcpgo.NewPrompt(p.Name, mcpgo.WithPromptDescription(p.Description)), b.getPrompt)
	}
	return nil
}

func (b *Binding) addNoteResource(n notes.Note) {
	b.addResource(dispatcher.NoteResource(n))
}

// addResource also notifies clients that the resource list changed
func (b *Binding) addResource(r dispatcher.Resource) {
	resource := mcpgo.NewResource(r.URI, r.Name,
		mcpgo.WithResourceDescription(r.Description),
		mcpgo.WithMIMEType(r.MimeType),
	)
	b.mcpServer.AddResource(resource, b.readResource)
}

// toolHandler adapts one dispatcher tool. Every failure becomes an error
// result so the agent sees it as tool output.
func (b *Binding) toolHandler(name string) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
		callID := uuid.NewString()
		start := time.Now()

		b.logger.Info("executing tool", "name", name, "call_id", callID)

		result, err := b.dispatcher.CallTool(ctx, name, request.GetArguments())
		if err != nil {
			b.logger.Error("tool execution failed",
				"name", name,
				"call_id", callID,
				"duration", time.Since(start),
				"error", err,
			)
			return mcpgo.NewToolResultError(err.Error()), nil
		}

		if result.IsError() {
			message := "Tool execution failed"
			if result.GetError() != nil {
				message = result.GetError().Error()
			}
			b.logger.Error("tool returned error", "name", name, "call_id", callID, "error", message)
			return mcpgo.NewToolResultError(message), nil
		}

		b.logger.Info("tool executed", "name", name, "call_id", callID, "duration", time.Since(start))

		out := &mcpgo.CallToolResult{}
		for _, c := range result.GetContent() {
			out.Content = append(out.Content, toContent(c))
		}
		if len(out.Content) == 0 {
			out.Content = []mcpgo.Content{mcpgo.NewTextContent("")}
		}
		return out, nil
	}
}

func (b *Binding) readResource(ctx context.Context, request mcpgo.ReadResourceRequest) ([]mcpgo.ResourceContents, error) {
	contents, err := b.dispatcher.ReadResource(ctx, request.Params.URI)
	if err != nil {
		b.logger.Warn("resource read failed", "uri", request.Params.URI, "error", err)
		return nil, err
	}

	out := make([]mcpgo.ResourceContents, 0, len(contents))
	for _, c := range contents {
		out = append(out, mcpgo.TextResourceContents{URI: c.URI, MIMEType: c.MimeType, Text: c.Text})
	}
	return out, nil
}

func (b *Binding) getPrompt(ctx context.Context, request mcpgo.GetPromptRequest) (*mcpgo.GetPromptResult, error) {
	prompt, err := b.dispatcher.GetPrompt(ctx, request.Params.Name)
	if err != nil {
		return nil, err
	}

	messages := make([]mcpgo.PromptMessage, 0, len(prompt.Messages))
	for _, m := range prompt.Messages {
		messages = append(messages, mcpgo.NewPromptMessage(mcpgo.Role(m.Role), toContent(m.Content)))
	}
	return mcpgo.NewGetPromptResult(prompt.Description, messages), nil
}

// orderTools restores registration order, create_note first
func (b *Binding) orderTools(_ context.Context, tools []mcpgo.Tool) []mcpgo.Tool {
	ordered := make([]mcpgo.Tool, len(tools))
	copy(ordered, tools)
	sort.SliceStable(ordered, func(i, j int) bool {
		return b.position(ordered[i].Name) < b.position(ordered[j].Name)
	})
	return ordered
}

func (b *Binding) position(name string) int {
	if i, ok := b.order[name]; ok {
		return i
	}
	return len(b.order)
}

func (b *Binding) hooks() *mcpserver.Hooks {
	hooks := &mcpserver.Hooks{}
	hooks.AddBeforeAny(func(ctx context.Context, id any, method mcpgo.MCPMethod, message any) {
		b.logger.Debug("mcp request", "method", method, "id", id)
	})
	hooks.AddOnError(func(ctx context.Context, id any, method mcpgo.MCPMethod, message any, err error) {
		b.logger.Warn("mcp request failed", "method", method, "id", id, "error", err)
	})
	return hooks
}

func toContent(c mcp.Content) mcpgo.Content {
	if r, ok := c.(*mcp.EmbeddedResource); ok {
		return mcpgo.NewEmbeddedResource(mcpgo.TextResourceContents{
			URI:      r.URI,
			MIMEType: r.MimeType,
			Text:     r.Text,
		})
	}
	return mcpgo.NewTextContent(c.GetText())
}
