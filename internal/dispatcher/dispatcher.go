// Package dispatcher routes inbound MCP requests to the note store, the
// built-in create_note tool, the prompts, or the tool registry.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/spf13/cast"

	"contentful-mcp/internal/logger"
	"contentful-mcp/internal/mcp"
	"contentful-mcp/internal/notes"
	"contentful-mcp/internal/tools"
)

// ErrNotServing is returned for requests that arrive before Start
var ErrNotServing = errors.New("dispatcher is not serving")

// ErrUnknownPrompt is returned by GetPrompt for any name but summarize_notes
var ErrUnknownPrompt = fmt.Errorf("%w: Unknown prompt", mcp.ErrNotFound)

// NoteListener is told about every note created through create_note
type NoteListener func(note notes.Note)

type Dispatcher struct {
	notes    *notes.Store
	registry tools.ToolRegistry
	logger   *logger.Logger

	serving atomic.Bool

	mu        sync.RWMutex
	listeners []NoteListener
}

func New(store *notes.Store, registry tools.ToolRegistry, log *logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.Nop()
	}
	return &Dispatcher{notes: store, registry: registry, logger: log}
}

// Start moves the dispatcher from uninitialized to serving. Tool modules
// must have finished registering by then.
func (d *Dispatcher) Start() {
	if d.serving.CompareAndSwap(false, true) {
		d.logger.Info("dispatcher serving",
			"tools", len(d.registry.List())+1,
			"notes", d.notes.Count(),
		)
	}
}

func (d *Dispatcher) Serving() bool {
	return d.serving.Load()
}

// OnNoteCreated adds a listener called after create_note succeeds
func (d *Dispatcher) OnNoteCreated(fn NoteListener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = append(d.listeners, fn)
}

// Dispatch routes a request to the matching operation
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (Response, error) {
	switch r := req.(type) {
	case ListResourcesRequest:
		resources, err := d.ListResources(ctx)
		if err != nil {
			return nil, err
		}
		return ListResourcesResponse{Resources: resources}, nil
	case ReadResourceRequest:
		contents, err := d.ReadResource(ctx, r.URI)
		if err != nil {
			return nil, err
		}
		return ReadResourceResponse{Contents: contents}, nil
	case ListToolsRequest:
		descriptors, err := d.ListTools(ctx)
		if err != nil {
			return nil, err
		}
		return ListToolsResponse{Tools: descriptors}, nil
	case CallToolRequest:
		result, err := d.CallTool(ctx, r.Name, r.Arguments)
		if err != nil {
			return nil, err
		}
		return CallToolResponse{Result: result}, nil
	case ListPromptsRequest:
		prompts, err := d.ListPrompts(ctx)
		if err != nil {
			return nil, err
		}
		return ListPromptsResponse{Prompts: prompts}, nil
	case GetPromptRequest:
		prompt, err := d.GetPrompt(ctx, r.Name)
		if err != nil {
			return nil, err
		}
		return prompt, nil
	default:
		return nil, fmt.Errorf("%w: unsupported request %T", mcp.ErrInvalidArgument, req)
	}
}

// ListResources returns one resource per note, ordered by numeric id
func (d *Dispatcher) ListResources(ctx context.Context) ([]Resource, error) {
	if err := d.ready(ctx); err != nil {
		return nil, err
	}

	list := d.notes.List()
	resources := make([]Resource, 0, len(list))
	for _, n := range list {
		resources = append(resources, NoteResource(n))
	}
	return resources, nil
}

func (d *Dispatcher) ReadResource(ctx context.Context, uri string) ([]mcp.ResourceContents, error) {
	if err := d.ready(ctx); err != nil {
		return nil, err
	}

	id, err := notes.IDFromURI(uri)
	if err != nil {
		return nil, err
	}
	note, err := d.notes.Get(id)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{{
		URI:      uri,
		MimeType: mcp.MimeTypeText,
		Text:     note.Content,
	}}, nil
}

// ListTools returns create_note followed by the registry in registration order
func (d *Dispatcher) ListTools(ctx context.Context) ([]tools.Descriptor, error) {
	if err := d.ready(ctx); err != nil {
		return nil, err
	}

	registered := d.registry.List()
	descriptors := make([]tools.Descriptor, 0, len(registered)+1)
	descriptors = append(descriptors, createNoteDescriptor)
	return append(descriptors, registered...), nil
}

// CallTool runs create_note itself and hands everything else to the
// registered handler. Handler results and errors pass through unchanged.
func (d *Dispatcher) CallTool(ctx context.Context, name string, args map[string]any) (mcp.ToolResult, error) {
	if err := d.ready(ctx); err != nil {
		return nil, err
	}

	if name == CreateNoteTool {
		return d.createNote(args)
	}

	handler, err := d.registry.Handler(name)
	if err != nil {
		return nil, err
	}
	return handler.Handle(ctx, mcp.CallToolRequest{Name: name, Arguments: args})
}

func (d *Dispatcher) ListPrompts(ctx context.Context) ([]Prompt, error) {
	if err := d.ready(ctx); err != nil {
		return nil, err
	}
	return []Prompt{summarizeNotes}, nil
}

// GetPrompt builds the summarize_notes prompt: a lead-in, every note as an
// embedded resource, then the closing instruction.
func (d *Dispatcher) GetPrompt(ctx context.Context, name string) (GetPromptResponse, error) {
	if err := d.ready(ctx); err != nil {
		return GetPromptResponse{}, err
	}
	if name != SummarizeNotesPrompt {
		return GetPromptResponse{}, ErrUnknownPrompt
	}

	list := d.notes.List()
	messages := make([]PromptMessage, 0, len(list)+2)
	messages = append(messages, PromptMessage{
		Role:    RoleUser,
		Content: mcp.NewTextContent("Please summarize the following notes:"),
	})
	for _, n := range list {
		messages = append(messages, PromptMessage{
			Role:    RoleUser,
			Content: mcp.NewEmbeddedResource(n.URI(), mcp.MimeTypeText, n.Content),
		})
	}
	messages = append(messages, PromptMessage{
		Role:    RoleUser,
		Content: mcp.NewTextContent("Provide a concise summary of all the notes above."),
	})

	return GetPromptResponse{Description: summarizeNotes.Description, Messages: messages}, nil
}

// NoteResource describes a note as a listable resource
func NoteResource(n notes.Note) Resource {
	return Resource{
		URI:         n.URI(),
		MimeType:    mcp.MimeTypeText,
		Name:        n.Title,
		Description: "A text note: " + n.Title,
	}
}

func (d *Dispatcher) createNote(args map[string]any) (mcp.ToolResult, error) {
	note, err := d.notes.Create(cast.ToString(args["title"]), cast.ToString(args["content"]))
	if err != nil {
		return nil, err
	}

	d.logger.Info("note created", "id", note.ID, "title", note.Title)

	d.mu.RLock()
	listeners := d.listeners
	d.mu.RUnlock()
	for _, fn := range listeners {
		fn(note)
	}

	return mcp.NewTextResult(fmt.Sprintf("Created note %s: %s", note.ID, note.Title)), nil
}

func (d *Dispatcher) ready(ctx context.Context) error {
	if !d.serving.Load() {
		return ErrNotServing
	}
	return ctx.Err()
}
