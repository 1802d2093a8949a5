package dispatcher

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"

	"contentful-mcp/internal/logger"
	"contentful-mcp/internal/mcp"
	"contentful-mcp/internal/notes"
	"contentful-mcp/internal/tools"
)

type stubTool struct {
	name    string
	handler mcp.ToolHandler
}

func (s *stubTool) Name() string        { return s.name }
func (s *stubTool) Description() string { return "stub tool " + s.name }
func (s *stubTool) Parameters() json.RawMessage {
	return json.RawMessage(`{"type":"object","properties":{}}`)
}
func (s *stubTool) Handler() mcp.ToolHandler { return s.handler }

// recordingHandler counts invocations and answers with a fixed result or error
type recordingHandler struct {
	mu     sync.Mutex
	calls  []mcp.CallToolRequest
	result mcp.ToolResult
	err    error
}

func (h *recordingHandler) Handle(_ context.Context, request mcp.CallToolRequest) (mcp.ToolResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, request)
	return h.result, h.err
}

func newTestDispatcher(t *testing.T, registered ...mcp.Tool) *Dispatcher {
	t.Helper()
	registry := tools.NewDefaultToolRegistry(logger.Nop())
	for _, tool := range registered {
		if err := registry.Register(tool); err != nil {
			t.Fatalf("Register(%s) unexpected error: %v", tool.Name(), err)
		}
	}
	d := New(notes.NewStore(), registry, logger.Nop())
	d.Start()
	return d
}

func TestRequestsBeforeStartFail(t *testing.T) {
	d := New(notes.NewStore(), tools.NewDefaultToolRegistry(logger.Nop()), nil)
	ctx := context.Background()

	requests := []Request{
		ListResourcesRequest{},
		ReadResourceRequest{URI: "note:///1"},
		ListToolsRequest{},
		CallToolRequest{Name: CreateNoteTool, Arguments: map[string]any{"title": "t", "content": "c"}},
		ListPromptsRequest{},
		GetPromptRequest{Name: SummarizeNotesPrompt},
	}
	for _, req := range requests {
		if _, err := d.Dispatch(ctx, req); !errors.Is(err, ErrNotServing) {
			t.Errorf("Dispatch(%T) error = %v, expected ErrNotServing", req, err)
		}
	}

	if d.notes.Count() != 2 {
		t.Errorf("Expected no note created before Start, got %d notes", d.notes.Count())
	}

	d.Start()
	if !d.Serving() {
		t.Fatal("Expected dispatcher to serve after Start")
	}
	if _, err := d.Dispatch(ctx, ListToolsRequest{}); err != nil {
		t.Errorf("Dispatch() after Start unexpected error: %v", err)
	}
}

func TestListResources(t *testing.T) {
	d := newTestDispatcher(t)

	resp, err := d.Dispatch(context.Background(), ListResourcesRequest{})
	if err != nil {
		t.Fatalf("Dispatch() unexpected error: %v", err)
	}

	expected := []Resource{
		{URI: "note:///1", MimeType: "text/plain", Name: "First Note", Description: "A text note: First Note"},
		{URI: "note:///2", MimeType: "text/plain", Name: "Second Note", Description: "A text note: Second Note"},
	}
	got := resp.(ListResourcesResponse).Resources
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Resources = %+v, expected %+v", got, expected)
	}
}

func TestReadResource(t *testing.T) {
	d := newTestDispatcher(t)

	resp, err := d.Dispatch(context.Background(), ReadResourceRequest{URI: "note:///2"})
	if err != nil {
		t.Fatalf("Dispatch() unexpected error: %v", err)
	}

	expected := []mcp.ResourceContents{{URI: "note:///2", MimeType: "text/plain", Text: "This is note 2"}}
	if got := resp.(ReadResourceResponse).Contents; !reflect.DeepEqual(got, expected) {
		t.Errorf("Contents = %+v, expected %+v", got, expected)
	}
}

func TestReadResourceNotFound(t *testing.T) {
	d := newTestDispatcher(t)

	tests := []struct {
		name string
		uri  string
	}{
		{"unknown id", "note:///99"},
		{"wrong scheme", "file:///1"},
		{"no id", "note:///"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.ReadResource(context.Background(), tt.uri)
			if !errors.Is(err, mcp.ErrNotFound) {
				t.Errorf("ReadResource(%q) error = %v, expected ErrNotFound", tt.uri, err)
			}
		})
	}

	_, err := d.ReadResource(context.Background(), "note:///99")
	if !strings.Contains(err.Error(), "Note 99 not found") {
		t.Errorf("Unexpected message: %s", err.Error())
	}
}

func TestListToolsCreateNoteFirst(t *testing.T) {
	d := newTestDispatcher(t,
		&stubTool{name: "zeta", handler: &recordingHandler{}},
		&stubTool{name: "alpha", handler: &recordingHandler{}},
	)

	descriptors, err := d.ListTools(context.Background())
	if err != nil {
		t.Fatalf("ListTools() unexpected error: %v", err)
	}

	var names []string
	for _, desc := range descriptors {
		names = append(names, desc.Name)
	}
	if !reflect.DeepEqual(names, []string{"create_note", "zeta", "alpha"}) {
		t.Errorf("names = %v, expected [create_note zeta alpha]", names)
	}

	createNote := descriptors[0]
	if createNote.Description != "Create a new note" {
		t.Errorf("Description = %q, expected 'Create a new note'", createNote.Description)
	}
	var schema struct {
		Required []string `json:"required"`
	}
	if err := json.Unmarshal(createNote.InputSchema, &schema); err != nil {
		t.Fatalf("create_note schema should be valid JSON: %v", err)
	}
	if !reflect.DeepEqual(schema.Required, []string{"title", "content"}) {
		t.Errorf("required = %v, expected [title content]", schema.Required)
	}
}

func TestCreateNote(t *testing.T) {
	d := newTestDispatcher(t)

	var created []notes.Note
	d.OnNoteCreated(func(n notes.Note) { created = append(created, n) })

	resp, err := d.Dispatch(context.Background(), CallToolRequest{
		Name:      CreateNoteTool,
		Arguments: map[string]any{"title": "x", "content": "y"},
	})
	if err != nil {
		t.Fatalf("Dispatch() unexpected error: %v", err)
	}

	result := resp.(CallToolResponse).Result
	if got := result.GetContent()[0].GetText(); got != "Created note 3: x" {
		t.Errorf("Expected 'Created note 3: x', got %q", got)
	}

	if len(created) != 1 || created[0].ID != "3" {
		t.Errorf("Expected listener to see note 3, got %+v", created)
	}

	contents, err := d.ReadResource(context.Background(), "note:///3")
	if err != nil {
		t.Fatalf("ReadResource() unexpected error: %v", err)
	}
	if contents[0].Text != "y" {
		t.Errorf("Expected content 'y', got %q", contents[0].Text)
	}

	resources, _ := d.ListResources(context.Background())
	if len(resources) != 3 || resources[2].Name != "x" {
		t.Errorf("Expected new note listed last, got %+v", resources)
	}
}

func TestCreateNoteCoercesArguments(t *testing.T) {
	d := newTestDispatcher(t)

	result, err := d.CallTool(context.Background(), CreateNoteTool, map[string]any{"title": 42, "content": true})
	if err != nil {
		t.Fatalf("CallTool() unexpected error: %v", err)
	}
	if got := result.GetContent()[0].GetText(); got != "Created note 3: 42" {
		t.Errorf("Expected 'Created note 3: 42', got %q", got)
	}
}

func TestCreateNoteRequiresTitleAndContent(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
	}{
		{"empty title", map[string]any{"title": "", "content": "y"}},
		{"missing content", map[string]any{"title": "x"}},
		{"nil title", map[string]any{"title": nil, "content": "y"}},
		{"no arguments", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDispatcher(t)
			_, err := d.CallTool(context.Background(), CreateNoteTool, tt.args)
			if !errors.Is(err, mcp.ErrInvalidArgument) {
				t.Errorf("CallTool() error = %v, expected ErrInvalidArgument", err)
			}
			if d.notes.Count() != 2 {
				t.Errorf("Expected no note created, got %d notes", d.notes.Count())
			}
		})
	}
}

func TestCallRegisteredTool(t *testing.T) {
	handler := &recordingHandler{result: mcp.NewTextResult("entries")}
	d := newTestDispatcher(t, &stubTool{name: "get_entries", handler: handler})

	args := map[string]any{"limit": 5}
	result, err := d.CallTool(context.Background(), "get_entries", args)
	if err != nil {
		t.Fatalf("CallTool() unexpected error: %v", err)
	}
	if result != handler.result {
		t.Error("Expected handler result returned verbatim")
	}
	if len(handler.calls) != 1 {
		t.Fatalf("Expected one handler call, got %d", len(handler.calls))
	}
	if handler.calls[0].Name != "get_entries" || !reflect.DeepEqual(handler.calls[0].Arguments, args) {
		t.Errorf("Unexpected request passed to handler: %+v", handler.calls[0])
	}
}

func TestCallToolHandlerErrorPropagates(t *testing.T) {
	failure := errors.New("boom")
	handler := &recordingHandler{err: failure}
	d := newTestDispatcher(t, &stubTool{name: "get_asset", handler: handler})

	_, err := d.CallTool(context.Background(), "get_asset", nil)
	if !errors.Is(err, failure) {
		t.Errorf("Expected handler error to propagate, got %v", err)
	}
}

func TestCallUnknownTool(t *testing.T) {
	d := newTestDispatcher(t)

	_, err := d.CallTool(context.Background(), "nope", nil)
	if !errors.Is(err, mcp.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "Unknown tool") {
		t.Errorf("Expected 'Unknown tool' in message, got %s", err.Error())
	}
}

func TestPrompts(t *testing.T) {
	d := newTestDispatcher(t)

	resp, err := d.Dispatch(context.Background(), ListPromptsRequest{})
	if err != nil {
		t.Fatalf("Dispatch() unexpected error: %v", err)
	}
	expected := []Prompt{{Name: "summarize_notes", Description: "Summarize all notes"}}
	if got := resp.(ListPromptsResponse).Prompts; !reflect.DeepEqual(got, expected) {
		t.Errorf("Prompts = %+v, expected %+v", got, expected)
	}
}

func TestGetPromptSummarizeNotes(t *testing.T) {
	d := newTestDispatcher(t)

	resp, err := d.Dispatch(context.Background(), GetPromptRequest{Name: SummarizeNotesPrompt})
	if err != nil {
		t.Fatalf("Dispatch() unexpected error: %v", err)
	}

	prompt := resp.(GetPromptResponse)
	if len(prompt.Messages) != 4 {
		t.Fatalf("Expected 4 messages, got %d", len(prompt.Messages))
	}

	for i, msg := range prompt.Messages {
		if msg.Role != RoleUser {
			t.Errorf("message %d role = %q, expected user", i, msg.Role)
		}
	}

	first, last := prompt.Messages[0].Content, prompt.Messages[3].Content
	if first.Type() != "text" || first.GetText() != "Please summarize the following notes:" {
		t.Errorf("Unexpected lead-in: %s %q", first.Type(), first.GetText())
	}
	if last.Type() != "text" || last.GetText() != "Provide a concise summary of all the notes above." {
		t.Errorf("Unexpected trailer: %s %q", last.Type(), last.GetText())
	}

	for i, id := range []string{"1", "2"} {
		embedded, ok := prompt.Messages[i+1].Content.(*mcp.EmbeddedResource)
		if !ok {
			t.Fatalf("message %d: expected embedded resource, got %T", i+1, prompt.Messages[i+1].Content)
		}
		if embedded.URI != "note:///"+id || embedded.MimeType != "text/plain" || embedded.Text != "This is note "+id {
			t.Errorf("message %d: unexpected resource %+v", i+1, embedded)
		}
	}
}

func TestGetPromptUnknown(t *testing.T) {
	d := newTestDispatcher(t)

	_, err := d.GetPrompt(context.Background(), "other")
	if !errors.Is(err, mcp.ErrNotFound) || !errors.Is(err, ErrUnknownPrompt) {
		t.Errorf("Expected ErrUnknownPrompt, got %v", err)
	}
	if err.Error() != "not found: Unknown prompt" {
		t.Errorf("Unexpected message: %s", err.Error())
	}
}

func TestCancelledContext(t *testing.T) {
	d := newTestDispatcher(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := d.ListTools(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestConcurrentCreateNote(t *testing.T) {
	d := newTestDispatcher(t)

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := d.CallTool(context.Background(), CreateNoteTool, map[string]any{"title": "t", "content": "c"}); err != nil {
				t.Errorf("CallTool() unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	resources, _ := d.ListResources(context.Background())
	if len(resources) != workers+2 {
		t.Fatalf("Expected %d notes, got %d", workers+2, len(resources))
	}
	seen := make(map[string]bool)
	for _, r := range resources {
		if seen[r.URI] {
			t.Errorf("Duplicate note URI %s", r.URI)
		}
		seen[r.URI] = true
	}
}
