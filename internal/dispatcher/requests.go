package dispatcher

import (
	"encoding/json"

	"contentful-mcp/internal/mcp"
	"contentful-mcp/internal/tools"
)

// Request is one of the six inbound request kinds. The set is closed: only
// types in this package implement it.
type Request interface {
	isRequest()
}

type ListResourcesRequest struct{}

type ReadResourceRequest struct {
	URI string
}

type ListToolsRequest struct{}

type CallToolRequest struct {
	Name      string
	Arguments map[string]any
}

type ListPromptsRequest struct{}

type GetPromptRequest struct {
	Name      string
	Arguments map[string]string
}

func (ListResourcesRequest) isRequest() {}
func (ReadResourceRequest) isRequest()  {}
func (ListToolsRequest) isRequest()     {}
func (CallToolRequest) isRequest()      {}
func (ListPromptsRequest) isRequest()   {}
func (GetPromptRequest) isRequest()     {}

// Response is the typed result of a Request
type Response interface {
	isResponse()
}

// Resource describes one listable resource
type Resource struct {
	URI         string `json:"uri"`
	MimeType    string `json:"mimeType"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Prompt describes one prompt template
type Prompt struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// PromptMessage is a single message of a prompt; Content is text or an embedded resource
type PromptMessage struct {
	Role    string      `json:"role"`
	Content mcp.Content `json:"content"`
}

type ListResourcesResponse struct {
	Resources []Resource
}

type ReadResourceResponse struct {
	Contents []mcp.ResourceContents
}

type ListToolsResponse struct {
	Tools []tools.Descriptor
}

type CallToolResponse struct {
	Result mcp.ToolResult
}

type ListPromptsResponse struct {
	Prompts []Prompt
}

type GetPromptResponse struct {
	Description string
	Messages    []PromptMessage
}

func (ListResourcesResponse) isResponse() {}
func (ReadResourceResponse) isResponse()  {}
func (ListToolsResponse) isResponse()     {}
func (CallToolResponse) isResponse()      {}
func (ListPromptsResponse) isResponse()   {}
func (GetPromptResponse) isResponse()     {}

const (
	CreateNoteTool = "create_note"

	SummarizeNotesPrompt = "summarize_notes"

	RoleUser = "user"
)

var createNoteSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"title": {
			"type": "string",
			"description": "Title of the note"
		},
		"content": {
			"type": "string",
			"description": "Text content of the note"
		}
	},
	"required": ["title", "content"]
}`)

// createNoteDescriptor is listed ahead of every registered tool
var createNoteDescriptor = tools.Descriptor{
	Name:        CreateNoteTool,
	Description: "Create a new note",
	InputSchema: createNoteSchema,
}

var summarizeNotes = Prompt{
	Name:        SummarizeNotesPrompt,
	Description: "Summarize all notes",
}
