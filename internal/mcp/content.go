package mcp

const MimeTypeText = "text/plain"

type TextContent struct {
	text string
}

func NewTextContent(text string) Content {
	return &TextContent{text: text}
}

func (c *TextContent) Type() string {
	return "text"
}

func (c *TextContent) GetText() string {
	return c.text
}

// EmbeddedResource carries a resource's contents inline, as used by prompt messages
type EmbeddedResource struct {
	URI      string
	MimeType string
	Text     string
}

func NewEmbeddedResource(uri, mimeType, text string) Content {
	return &EmbeddedResource{URI: uri, MimeType: mimeType, Text: text}
}

func (c *EmbeddedResource) Type() string {
	return "resource"
}

func (c *EmbeddedResource) GetText() string {
	return c.Text
}

type toolResult struct {
	content []Content
	error   error
	isError bool
}

func NewToolResult(content ...Content) ToolResult {
	return &toolResult{content: content, isError: false}
}

func NewToolError(err error) ToolResult {
	return &toolResult{error: err, isError: true}
}

// NewTextResult is shorthand for a successful result holding a single text block
func NewTextResult(text string) ToolResult {
	return NewToolResult(NewTextContent(text))
}

func (r *toolResult) IsError() bool {
	return r.isError
}

func (r *toolResult) GetContent() []Content {
	return r.content
}

func (r *toolResult) GetError() error {
	return r.error
}

// ResourceContents is one item of a resources/read response
type ResourceContents struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType"`
	Text     string `json:"text"`
}
