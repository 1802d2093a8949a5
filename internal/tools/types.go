package tools

import (
	"encoding/json"
	"fmt"

	"contentful-mcp/internal/mcp"
)

// Descriptor is what tools/list reports for one tool. Immutable once registered.
type Descriptor struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

// ToolRegistry maps tool names to descriptors, kept in registration order,
// and to handlers. Tool modules register once at startup; there is no removal.
type ToolRegistry interface {
	RegisterTool(descriptor Descriptor) error
	RegisterToolHandler(name string, handler mcp.ToolHandler) error

	// Register validates the tool and records its descriptor and handler together
	Register(tool mcp.Tool) error

	List() []Descriptor
	Handler(name string) (mcp.ToolHandler, error)
}

var (
	ErrToolNotFound      = fmt.Errorf("%w: Unknown tool", mcp.ErrNotFound)
	ErrToolAlreadyExists = fmt.Errorf("tool already exists")
	ErrInvalidToolName   = fmt.Errorf("invalid tool name")
	ErrToolValidation    = fmt.Errorf("tool validation failed")
)

// ValidationError represents a validation error with details
type ValidationError struct {
	Field   string `json:"field"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error in field '%s' (value: '%s'): %s", e.Field, e.Value, e.Message)
}

// ValidationErrors represents multiple validation errors
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	return fmt.Sprintf("%d validation errors: %s (and %d more)", len(e), e[0].Error(), len(e)-1)
}

// Add appends a validation error
func (e *ValidationErrors) Add(field, value, message string) {
	*e = append(*e, ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	})
}

// HasErrors returns true if there are validation errors
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}
