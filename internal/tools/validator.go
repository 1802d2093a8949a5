package tools

import (
	"bytes"
	"fmt"
	neturl "net/url"
	"regexp"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"contentful-mcp/internal/logger"
	"contentful-mcp/internal/mcp"
)

// ToolValidator validates tool descriptors before they are registered
type ToolValidator struct {
	logger *logger.Logger
}

// NewToolValidator creates a new tool validator
func NewToolValidator(log *logger.Logger) *ToolValidator {
	return &ToolValidator{
		logger: log,
	}
}

var (
	// Tool name must be alphanumeric with underscores, 1-64 characters
	toolNameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]{0,63}$`)

	reservedNames = []string{
		"system", "internal", "mcp", "server", "registry", "health", "status", "admin",
		// built into the dispatcher
		"create_note",
	}
)

const maxDescriptionLength = 500

// ValidateName validates a tool name
func (v *ToolValidator) ValidateName(name string) error {
	var errors ValidationErrors

	// Check if name is empty
	if name == "" {
		errors.Add("name", name, "tool name cannot be empty")
		return errors
	}

	// Check length
	if len(name) > 64 {
		errors.Add("name", name, "tool name cannot exceed 64 characters")
	}

	// Check format
	if !toolNameRegex.MatchString(name) {
		errors.Add("name", name, "tool name must start with a letter and contain only alphanumeric characters and underscores")
	}

	// Check for reserved names
	lowerName := strings.ToLower(name)
	for _, reserved := range reservedNames {
		if lowerName == reserved {
			errors.Add("name", name, fmt.Sprintf("tool name '%s' is reserved", reserved))
			break
		}
	}

	if errors.HasErrors() {
		return errors
	}

	return nil
}

// ValidateDescriptor checks name, description and that the input schema compiles
func (v *ToolValidator) ValidateDescriptor(descriptor Descriptor) error {
	var errors ValidationErrors

	if err := v.ValidateName(descriptor.Name); err != nil {
		if valErrs, ok := err.(ValidationErrors); ok {
			errors = append(errors, valErrs...)
		} else {
			errors.Add("tool.name", descriptor.Name, err.Error())
		}
	}

	if descriptor.Description == "" {
		errors.Add("tool.description", "", "tool description cannot be empty")
	} else if len(descriptor.Description) > maxDescriptionLength {
		errors.Add("tool.description", descriptor.Description, "tool description cannot exceed 500 characters")
	}

	if err := v.ValidateInputSchema(descriptor.Name, descriptor.InputSchema); err != nil {
		errors.Add("tool.inputSchema", string(descriptor.InputSchema), err.Error())
	}

	if errors.HasErrors() {
		v.logger.Debug("tool descriptor rejected", "name", descriptor.Name, "errors", len(errors))
		return errors
	}

	return nil
}

// ValidateTool validates a tool implementation
func (v *ToolValidator) ValidateTool(tool mcp.Tool) error {
	var errors ValidationErrors

	if err := v.ValidateDescriptor(Descriptor{
		Name:        tool.Name(),
		Description: tool.Description(),
		InputSchema: tool.Parameters(),
	}); err != nil {
		if valErrs, ok := err.(ValidationErrors); ok {
			errors = append(errors, valErrs...)
		} else {
			errors.Add("tool", tool.Name(), err.Error())
		}
	}

	// Validate handler exists
	if tool.Handler() == nil {
		errors.Add("tool.handler", "nil", "tool handler cannot be nil")
	}

	if errors.HasErrors() {
		return errors
	}

	return nil
}

// ValidateInputSchema compiles the schema as JSON Schema 2020-12. Tool
// inputs must be described by an object schema.
func (v *ToolValidator) ValidateInputSchema(name string, schema []byte) error {
	if len(bytes.TrimSpace(schema)) == 0 {
		return fmt.Errorf("input schema cannot be empty")
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	url := fmt.Sprintf("mem://tools/%s.json", neturl.PathEscape(name))
	if err := compiler.AddResource(url, bytes.NewReader(schema)); err != nil {
		return fmt.Errorf("invalid JSON schema: %w", err)
	}

	compiled, err := compiler.Compile(url)
	if err != nil {
		return fmt.Errorf("invalid JSON schema: %w", err)
	}

	if len(compiled.Types) != 1 || compiled.Types[0] != "object" {
		return fmt.Errorf("input schema type must be \"object\", got %v", compiled.Types)
	}

	return nil
}
