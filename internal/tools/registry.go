package tools

import (
	"fmt"
	"sync"

	"contentful-mcp/internal/logger"
	"contentful-mcp/internal/mcp"
)

// DefaultToolRegistry implements ToolRegistry. Duplicate names are rejected
// for both descriptors and handlers.
type DefaultToolRegistry struct {
	descriptors []Descriptor
	names       map[string]struct{}
	handlers    map[string]mcp.ToolHandler
	logger      *logger.Logger
	validator   *ToolValidator
	mu          sync.RWMutex
}

// NewDefaultToolRegistry creates a new tool registry instance
func NewDefaultToolRegistry(log *logger.Logger) *DefaultToolRegistry {
	if log == nil {
		log = logger.Nop()
	}
	return &DefaultToolRegistry{
		names:     make(map[string]struct{}),
		handlers:  make(map[string]mcp.ToolHandler),
		logger:    log,
		validator: NewToolValidator(log),
	}
}

// RegisterTool implements ToolRegistry.RegisterTool
func (r *DefaultToolRegistry) RegisterTool(descriptor Descriptor) error {
	if err := r.validateDescriptor(descriptor); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkDescriptorFree(descriptor.Name); err != nil {
		return err
	}
	r.addDescriptor(descriptor)

	r.logger.Debug("tool descriptor registered", "name", descriptor.Name)
	return nil
}

// RegisterToolHandler implements ToolRegistry.RegisterToolHandler
func (r *DefaultToolRegistry) RegisterToolHandler(name string, handler mcp.ToolHandler) error {
	if handler == nil {
		return fmt.Errorf("%w: handler for %s cannot be nil", ErrToolValidation, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkHandlerFree(name); err != nil {
		return err
	}
	r.handlers[name] = handler

	r.logger.Debug("tool handler registered", "name", name)
	return nil
}

// Register implements ToolRegistry.Register
func (r *DefaultToolRegistry) Register(tool mcp.Tool) error {
	name := tool.Name()

	r.logger.Info("registering tool",
		"name", name,
		"description", tool.Description(),
	)

	if err := r.validator.ValidateTool(tool); err != nil {
		r.logger.Error("tool validation failed",
			"name", name,
			"error", err,
		)
		return fmt.Errorf("%w: %v", ErrToolValidation, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkDescriptorFree(name); err != nil {
		return err
	}
	if err := r.checkHandlerFree(name); err != nil {
		return err
	}

	r.addDescriptor(Descriptor{
		Name:        name,
		Description: tool.Description(),
		InputSchema: tool.Parameters(),
	})
	r.handlers[name] = tool.Handler()

	r.logger.Info("tool registered successfully", "name", name)
	return nil
}

// List implements ToolRegistry.List. The slice is a copy in registration order.
func (r *DefaultToolRegistry) List() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Descriptor, len(r.descriptors))
	copy(result, r.descriptors)
	return result
}

// Handler implements ToolRegistry.Handler
func (r *DefaultToolRegistry) Handler(name string) (mcp.ToolHandler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handler, exists := r.handlers[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	return handler, nil
}

func (r *DefaultToolRegistry) validateDescriptor(descriptor Descriptor) error {
	if err := r.validator.ValidateName(descriptor.Name); err != nil {
		r.logger.Error("tool name validation failed",
			"name", descriptor.Name,
			"error", err,
		)
		return fmt.Errorf("%w: %v", ErrInvalidToolName, err)
	}

	if err := r.validator.ValidateDescriptor(descriptor); err != nil {
		r.logger.Error("tool descriptor validation failed",
			"name", descriptor.Name,
			"error", err,
		)
		return fmt.Errorf("%w: %v", ErrToolValidation, err)
	}

	return nil
}

func (r *DefaultToolRegistry) checkDescriptorFree(name string) error {
	if _, exists := r.names[name]; exists {
		r.logger.Error("tool already registered", "name", name)
		return fmt.Errorf("%w: %s", ErrToolAlreadyExists, name)
	}
	return nil
}

func (r *DefaultToolRegistry) checkHandlerFree(name string) error {
	if _, exists := r.handlers[name]; exists {
		r.logger.Error("tool handler already registered", "name", name)
		return fmt.Errorf("%w: %s", ErrToolAlreadyExists, name)
	}
	return nil
}

func (r *DefaultToolRegistry) addDescriptor(descriptor Descriptor) {
	r.names[descriptor.Name] = struct{}{}
	r.descriptors = append(r.descriptors, descriptor)
}
