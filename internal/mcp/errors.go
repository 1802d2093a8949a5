package mcp

import "fmt"

// Error taxonomy shared by the dispatcher and every tool module.
// Callers wrap these with fmt.Errorf("%w: ...") and match with errors.Is.
var (
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrNotFound        = fmt.Errorf("not found")
	ErrUpstreamFailure = fmt.Errorf("upstream failure")
	ErrSchemaIntegrity = fmt.Errorf("schema integrity failure")
)
