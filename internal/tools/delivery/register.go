package delivery

import (
	"fmt"

	"contentful-mcp/internal/tools"
)

// Registrations lists every tool module in the order tools/list reports them
var Registrations = []struct {
	Name     string
	Register func(tools.ToolRegistry, *Service) error
}{
	{"query_entries", RegisterQueryEntriesTool},
	{"get_entry", RegisterGetEntryTool},
	{"get_assets", RegisterGetAssetsTool},
	{"get_entries", RegisterGetEntriesTool},
	{"get_asset", RegisterGetAssetTool},
	{"get_content_type", RegisterGetContentTypeTool},
	{"get_content_types", RegisterGetContentTypesTool},
}

// RegisterAll registers every delivery tool, stopping at the first failure
func RegisterAll(registry tools.ToolRegistry, svc *Service) error {
	for _, r := range Registrations {
		if err := r.Register(registry, svc); err != nil {
			return fmt.Errorf("failed to register %s tool: %w", r.Name, err)
		}
	}
	return nil
}
