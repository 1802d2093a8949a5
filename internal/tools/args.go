package tools

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"contentful-mcp/internal/mcp"
)

// MaxLimit caps page sizes requested through a limit argument
const MaxLimit = 1000

// RequiredString coerces args[key] to text and fails with message when it is
// missing or empty
func RequiredString(args map[string]any, key, message string) (string, error) {
	value := OptionalString(args, key)
	if value == "" {
		return "", fmt.Errorf("%w: %s", mcp.ErrInvalidArgument, message)
	}
	return value, nil
}

// OptionalString coerces args[key] to text, "" when absent or uncoercible
func OptionalString(args map[string]any, key string) string {
	value, ok := args[key]
	if !ok || value == nil {
		return ""
	}
	s, err := cast.ToStringE(value)
	if err != nil {
		return ""
	}
	return s
}

// Limit reads a page size. Absent, non-numeric and non-positive values fall
// back to def; anything above MaxLimit is capped.
func Limit(args map[string]any, key string, def int) int {
	value, ok := args[key]
	if !ok || value == nil {
		return def
	}

	n, err := cast.ToIntE(value)
	if err != nil || n <= 0 {
		return def
	}
	if n > MaxLimit {
		return MaxLimit
	}
	return n
}

// StringSlice reads a list of ids. A single string is split on commas.
// Entries are trimmed and empty ones dropped.
func StringSlice(args map[string]any, key string) []string {
	value, ok := args[key]
	if !ok || value == nil {
		return nil
	}

	var raw []string
	if s, isString := value.(string); isString {
		raw = strings.Split(s, ",")
	} else {
		items, err := cast.ToStringSliceE(value)
		if err != nil {
			return nil
		}
		raw = items
	}

	var result []string
	for _, item := range raw {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}
