// Package extract builds a plain-text digest of entries from the text fields
// their content types declare.
package extract

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/spf13/cast"

	"contentful-mcp/internal/contentful"
	"contentful-mcp/internal/mcp"
)

// ErrContentTypeNotFound aborts an extraction when an entry's schema is missing
var ErrContentTypeNotFound = fmt.Errorf("%w: Extract Content From Entries: Content type not found for entry", mcp.ErrSchemaIntegrity)

var excludedFields = []*regexp.Regexp{
	regexp.MustCompile(`(?i)slug`),
	regexp.MustCompile(`(?i)url`),
	regexp.MustCompile(`(?i)file`),
}

// Extractor resolves localized values with an explicit locale. When an entry
// lacks that locale the alphabetically first one is used, so the result does
// not depend on map order.
type Extractor struct {
	Locale string
}

func New(locale string) *Extractor {
	return &Extractor{Locale: locale}
}

// Extract renders "{apiName}: {text}" lines per relevant field with a blank
// line after each entry. It fails without partial output if any entry's
// content type is not among contentTypes.
func (x *Extractor) Extract(entries []contentful.Entry, contentTypes []contentful.ContentType) (string, error) {
	schemas := make(map[string][]contentful.Field, len(contentTypes))
	for _, ct := range contentTypes {
		fields, err := ct.FieldDescriptors()
		if err != nil {
			return "", fmt.Errorf("%w: %v", mcp.ErrSchemaIntegrity, err)
		}
		schemas[ct.ID()] = fields
	}

	var b strings.Builder
	for _, entry := range entries {
		fields, ok := schemas[entry.ContentTypeID()]
		if !ok {
			return "", fmt.Errorf("%w (entry %s, content type %q)", ErrContentTypeNotFound, entry.ID(), entry.ContentTypeID())
		}

		values := entry.Fields()
		for _, field := range fields {
			if !relevant(field) {
				continue
			}

			raw, present := values[field.Key()]
			if !present || falsy(raw) {
				continue
			}

			if text := x.transform(x.localize(raw, field), field); text != "" {
				fmt.Fprintf(&b, "%s: %s\n", field.Key(), text)
			}
		}

		b.WriteString("\n")
	}

	return strings.TrimSpace(b.String()), nil
}

func relevant(field contentful.Field) bool {
	for _, re := range excludedFields {
		if re.MatchString(field.Key()) {
			return false
		}
	}

	switch field.Type {
	case "RichText", "Symbol", "Text":
		return true
	default:
		return false
	}
}

// localize unwraps a locale mapping. A rich text document is a mapping too,
// told apart by its nodeType.
func (x *Extractor) localize(raw any, field contentful.Field) any {
	m, ok := raw.(map[string]any)
	if !ok || (field.Type == "RichText" && isRichTextNode(m)) {
		return raw
	}

	if value, ok := m[x.Locale]; ok && x.Locale != "" {
		return value
	}

	locales := make([]string, 0, len(m))
	for locale := range m {
		locales = append(locales, locale)
	}
	if len(locales) == 0 {
		return nil
	}
	sort.Strings(locales)
	return m[locales[0]]
}

func (x *Extractor) transform(value any, field contentful.Field) string {
	if falsy(value) {
		return ""
	}

	switch field.Type {
	case "RichText":
		doc, ok := value.(map[string]any)
		if !ok {
			return ""
		}
		return PlainText(doc)
	case "Symbol", "Text":
		return cast.ToString(value)
	default:
		return ""
	}
}

func falsy(v any) bool {
	switch value := v.(type) {
	case nil:
		return true
	case string:
		return value == ""
	case bool:
		return !value
	case float64:
		return value == 0 || value != value
	case int:
		return value == 0
	case int64:
		return value == 0
	}
	return false
}
