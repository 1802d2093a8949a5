package contentful

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cast"
)

// Object is a delivery API resource decoded from JSON. Linked entries and
// assets are replaced in place by the objects they point to, so an Object
// graph may contain cycles.
type Object map[string]any

type (
	Entry       = Object
	Asset       = Object
	ContentType = Object
)

// Sys returns the sys block, or nil when absent
func (o Object) Sys() map[string]any {
	return asMap(o["sys"])
}

func (o Object) ID() string {
	return cast.ToString(o.Sys()["id"])
}

func (o Object) Type() string {
	return cast.ToString(o.Sys()["type"])
}

// ContentTypeID reads sys.contentType.sys.id of an entry
func (o Object) ContentTypeID() string {
	link := asMap(o.Sys()["contentType"])
	return cast.ToString(asMap(link["sys"])["id"])
}

// Fields returns an entry's or asset's field values keyed by field id
func (o Object) Fields() map[string]any {
	return asMap(o["fields"])
}

// Field describes one field of a content type
type Field struct {
	ID        string `mapstructure:"id" json:"id"`
	APIName   string `mapstructure:"apiName" json:"apiName,omitempty"`
	Name      string `mapstructure:"name" json:"name"`
	Type      string `mapstructure:"type" json:"type"`
	LinkType  string `mapstructure:"linkType" json:"linkType,omitempty"`
	Localized bool   `mapstructure:"localized" json:"localized"`
	Required  bool   `mapstructure:"required" json:"required"`
	Disabled  bool   `mapstructure:"disabled" json:"disabled"`
	Omitted   bool   `mapstructure:"omitted" json:"omitted"`
}

// Key is the name the field's value is stored under on an entry. The
// delivery API only reports id; apiName appears in management payloads.
func (f Field) Key() string {
	if f.APIName != "" {
		return f.APIName
	}
	return f.ID
}

// FieldDescriptors decodes a content type's field list
func (o Object) FieldDescriptors() ([]Field, error) {
	raw, ok := o["fields"]
	if !ok || raw == nil {
		return nil, nil
	}

	var fields []Field
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &fields,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode fields of content type %s: %w", o.ID(), err)
	}
	return fields, nil
}

// Collection is one page of a list endpoint
type Collection struct {
	Total    int      `json:"total"`
	Skip     int      `json:"skip"`
	Limit    int      `json:"limit"`
	Items    []Object `json:"items"`
	Includes Includes `json:"includes,omitempty"`
}

// Includes carries the linked objects returned next to a page of entries
type Includes struct {
	Entry []Object `json:"Entry,omitempty"`
	Asset []Object `json:"Asset,omitempty"`
}

func asMap(v any) map[string]any {
	switch m := v.(type) {
	case map[string]any:
		return m
	case Object:
		return m
	}
	return nil
}
