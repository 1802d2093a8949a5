// Package serialize renders delivery API payloads as indented JSON text.
//
// Resolved links make entries point back at each other, so a plain
// json.Marshal would recurse forever. Serialize walks the value itself and
// collapses any map, slice or pointer that is met again while it is still
// being walked into a reduced {"id", "type"} placeholder taken from its sys
// block. Values shared between siblings are not cycles and are written out in
// full each time.
package serialize

import (
	"bytes"
	"encoding"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

var (
	marshalerType     = reflect.TypeOf((*json.Marshaler)(nil)).Elem()
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
	numberType        = reflect.TypeOf(json.Number(""))
)

// Serialize never fails. Values JSON cannot represent are dropped from
// objects and written as null inside arrays; NaN and infinities become null.
func Serialize(v any) string {
	w := newWalker()

	tree, ok := w.walk(reflect.ValueOf(v))
	if !ok {
		tree = nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(tree); err != nil {
		return "null"
	}

	return strings.TrimSuffix(buf.String(), "\n")
}

// ref identifies a container on the current path. Slices need the length
// too since a prefix of a slice shares its data pointer, and pointers need the
// type since a struct and its first field share an address.
type ref struct {
	ptr uintptr
	typ reflect.Type
	len int
}

type walker struct {
	path map[ref]struct{}
}

func newWalker() *walker {
	return &walker{path: make(map[ref]struct{})}
}

func (w *walker) enter(r ref) bool {
	if _, seen := w.path[r]; seen {
		return false
	}
	w.path[r] = struct{}{}
	return true
}

func (w *walker) leave(r ref) {
	delete(w.path, r)
}

// walk converts v into a tree of plain JSON values. The boolean is false when
// v has no JSON representation at all.
func (w *walker) walk(v reflect.Value) (any, bool) {
	if !v.IsValid() {
		return nil, true
	}

	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return nil, true
		}
		return w.walk(v.Elem())
	case reflect.Pointer:
		if v.IsNil() {
			return nil, true
		}
	}

	if out, handled := marshalValue(v); handled {
		return out, true
	}

	switch v.Kind() {
	case reflect.Pointer:
		r := ref{ptr: v.Pointer(), typ: v.Type()}
		if !w.enter(r) {
			return placeholder(v.Elem()), true
		}
		defer w.leave(r)
		return w.walk(v.Elem())

	case reflect.Map:
		if v.IsNil() {
			return nil, true
		}
		// named map types share identity with the plain map they convert from
		r := ref{ptr: v.Pointer()}
		if !w.enter(r) {
			return placeholder(v), true
		}
		defer w.leave(r)
		return w.walkMap(v), true

	case reflect.Slice:
		if v.IsNil() {
			return nil, true
		}
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return v.Bytes(), true
		}
		if v.Len() > 0 {
			r := ref{ptr: v.Pointer(), typ: v.Type(), len: v.Len()}
			if !w.enter(r) {
				return placeholder(v), true
			}
			defer w.leave(r)
		}
		return w.walkList(v), true

	case reflect.Array:
		return w.walkList(v), true

	case reflect.Struct:
		out := make(map[string]any)
		w.walkStruct(v, out)
		return out, true

	case reflect.String:
		if v.Type() == numberType {
			if n := v.String(); json.Valid([]byte(n)) {
				return json.Number(n), true
			}
		}
		return v.String(), true

	case reflect.Bool:
		return v.Bool(), true

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), true

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint(), true

	case reflect.Float32, reflect.Float64:
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, true
		}
		if v.Kind() == reflect.Float32 {
			return float32(f), true
		}
		return f, true
	}

	// funcs, channels, complex numbers and unsafe pointers
	return nil, false
}

func (w *walker) walkMap(v reflect.Value) map[string]any {
	out := make(map[string]any, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		value, ok := w.walk(iter.Value())
		if !ok {
			continue
		}
		out[mapKey(iter.Key())] = value
	}
	return out
}

func (w *walker) walkList(v reflect.Value) []any {
	out := make([]any, v.Len())
	for i := 0; i < v.Len(); i++ {
		value, ok := w.walk(v.Index(i))
		if !ok {
			value = nil
		}
		out[i] = value
	}
	return out
}

func (w *walker) walkStruct(v reflect.Value, out map[string]any) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name, omitEmpty, skip := fieldName(field)
		if skip {
			continue
		}

		fv := v.Field(i)
		if field.Anonymous && name == "" && fv.Kind() == reflect.Struct {
			w.walkStruct(fv, out)
			continue
		}
		if !field.IsExported() {
			continue
		}
		if name == "" {
			name = field.Name
		}
		if omitEmpty && fv.IsZero() {
			continue
		}

		value, ok := w.walk(fv)
		if !ok {
			continue
		}
		out[name] = value
	}
}

// marshalValue defers to the value's own JSON or text encoding when it has one
func marshalValue(v reflect.Value) (any, bool) {
	if !v.CanInterface() {
		return nil, false
	}

	if v.Type().Implements(marshalerType) {
		raw, err := v.Interface().(json.Marshaler).MarshalJSON()
		if err != nil || !json.Valid(raw) {
			return nil, true
		}
		return json.RawMessage(raw), true
	}

	if v.Type().Implements(textMarshalerType) {
		text, err := v.Interface().(encoding.TextMarshaler).MarshalText()
		if err != nil {
			return nil, true
		}
		return string(text), true
	}

	return nil, false
}

// placeholder keeps only sys.id and sys.type; absent keys are left out
func placeholder(v reflect.Value) map[string]any {
	out := make(map[string]any)

	sys, ok := member(v, "sys")
	if !ok {
		return out
	}

	for _, key := range []string{"id", "type"} {
		field, ok := member(sys, key)
		if !ok {
			continue
		}
		if value, ok := newWalker().walk(field); ok && value != nil {
			out[key] = value
		}
	}
	return out
}

// member looks a key up on a string-keyed map or a struct's JSON field names
func member(v reflect.Value, name string) (reflect.Value, bool) {
	for v.IsValid() && (v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer) {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return reflect.Value{}, false
	}

	switch v.Kind() {
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return reflect.Value{}, false
		}
		value := v.MapIndex(reflect.ValueOf(name).Convert(v.Type().Key()))
		return value, value.IsValid()

	case reflect.Struct:
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}
			tagName, _, skip := fieldName(field)
			if skip {
				continue
			}
			if tagName == name || (tagName == "" && strings.EqualFold(field.Name, name)) {
				return v.Field(i), true
			}
		}
	}

	return reflect.Value{}, false
}

func fieldName(field reflect.StructField) (name string, omitEmpty, skip bool) {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return "", false, true
	}

	name, opts, _ := strings.Cut(tag, ",")
	for _, opt := range strings.Split(opts, ",") {
		if opt == "omitempty" {
			omitEmpty = true
		}
	}
	return name, omitEmpty, false
}

func mapKey(k reflect.Value) string {
	switch k.Kind() {
	case reflect.String:
		return k.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(k.Uint(), 10)
	}
	if k.CanInterface() {
		if tm, ok := k.Interface().(encoding.TextMarshaler); ok {
			if text, err := tm.MarshalText(); err == nil {
				return string(text)
			}
		}
		return fmt.Sprint(k.Interface())
	}
	return k.String()
}
