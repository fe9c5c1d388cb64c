package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// TimeLayout is the serialized form of created_at / updated_at.
const TimeLayout = "2006-01-02T15:04:05.000000"

// Reserved attribute names managed by the record itself.
const (
	AttrID        = "id"
	AttrCreatedAt = "created_at"
	AttrUpdatedAt = "updated_at"
	AttrClass     = "__class__"
)

// FieldKind describes the storage type of a fixed field.
type FieldKind int

// Fixed field kinds.
const (
	KindString FieldKind = iota
	KindInt
	KindFloat
	KindStringList
)

// ErrInvalidValue is wrapped by Set when a value cannot be coerced into the
// target field's kind.
var ErrInvalidValue = errors.New("invalid attribute value")

type field struct {
	name string
	ptr  any
}

func (f field) kind() FieldKind {
	switch f.ptr.(type) {
	case *int:
		return KindInt
	case *float64:
		return KindFloat
	case *[]string:
		return KindStringList
	default:
		return KindString
	}
}

func (f field) value() any {
	switch p := f.ptr.(type) {
	case *string:
		return *p
	case *int:
		return *p
	case *float64:
		return *p
	case *[]string:
		out := make([]string, len(*p))
		copy(out, *p)
		return out
	}
	return nil
}

// FieldInfo describes one fixed field of a Model together with its current value.
type FieldInfo struct {
	Name  string
	Kind  FieldKind
	Value any
}

// Fields lists the fixed fields of m in declaration order.
func Fields(m Model) []FieldInfo {
	fs := m.fields()
	out := make([]FieldInfo, 0, len(fs))
	for _, f := range fs {
		out = append(out, FieldInfo{Name: f.name, Kind: f.kind(), Value: f.value()})
	}
	return out
}

// IsReserved reports whether attr is managed by the record and cannot be set.
func IsReserved(attr string) bool {
	switch attr {
	case AttrID, AttrCreatedAt, AttrUpdatedAt, AttrClass:
		return true
	}
	return false
}

// Set assigns value to attr on m. Fixed fields coerce the value to their
// kind; unknown names land in Extra. Reserved names are ignored so that the
// identifier and timestamps can never be rewritten through Set.
func Set(m Model, attr string, value any) error {
	if IsReserved(attr) {
		return nil
	}
	for _, f := range m.fields() {
		if f.name == attr {
			return assign(f, value)
		}
	}
	rec := m.Record()
	if rec.Extra == nil {
		rec.Extra = make(map[string]any)
	}
	rec.Extra[attr] = value
	return nil
}

// Touch refreshes the updated_at timestamp.
func Touch(m Model, now time.Time) {
	m.Record().UpdatedAt = now.UTC()
}

func assign(f field, value any) error {
	switch p := f.ptr.(type) {
	case *string:
		s, err := toString(value)
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		*p = s
	case *int:
		n, err := toInt(value)
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		*p = n
	case *float64:
		n, err := toFloat(value)
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		*p = n
	case *[]string:
		l, err := toStringList(value)
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		*p = l
	}
	return nil
}

func toString(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case nil:
		return "", nil
	case bool:
		return strconv.FormatBool(t), nil
	case int:
		return strconv.Itoa(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	}
	return "", fmt.Errorf("%w: cannot use %T as text", ErrInvalidValue, v)
}

func toInt(v any) (int, error) {
	switch t := v.(type) {
	case int:
		return t, nil
	case int64:
		return int(t), nil
	case float64:
		if t == math.Trunc(t) {
			return int(t), nil
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return n, nil
		}
	case nil:
		return 0, nil
	}
	return 0, fmt.Errorf("%w: cannot use %v as integer", ErrInvalidValue, v)
}

func toFloat(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case string:
		if n, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return n, nil
		}
	case nil:
		return 0, nil
	}
	return 0, fmt.Errorf("%w: cannot use %v as float", ErrInvalidValue, v)
}

func toStringList(v any) ([]string, error) {
	switch t := v.(type) {
	case []string:
		out := make([]string, len(t))
		copy(out, t)
		return out, nil
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: list item %v is not text", ErrInvalidValue, item)
			}
			out = append(out, s)
		}
		return out, nil
	case nil:
		return nil, nil
	}
	return nil, fmt.Errorf("%w: cannot use %v as list", ErrInvalidValue, v)
}

// ToMap returns the serialized attribute mapping of m, including __class__.
func ToMap(m Model) map[string]any {
	rec := m.Record()
	out := make(map[string]any, len(rec.Extra)+8)
	for k, v := range rec.Extra {
		out[k] = v
	}
	for _, f := range m.fields() {
		out[f.name] = f.value()
	}
	out[AttrID] = rec.ID
	out[AttrCreatedAt] = rec.CreatedAt.UTC().Format(TimeLayout)
	out[AttrUpdatedAt] = rec.UpdatedAt.UTC().Format(TimeLayout)
	out[AttrClass] = string(m.Class())
	return out
}

// String renders m as "[<Class>] (<id>) <attributes>" with sorted keys.
func String(m Model) string {
	attrs := ToMap(m)
	delete(attrs, AttrClass)
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(JSONValue(attrs)); err != nil {
		return fmt.Sprintf("[%s] (%s) %v", m.Class(), m.Record().ID, attrs)
	}
	return fmt.Sprintf("[%s] (%s) %s", m.Class(), m.Record().ID, strings.TrimRight(buf.String(), "\n"))
}

// ParseTime accepts TimeLayout and RFC 3339 timestamps.
func ParseTime(s string) (time.Time, error) {
	if t, err := time.Parse(TimeLayout, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

// NormalizeJSON converts values decoded with json.Decoder.UseNumber into the
// native types produced by Set callers: int64 for numbers written without a
// fraction or exponent, float64 otherwise. Nested lists and maps are normalized recursively.
func NormalizeJSON(v any) any {
	switch t := v.(type) {
	case json.Number:
		if !strings.ContainsAny(t.String(), ".eE") {
			if n, err := t.Int64(); err == nil {
				return n
			}
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = NormalizeJSON(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = NormalizeJSON(item)
		}
		return out
	}
	return v
}

// jsonFloat keeps a trailing ".0" on whole numbers so they decode as floats.
type jsonFloat float64

func (f jsonFloat) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(float64(f))
	if err != nil {
		return nil, err
	}
	if !bytes.ContainsAny(data, ".eE") {
		data = append(data, ".0"...)
	}
	return data, nil
}

// JSONValue prepares v for encoding/json so that float64 values, including
// those nested in lists and maps, survive a NormalizeJSON round trip as
// float64.
func JSONValue(v any) any {
	switch t := v.(type) {
	case float64:
		return jsonFloat(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = JSONValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = JSONValue(item)
		}
		return out
	}
	return v
}
