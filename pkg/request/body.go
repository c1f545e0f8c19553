package request

import (
	jsonlib "encoding/json"
	"fmt"
	"sort"

	"github.com/keboola/go-utils/pkg/orderedmap"
)

// Body is a JSON object request body with string fields.
// It cannot hold any other JSON value than an object.
type Body struct {
	object *orderedmap.OrderedMap
}

// NewBody creates a JSON object from the fields, keys are sorted.
func NewBody(fields map[string]string) *Body {
	b := &Body{object: orderedmap.New()}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.object.Set(k, fields[k])
	}
	return b
}

// BodyFromValues creates a JSON object from scalar values, each value is converted to a string.
// An *orderedmap.OrderedMap value is converted to a compact JSON string.
func BodyFromValues(values map[string]any) (*Body, error) {
	fields := make(map[string]string, len(values))
	for k, v := range values {
		str, err := castToString(v)
		if err != nil {
			return nil, fmt.Errorf(`body field "%s": %w`, k, err)
		}
		fields[k] = str
	}
	return NewBody(fields), nil
}

// BodyFromStruct creates a JSON object from struct fields, see BodyFromValues.
// Field names are read from the "writeas" or "json" tag, only allowedFields are used if set.
func BodyFromStruct(in any, allowedFields ...string) (*Body, error) {
	values, err := structFields(in, allowedFields)
	if err != nil {
		return nil, err
	}
	return BodyFromValues(values)
}

// Clone returns a deep copy of the body, nil stays nil.
func (b *Body) Clone() *Body {
	if b == nil {
		return nil
	}
	return &Body{object: b.object.Clone()}
}

// PushValue inserts the string field or overwrites an existing one.
func (b *Body) PushValue(key, value string) {
	b.object.Set(key, value)
}

// Value returns the string field.
func (b *Body) Value(key string) (string, bool) {
	v, found := b.object.Get(key)
	if !found {
		return "", false
	}
	str, ok := v.(string)
	return str, ok
}

// Keys returns field names in insertion order.
func (b *Body) Keys() []string {
	return b.object.Keys()
}

// Get returns the JSON object, it should be treated as read-only.
func (b *Body) Get() *orderedmap.OrderedMap {
	return b.object
}

// MarshalJSON returns a compact JSON object.
func (b *Body) MarshalJSON() ([]byte, error) {
	// Standard json encoding library is used, custom OrderedMap.MarshalJSON output is kept compact.
	return jsonlib.Marshal(b.object)
}
