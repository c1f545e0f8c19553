package request

import (
	jsonlib "encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/keboola/go-utils/pkg/orderedmap"
	"github.com/spf13/cast"
)

// structFields converts exported struct fields to a values map.
// Only allowedFields are converted, all fields if allowedFields is empty.
//
// Field name is read from the `writeas` tag or from the "json" tag as fallback.
// Field with tag `readonly:"true"` is ignored.
// Field with tag `writeoptional:"true"` is converted only if the value is not empty.
func structFields(in any, allowedFields []string) (map[string]any, error) {
	v := reflect.ValueOf(in)
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, fmt.Errorf(`expected a struct, found nil`)
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, fmt.Errorf(`expected a struct, found "%T"`, in)
	}

	allowed := make(map[string]bool)
	for _, field := range allowedFields {
		allowed[field] = true
	}

	out := make(map[string]any)
	if err := collectFields(v, out, allowed); err != nil {
		return nil, err
	}
	return out, nil
}

func collectFields(in reflect.Value, out map[string]any, allowed map[string]bool) error {
	t := in.Type()
	for i := range t.NumField() {
		field := t.Field(i)
		fieldValue := in.Field(i)

		// Process embedded struct
		if field.Anonymous {
			for fieldValue.Kind() == reflect.Ptr {
				if fieldValue.IsNil() {
					break
				}
				fieldValue = fieldValue.Elem()
			}
			if fieldValue.Kind() == reflect.Struct {
				if err := collectFields(fieldValue, out, allowed); err != nil {
					return err
				}
			}
			continue
		}

		if !field.IsExported() || !fieldValue.CanInterface() || field.Tag.Get("readonly") == "true" {
			continue
		}
		if field.Tag.Get("writeoptional") == "true" && fieldValue.IsZero() {
			continue
		}

		// Get field name
		var fieldName string
		if v := field.Tag.Get("writeas"); v != "" {
			fieldName = v
		} else if v := strings.Split(field.Tag.Get("json"), ",")[0]; v != "" {
			fieldName = v
		} else {
			return fmt.Errorf(`field "%s" of %s has no json name`, field.Name, t.String())
		}

		if fieldName == "-" || (len(allowed) > 0 && !allowed[fieldName]) {
			continue
		}

		out[fieldName] = fieldValue.Interface()
	}
	return nil
}

func castToString(v any) (string, error) {
	// Ordered map is encoded as a compact JSON string
	if orderedMap, ok := v.(*orderedmap.OrderedMap); ok {
		out, err := jsonlib.Marshal(orderedMap)
		if err != nil {
			return "", fmt.Errorf(`cannot cast %T to string: %w`, v, err)
		}
		return string(out), nil
	}
	return cast.ToStringE(v)
}
