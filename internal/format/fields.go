package format

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"
)

// property is one displayable key/value pair
type property struct {
	Key   string
	Value interface{}
}

// properties flattens a struct or map into ordered key/value pairs.
// Struct fields are named after their json tag and keep declaration order;
// map keys are sorted.
func properties(data interface{}) ([]property, bool) {
	v := reflect.ValueOf(data)
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Struct:
		t := v.Type()
		props := make([]property, 0, t.NumField())
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}
			name, omitEmpty, skip := jsonName(field)
			if skip {
				continue
			}
			value := v.Field(i)
			if omitEmpty && value.IsZero() {
				continue
			}
			props = append(props, property{Key: name, Value: value.Interface()})
		}
		return props, true
	case reflect.Map:
		keys := make([]string, 0, v.Len())
		values := make(map[string]interface{}, v.Len())
		for _, k := range v.MapKeys() {
			key := fmt.Sprint(k.Interface())
			keys = append(keys, key)
			values[key] = v.MapIndex(k).Interface()
		}
		sort.Strings(keys)
		props := make([]property, 0, len(keys))
		for _, key := range keys {
			props = append(props, property{Key: key, Value: values[key]})
		}
		return props, true
	}
	return nil, false
}

func jsonName(field reflect.StructField) (name string, omitEmpty, skip bool) {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return "", false, true
	}
	parts := strings.Split(tag, ",")
	name = parts[0]
	if name == "" {
		name = field.Name
	}
	for _, opt := range parts[1:] {
		if opt == "omitempty" {
			omitEmpty = true
		}
	}
	return name, omitEmpty, false
}

// formatHeader converts snake_case to Title Case
func formatHeader(header string) string {
	words := strings.Split(header, "_")
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + word[1:]
		}
	}
	return strings.Join(words, " ")
}

// plainValue renders a value without color
func plainValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []string:
		return strings.Join(v, "\n")
	case time.Time:
		if v.IsZero() {
			return ""
		}
		return v.Format(time.RFC3339)
	case *time.Time:
		if v == nil || v.IsZero() {
			return ""
		}
		return v.Format(time.RFC3339)
	case float32, float64:
		return fmt.Sprintf("%.2f", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
