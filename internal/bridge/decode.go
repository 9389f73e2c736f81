package bridge

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// decoder fills the typed document from the loosely-typed one. Scalars are
// taken as-is: an identifier must already be a string, so numbers and
// booleans are never reformatted into routing keys.
type decoder struct {
	violations []string
	// failed holds paths whose value was rejected; checks on them or
	// anything below them would only repeat the problem.
	failed []string
}

func (d *decoder) reject(path, format string, args ...any) {
	d.violations = append(d.violations, path+": "+fmt.Sprintf(format, args...))
	d.failed = append(d.failed, path)
}

// covers reports whether path is at or below a rejected value.
func (d *decoder) covers(path string) bool {
	for _, p := range d.failed {
		if path == p || strings.HasPrefix(path, p+".") || strings.HasPrefix(path, p+"[") {
			return true
		}
	}
	return false
}

// value decodes raw into v. A null leaves v at its zero value.
func (d *decoder) value(raw any, v reflect.Value, path string) {
	if raw == nil {
		return
	}
	switch v.Kind() {
	case reflect.Ptr:
		elem := reflect.New(v.Type().Elem())
		before := len(d.failed)
		d.value(raw, elem.Elem(), path)
		if len(d.failed) == before {
			v.Set(elem)
		}
	case reflect.Struct:
		d.mapping(raw, v, path)
	case reflect.Slice:
		items, ok := raw.([]any)
		if !ok {
			d.reject(path, "expected a list, got %s", describeValue(raw))
			return
		}
		s := reflect.MakeSlice(v.Type(), len(items), len(items))
		for i, item := range items {
			itemPath := fmt.Sprintf("%s[%d]", path, i)
			if item == nil {
				d.reject(itemPath, "expected a mapping, got null")
				continue
			}
			d.value(item, s.Index(i), itemPath)
		}
		v.Set(s)
	case reflect.String:
		s, ok := raw.(string)
		if !ok {
			d.reject(path, "expected a string, got %s", describeValue(raw))
			return
		}
		v.SetString(s)
	case reflect.Bool:
		b, ok := raw.(bool)
		if !ok {
			d.reject(path, "expected a boolean, got %s", describeValue(raw))
			return
		}
		v.SetBool(b)
	default:
		panic(fmt.Sprintf("bridge: no decoder for %s", v.Type()))
	}
}

func (d *decoder) mapping(raw any, v reflect.Value, path string) {
	entries, ok := mappingEntries(raw)
	if !ok {
		d.reject(path, "expected a mapping, got %s", describeValue(raw))
		return
	}
	fields := yamlFieldIndex(v.Type())
	for _, e := range entries {
		name, isString := e.key.(string)
		fieldPath := joinPath(path, fmt.Sprint(e.key))
		idx, known := fields[name]
		if !isString || !known {
			d.violations = append(d.violations, fmt.Sprintf("unknown field %q", fieldPath))
			continue
		}
		d.value(e.val, v.Field(idx), fieldPath)
	}
}

type entry struct {
	key any
	val any
}

// mappingEntries lists a decoded mapping's entries ordered by key. yaml.v3
// produces map[any]any when any key is not a string.
func mappingEntries(raw any) ([]entry, bool) {
	var entries []entry
	switch m := raw.(type) {
	case map[string]any:
		for k, v := range m {
			entries = append(entries, entry{k, v})
		}
	case map[any]any:
		for k, v := range m {
			entries = append(entries, entry{k, v})
		}
	default:
		return nil, false
	}
	sort.Slice(entries, func(i, j int) bool {
		return fmt.Sprint(entries[i].key) < fmt.Sprint(entries[j].key)
	})
	return entries, true
}

func describeValue(raw any) string {
	switch v := raw.(type) {
	case nil:
		return "null"
	case bool:
		return fmt.Sprintf("boolean %t", v)
	case int, int64, uint64, float64:
		return fmt.Sprintf("number %v", v)
	case string:
		return fmt.Sprintf("string %q", v)
	case []any:
		return "a list"
	case map[string]any, map[any]any:
		return "a mapping"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func yamlFieldIndex(t reflect.Type) map[string]int {
	m := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if name := yamlName(t.Field(i)); name != "" {
			m[name] = i
		}
	}
	return m
}

func yamlName(f reflect.StructField) string {
	tag := f.Tag.Get("yaml")
	if tag == "" || tag == "-" {
		return ""
	}
	return strings.Split(tag, ",")[0]
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
