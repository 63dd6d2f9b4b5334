package project

import (
	"fmt"
	"strings"

	werrors "github.com/wheelhouse/cli/internal/errors"
)

// Fetcher reads typed values out of a parsed pyproject mapping using
// dotted keys (e.g. "project.name", "tool.wheelhouse.source-include").
// Missing keys are not errors; wrong types are.
type Fetcher struct {
	data map[string]any
}

// NewFetcher wraps a parsed pyproject mapping.
func NewFetcher(data map[string]any) *Fetcher {
	return &Fetcher{data: data}
}

// Has reports whether a key is present.
func (f *Fetcher) Has(key string) bool {
	_, ok := f.lookup(key)
	return ok
}

func (f *Fetcher) lookup(key string) (any, bool) {
	cur := any(f.data)
	for _, part := range strings.Split(key, ".") {
		table, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = table[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func typeError(key, want string, got any) error {
	return werrors.NewConfigError(
		fmt.Sprintf("expected %s, got %T", want, got), key, "")
}

// String returns the string at key. ok is false when the key is absent.
func (f *Fetcher) String(key string) (value string, ok bool, err error) {
	raw, ok := f.lookup(key)
	if !ok {
		return "", false, nil
	}
	s, isStr := raw.(string)
	if !isStr {
		return "", true, typeError(key, "a string", raw)
	}
	return s, true, nil
}

// StringList returns the list of strings at key, or nil when absent.
func (f *Fetcher) StringList(key string) ([]string, error) {
	raw, ok := f.lookup(key)
	if !ok {
		return nil, nil
	}
	items, isList := raw.([]any)
	if !isList {
		return nil, typeError(key, "an array of strings", raw)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, isStr := item.(string)
		if !isStr {
			return nil, typeError(key, "an array of strings", item)
		}
		out = append(out, s)
	}
	return out, nil
}

// Table returns the sub-table at key, or nil when absent.
func (f *Fetcher) Table(key string) (map[string]any, error) {
	raw, ok := f.lookup(key)
	if !ok {
		return nil, nil
	}
	table, isTable := raw.(map[string]any)
	if !isTable {
		return nil, typeError(key, "a table", raw)
	}
	return table, nil
}

// TableList returns the array of tables at key, or nil when absent. Both
// TOML spellings land here: an array-of-tables ([[key]]) decodes as
// []map[string]any, an inline array of inline tables as []any.
func (f *Fetcher) TableList(key string) ([]map[string]any, error) {
	raw, ok := f.lookup(key)
	if !ok {
		return nil, nil
	}
	switch items := raw.(type) {
	case []map[string]any:
		return items, nil
	case []any:
		out := make([]map[string]any, 0, len(items))
		for _, item := range items {
			table, isTable := item.(map[string]any)
			if !isTable {
				return nil, typeError(key, "an array of tables", item)
			}
			out = append(out, table)
		}
		return out, nil
	default:
		return nil, typeError(key, "an array of tables", raw)
	}
}

// StringTable returns the string-valued sub-table at key, or nil when absent.
func (f *Fetcher) StringTable(key string) (map[string]string, error) {
	table, err := f.Table(key)
	if table == nil || err != nil {
		return nil, err
	}
	out := make(map[string]string, len(table))
	for k, v := range table {
		s, isStr := v.(string)
		if !isStr {
			return nil, typeError(key+"."+k, "a string", v)
		}
		out[k] = s
	}
	return out, nil
}

// StringListTable returns the sub-table at key mapping names to string
// lists (the shape of project.optional-dependencies), or nil when absent.
func (f *Fetcher) StringListTable(key string) (map[string][]string, error) {
	table, err := f.Table(key)
	if table == nil || err != nil {
		return nil, err
	}
	out := make(map[string][]string, len(table))
	for k := range table {
		list, err := f.StringList(key + "." + k)
		if err != nil {
			return nil, err
		}
		out[k] = list
	}
	return out, nil
}
