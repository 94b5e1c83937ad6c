package schema

import (
	"sort"
)

// Config maps plugin namespace to opaque plugin configuration
type Config map[string]interface{}

// Namespaces returns sorted namespaces of both configs
func (c Config) Namespaces(other Config) []string {
	seen := map[string]bool{}
	var result []string
	for _, cfg := range []Config{c, other} {
		for name := range cfg {
			if !seen[name] {
				seen[name] = true
				result = append(result, name)
			}
		}
	}
	sort.Strings(result)
	return result
}

// Equal compares configs deeply
func (c Config) Equal(other Config) bool {
	if len(c) != len(other) {
		return false
	}
	for name, value := range c {
		otherValue, ok := other[name]
		if !ok || !deepEqual(value, otherValue) {
			return false
		}
	}
	return true
}

// Clone creates a deep copy, nil stays nil
func (c Config) Clone() Config {
	if c == nil {
		return nil
	}
	result := make(Config, len(c))
	for name, value := range c {
		result[name] = cloneData(value)
	}
	return result
}

// Only returns config narrowed to a single namespace
func (c Config) Only(namespace string) Config {
	value, ok := c[namespace]
	if !ok {
		return Config{}
	}
	return Config{namespace: cloneData(value)}
}

// Merge returns c overlaid with override: objects are merged key by key, anything else is replaced
func (c Config) Merge(override Config) Config {
	result := c.Clone()
	if result == nil {
		result = Config{}
	}
	for name, value := range override {
		base, ok := result[name].(map[string]interface{})
		patch, isObject := value.(map[string]interface{})
		if !ok || !isObject {
			result[name] = cloneData(value)
			continue
		}
		merged := make(map[string]interface{}, len(base)+len(patch))
		for k, v := range base {
			merged[k] = v
		}
		for k, v := range patch {
			merged[k] = cloneData(v)
		}
		result[name] = merged
	}
	return result
}

// ValueEqual compares two configuration values deeply
func ValueEqual(a, b interface{}) bool {
	return deepEqual(a, b)
}

func deepEqual(a, b interface{}) bool {
	a, b = normalize(a), normalize(b)
	switch x := a.(type) {
	case nil:
		return b == nil
	case float64:
		y, ok := b.(float64)
		return ok && x == y
	case string:
		y, ok := b.(string)
		return ok && x == y
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	case []interface{}:
		y, ok := b.([]interface{})
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !deepEqual(x[i], y[i]) {
				return false
			}
		}
		return true
	case map[string]interface{}:
		y, ok := b.(map[string]interface{})
		if !ok || len(x) != len(y) {
			return false
		}
		for k, v := range x {
			w, ok := y[k]
			if !ok || !deepEqual(v, w) {
				return false
			}
		}
		return true
	}
	return false
}

func cloneData(data interface{}) interface{} {
	switch actual := data.(type) {
	case []interface{}:
		result := make([]interface{}, len(actual))
		for i, item := range actual {
			result[i] = cloneData(item)
		}
		return result
	case map[string]interface{}:
		result := make(map[string]interface{}, len(actual))
		for k, v := range actual {
			result[k] = cloneData(v)
		}
		return result
	}
	return data
}
