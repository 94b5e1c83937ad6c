package schema

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Value represents a field default literal: string, float64, bool, nil or []interface{}
type Value struct {
	Data interface{}
}

// NewValue wraps a literal, ints are normalised to float64
func NewValue(data interface{}) *Value {
	return &Value{Data: normalize(data)}
}

func normalize(data interface{}) interface{} {
	switch actual := data.(type) {
	case int:
		return float64(actual)
	case int64:
		return float64(actual)
	case float32:
		return float64(actual)
	case []interface{}:
		result := make([]interface{}, len(actual))
		for i, item := range actual {
			result[i] = normalize(item)
		}
		return result
	}
	return data
}

// Equal compares values, numbers with float tolerance
func (v *Value) Equal(other *Value) bool {
	if v == nil || other == nil {
		return v == other
	}
	return literalEqual(v.Data, other.Data)
}

func literalEqual(a, b interface{}) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case string:
		y, ok := b.(string)
		return ok && x == y
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	case float64:
		y, ok := b.(float64)
		return ok && x == y
	case []interface{}:
		y, ok := b.([]interface{})
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !literalEqual(x[i], y[i]) {
				return false
			}
		}
		return true
	}
	return deepEqual(a, b)
}

// Clone creates a copy
func (v *Value) Clone() *Value {
	if v == nil {
		return nil
	}
	return &Value{Data: cloneData(v.Data)}
}

// String renders literal in schema notation
func (v *Value) String() string {
	if v == nil {
		return ""
	}
	return literalString(v.Data)
}

func literalString(data interface{}) string {
	switch actual := data.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(actual)
	case bool:
		return strconv.FormatBool(actual)
	case float64:
		return strconv.FormatFloat(actual, 'f', -1, 64)
	case []interface{}:
		parts := make([]string, len(actual))
		for i, item := range actual {
			parts[i] = literalString(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	encoded, _ := json.Marshal(data)
	return string(encoded)
}

// MarshalJSON encodes raw literal
func (v *Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Data)
}

// UnmarshalJSON decodes raw literal
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v.Data = raw
	return nil
}
