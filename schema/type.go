package schema

import (
	"sort"
	"strconv"
	"strings"
)

// TypeKind represents type expression variant
type TypeKind string

const (
	IdentifierKind    TypeKind = "identifier"
	ArrayKind         TypeKind = "array"
	UnionKind         TypeKind = "union"
	StringLiteralKind TypeKind = "string_literal"
)

// Builtin type names
const (
	String  = "string"
	Number  = "number"
	Boolean = "boolean"
	JSON    = "JSON"
	Null    = "null"
)

// IsBuiltin returns true for types that do not need to be declared
func IsBuiltin(name string) bool {
	switch name {
	case String, Number, Boolean, JSON, Null:
		return true
	}
	return false
}

// TypeExpression represents a field or type alias type
type TypeExpression struct {
	Kind        TypeKind          `json:"type" yaml:"type"`
	Name        string            `json:"name,omitempty" yaml:"name,omitempty"`
	ElementType *TypeExpression   `json:"element_type,omitempty" yaml:"element_type,omitempty"`
	Types       []*TypeExpression `json:"types,omitempty" yaml:"types,omitempty"`
	Value       string            `json:"value,omitempty" yaml:"value,omitempty"`
}

// Identifier creates a named type reference
func Identifier(name string) *TypeExpression {
	return &TypeExpression{Kind: IdentifierKind, Name: name}
}

// Array creates an array type
func Array(element *TypeExpression) *TypeExpression {
	return &TypeExpression{Kind: ArrayKind, ElementType: element}
}

// Union creates a union type
func Union(members ...*TypeExpression) *TypeExpression {
	return &TypeExpression{Kind: UnionKind, Types: members}
}

// StringLiteral creates a string literal type
func StringLiteral(value string) *TypeExpression {
	return &TypeExpression{Kind: StringLiteralKind, Value: value}
}

// Equal compares type expressions structurally, union membership is order independent
func (t *TypeExpression) Equal(other *TypeExpression) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case IdentifierKind:
		return t.Name == other.Name
	case StringLiteralKind:
		return t.Value == other.Value
	case ArrayKind:
		return t.ElementType.Equal(other.ElementType)
	case UnionKind:
		if len(t.Types) != len(other.Types) {
			return false
		}
		used := make([]bool, len(other.Types))
		for _, member := range t.Types {
			found := false
			for i, candidate := range other.Types {
				if !used[i] && member.Equal(candidate) {
					used[i] = true
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true
	}
	return false
}

// Clone creates a deep copy
func (t *TypeExpression) Clone() *TypeExpression {
	if t == nil {
		return nil
	}
	result := &TypeExpression{Kind: t.Kind, Name: t.Name, Value: t.Value, ElementType: t.ElementType.Clone()}
	if len(t.Types) > 0 {
		result.Types = make([]*TypeExpression, len(t.Types))
		for i, member := range t.Types {
			result.Types[i] = member.Clone()
		}
	}
	return result
}

// References returns referenced identifier names in order of appearance, without duplicates
func (t *TypeExpression) References() []string {
	var result []string
	seen := map[string]bool{}
	t.Walk(func(expr *TypeExpression) {
		if expr.Kind == IdentifierKind && !seen[expr.Name] {
			seen[expr.Name] = true
			result = append(result, expr.Name)
		}
	})
	return result
}

// Refers returns true if expression references name
func (t *TypeExpression) Refers(name string) bool {
	found := false
	t.Walk(func(expr *TypeExpression) {
		if expr.Kind == IdentifierKind && expr.Name == name {
			found = true
		}
	})
	return found
}

// Walk visits expression nodes depth-first
func (t *TypeExpression) Walk(visit func(expr *TypeExpression)) {
	if t == nil {
		return
	}
	visit(t)
	t.ElementType.Walk(visit)
	for _, member := range t.Types {
		member.Walk(visit)
	}
}

// String renders expression in schema notation
func (t *TypeExpression) String() string {
	if t == nil {
		return ""
	}
	switch t.Kind {
	case IdentifierKind:
		return t.Name
	case StringLiteralKind:
		return strconv.Quote(t.Value)
	case ArrayKind:
		element := t.ElementType.String()
		if t.ElementType != nil && t.ElementType.Kind == UnionKind {
			element = "(" + element + ")"
		}
		return element + "[]"
	case UnionKind:
		parts := make([]string, len(t.Types))
		for i, member := range t.Types {
			parts[i] = member.String()
		}
		return strings.Join(parts, " | ")
	}
	return ""
}

// Key returns canonical text with union members sorted, used for hashing
func (t *TypeExpression) Key() string {
	if t == nil {
		return ""
	}
	switch t.Kind {
	case ArrayKind:
		return "[" + t.ElementType.Key() + "]"
	case UnionKind:
		parts := make([]string, len(t.Types))
		for i, member := range t.Types {
			parts[i] = member.Key()
		}
		sort.Strings(parts)
		return "(" + strings.Join(parts, "|") + ")"
	}
	return t.String()
}
