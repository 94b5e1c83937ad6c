package syntax

import (
	"context"
	"fmt"
)

// Position is a zero-based line/column location in source text
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Span is a source range
type Span struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// String returns one-based line:column of the span start
func (s Span) String() string {
	return fmt.Sprintf("%d:%d", s.Start.Line+1, s.Start.Column+1)
}

// Node is a read-only view of a concrete syntax tree node produced by an external parser.
type Node interface {
	// Kind returns grammar node kind, e.g. model_definition
	Kind() string
	// Text returns node source text
	Text() string
	// Span returns node location
	Span() Span
	// Field returns the first child bound to the grammar field name, or nil
	Field(name string) Node
	// Fields returns all children bound to the grammar field name
	Fields(name string) []Node
	// Named returns named children in source order
	Named() []Node
	// IsError reports parser error or missing node
	IsError() bool
}

// Tree represents a parsed file
type Tree struct {
	Path   string
	Source []byte
	Root   Node
}

// Parser turns source text into a concrete syntax tree
type Parser interface {
	Parse(ctx context.Context, path string, src []byte) (*Tree, error)
}

// Errors returns all error nodes under node
func Errors(node Node) []Node {
	var result []Node
	Walk(node, func(n Node) bool {
		if n.IsError() {
			result = append(result, n)
			return false
		}
		return true
	})
	return result
}

// Walk visits node and its named descendants depth-first, skipping children when visit returns false
func Walk(node Node, visit func(n Node) bool) {
	if node == nil {
		return
	}
	stack := []Node{node}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !visit(n) {
			continue
		}
		children := n.Named()
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
}
