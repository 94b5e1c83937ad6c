package syntax

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
)

// SitterParser parses source with a tree-sitter grammar supplied by the host
type SitterParser struct {
	language *sitter.Language
}

// NewSitterParser creates a parser for the given tree-sitter language
func NewSitterParser(language *sitter.Language) *SitterParser {
	return &SitterParser{language: language}
}

// Parse parses source code and wraps the tree-sitter root node
func (p *SitterParser) Parse(ctx context.Context, path string, src []byte) (*Tree, error) {
	if p.language == nil {
		return nil, fmt.Errorf("failed to parse %s: language was not set", path)
	}
	parser := sitter.NewParser()
	parser.SetLanguage(p.language)
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &Tree{Path: path, Source: src, Root: FromSitter(tree.RootNode(), src)}, nil
}

// FromSitter adapts a tree-sitter node to Node
func FromSitter(node *sitter.Node, src []byte) Node {
	if node == nil || node.IsNull() {
		return nil
	}
	return &sitterNode{node: node, src: src}
}

type sitterNode struct {
	node *sitter.Node
	src  []byte
}

func (n *sitterNode) Kind() string { return n.node.Type() }

func (n *sitterNode) Text() string { return n.node.Content(n.src) }

func (n *sitterNode) Span() Span {
	start := n.node.StartPoint()
	end := n.node.EndPoint()
	return Span{
		Start: Position{Line: int(start.Row), Column: int(start.Column)},
		End:   Position{Line: int(end.Row), Column: int(end.Column)},
	}
}

func (n *sitterNode) IsError() bool { return n.node.IsError() || n.node.IsMissing() }

func (n *sitterNode) Field(name string) Node {
	child := n.node.ChildByFieldName(name)
	if child == nil {
		return nil
	}
	return FromSitter(child, n.src)
}

func (n *sitterNode) Fields(name string) []Node {
	var result []Node
	count := int(n.node.ChildCount())
	for i := 0; i < count; i++ {
		if n.node.FieldNameForChild(i) != name {
			continue
		}
		if child := FromSitter(n.node.Child(i), n.src); child != nil {
			result = append(result, child)
		}
	}
	return result
}

func (n *sitterNode) Named() []Node {
	count := int(n.node.NamedChildCount())
	result := make([]Node, 0, count)
	for i := 0; i < count; i++ {
		if child := FromSitter(n.node.NamedChild(i), n.src); child != nil {
			result = append(result, child)
		}
	}
	return result
}
