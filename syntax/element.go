package syntax

// Element is an in-memory Node implementation, used by hosts that produce trees
// without tree-sitter and by tests.
type Element struct {
	Type     string
	Value    string
	Label    string // grammar field name under parent
	Location Span
	Error    bool
	Children []*Element
}

// New creates an element of kind with children
func New(kind string, children ...*Element) *Element {
	return &Element{Type: kind, Children: children}
}

// Leaf creates a text element
func Leaf(kind, text string) *Element {
	return &Element{Type: kind, Value: text}
}

// As binds element to grammar field name
func (e *Element) As(field string) *Element {
	e.Label = field
	return e
}

// At sets element location
func (e *Element) At(line, column int) *Element {
	e.Location = Span{Start: Position{Line: line, Column: column}, End: Position{Line: line, Column: column + len(e.Value)}}
	return e
}

// Add appends children
func (e *Element) Add(children ...*Element) *Element {
	e.Children = append(e.Children, children...)
	return e
}

func (e *Element) Kind() string { return e.Type }

func (e *Element) Text() string { return e.Value }

func (e *Element) Span() Span { return e.Location }

func (e *Element) IsError() bool { return e.Error }

func (e *Element) Field(name string) Node {
	for _, child := range e.Children {
		if child.Label == name {
			return child
		}
	}
	return nil
}

func (e *Element) Fields(name string) []Node {
	var result []Node
	for _, child := range e.Children {
		if child.Label == name {
			result = append(result, child)
		}
	}
	return result
}

func (e *Element) Named() []Node {
	result := make([]Node, 0, len(e.Children))
	for _, child := range e.Children {
		result = append(result, child)
	}
	return result
}
