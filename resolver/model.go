package resolver

import (
	"github.com/viant/cdm/diagnostic"
	"github.com/viant/cdm/identity"
	"github.com/viant/cdm/schema"
	"github.com/viant/cdm/symbol"
	"github.com/viant/cdm/syntax"
)

// Alias represents a resolved type alias
type Alias struct {
	Name string
	ID   *identity.EntityID
	// Type is the declared expression, Expanded has every alias reference inlined
	Type     *schema.TypeExpression
	Expanded *schema.TypeExpression
	Config   schema.Config
	File     string
	Span     syntax.Span
}

// Field represents a resolved model field with inheritance provenance
type Field struct {
	Name          string
	ID            *identity.EntityID
	Type          *schema.TypeExpression
	Optional      bool
	Default       *schema.Value
	Config        schema.Config
	Inherited     bool
	InheritedFrom string // model that declared the field
	File          string
	Span          syntax.Span
}

// Clone creates a copy sharing nothing mutable
func (f *Field) Clone() *Field {
	result := *f
	result.Type = f.Type.Clone()
	result.Default = f.Default.Clone()
	result.Config = f.Config.Clone()
	return &result
}

// Declarer returns the model that declared the field within model
func (f *Field) Declarer(model string) string {
	if f.Inherited {
		return f.InheritedFrom
	}
	return model
}

// Model represents a model with its effective field set
type Model struct {
	Name    string
	ID      *identity.EntityID
	Parents []string
	Fields  []*Field
	Config  schema.Config
	File    string
	Span    syntax.Span

	fieldMap map[string]int
}

// Field returns field by name
func (m *Model) Field(name string) *Field {
	if idx, ok := m.fieldMap[name]; ok && idx < len(m.Fields) {
		return m.Fields[idx]
	}
	return nil
}

// SetField adds a field or replaces an existing one in place
func (m *Model) SetField(field *Field) {
	if m.fieldMap == nil {
		m.fieldMap = make(map[string]int)
	}
	if idx, ok := m.fieldMap[field.Name]; ok {
		m.Fields[idx] = field
		return
	}
	m.Fields = append(m.Fields, field)
	m.fieldMap[field.Name] = len(m.Fields) - 1
}

// RemoveField removes a field by name
func (m *Model) RemoveField(name string) bool {
	idx, ok := m.fieldMap[name]
	if !ok {
		return false
	}
	m.Fields = append(m.Fields[:idx], m.Fields[idx+1:]...)
	delete(m.fieldMap, name)
	for i := idx; i < len(m.Fields); i++ {
		m.fieldMap[m.Fields[i].Name] = i
	}
	return true
}

// Result is the outcome of resolving a file against its ancestor chain
type Result struct {
	File    string
	Aliases map[string]*Alias
	Models  map[string]*Model
	Plugins schema.Config
	// Removed lists file level removals whose target was not defined again later
	Removed []*symbol.Removal
	// Cyclic holds names excluded from the view because they are on an alias or inheritance cycle
	Cyclic      map[string]bool
	Diagnostics diagnostic.List
}

// Defines returns true if name is a resolved alias or model
func (r *Result) Defines(name string) bool {
	_, alias := r.Aliases[name]
	_, model := r.Models[name]
	return alias || model
}
