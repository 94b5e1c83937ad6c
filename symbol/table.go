package symbol

import (
	"github.com/viant/cdm/identity"
	"github.com/viant/cdm/schema"
	"github.com/viant/cdm/syntax"
)

// TypeAlias represents a named type expression declared in a file
type TypeAlias struct {
	Name   string
	ID     *identity.EntityID
	Type   *schema.TypeExpression
	Config schema.Config
	File   string
	Span   syntax.Span
}

// Field represents a field declared in a model body
type Field struct {
	Name     string
	ID       *identity.EntityID
	Type     *schema.TypeExpression
	Optional bool
	Default  *schema.Value
	Config   schema.Config
	Span     syntax.Span
}

// FieldOverride provides new configuration for an inherited field
type FieldOverride struct {
	Name   string
	Config schema.Config
	Span   syntax.Span
}

// FieldRemoval removes an inherited field
type FieldRemoval struct {
	Name string
	Span syntax.Span
}

// Model represents a model definition as written, parents are unresolved names
type Model struct {
	Name        string
	ID          *identity.EntityID
	Parents     []string
	ParentSpans []syntax.Span
	Fields      []*Field
	Overrides   []*FieldOverride
	Removals    []*FieldRemoval
	Config      schema.Config
	File        string
	Span        syntax.Span

	fieldMap map[string]int
}

// Field returns declared field by name
func (m *Model) Field(name string) *Field {
	if idx, ok := m.fieldMap[name]; ok && idx < len(m.Fields) {
		return m.Fields[idx]
	}
	return nil
}

// AddField adds a declared field, returns false if field name is taken
func (m *Model) AddField(field *Field) bool {
	if m.fieldMap == nil {
		m.fieldMap = make(map[string]int)
	}
	if _, ok := m.fieldMap[field.Name]; ok {
		return false
	}
	m.Fields = append(m.Fields, field)
	m.fieldMap[field.Name] = len(m.Fields) - 1
	return true
}

// Modifies returns true when the body removes or overrides inherited fields
func (m *Model) Modifies() bool {
	return len(m.Removals) > 0 || len(m.Overrides) > 0
}

// Removal represents a file level -Name removal of an inherited type alias or model
type Removal struct {
	Name string
	File string
	Span syntax.Span
}

// Extends represents an @extends directive
type Extends struct {
	Path string
	Span syntax.Span
}

// Table holds definitions of a single file; nothing in it is resolved
type Table struct {
	File     string
	Source   identity.Source
	Aliases  []*TypeAlias
	Models   []*Model
	Removals []*Removal
	Extends  []*Extends
	Plugins  schema.Config

	aliasMap map[string]int
	modelMap map[string]int
}

// NewTable creates an empty table
func NewTable(file string, source identity.Source) *Table {
	return &Table{File: file, Source: source, Plugins: schema.Config{}, aliasMap: map[string]int{}, modelMap: map[string]int{}}
}

// TypeAlias returns alias by name
func (t *Table) TypeAlias(name string) *TypeAlias {
	if idx, ok := t.aliasMap[name]; ok {
		return t.Aliases[idx]
	}
	return nil
}

// Model returns model by name
func (t *Table) Model(name string) *Model {
	if idx, ok := t.modelMap[name]; ok {
		return t.Models[idx]
	}
	return nil
}

// Defines returns true if name is an alias or model of this file
func (t *Table) Defines(name string) bool {
	return t.TypeAlias(name) != nil || t.Model(name) != nil
}

// AddTypeAlias adds alias, returns false if name is taken
func (t *Table) AddTypeAlias(alias *TypeAlias) bool {
	if t.Defines(alias.Name) {
		return false
	}
	t.Aliases = append(t.Aliases, alias)
	t.aliasMap[alias.Name] = len(t.Aliases) - 1
	return true
}

// AddModel adds model, returns false if name is taken
func (t *Table) AddModel(model *Model) bool {
	if t.Defines(model.Name) {
		return false
	}
	t.Models = append(t.Models, model)
	t.modelMap[model.Name] = len(t.Models) - 1
	return true
}

// Removes returns true if the file removes name
func (t *Table) Removes(name string) bool {
	for _, removal := range t.Removals {
		if removal.Name == name {
			return true
		}
	}
	return false
}
