package resolved

import (
	"sort"

	"github.com/viant/cdm/identity"
	"github.com/viant/cdm/schema"
	"github.com/viant/cdm/syntax"
)

// Schema is the merged view of all type aliases and models after inheritance and removals.
// Its JSON form is the snapshot exchanged with the plugin host and persisted between runs.
type Schema struct {
	TypeAliases map[string]*TypeAlias `json:"type_aliases"`
	Models      map[string]*Model     `json:"models"`
	Plugins     schema.Config         `json:"plugins,omitempty"`
	Retired     []identity.Tombstone  `json:"retired,omitempty"`
	// File is the file the view was resolved for, it is not persisted
	File string `json:"-"`
}

// TypeAlias represents a resolved type alias
type TypeAlias struct {
	Name       string                 `json:"name"`
	AliasType  *schema.TypeExpression `json:"alias_type"`
	Config     schema.Config          `json:"config"`
	EntityID   *identity.EntityID     `json:"entity_id,omitempty"`
	SourceFile string                 `json:"source_file,omitempty"`
	SourceSpan syntax.Span            `json:"source_span"`
}

// Model represents a resolved model including inherited fields
type Model struct {
	Name       string             `json:"name"`
	Parents    []string           `json:"parents"`
	Fields     []*Field           `json:"fields"`
	Config     schema.Config      `json:"config"`
	EntityID   *identity.EntityID `json:"entity_id,omitempty"`
	SourceFile string             `json:"source_file,omitempty"`
	SourceSpan syntax.Span        `json:"source_span"`
}

// Field represents a resolved field
type Field struct {
	Name          string                 `json:"name"`
	FieldType     *schema.TypeExpression `json:"field_type"`
	Optional      bool                   `json:"optional"`
	Default       *schema.Value          `json:"default,omitempty"`
	Config        schema.Config          `json:"config"`
	EntityID      *identity.EntityID     `json:"entity_id,omitempty"`
	IsInherited   bool                   `json:"is_inherited,omitempty"`
	InheritedFrom string                 `json:"inherited_from,omitempty"`
	SourceFile    string                 `json:"source_file,omitempty"`
	SourceSpan    syntax.Span            `json:"source_span"`
}

// Declarer returns the model that declared the field
func (f *Field) Declarer(model string) string {
	if f.IsInherited && f.InheritedFrom != "" {
		return f.InheritedFrom
	}
	return model
}

// New creates an empty schema
func New() *Schema {
	return &Schema{TypeAliases: map[string]*TypeAlias{}, Models: map[string]*Model{}}
}

// Contains returns true if name is a type alias or model
func (s *Schema) Contains(name string) bool {
	_, alias := s.TypeAliases[name]
	_, model := s.Models[name]
	return alias || model
}

// AliasNames returns sorted type alias names
func (s *Schema) AliasNames() []string {
	result := make([]string, 0, len(s.TypeAliases))
	for name := range s.TypeAliases {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

// ModelNames returns sorted model names
func (s *Schema) ModelNames() []string {
	result := make([]string, 0, len(s.Models))
	for name := range s.Models {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

// Field returns field by name
func (m *Model) Field(name string) *Field {
	for _, field := range m.Fields {
		if field.Name == name {
			return field
		}
	}
	return nil
}

// FieldFingerprint hashes field names and types, order independent
func (m *Model) FieldFingerprint() uint64 {
	parts := make([]string, 0, len(m.Fields))
	for _, field := range m.Fields {
		parts = append(parts, field.Name+":"+field.FieldType.Key()+":"+optional(field.Optional))
	}
	sort.Strings(parts)
	return identity.Fingerprint(parts...)
}

func optional(flag bool) string {
	if flag {
		return "?"
	}
	return ""
}

// ForPlugin returns a copy with every configuration narrowed to one plugin namespace
func (s *Schema) ForPlugin(name string) *Schema {
	result := New()
	result.File = s.File
	result.Plugins = s.Plugins.Only(name)
	for aliasName, alias := range s.TypeAliases {
		clone := *alias
		clone.AliasType = alias.AliasType.Clone()
		clone.Config = alias.Config.Only(name)
		result.TypeAliases[aliasName] = &clone
	}
	for modelName, model := range s.Models {
		clone := *model
		clone.Parents = append([]string{}, model.Parents...)
		clone.Config = model.Config.Only(name)
		clone.Fields = make([]*Field, len(model.Fields))
		for i, field := range model.Fields {
			fieldClone := *field
			fieldClone.FieldType = field.FieldType.Clone()
			fieldClone.Default = field.Default.Clone()
			fieldClone.Config = field.Config.Only(name)
			clone.Fields[i] = &fieldClone
		}
		result.Models[modelName] = &clone
	}
	return result
}

// Entries returns identity entries: type aliases, models and the fields each model declares
func (s *Schema) Entries() []*identity.Entry {
	var result []*identity.Entry
	for _, name := range s.AliasNames() {
		alias := s.TypeAliases[name]
		result = append(result, &identity.Entry{
			Kind:        identity.TypeAliasEntry,
			Name:        name,
			ID:          alias.EntityID,
			Fingerprint: identity.Fingerprint(alias.AliasType.Key()),
			File:        alias.SourceFile,
			Span:        alias.SourceSpan,
		})
	}
	for _, name := range s.ModelNames() {
		model := s.Models[name]
		result = append(result, &identity.Entry{
			Kind:        identity.ModelEntry,
			Name:        name,
			ID:          model.EntityID,
			Fingerprint: model.FieldFingerprint(),
			File:        model.SourceFile,
			Span:        model.SourceSpan,
		})
	}
	for _, name := range s.ModelNames() {
		for _, field := range s.Models[name].Fields {
			if field.IsInherited {
				continue
			}
			result = append(result, &identity.Entry{
				Kind:        identity.FieldEntry,
				Name:        field.Name,
				Model:       name,
				ModelID:     s.Models[name].EntityID,
				ID:          field.EntityID,
				Fingerprint: identity.Fingerprint(field.FieldType.Key(), optional(field.Optional)),
				File:        field.SourceFile,
				Span:        field.SourceSpan,
			})
		}
	}
	return result
}

// Next returns a copy of s to persist after migrating from previous: retired ids accumulate
func (s *Schema) Next(previous *Schema) *Schema {
	result := *s
	var retired []identity.Tombstone
	var before []*identity.Entry
	if previous != nil {
		retired = previous.Retired
		before = previous.Entries()
	}
	result.Retired = identity.Retire(before, s.Entries(), retired)
	return &result
}
