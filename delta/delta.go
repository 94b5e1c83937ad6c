package delta

import (
	"fmt"

	"github.com/viant/cdm/identity"
)

// Kind represents delta variant
type Kind string

const (
	ModelAdded              Kind = "model_added"
	ModelRemoved            Kind = "model_removed"
	ModelRenamed            Kind = "model_renamed"
	FieldAdded              Kind = "field_added"
	FieldRemoved            Kind = "field_removed"
	FieldRenamed            Kind = "field_renamed"
	FieldTypeChanged        Kind = "field_type_changed"
	FieldOptionalityChanged Kind = "field_optionality_changed"
	FieldDefaultChanged     Kind = "field_default_changed"
	TypeAliasAdded          Kind = "type_alias_added"
	TypeAliasRemoved        Kind = "type_alias_removed"
	TypeAliasRenamed        Kind = "type_alias_renamed"
	TypeAliasTypeChanged    Kind = "type_alias_type_changed"
	TypeAliasConfigChanged  Kind = "type_alias_config_changed"
	InheritanceAdded        Kind = "inheritance_added"
	InheritanceRemoved      Kind = "inheritance_removed"
	GlobalConfigChanged     Kind = "global_config_changed"
	ModelConfigChanged      Kind = "model_config_changed"
	FieldConfigChanged      Kind = "field_config_changed"
)

// Delta is one typed change between two schema snapshots.
// Before and After hold definitions, type expressions, flags, defaults or plugin configuration,
// depending on Type.
type Delta struct {
	Type    Kind               `json:"type"`
	Name    string             `json:"name,omitempty"`
	Model   string             `json:"model,omitempty"`
	Field   string             `json:"field,omitempty"`
	OldName string             `json:"old_name,omitempty"`
	NewName string             `json:"new_name,omitempty"`
	ID      *identity.EntityID `json:"id,omitempty"`
	Parent  string             `json:"parent,omitempty"`
	Plugin  string             `json:"plugin,omitempty"`
	Before  interface{}        `json:"before,omitempty"`
	After   interface{}        `json:"after,omitempty"`
}

// String returns short description
func (d *Delta) String() string {
	subject := d.Name
	if d.Model != "" {
		subject = d.Model
		if d.Field != "" {
			subject += "." + d.Field
		}
	}
	switch {
	case d.OldName != "" && subject == "":
		return fmt.Sprintf("%s %s -> %s", d.Type, d.OldName, d.NewName)
	case d.OldName != "":
		return fmt.Sprintf("%s %s: %s -> %s", d.Type, subject, d.OldName, d.NewName)
	case d.Parent != "":
		return fmt.Sprintf("%s %s: %s", d.Type, subject, d.Parent)
	case d.Plugin != "":
		return fmt.Sprintf("%s %s@%s", d.Type, subject, d.Plugin)
	}
	return fmt.Sprintf("%s %s", d.Type, subject)
}

// Filter returns deltas of the given kinds
func Filter(deltas []*Delta, kinds ...Kind) []*Delta {
	wanted := map[Kind]bool{}
	for _, kind := range kinds {
		wanted[kind] = true
	}
	var result []*Delta
	for _, d := range deltas {
		if wanted[d.Type] {
			result = append(result, d)
		}
	}
	return result
}
