package resolved

import (
	"strings"

	"github.com/viant/cdm/diagnostic"
	"github.com/viant/cdm/resolver"
	"github.com/viant/cdm/symbol"
)

// Build merges ancestors (oldest first) with current, applies removals and returns the merged view.
// Removing a name that is still referenced in the view is an error.
func Build(current *symbol.Table, ancestors []*symbol.Table, removals []*symbol.Removal) (*Schema, diagnostic.List) {
	return FromResult(resolver.Resolve(current, ancestors, removals))
}

// FromResult converts a resolver result into the merged view and runs removal safety checks
func FromResult(result *resolver.Result) (*Schema, diagnostic.List) {
	view := New()
	view.File = result.File
	if len(result.Plugins) > 0 {
		view.Plugins = result.Plugins.Clone()
	}
	for name, alias := range result.Aliases {
		view.TypeAliases[name] = &TypeAlias{
			Name:       alias.Name,
			AliasType:  alias.Type.Clone(),
			Config:     alias.Config.Clone(),
			EntityID:   alias.ID,
			SourceFile: alias.File,
			SourceSpan: alias.Span,
		}
	}
	for name, model := range result.Models {
		resolvedModel := &Model{
			Name:       model.Name,
			Parents:    append([]string{}, model.Parents...),
			Fields:     make([]*Field, 0, len(model.Fields)),
			Config:     model.Config.Clone(),
			EntityID:   model.ID,
			SourceFile: model.File,
			SourceSpan: model.Span,
		}
		for _, field := range model.Fields {
			resolvedModel.Fields = append(resolvedModel.Fields, &Field{
				Name:          field.Name,
				FieldType:     field.Type.Clone(),
				Optional:      field.Optional,
				Default:       field.Default.Clone(),
				Config:        field.Config.Clone(),
				EntityID:      field.ID,
				IsInherited:   field.Inherited,
				InheritedFrom: field.InheritedFrom,
				SourceFile:    field.File,
				SourceSpan:    field.Span,
			})
		}
		view.Models[name] = resolvedModel
	}
	diagnostics := append(diagnostic.List{}, result.Diagnostics...)
	for _, removal := range result.Removed {
		references := FindReferences(view, removal.Name)
		if len(references) == 0 {
			continue
		}
		descriptions := make([]string, len(references))
		for i, reference := range references {
			descriptions[i] = reference.Description
		}
		diagnostics.Add(diagnostic.RemovedStillReferenced, removal.File, removal.Span,
			"cannot remove %q: still referenced by %s", removal.Name, strings.Join(descriptions, ", "))
	}
	return view, diagnostics
}
