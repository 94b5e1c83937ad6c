package resolved

import (
	"fmt"

	"github.com/viant/cdm/diagnostic"
	"github.com/viant/cdm/syntax"
)

// ReferenceKind represents where a name is used
type ReferenceKind string

const (
	AliasTypeReference ReferenceKind = "type_alias"
	FieldTypeReference ReferenceKind = "field"
	ParentReference    ReferenceKind = "parent"
)

// Reference describes one use of a name in the merged view
type Reference struct {
	Kind        ReferenceKind
	Alias       string
	Model       string
	Field       string
	File        string
	Span        syntax.Span
	Description string
}

// FindReferences walks alias types, field types and parent lists looking for name, in name order
func FindReferences(view *Schema, name string) []*Reference {
	var result []*Reference
	for _, aliasName := range view.AliasNames() {
		alias := view.TypeAliases[aliasName]
		if aliasName == name || !alias.AliasType.Refers(name) {
			continue
		}
		result = append(result, &Reference{
			Kind:        AliasTypeReference,
			Alias:       aliasName,
			File:        alias.SourceFile,
			Span:        alias.SourceSpan,
			Description: describe(view, fmt.Sprintf("type alias '%s'", aliasName), alias.SourceFile),
		})
	}
	for _, modelName := range view.ModelNames() {
		model := view.Models[modelName]
		for _, parent := range model.Parents {
			if parent != name {
				continue
			}
			result = append(result, &Reference{
				Kind:        ParentReference,
				Model:       modelName,
				File:        model.SourceFile,
				Span:        model.SourceSpan,
				Description: describe(view, fmt.Sprintf("model '%s' extends", modelName), model.SourceFile),
			})
		}
		for _, field := range model.Fields {
			if !field.FieldType.Refers(name) {
				continue
			}
			result = append(result, &Reference{
				Kind:        FieldTypeReference,
				Model:       modelName,
				Field:       field.Name,
				File:        field.SourceFile,
				Span:        field.SourceSpan,
				Description: describe(view, modelName+"."+field.Name, field.SourceFile),
			})
		}
	}
	return result
}

func describe(view *Schema, text, file string) string {
	if file == "" || file == view.File {
		return text
	}
	return fmt.Sprintf("%s (inherited from %s)", text, file)
}

// Unused reports type aliases defined in file that nothing in the view references
func Unused(view *Schema, file string) diagnostic.List {
	var result diagnostic.List
	for _, name := range view.AliasNames() {
		alias := view.TypeAliases[name]
		if alias.SourceFile != file {
			continue
		}
		if len(FindReferences(view, name)) == 0 {
			result.Add(diagnostic.UnusedTypeAlias, alias.SourceFile, alias.SourceSpan, "type alias %q is never used", name)
		}
	}
	return result
}
