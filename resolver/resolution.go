package resolver

import (
	"github.com/viant/cdm/diagnostic"
	"github.com/viant/cdm/graph"
	"github.com/viant/cdm/schema"
	"github.com/viant/cdm/symbol"
)

type resolution struct {
	state  *state
	result *Result
}

// resolveAliases expands aliases in dependency order, cycle members are reported and excluded
func (r *resolution) resolveAliases() {
	aliases := r.state.aliases
	dependencies := graph.Graph{}
	for name, alias := range aliases {
		var edges []string
		for _, ref := range alias.Type.References() {
			if _, ok := aliases[ref]; ok {
				edges = append(edges, ref)
			}
		}
		dependencies[name] = edges
	}
	for _, cycle := range dependencies.Cycles() {
		alias := aliases[cycle.Start()]
		r.result.Diagnostics.Add(diagnostic.CircularTypeAlias, alias.File, alias.Span, "circular type alias: %s", cycle)
		for _, member := range cycle.Members() {
			r.result.Cyclic[member] = true
		}
	}
	expanded := map[string]*schema.TypeExpression{}
	for _, name := range dependencies.Order() {
		if r.result.Cyclic[name] {
			continue
		}
		alias := aliases[name]
		expanded[name] = substitute(alias.Type, expanded)
		r.result.Aliases[name] = &Alias{
			Name:     alias.Name,
			ID:       alias.ID,
			Type:     alias.Type.Clone(),
			Expanded: expanded[name],
			Config:   alias.Config.Clone(),
			File:     alias.File,
			Span:     alias.Span,
		}
	}
}

// substitute returns a copy of expr with alias identifiers replaced by their expansion
func substitute(expr *schema.TypeExpression, expanded map[string]*schema.TypeExpression) *schema.TypeExpression {
	if expr == nil {
		return nil
	}
	switch expr.Kind {
	case schema.IdentifierKind:
		if target, ok := expanded[expr.Name]; ok {
			return target.Clone()
		}
	case schema.ArrayKind:
		return schema.Array(substitute(expr.ElementType, expanded))
	case schema.UnionKind:
		union := schema.Union()
		for _, member := range expr.Types {
			union.Types = append(union.Types, substitute(member, expanded))
		}
		return union
	}
	return expr.Clone()
}

// resolveModels resolves parents before children, each model exactly once
func (r *resolution) resolveModels() {
	models := r.state.models
	parents := graph.Graph{}
	for name, model := range models {
		var edges []string
		for _, parent := range model.parents() {
			if _, ok := models[parent]; ok {
				edges = append(edges, parent)
			}
		}
		parents[name] = edges
	}
	for _, cycle := range parents.Cycles() {
		model := models[cycle.Start()].base()
		r.result.Diagnostics.Add(diagnostic.CircularInheritance, model.File, model.Span, "circular inheritance: %s", cycle)
		for _, member := range cycle.Members() {
			r.result.Cyclic[member] = true
		}
	}
	for _, name := range parents.Order() {
		if r.result.Cyclic[name] {
			continue
		}
		r.result.Models[name] = r.resolveModel(models[name])
	}
}

// resolveModel folds parents left to right (later parent wins), then applies removals,
// overrides and own fields, layer by layer
func (r *resolution) resolveModel(definition *layered) *Model {
	base := definition.base()
	result := &Model{Name: base.Name, ID: base.ID, Config: base.Config.Clone(), File: base.File, Span: base.Span}
	if result.Config == nil {
		result.Config = schema.Config{}
	}
	seen := map[string]bool{}
	for i, layer := range definition.layers {
		if i > 0 {
			if layer.ID != nil {
				result.ID = layer.ID
			}
			result.Config = result.Config.Merge(layer.Config)
		}
		for j, parentName := range layer.Parents {
			if seen[parentName] {
				continue
			}
			seen[parentName] = true
			result.Parents = append(result.Parents, parentName)
			parent, ok := r.result.Models[parentName]
			if !ok {
				r.unresolvedParent(layer, j)
				continue
			}
			for _, field := range parent.Fields {
				inherited := field.Clone()
				inherited.Inherited = true
				inherited.InheritedFrom = field.Declarer(parentName)
				result.SetField(inherited)
			}
		}
		for _, removal := range layer.Removals {
			if !result.RemoveField(removal.Name) {
				r.result.Diagnostics.Add(diagnostic.UnknownFieldRemoval, layer.File, removal.Span,
					"cannot remove field %q from model %q: field is not inherited", removal.Name, layer.Name)
			}
		}
		for _, override := range layer.Overrides {
			field := result.Field(override.Name)
			if field == nil {
				r.result.Diagnostics.Add(diagnostic.UnknownFieldOverride, layer.File, override.Span,
					"cannot override field %q in model %q: field is not inherited", override.Name, layer.Name)
				continue
			}
			overridden := field.Clone()
			overridden.Config = field.Config.Merge(override.Config)
			result.SetField(overridden)
		}
		for _, field := range layer.Fields {
			result.SetField(newField(field, layer.File))
		}
	}
	return result
}

func (r *resolution) unresolvedParent(layer *symbol.Model, index int) {
	name := layer.Parents[index]
	span := layer.Span
	if index < len(layer.ParentSpans) {
		span = layer.ParentSpans[index]
	}
	switch {
	case r.result.Cyclic[name]:
	case r.state.aliases[name] != nil:
		r.result.Diagnostics.Add(diagnostic.ParentNotModel, layer.File, span, "model %q cannot extend type alias %q", layer.Name, name)
	case r.state.removed[name] != nil:
	default:
		r.result.Diagnostics.Add(diagnostic.UnknownParent, layer.File, span, "model %q extends unknown model %q", layer.Name, name)
	}
}

func newField(field *symbol.Field, file string) *Field {
	return &Field{
		Name:     field.Name,
		ID:       field.ID,
		Type:     field.Type.Clone(),
		Optional: field.Optional,
		Default:  field.Default.Clone(),
		Config:   field.Config.Clone(),
		File:     file,
		Span:     field.Span,
	}
}

func (r *resolution) known(name string) bool {
	if schema.IsBuiltin(name) {
		return true
	}
	_, alias := r.state.aliases[name]
	_, model := r.state.models[name]
	_, removed := r.state.removed[name]
	return alias || model || removed
}

// checkReferences reports unknown type names once per declaration
func (r *resolution) checkReferences() {
	for _, name := range sortedKeys(r.state.aliases) {
		alias := r.state.aliases[name]
		for _, ref := range alias.Type.References() {
			if !r.known(ref) {
				r.result.Diagnostics.Add(diagnostic.UnknownType, alias.File, alias.Span, "type alias %q references unknown type %q", name, ref)
			}
		}
	}
	for _, name := range sortedKeys(r.state.models) {
		for _, layer := range r.state.models[name].layers {
			for _, field := range layer.Fields {
				for _, ref := range field.Type.References() {
					if !r.known(ref) {
						r.result.Diagnostics.Add(diagnostic.UnknownType, layer.File, field.Span, "field %q of model %q references unknown type %q", field.Name, name, ref)
					}
				}
			}
		}
	}
}

// checkDefaults checks declared defaults against field types with aliases expanded
func (r *resolution) checkDefaults() {
	expanded := map[string]*schema.TypeExpression{}
	for name, alias := range r.result.Aliases {
		expanded[name] = alias.Expanded
	}
	for _, name := range sortedKeys(r.result.Models) {
		for _, field := range r.result.Models[name].Fields {
			if field.Inherited || field.Default == nil {
				continue
			}
			if !r.matches(field.Default.Data, substitute(field.Type, expanded)) {
				r.result.Diagnostics.Add(diagnostic.InvalidDefault, field.File, field.Span,
					"default value %s does not match type %s of field %q in model %q", field.Default, field.Type, field.Name, name)
			}
		}
	}
}

func (r *resolution) matches(value interface{}, expr *schema.TypeExpression) bool {
	if expr == nil {
		return true
	}
	switch expr.Kind {
	case schema.StringLiteralKind:
		text, ok := value.(string)
		return ok && text == expr.Value
	case schema.ArrayKind:
		items, ok := value.([]interface{})
		if !ok {
			return false
		}
		for _, item := range items {
			if !r.matches(item, expr.ElementType) {
				return false
			}
		}
		return true
	case schema.UnionKind:
		for _, member := range expr.Types {
			if r.matches(value, member) {
				return true
			}
		}
		return false
	}
	switch expr.Name {
	case schema.String:
		_, ok := value.(string)
		return ok
	case schema.Number:
		_, ok := value.(float64)
		return ok
	case schema.Boolean:
		_, ok := value.(bool)
		return ok
	case schema.Null:
		return value == nil
	case schema.JSON:
		return true
	}
	if _, ok := r.result.Models[expr.Name]; ok {
		_, isObject := value.(map[string]interface{})
		return isObject
	}
	// unknown or cyclic types are reported elsewhere
	return true
}
