package delta

import (
	"github.com/viant/cdm/identity"
	"github.com/viant/cdm/resolved"
	"github.com/viant/cdm/schema"
)

type computer struct {
	previous *resolved.Schema
	current  *resolved.Schema
	options  *options
	// renames maps previous model name to current model name
	renames map[string]string
}

// Compute returns ordered deltas turning previous into current: global configuration first,
// then models (each followed by its field, inheritance and configuration deltas), then type aliases.
// A nil previous is treated as an empty schema.
func Compute(previous, current *resolved.Schema, opts ...Option) []*Delta {
	if previous == nil {
		previous = resolved.New()
	}
	if current == nil {
		current = resolved.New()
	}
	c := &computer{previous: previous, current: current, options: newOptions(opts), renames: map[string]string{}}
	result := configChanges(Delta{Type: GlobalConfigChanged}, previous.Plugins, current.Plugins)
	result = append(result, c.models()...)
	result = append(result, c.aliases()...)
	return result
}

func key(id *identity.EntityID) string {
	if id == nil {
		return ""
	}
	return id.String()
}

func (c *computer) models() []*Delta {
	before := make([]candidate, 0, len(c.previous.Models))
	for _, name := range c.previous.ModelNames() {
		before = append(before, candidate{name: name, key: key(c.previous.Models[name].EntityID)})
	}
	after := make([]candidate, 0, len(c.current.Models))
	for _, name := range c.current.ModelNames() {
		after = append(after, candidate{name: name, key: key(c.current.Models[name].EntityID)})
	}
	var compatible func(string, string) bool
	if c.options.heuristicRenames {
		compatible = func(o, n string) bool {
			prev, curr := c.previous.Models[o], c.current.Models[n]
			return len(prev.Fields) >= c.options.minModelFields && prev.FieldFingerprint() == curr.FieldFingerprint()
		}
	}
	matched := match(before, after, compatible)
	for prev, p := range matched.byBefore {
		c.renames[prev] = p.after
	}

	var result []*Delta
	for _, name := range c.current.ModelNames() {
		model := c.current.Models[name]
		p := matched.byAfter[name]
		if p == nil {
			result = append(result, &Delta{Type: ModelAdded, Name: name, ID: model.EntityID, After: model})
			continue
		}
		prev := c.previous.Models[p.before]
		if p.before != p.after {
			result = append(result, &Delta{Type: ModelRenamed, OldName: p.before, NewName: name, ID: model.EntityID, Before: prev, After: model})
		}
		result = append(result, c.fields(prev, model)...)
		result = append(result, c.inheritance(prev, model)...)
		result = append(result, configChanges(Delta{Type: ModelConfigChanged, Model: name}, prev.Config, model.Config)...)
	}
	for _, name := range matched.removed {
		model := c.previous.Models[name]
		result = append(result, &Delta{Type: ModelRemoved, Name: name, ID: model.EntityID, Before: model})
	}
	return result
}

// renamed translates a previous model name into its current name
func (c *computer) renamed(name string) string {
	if actual, ok := c.renames[name]; ok {
		return actual
	}
	return name
}

// fieldKey scopes a field id by its declaring model
func (c *computer) fieldKey(declarer string, field *resolved.Field) string {
	if field.EntityID == nil {
		return ""
	}
	return declarer + "#" + field.EntityID.String()
}

func (c *computer) fields(prev, curr *resolved.Model) []*Delta {
	before := make([]candidate, 0, len(prev.Fields))
	for _, field := range prev.Fields {
		declarer := c.renamed(field.Declarer(prev.Name))
		before = append(before, candidate{name: field.Name, key: c.fieldKey(declarer, field)})
	}
	after := make([]candidate, 0, len(curr.Fields))
	for _, field := range curr.Fields {
		after = append(after, candidate{name: field.Name, key: c.fieldKey(field.Declarer(curr.Name), field)})
	}
	var compatible func(string, string) bool
	if c.options.heuristicRenames {
		compatible = func(o, n string) bool {
			a, b := prev.Field(o), curr.Field(n)
			return a.Optional == b.Optional && a.FieldType.Equal(b.FieldType)
		}
	}
	matched := match(before, after, compatible)

	var result []*Delta
	for _, field := range curr.Fields {
		p := matched.byAfter[field.Name]
		if p == nil {
			result = append(result, &Delta{Type: FieldAdded, Model: curr.Name, Field: field.Name, ID: field.EntityID, After: field})
			continue
		}
		old := prev.Field(p.before)
		if p.before != p.after {
			result = append(result, &Delta{Type: FieldRenamed, Model: curr.Name, OldName: p.before, NewName: field.Name, ID: field.EntityID, Before: old, After: field})
			continue
		}
		result = append(result, fieldChanges(curr.Name, old, field)...)
	}
	for _, name := range matched.removed {
		field := prev.Field(name)
		result = append(result, &Delta{Type: FieldRemoved, Model: curr.Name, Field: name, ID: field.EntityID, Before: field})
	}
	return result
}

func fieldChanges(model string, prev, curr *resolved.Field) []*Delta {
	var result []*Delta
	if !prev.FieldType.Equal(curr.FieldType) {
		result = append(result, &Delta{Type: FieldTypeChanged, Model: model, Field: curr.Name, ID: curr.EntityID, Before: prev.FieldType, After: curr.FieldType})
	}
	if prev.Optional != curr.Optional {
		result = append(result, &Delta{Type: FieldOptionalityChanged, Model: model, Field: curr.Name, ID: curr.EntityID, Before: prev.Optional, After: curr.Optional})
	}
	if !prev.Default.Equal(curr.Default) {
		result = append(result, &Delta{Type: FieldDefaultChanged, Model: model, Field: curr.Name, ID: curr.EntityID, Before: literal(prev.Default), After: literal(curr.Default)})
	}
	return append(result, configChanges(Delta{Type: FieldConfigChanged, Model: model, Field: curr.Name, ID: curr.EntityID}, prev.Config, curr.Config)...)
}

// literal keeps an absent default out of the serialized delta
func literal(value *schema.Value) interface{} {
	if value == nil {
		return nil
	}
	return value
}

func (c *computer) inheritance(prev, curr *resolved.Model) []*Delta {
	previous := map[string]bool{}
	for _, parent := range prev.Parents {
		previous[c.renamed(parent)] = true
	}
	current := map[string]bool{}
	for _, parent := range curr.Parents {
		current[parent] = true
	}
	var result []*Delta
	for _, parent := range prev.Parents {
		if !current[c.renamed(parent)] {
			result = append(result, &Delta{Type: InheritanceRemoved, Model: curr.Name, Parent: parent})
		}
	}
	for _, parent := range curr.Parents {
		if !previous[parent] {
			result = append(result, &Delta{Type: InheritanceAdded, Model: curr.Name, Parent: parent})
		}
	}
	return result
}

func (c *computer) aliases() []*Delta {
	before := make([]candidate, 0, len(c.previous.TypeAliases))
	for _, name := range c.previous.AliasNames() {
		before = append(before, candidate{name: name, key: key(c.previous.TypeAliases[name].EntityID)})
	}
	after := make([]candidate, 0, len(c.current.TypeAliases))
	for _, name := range c.current.AliasNames() {
		after = append(after, candidate{name: name, key: key(c.current.TypeAliases[name].EntityID)})
	}
	var compatible func(string, string) bool
	if c.options.heuristicRenames {
		compatible = func(o, n string) bool {
			return c.previous.TypeAliases[o].AliasType.Equal(c.current.TypeAliases[n].AliasType)
		}
	}
	matched := match(before, after, compatible)

	var result []*Delta
	for _, name := range c.current.AliasNames() {
		alias := c.current.TypeAliases[name]
		p := matched.byAfter[name]
		if p == nil {
			result = append(result, &Delta{Type: TypeAliasAdded, Name: name, ID: alias.EntityID, After: alias})
			continue
		}
		prev := c.previous.TypeAliases[p.before]
		if p.before != p.after {
			result = append(result, &Delta{Type: TypeAliasRenamed, OldName: p.before, NewName: name, ID: alias.EntityID, Before: prev, After: alias})
			continue
		}
		if !prev.AliasType.Equal(alias.AliasType) {
			result = append(result, &Delta{Type: TypeAliasTypeChanged, Name: name, ID: alias.EntityID, Before: prev.AliasType, After: alias.AliasType})
		}
		result = append(result, configChanges(Delta{Type: TypeAliasConfigChanged, Name: name, ID: alias.EntityID}, prev.Config, alias.Config)...)
	}
	for _, name := range matched.removed {
		alias := c.previous.TypeAliases[name]
		result = append(result, &Delta{Type: TypeAliasRemoved, Name: name, ID: alias.EntityID, Before: alias})
	}
	return result
}

// configChanges emits one delta per plugin namespace whose configuration differs
func configChanges(template Delta, before, after schema.Config) []*Delta {
	var result []*Delta
	for _, namespace := range before.Namespaces(after) {
		prev, inBefore := before[namespace]
		curr, inAfter := after[namespace]
		if inBefore == inAfter && schema.ValueEqual(prev, curr) {
			continue
		}
		change := template
		change.Plugin = namespace
		change.Before = prev
		change.After = curr
		result = append(result, &change)
	}
	return result
}
