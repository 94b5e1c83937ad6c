package resolver

import (
	"sort"

	"github.com/viant/cdm/diagnostic"
	"github.com/viant/cdm/schema"
	"github.com/viant/cdm/symbol"
)

// Chain accumulates ancestor definitions one file at a time, oldest first.
// Only definitions are retained, so callers can drop each file's text and tree after Fold.
type Chain struct {
	state       *state
	files       []string
	diagnostics diagnostic.List
}

// NewChain creates an empty chain
func NewChain() *Chain {
	return &Chain{state: newState()}
}

// Fold merges an ancestor table: its removals apply to what was accumulated so far,
// then its definitions replace or modify accumulated ones
func (c *Chain) Fold(table *symbol.Table) {
	c.files = append(c.files, table.File)
	c.diagnostics = append(c.diagnostics, c.state.apply(table, table.Removals)...)
}

// Files returns folded file names, oldest first
func (c *Chain) Files() []string {
	return c.files
}

// Resolve resolves current against the folded ancestors. removals are the current file's
// file level removals. The chain is left unchanged so Resolve can be called repeatedly.
func (c *Chain) Resolve(current *symbol.Table, removals []*symbol.Removal) *Result {
	s := c.state.clone()
	result := &Result{
		Aliases: map[string]*Alias{},
		Models:  map[string]*Model{},
		Cyclic:  map[string]bool{},
	}
	result.Diagnostics = append(result.Diagnostics, c.diagnostics...)
	if current != nil {
		result.File = current.File
		result.Diagnostics = append(result.Diagnostics, s.apply(current, removals)...)
	}
	result.Plugins = s.plugins.Clone()
	r := &resolution{state: s, result: result}
	r.resolveAliases()
	r.resolveModels()
	r.checkReferences()
	r.checkDefaults()
	for _, name := range sortedKeys(s.removed) {
		result.Removed = append(result.Removed, s.removed[name])
	}
	return result
}

// Resolve folds ancestors oldest first and resolves current against them
func Resolve(current *symbol.Table, ancestors []*symbol.Table, removals []*symbol.Removal) *Result {
	chain := NewChain()
	for _, ancestor := range ancestors {
		chain.Fold(ancestor)
	}
	return chain.Resolve(current, removals)
}

// layered is a model definition followed by later definitions that modify it
type layered struct {
	layers []*symbol.Model
}

func (l *layered) base() *symbol.Model {
	return l.layers[0]
}

func (l *layered) parents() []string {
	var result []string
	seen := map[string]bool{}
	for _, layer := range l.layers {
		for _, parent := range layer.Parents {
			if !seen[parent] {
				seen[parent] = true
				result = append(result, parent)
			}
		}
	}
	return result
}

type state struct {
	aliases map[string]*symbol.TypeAlias
	models  map[string]*layered
	removed map[string]*symbol.Removal
	plugins schema.Config
}

func newState() *state {
	return &state{
		aliases: map[string]*symbol.TypeAlias{},
		models:  map[string]*layered{},
		removed: map[string]*symbol.Removal{},
		plugins: schema.Config{},
	}
}

func (s *state) clone() *state {
	result := newState()
	for k, v := range s.aliases {
		result.aliases[k] = v
	}
	for k, v := range s.models {
		result.models[k] = v
	}
	for k, v := range s.removed {
		result.removed[k] = v
	}
	result.plugins = s.plugins.Clone()
	return result
}

func (s *state) apply(table *symbol.Table, removals []*symbol.Removal) diagnostic.List {
	var result diagnostic.List
	for _, removal := range removals {
		_, isAlias := s.aliases[removal.Name]
		_, isModel := s.models[removal.Name]
		if !isAlias && !isModel {
			result.Add(diagnostic.UnknownRemovalTarget, removal.File, removal.Span,
				"cannot remove %q: no such type alias or model is inherited", removal.Name)
			continue
		}
		delete(s.aliases, removal.Name)
		delete(s.models, removal.Name)
		s.removed[removal.Name] = removal
	}
	for _, alias := range table.Aliases {
		s.aliases[alias.Name] = alias
		delete(s.models, alias.Name)
		delete(s.removed, alias.Name)
	}
	for _, model := range table.Models {
		existing, ok := s.models[model.Name]
		if ok && model.Modifies() {
			layers := make([]*symbol.Model, 0, len(existing.layers)+1)
			layers = append(layers, existing.layers...)
			s.models[model.Name] = &layered{layers: append(layers, model)}
		} else {
			s.models[model.Name] = &layered{layers: []*symbol.Model{model}}
		}
		delete(s.aliases, model.Name)
		delete(s.removed, model.Name)
	}
	s.plugins = s.plugins.Merge(table.Plugins)
	return result
}

func sortedKeys[T any](m map[string]T) []string {
	result := make([]string, 0, len(m))
	for k := range m {
		result = append(result, k)
	}
	sort.Strings(result)
	return result
}
