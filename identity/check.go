package identity

import (
	"sort"

	"github.com/viant/cdm/diagnostic"
	"github.com/viant/cdm/syntax"
)

// EntryKind represents identified entity kind
type EntryKind string

const (
	ModelEntry     EntryKind = "model"
	TypeAliasEntry EntryKind = "type alias"
	FieldEntry     EntryKind = "field"
)

// Entry describes one definition for identity checks
type Entry struct {
	Kind        EntryKind
	Name        string
	Model       string    // declaring model, fields only
	ModelID     *EntityID // declaring model id, fields only
	ID          *EntityID
	Fingerprint uint64
	File        string
	Span        syntax.Span
}

// Label returns entity display name
func (e *Entry) Label() string {
	if e.Kind == FieldEntry {
		return e.Model + "." + e.Name
	}
	return e.Name
}

// Tombstone records an id removed by an earlier migration
type Tombstone struct {
	Model   string    `json:"model,omitempty" yaml:"model,omitempty"`
	ModelID *EntityID `json:"model_id,omitempty" yaml:"model_id,omitempty"`
	ID      EntityID  `json:"id" yaml:"id"`
}

func (t *Tombstone) lineage() scope {
	return scope{model: owner(t.Model, t.ModelID), id: t.ID}
}

type scope struct {
	model string
	id    EntityID
}

func (e *Entry) scope() scope {
	if e.Kind == FieldEntry {
		return scope{model: e.Model, id: *e.ID}
	}
	return scope{id: *e.ID}
}

// lineage scopes field ids by the declaring model id when present, otherwise by model name
func (e *Entry) lineage() scope {
	if e.Kind == FieldEntry {
		return scope{model: owner(e.Model, e.ModelID), id: *e.ID}
	}
	return scope{id: *e.ID}
}

func owner(model string, modelID *EntityID) string {
	if modelID != nil {
		return "#" + modelID.String()
	}
	return model
}

// CheckDuplicates reports ids used twice: models and type aliases share one id space per source,
// field ids are scoped to their declaring model. The later entry is reported.
func CheckDuplicates(entries []*Entry) diagnostic.List {
	var result diagnostic.List
	seen := map[scope]*Entry{}
	for _, entry := range entries {
		if entry.ID == nil {
			continue
		}
		key := entry.scope()
		prev, ok := seen[key]
		if !ok {
			seen[key] = entry
			continue
		}
		if entry.Kind == FieldEntry {
			result.Add(diagnostic.DuplicateFieldID, entry.File, entry.Span,
				"duplicate field id %s in model %q: fields %q and %q", entry.ID, entry.Model, prev.Name, entry.Name)
			continue
		}
		result.Add(diagnostic.DuplicateEntityID, entry.File, entry.Span,
			"duplicate entity id %s: %s %q and %s %q", entry.ID, prev.Kind, prev.Name, entry.Kind, entry.Name)
	}
	return result
}

// CheckMissing reports entries without ids
func CheckMissing(entries []*Entry) diagnostic.List {
	var result diagnostic.List
	for _, entry := range entries {
		if entry.ID != nil {
			continue
		}
		if entry.Kind == FieldEntry {
			result.Add(diagnostic.MissingFieldID, entry.File, entry.Span, "field %q has no entity id", entry.Label())
			continue
		}
		result.Add(diagnostic.MissingEntityID, entry.File, entry.Span, "%s %q has no entity id", entry.Kind, entry.Name)
	}
	return result
}

// CheckReuse reports ids reassigned to a different logical entity: ids retired by earlier migrations,
// ids moved between a model and a type alias, and ids taken from an entity that still exists
// under its previous name with a different shape.
func CheckReuse(previous, current []*Entry, retired []Tombstone) diagnostic.List {
	var result diagnostic.List
	tombstones := map[scope]bool{}
	for _, tombstone := range retired {
		tombstones[tombstone.lineage()] = true
	}
	before := map[scope]*Entry{}
	for _, entry := range previous {
		if entry.ID != nil {
			before[entry.lineage()] = entry
		}
	}
	names := map[string]bool{}
	for _, entry := range current {
		names[nameKey(entry)] = true
	}
	for _, entry := range current {
		if entry.ID == nil {
			continue
		}
		key := entry.lineage()
		if tombstones[key] {
			result.Add(diagnostic.ReusedEntityID, entry.File, entry.Span,
				"entity id %s was retired and cannot be reused for %s %q", entry.ID, entry.Kind, entry.Label())
			continue
		}
		prev, ok := before[key]
		if !ok {
			continue
		}
		if prev.Kind != entry.Kind {
			result.Add(diagnostic.ReusedEntityID, entry.File, entry.Span,
				"entity id %s belonged to %s %q and cannot be reused for %s %q", entry.ID, prev.Kind, prev.Label(), entry.Kind, entry.Label())
			continue
		}
		if prev.Name != entry.Name && names[nameKey(prev)] && prev.Fingerprint != entry.Fingerprint {
			result.Add(diagnostic.ReusedEntityID, entry.File, entry.Span,
				"entity id %s belongs to %s %q which still exists, cannot be reused for %q", entry.ID, prev.Kind, prev.Label(), entry.Label())
		}
	}
	return result
}

// Retire returns retired tombstones extended with previous ids absent from current.
// Field ids are retired only while their declaring model still exists, by id or by name.
func Retire(previous, current []*Entry, retired []Tombstone) []Tombstone {
	present := map[scope]bool{}
	models := map[string]bool{}
	for _, entry := range current {
		if entry.Kind == ModelEntry {
			models[entry.Name] = true
			if entry.ID != nil {
				models[owner(entry.Name, entry.ID)] = true
			}
		}
		if entry.ID != nil {
			present[entry.lineage()] = true
		}
	}
	seen := map[scope]bool{}
	var result []Tombstone
	add := func(tombstone Tombstone, live bool) {
		key := tombstone.lineage()
		if seen[key] || (live && present[key]) {
			return
		}
		seen[key] = true
		result = append(result, tombstone)
	}
	for _, tombstone := range retired {
		add(tombstone, false)
	}
	for _, entry := range previous {
		if entry.ID == nil {
			continue
		}
		tombstone := Tombstone{ID: *entry.ID}
		if entry.Kind == FieldEntry {
			if !models[owner(entry.Model, entry.ModelID)] {
				continue
			}
			tombstone.Model = entry.Model
			tombstone.ModelID = entry.ModelID
		}
		add(tombstone, true)
	}
	sort.SliceStable(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.Model != b.Model {
			return a.Model < b.Model
		}
		if as, bs := a.ID.Source.String(), b.ID.Source.String(); as != bs {
			return as < bs
		}
		return a.ID.LocalID < b.ID.LocalID
	})
	return result
}

func nameKey(entry *Entry) string {
	if entry.Kind == FieldEntry {
		return "field:" + entry.Model + "." + entry.Name
	}
	return "type:" + entry.Name
}
