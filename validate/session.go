package validate

import (
	"github.com/viant/cdm/delta"
	"github.com/viant/cdm/diagnostic"
	"github.com/viant/cdm/identity"
	"github.com/viant/cdm/resolved"
	"github.com/viant/cdm/resolver"
	"github.com/viant/cdm/symbol"
)

// Session validates one file against its ancestors, folded oldest first
type Session struct {
	chain       *resolver.Chain
	diagnostics diagnostic.List
	options     *options
}

// Result holds the merged view of the current file and every diagnostic found on the way
type Result struct {
	Schema      *resolved.Schema
	Diagnostics diagnostic.List
}

// HasErrors returns true if any error diagnostic was reported
func (r *Result) HasErrors() bool {
	return r.Diagnostics.HasErrors()
}

// Migration is the outcome of comparing a previous snapshot with the current view
type Migration struct {
	Deltas      []*delta.Delta
	Diagnostics diagnostic.List
	// Snapshot is the current view with retired ids, ready to persist
	Snapshot *resolved.Schema
}

// NewSession creates a session
func NewSession(opts ...Option) *Session {
	return &Session{chain: resolver.NewChain(), options: newOptions(opts)}
}

// Fold adds an ancestor table with the diagnostics its builder reported
func (s *Session) Fold(table *symbol.Table, diagnostics diagnostic.List) {
	s.diagnostics = append(s.diagnostics, diagnostics...)
	s.chain.Fold(table)
}

// Files returns folded ancestor files, oldest first
func (s *Session) Files() []string {
	return s.chain.Files()
}

// Finish resolves current against the folded ancestors and runs identity and usage checks.
// The session stays usable, Finish can be called again for another revision of current.
func (s *Session) Finish(current *symbol.Table, diagnostics diagnostic.List) *Result {
	var removals []*symbol.Removal
	if current != nil {
		removals = current.Removals
	}
	view, resolveDiagnostics := resolved.FromResult(s.chain.Resolve(current, removals))
	result := &Result{Schema: view}
	result.Diagnostics = append(result.Diagnostics, s.diagnostics...)
	result.Diagnostics = append(result.Diagnostics, diagnostics...)
	result.Diagnostics = append(result.Diagnostics, resolveDiagnostics...)

	entries := view.Entries()
	result.Diagnostics = append(result.Diagnostics, identity.CheckDuplicates(entries)...)
	if current != nil {
		if s.options.warnMissingIDs {
			var own []*identity.Entry
			for _, entry := range entries {
				if entry.File == current.File {
					own = append(own, entry)
				}
			}
			result.Diagnostics = append(result.Diagnostics, identity.CheckMissing(own)...)
		}
		if s.options.warnUnused {
			result.Diagnostics = append(result.Diagnostics, resolved.Unused(view, current.File)...)
		}
	}
	result.Diagnostics.Sort()
	return result
}

// Migrate compares previous snapshot (nil for the first run) with current view
func (s *Session) Migrate(previous, current *resolved.Schema) *Migration {
	result := &Migration{
		Deltas:   delta.Compute(previous, current, s.options.delta...),
		Snapshot: current.Next(previous),
	}
	if previous != nil {
		result.Diagnostics = identity.CheckReuse(previous.Entries(), current.Entries(), previous.Retired)
		result.Diagnostics.Sort()
	}
	return result
}
