package loader

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"

	"github.com/viant/afs"
	"github.com/viant/cdm/diagnostic"
	"github.com/viant/cdm/graph"
	"github.com/viant/cdm/identity"
	"github.com/viant/cdm/symbol"
	"github.com/viant/cdm/syntax"
	"github.com/viant/cdm/validate"
)

// TemplateManifest marks a directory as a local template
const TemplateManifest = "cdm-template.json"

var extendsExpr = regexp.MustCompile(`^\s*@extends\s+(?:"([^"]*)"|'([^']*)'|([^\s;]+))`)

// Loader loads a file and its extends chain: ancestors are planned from @extends lines only,
// then parsed and folded one at a time
type Loader struct {
	fs          afs.Service
	parser      syntax.Parser
	logger      *slog.Logger
	projectRoot string
}

// Option configures a loader
type Option func(*Loader)

// WithFS sets storage service
func WithFS(fs afs.Service) Option {
	return func(l *Loader) {
		l.fs = fs
	}
}

// WithLogger sets logger
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// WithProjectRoot sets project root used to canonicalize local template sources
func WithProjectRoot(root string) Option {
	return func(l *Loader) {
		l.projectRoot = root
	}
}

// New creates a loader
func New(parser syntax.Parser, opts ...Option) *Loader {
	result := &Loader{parser: parser}
	for _, opt := range opts {
		opt(result)
	}
	if result.fs == nil {
		result.fs = afs.New()
	}
	if result.logger == nil {
		result.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return result
}

// Plan lists the ancestors of a file
type Plan struct {
	Root string
	// Ancestors are ordered oldest first, every file after the files it extends
	Ancestors   []string
	Diagnostics diagnostic.List
}

// Broken reports a missing or circular extends, the merged view of Root cannot be built
func (p *Plan) Broken() bool {
	return len(p.Diagnostics.WithCode(diagnostic.MissingAncestor)) > 0 || len(p.Diagnostics.WithCode(diagnostic.CircularExtends)) > 0
}

type extends struct {
	path string
	span syntax.Span
}

// Plan reads @extends directives of URL and its ancestors without retaining their text.
// Cycles and missing files are reported as diagnostics.
func (l *Loader) Plan(ctx context.Context, URL string) (*Plan, error) {
	plan := &Plan{Root: URL}
	extendsGraph := graph.Graph{}
	spans := map[[2]string]syntax.Span{}
	queue := []string{URL}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if _, ok := extendsGraph[current]; ok {
			continue
		}
		directives, err := l.scan(ctx, current)
		if err != nil {
			return nil, err
		}
		extendsGraph[current] = nil
		for _, directive := range directives {
			target := join(current, directive.path)
			exists, err := l.fs.Exists(ctx, target)
			if err != nil {
				return nil, fmt.Errorf("failed to check %v: %w", target, err)
			}
			if !exists {
				plan.Diagnostics.Add(diagnostic.MissingAncestor, current, directive.span, "extended file %q not found", directive.path)
				continue
			}
			extendsGraph[current] = append(extendsGraph[current], target)
			spans[[2]string{current, target}] = directive.span
			queue = append(queue, target)
		}
	}
	for _, cycle := range extendsGraph.Cycles() {
		var span syntax.Span
		if len(cycle.Path) > 1 {
			span = spans[[2]string{cycle.Path[0], cycle.Path[1]}]
		}
		plan.Diagnostics.Add(diagnostic.CircularExtends, cycle.Start(), span, "circular extends: %s", cycle)
	}
	order := extendsGraph.PostOrder(URL)
	plan.Ancestors = order[:len(order)-1]
	l.logger.Debug("planned extends chain", "file", URL, "ancestors", len(plan.Ancestors))
	return plan, nil
}

func (l *Loader) scan(ctx context.Context, URL string) ([]*extends, error) {
	reader, err := l.fs.OpenURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open %v: %w", URL, err)
	}
	defer reader.Close()
	var result []*extends
	scanner := bufio.NewScanner(reader)
	line := 0
	for scanner.Scan() {
		text := scanner.Text()
		if match := extendsExpr.FindStringSubmatchIndex(text); match != nil {
			for group := 1; group <= 3; group++ {
				start, end := match[2*group], match[2*group+1]
				if start == -1 {
					continue
				}
				result = append(result, &extends{path: text[start:end], span: syntax.Span{
					Start: syntax.Position{Line: line, Column: start},
					End:   syntax.Position{Line: line, Column: end},
				}})
				break
			}
		}
		line++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %v: %w", URL, err)
	}
	return result, nil
}

// Load parses every planned ancestor and folds it into session, oldest first.
// Each file's text and tree are released once folded.
func (l *Loader) Load(ctx context.Context, plan *Plan, session *validate.Session) error {
	for _, URL := range plan.Ancestors {
		table, diagnostics, err := l.Parse(ctx, URL)
		if err != nil {
			return err
		}
		session.Fold(table, diagnostics)
		l.logger.Debug("folded ancestor", "file", URL, "aliases", len(table.Aliases), "models", len(table.Models))
	}
	return nil
}

// Parse downloads, parses and builds the symbol table of one file
func (l *Loader) Parse(ctx context.Context, URL string) (*symbol.Table, diagnostic.List, error) {
	data, err := l.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to download %v: %w", URL, err)
	}
	tree, err := l.parser.Parse(ctx, URL, data)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse %v: %w", URL, err)
	}
	source, err := l.Source(ctx, URL)
	if err != nil {
		return nil, nil, err
	}
	table, diagnostics := symbol.Build(tree, source)
	return table, diagnostics, nil
}

// Source returns the identity source of a file: files in a directory holding a template manifest
// belong to that local template, other files share the local source
func (l *Loader) Source(ctx context.Context, URL string) (identity.Source, error) {
	dir := parent(URL)
	ok, err := l.fs.Exists(ctx, join(URL, TemplateManifest))
	if err != nil {
		return identity.Source{}, fmt.Errorf("failed to check template manifest in %v: %w", dir, err)
	}
	if !ok {
		return identity.Local(), nil
	}
	_, templatePath := split(dir)
	_, rootPath := split(l.projectRoot)
	return identity.LocalTemplate(rootPath, templatePath), nil
}

// Validate plans, loads and resolves URL, extends diagnostics come first.
// A missing or circular extends yields diagnostics without a schema.
func (l *Loader) Validate(ctx context.Context, URL string, session *validate.Session) (*validate.Result, error) {
	plan, err := l.Plan(ctx, URL)
	if err != nil {
		return nil, err
	}
	if plan.Broken() {
		_, diagnostics, err := l.Parse(ctx, URL)
		if err != nil {
			return nil, err
		}
		l.logger.Info("extends chain broken", "file", URL, "errors", len(plan.Diagnostics.Errors()))
		return &validate.Result{Diagnostics: append(plan.Diagnostics, diagnostics...)}, nil
	}
	if err = l.Load(ctx, plan, session); err != nil {
		return nil, err
	}
	table, diagnostics, err := l.Parse(ctx, URL)
	if err != nil {
		return nil, err
	}
	result := session.Finish(table, diagnostics)
	result.Diagnostics = append(plan.Diagnostics, result.Diagnostics...)
	if result.HasErrors() {
		l.logger.Info("validation failed", "file", URL, "errors", len(result.Diagnostics.Errors()))
	}
	return result, nil
}
