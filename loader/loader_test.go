package loader

import (
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/afs"
	"github.com/viant/cdm/diagnostic"
	"github.com/viant/cdm/identity"
	"github.com/viant/cdm/resolved"
	"github.com/viant/cdm/schema"
	"github.com/viant/cdm/syntax"
	"github.com/viant/cdm/validate"
)

var (
	aliasLine = regexp.MustCompile(`^(\w+):\s*(\w+)(?:\s+(#\d+))?$`)
	modelLine = regexp.MustCompile(`^(\w+)(?:\s+extends\s+([\w, ]+))?\s*\{(.*)\}(?:\s*(#\d+))?$`)
	fieldPart = regexp.MustCompile(`^(\w+)(\?)?:\s*(\w+)(?:\s+(#\d+))?$`)
)

// lineParser produces trees for a one-definition-per-line subset of the language
type lineParser struct{}

func (p *lineParser) Parse(ctx context.Context, path string, src []byte) (*syntax.Tree, error) {
	root := syntax.New("source_file")
	for i, line := range strings.Split(string(src), "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
		case strings.HasPrefix(line, "@extends"):
			root.Add(syntax.New("extends_directive", syntax.Leaf("string_literal", strings.TrimSpace(strings.TrimPrefix(line, "@extends"))).As("path").At(i, 9)))
		case strings.HasPrefix(line, "-"):
			root.Add(syntax.New("model_removal", syntax.Leaf("identifier", line[1:]).As("name").At(i, 1)))
		case aliasLine.MatchString(line):
			m := aliasLine.FindStringSubmatch(line)
			node := syntax.New("type_alias", syntax.Leaf("identifier", m[1]).As("name").At(i, 0), syntax.Leaf("type_identifier", m[2]).As("type"))
			if m[3] != "" {
				node.Add(syntax.Leaf("entity_id", m[3]).As("id"))
			}
			root.Add(node)
		case modelLine.MatchString(line):
			m := modelLine.FindStringSubmatch(line)
			node := syntax.New("model_definition", syntax.Leaf("identifier", m[1]).As("name").At(i, 0))
			if m[2] != "" {
				clause := syntax.New("extends_clause").As("extends")
				for _, parent := range strings.Split(m[2], ",") {
					clause.Add(syntax.Leaf("identifier", strings.TrimSpace(parent)).As("parent"))
				}
				node.Add(clause)
			}
			body := syntax.New("model_body").As("body")
			for _, part := range strings.Split(m[3], ",") {
				f := fieldPart.FindStringSubmatch(strings.TrimSpace(part))
				if f == nil {
					continue
				}
				field := syntax.New("field_definition", syntax.Leaf("identifier", f[1]).As("name").At(i, 0), syntax.Leaf("type_identifier", f[3]).As("type"))
				if f[2] != "" {
					field.Add(syntax.Leaf("optional", "?").As("optional"))
				}
				if f[4] != "" {
					field.Add(syntax.Leaf("entity_id", f[4]).As("id"))
				}
				body.Add(field)
			}
			node.Add(body)
			if m[4] != "" {
				node.Add(syntax.Leaf("entity_id", m[4]).As("id"))
			}
			root.Add(node)
		default:
			root.Add(&syntax.Element{Type: "ERROR", Value: line, Error: true, Location: syntax.Span{Start: syntax.Position{Line: i}}})
		}
	}
	return &syntax.Tree{Path: path, Source: src, Root: root}, nil
}

func upload(t *testing.T, fs afs.Service, files map[string]string) {
	for URL, content := range files {
		assert.NoError(t, fs.Upload(context.Background(), URL, 0644, strings.NewReader(content)))
	}
}

func TestLoader_Plan(t *testing.T) {
	tests := []struct {
		description string
		files       map[string]string
		root        string
		expect      []string
		expectCodes []diagnostic.Code
	}{
		{
			description: "ancestors oldest first",
			files: map[string]string{
				"mem://localhost/plan1/main.cdm":        "@extends ./mid.cdm\nUser {}",
				"mem://localhost/plan1/mid.cdm":         "// shared\n@extends \"shared/base.cdm\"\n@extends ./other.cdm",
				"mem://localhost/plan1/shared/base.cdm": "Email: string",
				"mem://localhost/plan1/other.cdm":       "@extends shared/../shared/base.cdm",
			},
			root:   "mem://localhost/plan1/main.cdm",
			expect: []string{"mem://localhost/plan1/shared/base.cdm", "mem://localhost/plan1/other.cdm", "mem://localhost/plan1/mid.cdm"},
		},
		{
			description: "missing ancestor",
			files: map[string]string{
				"mem://localhost/plan2/main.cdm": "@extends ./absent.cdm",
			},
			root:        "mem://localhost/plan2/main.cdm",
			expectCodes: []diagnostic.Code{diagnostic.MissingAncestor},
		},
		{
			description: "circular extends",
			files: map[string]string{
				"mem://localhost/plan3/main.cdm": "@extends a.cdm",
				"mem://localhost/plan3/a.cdm":    "@extends b.cdm",
				"mem://localhost/plan3/b.cdm":    "@extends a.cdm",
			},
			root:        "mem://localhost/plan3/main.cdm",
			expect:      []string{"mem://localhost/plan3/b.cdm", "mem://localhost/plan3/a.cdm"},
			expectCodes: []diagnostic.Code{diagnostic.CircularExtends},
		},
	}
	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			fs := afs.New()
			upload(t, fs, tc.files)
			plan, err := New(&lineParser{}, WithFS(fs)).Plan(context.Background(), tc.root)
			if !assert.NoError(t, err) {
				return
			}
			assert.Equal(t, len(tc.expect), len(plan.Ancestors))
			if len(tc.expect) > 0 {
				assert.Equal(t, tc.expect, plan.Ancestors)
			}
			var actual []diagnostic.Code
			for _, d := range plan.Diagnostics {
				actual = append(actual, d.Code)
			}
			assert.Equal(t, tc.expectCodes, actual)
		})
	}

	_, err := New(&lineParser{}).Plan(context.Background(), "mem://localhost/plan4/none.cdm")
	assert.Error(t, err)
}

func TestLoader_Validate(t *testing.T) {
	fs := afs.New()
	upload(t, fs, map[string]string{
		"mem://localhost/load1/base.cdm":                   "Email: string #1\nLegacy: string\nUser { email: Email #1, name: string } #10",
		"mem://localhost/load1/templates/auth/auth.cdm":    "Token: string #1",
		"mem://localhost/load1/templates/auth/" + TemplateManifest: `{"name":"auth"}`,
		"mem://localhost/load1/main.cdm":                   "@extends base.cdm\n@extends templates/auth/auth.cdm\n-Legacy\nAdmin extends User { token: Token #1 } #11",
	})
	loader := New(&lineParser{}, WithFS(fs), WithProjectRoot("mem://localhost/load1"))
	session := validate.NewSession()
	result, err := loader.Validate(context.Background(), "mem://localhost/load1/main.cdm", session)
	if !assert.NoError(t, err) {
		return
	}
	assert.Empty(t, result.Diagnostics)
	assert.Equal(t, []string{"mem://localhost/load1/base.cdm", "mem://localhost/load1/templates/auth/auth.cdm"}, session.Files())
	assert.Equal(t, []string{"Email", "Token"}, result.Schema.AliasNames())
	assert.Equal(t, []string{"Admin", "User"}, result.Schema.ModelNames())
	admin := result.Schema.Models["Admin"]
	assert.Equal(t, "User", admin.Field("email").InheritedFrom)
	assert.Equal(t, schema.Identifier("Token"), admin.Field("token").FieldType)

	token := result.Schema.TypeAliases["Token"]
	assert.Equal(t, identity.Ref(identity.LocalTemplate("/load1", "/load1/templates/auth"), 1), token.EntityID)
	assert.Equal(t, identity.Ref(identity.Local(), 1), result.Schema.TypeAliases["Email"].EntityID)
}

func TestLoader_ValidateSyntaxError(t *testing.T) {
	fs := afs.New()
	upload(t, fs, map[string]string{
		"mem://localhost/load2/main.cdm": "Email: string\n???",
	})
	result, err := New(&lineParser{}, WithFS(fs)).Validate(context.Background(), "mem://localhost/load2/main.cdm", validate.NewSession(validate.WithUnusedWarnings(false)))
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, 1, len(result.Diagnostics.WithCode(diagnostic.SyntaxError)))
	assert.True(t, result.HasErrors())
}

func TestLoader_ValidateBrokenExtends(t *testing.T) {
	tests := []struct {
		description string
		files       map[string]string
		expectCode  diagnostic.Code
	}{
		{
			description: "missing ancestor",
			files: map[string]string{
				"mem://localhost/load3/main.cdm": "@extends missing.cdm\nUser { name: string }",
			},
			expectCode: diagnostic.MissingAncestor,
		},
		{
			description: "circular extends",
			files: map[string]string{
				"mem://localhost/load3/main.cdm": "@extends a.cdm\nUser { name: string }",
				"mem://localhost/load3/a.cdm":    "@extends b.cdm\nA { name: string }",
				"mem://localhost/load3/b.cdm":    "@extends a.cdm\nB { name: string }",
			},
			expectCode: diagnostic.CircularExtends,
		},
	}
	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			fs := afs.New()
			upload(t, fs, tc.files)
			session := validate.NewSession()
			result, err := New(&lineParser{}, WithFS(fs)).Validate(context.Background(), "mem://localhost/load3/main.cdm", session)
			if !assert.NoError(t, err) {
				return
			}
			assert.Nil(t, result.Schema)
			assert.True(t, result.HasErrors())
			assert.Len(t, result.Diagnostics.WithCode(tc.expectCode), 1)
			assert.Empty(t, session.Files())
		})
	}
}

func TestSnapshotStore(t *testing.T) {
	ctx := context.Background()
	store := NewSnapshotStore(afs.New(), "mem://localhost/snapshot1/.cdm/previous_schema.json")
	previous, err := store.Load(ctx)
	assert.NoError(t, err)
	assert.Nil(t, previous)

	view := resolved.New()
	view.TypeAliases["Email"] = &resolved.TypeAlias{Name: "Email", AliasType: schema.Identifier("string"), Config: schema.Config{}, EntityID: identity.Ref(identity.Local(), 1)}
	view.Retired = []identity.Tombstone{{ID: identity.New(identity.Local(), 2)}}
	assert.NoError(t, store.Save(ctx, view))

	loaded, err := store.Load(ctx)
	assert.NoError(t, err)
	assert.Equal(t, view, loaded)
}

func TestDetector_Detect(t *testing.T) {
	fs := afs.New()
	upload(t, fs, map[string]string{
		"mem://localhost/detect1/repo/go.mod":          "module github.com/acme/schemas\n\ngo 1.23\n",
		"mem://localhost/detect1/repo/.git/config":     "[core]\n\tbare = false\n[remote \"origin\"]\n\turl = https://github.com/acme/schemas.git\n",
		"mem://localhost/detect1/repo/schema/main.cdm": "User {}",
	})
	project, err := NewDetector(fs, "go.mod").Detect(context.Background(), "mem://localhost/detect1/repo/schema/main.cdm")
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, &Project{
		Root:         "mem://localhost/detect1/repo",
		Marker:       "go.mod",
		Name:         "github.com/acme/schemas",
		Origin:       "https://github.com/acme/schemas.git",
		RelativePath: "schema/main.cdm",
	}, project)

	project, err = NewDetector(fs, "absent.marker").Detect(context.Background(), "mem://localhost/detect1/repo/schema/main.cdm")
	assert.NoError(t, err)
	assert.Equal(t, "mem://localhost/detect1/repo/schema", project.Root)
	assert.Equal(t, "main.cdm", project.RelativePath)
}

func TestJoin(t *testing.T) {
	tests := []struct {
		description string
		location    string
		target      string
		expect      string
	}{
		{description: "relative", location: "mem://localhost/a/b.cdm", target: "./c.cdm", expect: "mem://localhost/a/c.cdm"},
		{description: "parent", location: "mem://localhost/a/b.cdm", target: "../c.cdm", expect: "mem://localhost/c.cdm"},
		{description: "absolute", location: "mem://localhost/a/b.cdm", target: "/x/c.cdm", expect: "mem://localhost/x/c.cdm"},
		{description: "url", location: "/a/b.cdm", target: "mem://localhost/c.cdm", expect: "mem://localhost/c.cdm"},
		{description: "plain path", location: "schema/main.cdm", target: "base.cdm", expect: "schema/base.cdm"},
	}
	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			assert.Equal(t, tc.expect, join(tc.location, tc.target))
		})
	}
}
