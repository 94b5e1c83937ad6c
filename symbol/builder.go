package symbol

import (
	"strconv"
	"strings"

	"github.com/viant/cdm/diagnostic"
	"github.com/viant/cdm/identity"
	"github.com/viant/cdm/schema"
	"github.com/viant/cdm/syntax"
)

// Build extracts a file table from a syntax tree. It never resolves cross references;
// duplicates are reported, the first definition wins and scanning continues.
func Build(tree *syntax.Tree, source identity.Source) (*Table, diagnostic.List) {
	b := &builder{table: NewTable(tree.Path, source), file: tree.Path}
	if tree.Root == nil {
		return b.table, nil
	}
	for _, errNode := range syntax.Errors(tree.Root) {
		b.diagnostics.Add(diagnostic.SyntaxError, b.file, errNode.Span(), "syntax error near %q", snippet(errNode.Text()))
	}
	for _, node := range tree.Root.Named() {
		if node.IsError() {
			continue
		}
		switch node.Kind() {
		case "extends_directive":
			b.parseExtends(node)
		case "plugin_import":
			b.parsePluginImport(node)
		case "model_removal":
			b.parseRemoval(node)
		case "type_alias":
			b.parseTypeAlias(node)
		case "model_definition":
			b.parseModel(node)
		}
	}
	return b.table, b.diagnostics
}

type builder struct {
	table       *Table
	file        string
	diagnostics diagnostic.List
}

// parseExtends records @extends path
func (b *builder) parseExtends(node syntax.Node) {
	pathNode := node.Field("path")
	if pathNode == nil {
		return
	}
	b.table.Extends = append(b.table.Extends, &Extends{Path: unquote(pathNode.Text()), Span: pathNode.Span()})
}

// parsePluginImport records global plugin configuration
func (b *builder) parsePluginImport(node syntax.Node) {
	nameNode := node.Field("name")
	if nameNode == nil {
		return
	}
	var config interface{} = map[string]interface{}{}
	if configNode := node.Field("config"); configNode != nil {
		config = b.parseLiteral(configNode)
	}
	b.table.Plugins[nameNode.Text()] = config
}

// parseRemoval records file level removal
func (b *builder) parseRemoval(node syntax.Node) {
	nameNode := node.Field("name")
	if nameNode == nil {
		return
	}
	b.table.Removals = append(b.table.Removals, &Removal{Name: nameNode.Text(), File: b.file, Span: nameNode.Span()})
}

// parseTypeAlias extracts type alias definition
func (b *builder) parseTypeAlias(node syntax.Node) {
	nameNode := node.Field("name")
	if nameNode == nil {
		return
	}
	alias := &TypeAlias{
		Name:   nameNode.Text(),
		ID:     b.parseID(node),
		Type:   b.parseType(node.Field("type")),
		Config: b.parsePlugins(node.Field("plugins")),
		File:   b.file,
		Span:   nameNode.Span(),
	}
	if alias.Type == nil {
		alias.Type = schema.Identifier(schema.String)
	}
	if !b.table.AddTypeAlias(alias) {
		b.duplicate(alias.Name, nameNode.Span(), diagnostic.DuplicateTypeAlias, "type alias")
	}
}

// parseModel extracts model definition with its body
func (b *builder) parseModel(node syntax.Node) {
	nameNode := node.Field("name")
	if nameNode == nil {
		return
	}
	model := &Model{
		Name:   nameNode.Text(),
		ID:     b.parseID(node),
		Config: schema.Config{},
		File:   b.file,
		Span:   nameNode.Span(),
	}
	if extends := node.Field("extends"); extends != nil {
		for _, parent := range extends.Fields("parent") {
			model.Parents = append(model.Parents, parent.Text())
			model.ParentSpans = append(model.ParentSpans, parent.Span())
		}
	}
	if body := node.Field("body"); body != nil {
		b.parseBody(model, body)
	}
	if !b.table.AddModel(model) {
		b.duplicate(model.Name, nameNode.Span(), diagnostic.DuplicateModel, "model")
	}
}

func (b *builder) duplicate(name string, span syntax.Span, code diagnostic.Code, kind string) {
	if existing := b.table.TypeAlias(name); existing != nil {
		if code != diagnostic.DuplicateTypeAlias {
			code = diagnostic.NameConflict
		}
		b.diagnostics.Add(code, b.file, span, "%s %q is already defined as type alias at line %d", kind, name, existing.Span.Start.Line+1)
		return
	}
	existing := b.table.Model(name)
	if code != diagnostic.DuplicateModel {
		code = diagnostic.NameConflict
	}
	b.diagnostics.Add(code, b.file, span, "%s %q is already defined as model at line %d", kind, name, existing.Span.Start.Line+1)
}

// parseBody extracts fields, overrides, removals and model level plugin configuration
func (b *builder) parseBody(model *Model, body syntax.Node) {
	for _, child := range body.Named() {
		if child.IsError() {
			continue
		}
		switch child.Kind() {
		case "field_definition":
			field := b.parseField(child)
			if field == nil {
				continue
			}
			if !model.AddField(field) {
				b.diagnostics.Add(diagnostic.DuplicateField, b.file, field.Span, "field %q is already defined in model %q at line %d",
					field.Name, model.Name, model.Field(field.Name).Span.Start.Line+1)
			}
		case "field_override":
			nameNode := child.Field("name")
			if nameNode == nil {
				continue
			}
			model.Overrides = append(model.Overrides, &FieldOverride{Name: nameNode.Text(), Config: b.parsePlugins(child.Field("plugins")), Span: nameNode.Span()})
		case "field_removal":
			nameNode := child.Field("name")
			if nameNode == nil {
				continue
			}
			model.Removals = append(model.Removals, &FieldRemoval{Name: nameNode.Text(), Span: nameNode.Span()})
		case "plugin_config":
			if name, config, ok := b.parsePluginConfig(child); ok {
				model.Config[name] = config
			}
		}
	}
}

// parseField extracts field definition, an untyped field is a string
func (b *builder) parseField(node syntax.Node) *Field {
	nameNode := node.Field("name")
	if nameNode == nil {
		return nil
	}
	field := &Field{
		Name:     nameNode.Text(),
		ID:       b.parseID(node),
		Type:     b.parseType(node.Field("type")),
		Optional: node.Field("optional") != nil,
		Config:   b.parsePlugins(node.Field("plugins")),
		Span:     nameNode.Span(),
	}
	if field.Type == nil {
		field.Type = schema.Identifier(schema.String)
	}
	if defaultNode := node.Field("default"); defaultNode != nil {
		field.Default = schema.NewValue(b.parseLiteral(defaultNode))
	}
	return field
}

// parseID parses "#N" id of a definition
func (b *builder) parseID(node syntax.Node) *identity.EntityID {
	idNode := node.Field("id")
	if idNode == nil {
		return nil
	}
	local, err := identity.ParseLocal(idNode.Text())
	if err != nil {
		b.diagnostics.Add(diagnostic.MalformedEntityID, b.file, idNode.Span(), "%v", err)
		return nil
	}
	return identity.Ref(b.table.Source, local)
}

// parsePlugins converts plugin_block into configuration
func (b *builder) parsePlugins(node syntax.Node) schema.Config {
	config := schema.Config{}
	if node == nil {
		return config
	}
	children := []syntax.Node{node}
	if node.Kind() != "plugin_config" {
		children = node.Named()
	}
	for _, child := range children {
		if child.Kind() != "plugin_config" || child.IsError() {
			continue
		}
		if name, value, ok := b.parsePluginConfig(child); ok {
			config[name] = value
		}
	}
	return config
}

func (b *builder) parsePluginConfig(node syntax.Node) (string, interface{}, bool) {
	nameNode := node.Field("name")
	if nameNode == nil {
		return "", nil, false
	}
	var value interface{} = map[string]interface{}{}
	if configNode := node.Field("config"); configNode != nil {
		value = b.parseLiteral(configNode)
	}
	return strings.TrimPrefix(nameNode.Text(), "@"), value, true
}

// parseType converts a type node into a type expression
func (b *builder) parseType(node syntax.Node) *schema.TypeExpression {
	if node == nil || node.IsError() {
		return nil
	}
	switch node.Kind() {
	case "type_identifier", "identifier":
		return schema.Identifier(node.Text())
	case "null_literal", "null":
		return schema.Identifier(schema.Null)
	case "string_literal":
		return schema.StringLiteral(unquote(node.Text()))
	case "array_type":
		element := node.Field("type")
		if element == nil {
			if named := node.Named(); len(named) > 0 {
				element = named[0]
			}
		}
		return schema.Array(b.parseType(element))
	case "union_type":
		union := schema.Union()
		for _, member := range node.Named() {
			expr := b.parseType(member)
			if expr == nil {
				continue
			}
			if expr.Kind == schema.UnionKind {
				union.Types = append(union.Types, expr.Types...)
				continue
			}
			union.Types = append(union.Types, expr)
		}
		return union
	}
	if named := node.Named(); len(named) == 1 {
		return b.parseType(named[0])
	}
	return schema.Identifier(node.Text())
}

// parseLiteral converts a literal node into a JSON compatible value
func (b *builder) parseLiteral(node syntax.Node) interface{} {
	switch node.Kind() {
	case "string_literal":
		return unquote(node.Text())
	case "number_literal":
		value, err := strconv.ParseFloat(node.Text(), 64)
		if err != nil {
			b.diagnostics.Add(diagnostic.SyntaxError, b.file, node.Span(), "invalid number %q", node.Text())
			return nil
		}
		return value
	case "boolean_literal":
		return node.Text() == "true"
	case "null_literal":
		return nil
	case "array_literal":
		result := []interface{}{}
		for _, item := range node.Named() {
			result = append(result, b.parseLiteral(item))
		}
		return result
	case "object_literal":
		result := map[string]interface{}{}
		for _, entry := range node.Named() {
			key := entry.Field("key")
			value := entry.Field("value")
			if key == nil || value == nil {
				continue
			}
			result[unquote(key.Text())] = b.parseLiteral(value)
		}
		return result
	}
	return node.Text()
}

func unquote(text string) string {
	if len(text) >= 2 && (text[0] == '"' || text[0] == '\'') && text[len(text)-1] == text[0] {
		if value, err := strconv.Unquote(`"` + text[1:len(text)-1] + `"`); err == nil {
			return value
		}
		return text[1 : len(text)-1]
	}
	return text
}

func snippet(text string) string {
	if index := strings.IndexByte(text, '\n'); index != -1 {
		text = text[:index]
	}
	if runes := []rune(text); len(runes) > 20 {
		text = string(runes[:20])
	}
	return text
}
