package delta

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/cdm/identity"
	"github.com/viant/cdm/resolved"
	"github.com/viant/cdm/schema"
)

func id(n uint64) *identity.EntityID {
	return identity.Ref(identity.Local(), n)
}

func field(name, typeName string, entityID *identity.EntityID) *resolved.Field {
	return &resolved.Field{Name: name, FieldType: schema.Identifier(typeName), EntityID: entityID, Config: schema.Config{}}
}

func model(name string, entityID *identity.EntityID, fields ...*resolved.Field) *resolved.Model {
	return &resolved.Model{Name: name, EntityID: entityID, Fields: fields, Config: schema.Config{}}
}

func alias(name, typeName string, entityID *identity.EntityID) *resolved.TypeAlias {
	return &resolved.TypeAlias{Name: name, AliasType: schema.Identifier(typeName), EntityID: entityID, Config: schema.Config{}}
}

func view(models []*resolved.Model, aliases ...*resolved.TypeAlias) *resolved.Schema {
	result := resolved.New()
	for _, m := range models {
		result.Models[m.Name] = m
	}
	for _, a := range aliases {
		result.TypeAliases[a.Name] = a
	}
	return result
}

func summary(deltas []*Delta) []string {
	var result []string
	for _, d := range deltas {
		result = append(result, d.String())
	}
	return result
}

func TestCompute(t *testing.T) {
	tests := []struct {
		description string
		previous    *resolved.Schema
		current     *resolved.Schema
		options     []Option
		expect      []string
	}{
		{
			description: "field renamed by id",
			previous:    view([]*resolved.Model{model("User", id(10), field("email", "string", id(1)))}),
			current:     view([]*resolved.Model{model("User", id(10), field("email_address", "string", id(1)))}),
			expect:      []string{"field_renamed User: email -> email_address"},
		},
		{
			description: "field renamed by id with type change reports rename only",
			previous:    view([]*resolved.Model{model("User", nil, field("age", "string", id(1)))}),
			current:     view([]*resolved.Model{model("User", nil, field("years", "number", id(1)))}),
			expect:      []string{"field_renamed User: age -> years"},
		},
		{
			description: "same name with different ids is remove and add",
			previous:    view([]*resolved.Model{model("User", nil, field("email", "string", id(1)))}),
			current:     view([]*resolved.Model{model("User", nil, field("email", "string", id(2)))}),
			expect:      []string{"field_added User.email", "field_removed User.email"},
		},
		{
			description: "heuristic field rename",
			previous:    view([]*resolved.Model{model("User", nil, field("mail", "string", nil), field("age", "number", nil))}),
			current:     view([]*resolved.Model{model("User", nil, field("email", "string", nil), field("age", "number", nil))}),
			expect:      []string{"field_renamed User: mail -> email"},
		},
		{
			description: "heuristic disabled",
			previous:    view([]*resolved.Model{model("User", nil, field("mail", "string", nil))}),
			current:     view([]*resolved.Model{model("User", nil, field("email", "string", nil))}),
			options:     []Option{WithHeuristicRenames(false)},
			expect:      []string{"field_added User.email", "field_removed User.mail"},
		},
		{
			description: "ambiguous heuristic rename",
			previous:    view([]*resolved.Model{model("User", nil, field("a", "string", nil), field("b", "string", nil))}),
			current:     view([]*resolved.Model{model("User", nil, field("c", "string", nil), field("d", "string", nil))}),
			expect:      []string{"field_added User.c", "field_added User.d", "field_removed User.a", "field_removed User.b"},
		},
		{
			description: "field type and optionality changed",
			previous:    view([]*resolved.Model{model("User", nil, field("age", "string", nil))}),
			current: view([]*resolved.Model{model("User", nil, &resolved.Field{Name: "age", FieldType: schema.Identifier("number"), Optional: true,
				Default: schema.NewValue(1), Config: schema.Config{}})}),
			expect: []string{"field_type_changed User.age", "field_optionality_changed User.age", "field_default_changed User.age"},
		},
		{
			description: "small numeric default changed",
			previous: view([]*resolved.Model{model("User", nil, &resolved.Field{Name: "ratio", FieldType: schema.Identifier("number"),
				Default: schema.NewValue(1e-10), Config: schema.Config{}})}),
			current: view([]*resolved.Model{model("User", nil, &resolved.Field{Name: "ratio", FieldType: schema.Identifier("number"),
				Default: schema.NewValue(5e-10), Config: schema.Config{}})}),
			expect: []string{"field_default_changed User.ratio"},
		},
		{
			description: "model renamed by id with nested field change",
			previous:    view([]*resolved.Model{model("Customer", id(10), field("email", "string", id(1)))}),
			current:     view([]*resolved.Model{model("Client", id(10), field("mail", "string", id(1)), field("phone", "string", nil))}),
			expect:      []string{"model_renamed Customer -> Client", "field_renamed Client: email -> mail", "field_added Client.phone"},
		},
		{
			description: "heuristic model rename respects minimum field count",
			previous:    view([]*resolved.Model{model("Customer", nil, field("email", "string", nil))}),
			current:     view([]*resolved.Model{model("Client", nil, field("email", "string", nil))}),
			options:     []Option{WithMinModelFields(2)},
			expect:      []string{"model_added Client", "model_removed Customer"},
		},
		{
			description: "heuristic model rename",
			previous:    view([]*resolved.Model{model("Customer", nil, field("email", "string", nil))}),
			current:     view([]*resolved.Model{model("Client", nil, field("email", "string", nil))}),
			expect:      []string{"model_renamed Customer -> Client"},
		},
		{
			description: "type aliases",
			previous:    view(nil, alias("Email", "string", nil), alias("Legacy", "number", id(3)), alias("Phone", "string", id(4))),
			current:     view(nil, alias("Email", "number", nil), alias("Mobile", "string", id(4)), alias("Zip", "boolean", nil)),
			expect:      []string{"type_alias_type_changed Email", "type_alias_renamed Phone -> Mobile", "type_alias_added Zip", "type_alias_removed Legacy"},
		},
		{
			description: "nil previous",
			current:     view([]*resolved.Model{model("User", nil)}, alias("Email", "string", nil)),
			expect:      []string{"model_added User", "type_alias_added Email"},
		},
		{
			description: "identical schemas",
			previous:    view([]*resolved.Model{model("User", id(1), field("a", "string", nil))}),
			current:     view([]*resolved.Model{model("User", id(1), field("a", "string", nil))}),
		},
	}
	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			actual := Compute(tc.previous, tc.current, tc.options...)
			assert.Equal(t, tc.expect, summary(actual))
		})
	}
}

func TestCompute_Inheritance(t *testing.T) {
	base := model("Base", id(1), field("id", "string", id(1)))
	previous := view([]*resolved.Model{base, model("Audit", nil), {Name: "User", Parents: []string{"Base"}, Fields: []*resolved.Field{
		{Name: "id", FieldType: schema.Identifier("string"), EntityID: id(1), IsInherited: true, InheritedFrom: "Base"},
	}}})
	renamedBase := model("Entity", id(1), field("id", "string", id(1)))
	current := view([]*resolved.Model{renamedBase, model("Audit", nil), {Name: "User", Parents: []string{"Entity", "Audit"}, Fields: []*resolved.Field{
		{Name: "id", FieldType: schema.Identifier("string"), EntityID: id(1), IsInherited: true, InheritedFrom: "Entity"},
	}}})
	actual := Compute(previous, current)
	assert.Equal(t, []string{"model_renamed Base -> Entity", "inheritance_added User: Audit"}, summary(actual))
}

func TestCompute_Config(t *testing.T) {
	previous := view([]*resolved.Model{model("User", nil, field("id", "string", nil))}, alias("Email", "string", nil))
	previous.Plugins = schema.Config{"sql": map[string]interface{}{"dialect": "mysql"}, "docs": true}
	previous.Models["User"].Config = schema.Config{"sql": map[string]interface{}{"table": "users"}}
	current := view([]*resolved.Model{model("User", nil, field("id", "string", nil))}, alias("Email", "string", nil))
	current.Plugins = schema.Config{"sql": map[string]interface{}{"dialect": "postgres"}, "docs": true}
	current.Models["User"].Config = schema.Config{"sql": map[string]interface{}{"table": "users"}, "ts": map[string]interface{}{}}
	current.Models["User"].Fields[0].Config = schema.Config{"sql": map[string]interface{}{"pk": true}}
	current.TypeAliases["Email"].Config = schema.Config{"validation": "email"}

	actual := Compute(previous, current)
	assert.Equal(t, []string{
		"global_config_changed @sql",
		"field_config_changed User.id@sql",
		"model_config_changed User@ts",
		"type_alias_config_changed Email@validation",
	}, summary(actual))
	assert.Equal(t, map[string]interface{}{"dialect": "mysql"}, actual[0].Before)
	assert.Nil(t, actual[2].Before)

	previous.Models["User"].Config = schema.Config{"sql": map[string]interface{}{"table": "users", "precision": 1e-12}}
	current = view([]*resolved.Model{model("User", nil, field("id", "string", nil))}, alias("Email", "string", nil))
	current.Plugins = previous.Plugins
	current.Models["User"].Config = schema.Config{"sql": map[string]interface{}{"table": "users", "precision": 9e-12}}
	assert.Equal(t, []string{"model_config_changed User@sql"}, summary(Compute(previous, current)))
}

func TestDelta_JSON(t *testing.T) {
	previous := view([]*resolved.Model{model("User", id(10), field("email", "string", id(1)))})
	current := view([]*resolved.Model{model("User", id(10), field("email_address", "string", id(1)))})
	actual := Compute(previous, current)
	data, err := json.Marshal(actual[0])
	assert.NoError(t, err)
	var decoded map[string]interface{}
	assert.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "field_renamed", decoded["type"])
	assert.Equal(t, "email", decoded["old_name"])
	assert.Equal(t, "email_address", decoded["new_name"])
	assert.Equal(t, "User", decoded["model"])
	assert.EqualValues(t, 1, decoded["id"].(map[string]interface{})["local_id"])
	assert.Len(t, Filter(actual, FieldRenamed, ModelRenamed), 1)
}
