package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/cdm/identity"
	"github.com/viant/cdm/loader"
	"github.com/viant/cdm/resolved"
	"github.com/viant/cdm/schema"
)

func save(t *testing.T, URL string, models ...*resolved.Model) {
	view := resolved.New()
	for _, model := range models {
		view.Models[model.Name] = model
	}
	assert.NoError(t, loader.NewSnapshotStore(fs, URL).Save(context.Background(), view))
}

func user(fieldName string, fieldID uint64) *resolved.Model {
	return &resolved.Model{Name: "User", EntityID: identity.Ref(identity.Local(), 10), Config: schema.Config{}, Fields: []*resolved.Field{
		{Name: fieldName, FieldType: schema.Identifier("string"), Config: schema.Config{}, EntityID: identity.Ref(identity.Local(), fieldID)},
	}}
}

func run(args ...string) (string, string, error) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCommands(t *testing.T) {
	save(t, "mem://localhost/cli1/previous.json", user("name", 1))
	save(t, "mem://localhost/cli1/current.json", user("displayName", 1))
	save(t, "mem://localhost/cli1/dropped.json", user("email", 2))
	duplicate := user("name", 1)
	duplicate.Fields = append(duplicate.Fields, &resolved.Field{Name: "other", FieldType: schema.Identifier("string"), EntityID: identity.Ref(identity.Local(), 1)})
	save(t, "mem://localhost/cli1/duplicate.json", duplicate)

	tests := []struct {
		description string
		args        []string
		expectErr   bool
		verify      func(t *testing.T, stdout, stderr string)
	}{
		{
			description: "diff renamed field",
			args:        []string{"diff", "mem://localhost/cli1/previous.json", "mem://localhost/cli1/current.json"},
			verify: func(t *testing.T, stdout, stderr string) {
				var deltas []map[string]interface{}
				assert.NoError(t, json.Unmarshal([]byte(stdout), &deltas))
				if assert.Len(t, deltas, 1) {
					assert.Equal(t, "field_renamed", deltas[0]["type"])
					assert.Equal(t, "displayName", deltas[0]["new_name"])
				}
			},
		},
		{
			description: "diff without previous snapshot",
			args:        []string{"diff", "mem://localhost/cli1/absent.json", "mem://localhost/cli1/current.json"},
			verify: func(t *testing.T, stdout, stderr string) {
				assert.Contains(t, stdout, "model_added")
			},
		},
		{
			description: "diff without current snapshot",
			args:        []string{"diff", "mem://localhost/cli1/previous.json", "mem://localhost/cli1/absent.json"},
			expectErr:   true,
		},
		{
			description: "check duplicate field id",
			args:        []string{"check", "mem://localhost/cli1/duplicate.json"},
			expectErr:   true,
			verify: func(t *testing.T, stdout, stderr string) {
				assert.Contains(t, stderr, "[E502]")
			},
		},
		{
			description: "check valid snapshot",
			args:        []string{"check", "mem://localhost/cli1/current.json"},
			verify: func(t *testing.T, stdout, stderr string) {
				assert.Equal(t, "2 entities checked\n", stdout)
			},
		},
		{
			description: "snapshot retires dropped field id",
			args:        []string{"snapshot", "mem://localhost/cli1/previous.json", "mem://localhost/cli1/dropped.json"},
			verify: func(t *testing.T, stdout, stderr string) {
				var next resolved.Schema
				assert.NoError(t, json.Unmarshal([]byte(stdout), &next))
				assert.Equal(t, []identity.Tombstone{{Model: "User", ModelID: identity.Ref(identity.Local(), 10), ID: identity.New(identity.Local(), 1)}}, next.Retired)
			},
		},
		{
			description: "snapshot saved under detected project root",
			args:        []string{"snapshot", "--save", "mem://localhost/cli1/previous.json", "mem://localhost/cli1/dropped.json"},
			verify: func(t *testing.T, stdout, stderr string) {
				assert.Empty(t, stdout)
				saved, err := loader.NewSnapshotStore(fs, "mem://localhost/cli1/.cdm/previous_schema.json").Load(context.Background())
				assert.NoError(t, err)
				if assert.NotNil(t, saved) {
					assert.Len(t, saved.Retired, 1)
				}
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			stdout, stderr, err := run(tc.args...)
			if tc.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			if tc.verify != nil {
				tc.verify(t, stdout, stderr)
			}
		})
	}
}
