package config

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/afs"
)

func TestParse(t *testing.T) {
	tests := []struct {
		description string
		yaml        string
		expect      *Config
		expectErr   bool
	}{
		{
			description: "empty document keeps defaults",
			yaml:        "",
			expect:      Default(),
		},
		{
			description: "overrides",
			yaml: `
projectRoot: /work/app
markers: [.git]
delta:
  heuristicRenames: false
  minModelFields: 3
identity:
  warnMissingIds: true
unused:
  warn: false
`,
			expect: &Config{
				ProjectRoot: "/work/app",
				Snapshot:    DefaultSnapshot,
				Markers:     []string{".git"},
				Delta:       Delta{HeuristicRenames: false, MinModelFields: 3},
				Identity:    Identity{WarnMissingIDs: true},
				Unused:      Unused{Warn: false},
			},
		},
		{
			description: "partial section keeps other defaults",
			yaml:        "delta:\n  minModelFields: 0\nsnapshot: build/schema.json\n",
			expect: &Config{
				Snapshot: "build/schema.json",
				Delta:    Delta{HeuristicRenames: true, MinModelFields: 1},
				Unused:   Unused{Warn: true},
			},
		},
		{
			description: "invalid yaml",
			yaml:        "delta: [",
			expectErr:   true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			actual, err := Parse([]byte(tc.yaml))
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expect, actual)
			assert.Len(t, actual.Options(), 3)
		})
	}
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	URL := "mem://localhost/config1/cdm.yaml"
	assert.NoError(t, fs.Upload(ctx, URL, 0644, strings.NewReader("unused:\n  warn: false\n")))
	actual, err := Load(ctx, URL)
	assert.NoError(t, err)
	assert.False(t, actual.Unused.Warn)
	assert.True(t, actual.Delta.HeuristicRenames)

	_, err = Load(ctx, "mem://localhost/config1/absent.yaml")
	assert.Error(t, err)
}

func TestConfig_SnapshotURL(t *testing.T) {
	tests := []struct {
		description string
		config      *Config
		root        string
		expect      string
	}{
		{description: "default under detected root", config: Default(), root: "mem://localhost/app/", expect: "mem://localhost/app/.cdm/previous_schema.json"},
		{description: "configured root wins", config: &Config{ProjectRoot: "/work/app", Snapshot: DefaultSnapshot}, root: "/tmp", expect: "/work/app/.cdm/previous_schema.json"},
		{description: "absolute snapshot", config: &Config{Snapshot: "/var/cdm/schema.json"}, root: "/tmp", expect: "/var/cdm/schema.json"},
		{description: "snapshot url", config: &Config{Snapshot: "s3://bucket/schema.json"}, root: "/tmp", expect: "s3://bucket/schema.json"},
	}
	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			assert.Equal(t, tc.expect, tc.config.SnapshotURL(tc.root))
		})
	}
}
