package config

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/cdm/delta"
	"github.com/viant/cdm/validate"
	"gopkg.in/yaml.v3"
)

// DefaultSnapshot is the snapshot location relative to the project root
const DefaultSnapshot = ".cdm/previous_schema.json"

// Config represents project configuration
type Config struct {
	ProjectRoot string   `yaml:"projectRoot,omitempty"`
	Snapshot    string   `yaml:"snapshot,omitempty"`
	Markers     []string `yaml:"markers,omitempty"`
	Delta       Delta    `yaml:"delta"`
	Identity    Identity `yaml:"identity"`
	Unused      Unused   `yaml:"unused"`
}

// Delta configures rename detection
type Delta struct {
	HeuristicRenames bool `yaml:"heuristicRenames"`
	MinModelFields   int  `yaml:"minModelFields"`
}

// Identity configures entity id checks
type Identity struct {
	WarnMissingIDs bool `yaml:"warnMissingIds"`
}

// Unused configures unused definition warnings
type Unused struct {
	Warn bool `yaml:"warn"`
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Snapshot: DefaultSnapshot,
		Delta: Delta{
			HeuristicRenames: true,
			MinModelFields:   1,
		},
		Unused: Unused{Warn: true},
	}
}

// Load reads YAML configuration from URL over defaults
func Load(ctx context.Context, URL string) (*Config, error) {
	data, err := afs.New().DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to download config %v: %w", URL, err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration over defaults
func Parse(data []byte) (*Config, error) {
	result := Default()
	if err := yaml.Unmarshal(data, result); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if result.Snapshot == "" {
		result.Snapshot = DefaultSnapshot
	}
	if result.Delta.MinModelFields < 1 {
		result.Delta.MinModelFields = 1
	}
	return result, nil
}

// Options returns session options matching configuration
func (c *Config) Options() []validate.Option {
	return []validate.Option{
		validate.WithMissingIDWarnings(c.Identity.WarnMissingIDs),
		validate.WithUnusedWarnings(c.Unused.Warn),
		validate.WithDeltaOptions(
			delta.WithHeuristicRenames(c.Delta.HeuristicRenames),
			delta.WithMinModelFields(c.Delta.MinModelFields),
		),
	}
}

// SnapshotURL returns the snapshot location, relative locations are resolved against the
// configured project root, or projectRoot when none is configured
func (c *Config) SnapshotURL(projectRoot string) string {
	if strings.Contains(c.Snapshot, "://") || path.IsAbs(c.Snapshot) {
		return c.Snapshot
	}
	if c.ProjectRoot != "" {
		projectRoot = c.ProjectRoot
	}
	return strings.TrimSuffix(projectRoot, "/") + "/" + c.Snapshot
}
