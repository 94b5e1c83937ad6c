package identity

import (
	"fmt"
	"path"
	"strings"

	"golang.org/x/mod/semver"
)

// Kind represents entity id source kind
type Kind string

const (
	LocalKind         Kind = "local"
	RegistryKind      Kind = "registry"
	GitKind           Kind = "git"
	LocalTemplateKind Kind = "local_template"
)

// Source identifies where entity ids were assigned; ids of distinct sources never collide.
// Versions are not part of source identity.
type Source struct {
	Kind Kind   `json:"type" yaml:"type"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	URL  string `json:"url,omitempty" yaml:"url,omitempty"`
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// Local returns the implicit source shared by the project files and plain extended files
func Local() Source {
	return Source{Kind: LocalKind}
}

// Registry returns a registry package source, any @version suffix is dropped
func Registry(name string) Source {
	if index := strings.LastIndex(name, "@"); index > 0 {
		name = name[:index]
	}
	return Source{Kind: RegistryKind, Name: name}
}

// Git returns a git repository source with optional sub path
func Git(url, subPath string) Source {
	url = strings.TrimSuffix(strings.TrimSuffix(url, "/"), ".git")
	if subPath != "" {
		subPath = strings.Trim(path.Clean("/"+subPath), "/")
	}
	return Source{Kind: GitKind, URL: url, Path: subPath}
}

// LocalTemplate returns a local template source keyed by its path relative to the project root
func LocalTemplate(projectRoot, templatePath string) Source {
	return Source{Kind: LocalTemplateKind, Path: Canonical(projectRoot, templatePath)}
}

// Canonical returns templatePath relative to projectRoot, cleaned; paths outside the root stay absolute
func Canonical(projectRoot, templatePath string) string {
	templatePath = path.Clean(templatePath)
	if !path.IsAbs(templatePath) {
		return strings.TrimPrefix(templatePath, "./")
	}
	root := path.Clean(projectRoot)
	if templatePath == root {
		return "."
	}
	if rel := strings.TrimPrefix(templatePath, root+"/"); rel != templatePath {
		return rel
	}
	return templatePath
}

// String returns textual source form accepted by ParseSource
func (s Source) String() string {
	switch s.Kind {
	case RegistryKind:
		return "registry:" + s.Name
	case GitKind:
		if s.Path != "" {
			return "git:" + s.URL + "#" + s.Path
		}
		return "git:" + s.URL
	case LocalTemplateKind:
		return "template:" + s.Path
	}
	return string(LocalKind)
}

// ParseSource parses local, registry:name[@version], git:url[#path] or template:path
func ParseSource(text string) (Source, error) {
	text = strings.TrimSpace(text)
	if text == "" || text == string(LocalKind) {
		return Local(), nil
	}
	kind, value, ok := strings.Cut(text, ":")
	if !ok || value == "" {
		return Source{}, fmt.Errorf("invalid source: %q", text)
	}
	switch kind {
	case "registry":
		if index := strings.LastIndex(value, "@"); index > 0 {
			version := value[index+1:]
			if !strings.HasPrefix(version, "v") {
				version = "v" + version
			}
			if !semver.IsValid(version) {
				return Source{}, fmt.Errorf("invalid registry version: %q", text)
			}
		}
		return Registry(value), nil
	case "git":
		url, subPath, _ := strings.Cut(value, "#")
		return Git(url, subPath), nil
	case "template", string(LocalTemplateKind):
		return Source{Kind: LocalTemplateKind, Path: Canonical("", value)}, nil
	}
	return Source{}, fmt.Errorf("unsupported source kind: %q", kind)
}
