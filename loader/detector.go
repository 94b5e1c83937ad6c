package loader

import (
	"bufio"
	"bytes"
	"context"
	"path"
	"regexp"
	"strings"

	"github.com/viant/afs"
	"golang.org/x/mod/modfile"
)

// Project describes a detected project root
type Project struct {
	Root         string // project root location
	Marker       string // marker file or directory that identified the root
	Name         string
	Origin       string // git remote origin, if any
	RelativePath string // path from root to the detected file
}

// Detector finds the project root of a schema file by walking up to the nearest marker
type Detector struct {
	fs      afs.Service
	markers []string
}

// DefaultMarkers are checked in order in every directory
var DefaultMarkers = []string{
	".cdm",         // snapshot directory
	".git",         // VCS root
	"go.mod",       // Go projects
	"package.json", // JavaScript/Node projects
	"Cargo.toml",   // Rust projects
}

var packageNameExpr = regexp.MustCompile(`"name"\s*:\s*"([^"]+)"`)

// NewDetector creates a detector, default markers are used when none are given
func NewDetector(fs afs.Service, markers ...string) *Detector {
	if fs == nil {
		fs = afs.New()
	}
	if len(markers) == 0 {
		markers = DefaultMarkers
	}
	return &Detector{fs: fs, markers: markers}
}

// Detect returns the project containing URL, the file's directory is used when no marker is found
func (d *Detector) Detect(ctx context.Context, URL string) (*Project, error) {
	start := parent(URL)
	root, marker, err := d.findRoot(ctx, start)
	if err != nil {
		return nil, err
	}
	project := &Project{Root: root, Marker: marker}
	if root == "" {
		project.Root = start
	}
	_, rootPath := split(project.Root)
	_, filePath := split(URL)
	project.RelativePath = strings.TrimPrefix(strings.TrimPrefix(filePath, rootPath), "/")
	project.Name = path.Base(rootPath)
	if marker == "" {
		return project, nil
	}
	if name := d.projectName(ctx, project.Root); name != "" {
		project.Name = name
	}
	project.Origin = d.gitOrigin(ctx, project.Root)
	return project, nil
}

func (d *Detector) findRoot(ctx context.Context, dir string) (string, string, error) {
	for {
		for _, marker := range d.markers {
			exists, err := d.fs.Exists(ctx, join(dir+"/", marker))
			if err != nil {
				return "", "", err
			}
			if exists {
				return dir, marker, nil
			}
		}
		next := parent(dir)
		if next == dir {
			return "", "", nil
		}
		dir = next
	}
}

func (d *Detector) download(ctx context.Context, dir, name string) []byte {
	data, err := d.fs.DownloadWithURL(ctx, join(dir+"/", name))
	if err != nil {
		return nil
	}
	return data
}

// projectName extracts a project name from go.mod or package.json
func (d *Detector) projectName(ctx context.Context, root string) string {
	if content := d.download(ctx, root, "go.mod"); len(content) > 0 {
		if modulePath := modfile.ModulePath(content); modulePath != "" {
			return modulePath
		}
	}
	if content := d.download(ctx, root, "package.json"); len(content) > 0 {
		if matches := packageNameExpr.FindSubmatch(content); len(matches) == 2 {
			return string(matches[1])
		}
	}
	return ""
}

// gitOrigin extracts the origin URL from git config
func (d *Detector) gitOrigin(ctx context.Context, root string) string {
	content := d.download(ctx, root, ".git/config")
	if len(content) == 0 {
		return ""
	}
	scanner := bufio.NewScanner(bytes.NewReader(content))
	foundRemote := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "[") {
			foundRemote = line == `[remote "origin"]`
			continue
		}
		if foundRemote && strings.HasPrefix(line, "url") {
			if _, value, ok := strings.Cut(line, "="); ok {
				return strings.TrimSpace(value)
			}
		}
	}
	return ""
}
