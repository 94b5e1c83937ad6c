package loader

import (
	"path"
	"strings"
)

// split separates scheme://host prefix from the path, plain paths have no prefix
func split(location string) (string, string) {
	idx := strings.Index(location, "://")
	if idx == -1 {
		return "", location
	}
	rest := location[idx+3:]
	slash := strings.Index(rest, "/")
	if slash == -1 {
		return location, "/"
	}
	return location[:idx+3+slash], rest[slash:]
}

func parent(location string) string {
	prefix, p := split(location)
	return prefix + path.Dir(p)
}

// join resolves an @extends path against the file declaring it
func join(location, target string) string {
	if strings.Contains(target, "://") {
		return target
	}
	prefix, p := split(location)
	if path.IsAbs(target) {
		return prefix + path.Clean(target)
	}
	return prefix + path.Join(path.Dir(p), target)
}
