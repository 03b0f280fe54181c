package data

import (
	"path"
	"strings"
)

// PathMax is the longest normalized path accepted by the switch.
const PathMax = 1024

// Normalize turns p into an absolute path relative to cwd. The result has no
// "." or ".." components, no repeated slashes and never ends with "/" unless
// it is the root directory. Paths longer than PathMax fail with ENAMETOOLONG.
func Normalize(cwd, p string) (string, error) {
	if cwd == "" {
		cwd = "/"
	}

	if !strings.HasPrefix(p, "/") {
		p = cwd + "/" + p
	}

	np := path.Clean(p)
	if len(np) > PathMax {
		return "", ENAMETOOLONG
	}

	return np, nil
}

// ToRelativePath removes the prefix from path and keeps the leading slash,
// so the backend always receives an absolute path inside its own namespace.
func ToRelativePath(p, prefix string) string {
	if prefix == "" || prefix == "/" {
		return p
	}

	if p == prefix {
		return "/"
	}

	return strings.TrimPrefix(p, prefix)
}

// HasPrefix checks if path lives under prefix. Both paths should be normalized
// before calling. "/dev" is a prefix of "/dev/tty" but not of "/devices".
func HasPrefix(p, prefix string) bool {
	// Root matches everything
	if prefix == "" || prefix == "/" {
		return true
	}

	// Exact match
	if p == prefix {
		return true
	}

	return strings.HasPrefix(p, prefix+"/")
}

// Depth returns the number of components in a normalized path. "/" has depth 0.
func Depth(p string) int {
	if p == "/" || p == "" {
		return 0
	}

	return strings.Count(p, "/")
}
