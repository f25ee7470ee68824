// Package pathseg splits source and test paths into the segments used for
// module inference and test correlation.
package pathseg

import (
	"path"
	"strings"

	"github.com/phobologic/annodoc/internal/config"
)

// Namer infers module names and meaningful segments from paths.
// The zero value treats no directory as special.
type Namer struct {
	containers map[string]struct{}
	appRoots   map[string]struct{}
	entryFiles map[string]struct{}
	testDirs   map[string]struct{}
}

// New builds a Namer from path and test conventions.
func New(paths config.PathsConfig, tests config.TestsConfig) *Namer {
	return &Namer{
		containers: toSet(paths.Containers),
		appRoots:   toSet(paths.AppRoots),
		entryFiles: toSet(paths.EntryFiles),
		testDirs:   toSet(tests.TestDirs),
	}
}

// Default returns a Namer using the default configuration.
func Default() *Namer {
	cfg := config.DefaultConfig()
	return New(cfg.Paths, cfg.Tests)
}

// Split normalizes separators, removes "." and empty segments and strips the
// file extension from the last segment. Test suffixes such as ".test" and
// ".spec" are stripped along with it.
func Split(p string) []string {
	p = strings.ReplaceAll(p, `\`, "/")
	raw := strings.Split(p, "/")
	segs := make([]string, 0, len(raw))
	for _, s := range raw {
		if s == "" || s == "." {
			continue
		}
		segs = append(segs, s)
	}
	if len(segs) == 0 {
		return nil
	}
	segs[len(segs)-1] = Stem(segs[len(segs)-1])
	if segs[len(segs)-1] == "" {
		segs = segs[:len(segs)-1]
	}
	return segs
}

// Stem strips the extension and any test/spec/e2e marker from a file name.
func Stem(name string) string {
	name = strings.TrimSuffix(name, path.Ext(name))
	for _, marker := range []string{".test", ".spec", ".e2e"} {
		name = strings.TrimSuffix(name, marker)
	}
	return name
}

// ModuleName infers the module an entity at p belongs to. The first directory
// that is not a container, route group, dynamic segment or application root
// names the module; failing that, the file stem does unless it is an entry
// file. Returns "" when nothing qualifies.
func (n *Namer) ModuleName(p string) string {
	segs := Split(p)
	if len(segs) == 0 {
		return ""
	}
	dirs, file := segs[:len(segs)-1], segs[len(segs)-1]

	for i := 0; i < len(dirs); i++ {
		d := dirs[i]
		if _, ok := n.appRoots[d]; ok {
			i++ // skip the application name itself
			continue
		}
		if n.skippable(d) {
			continue
		}
		return d
	}

	if _, ok := n.entryFiles[file]; ok || n.skippable(file) {
		return ""
	}
	return file
}

// Meaningful returns the segments of p that can identify an entity: test
// directories, containers, application roots, route groups and dynamic
// segments are dropped. Used for both source and test paths so that the two
// normalize the same way.
func (n *Namer) Meaningful(p string) []string {
	segs := Split(p)
	out := make([]string, 0, len(segs))
	for i := 0; i < len(segs); i++ {
		s := segs[i]
		if _, ok := n.appRoots[s]; ok && i < len(segs)-1 {
			i++
			continue
		}
		if _, ok := n.testDirs[s]; ok {
			continue
		}
		if _, ok := n.entryFiles[s]; ok && i == len(segs)-1 {
			continue
		}
		if n.skippable(s) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// SharesSegment reports whether the meaningful segments of a and b overlap.
func (n *Namer) SharesSegment(a, b string) bool {
	left := n.Meaningful(a)
	if len(left) == 0 {
		return false
	}
	set := toSet(left)
	for _, s := range n.Meaningful(b) {
		if _, ok := set[s]; ok {
			return true
		}
	}
	return false
}

// HasSegment reports whether any segment of p equals name, ignoring case.
// Test directories do not count.
func (n *Namer) HasSegment(p, name string) bool {
	if name == "" {
		return false
	}
	for _, s := range Split(p) {
		if _, ok := n.testDirs[s]; ok {
			continue
		}
		if strings.EqualFold(s, name) {
			return true
		}
	}
	return false
}

func (n *Namer) skippable(s string) bool {
	if _, ok := n.containers[s]; ok {
		return true
	}
	return isRouteGroup(s) || isDynamic(s)
}

// isRouteGroup matches "(group)" directories that do not appear in URLs.
func isRouteGroup(s string) bool {
	return len(s) > 2 && s[0] == '(' && s[len(s)-1] == ')'
}

// isDynamic matches "[id]" and "[...slug]" route parameters.
func isDynamic(s string) bool {
	return len(s) > 2 && s[0] == '[' && s[len(s)-1] == ']'
}

func toSet(items []string) map[string]struct{} {
	m := make(map[string]struct{}, len(items))
	for _, it := range items {
		m[it] = struct{}{}
	}
	return m
}
