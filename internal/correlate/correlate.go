// Package correlate matches test cases from a corpus to entities and modules
// using describe labels and path segments.
package correlate

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/phobologic/annodoc/internal/config"
	"github.com/phobologic/annodoc/internal/model"
	"github.com/phobologic/annodoc/internal/pathseg"
)

// Correlator holds path conventions only; it keeps no per-call state and is
// safe for concurrent use.
type Correlator struct {
	namer       *pathseg.Namer
	actionGlobs []string
	screenGlobs []string
}

// New returns a Correlator using namer for path normalization and the
// kind-hint globs from tests.
func New(namer *pathseg.Namer, tests config.TestsConfig) *Correlator {
	if namer == nil {
		namer = &pathseg.Namer{}
	}
	return &Correlator{
		namer:       namer,
		actionGlobs: tests.ActionGlobs,
		screenGlobs: tests.ScreenGlobs,
	}
}

// ForEntity returns the tests whose describe label equals name exactly, or
// whose file shares a meaningful path segment with sourcePath. Results are in
// corpus order and never nil.
func (c *Correlator) ForEntity(name, sourcePath string, corpus []model.TestCase) []model.TestCase {
	out := []model.TestCase{}
	for _, tc := range corpus {
		if tc.Describe == name || c.namer.SharesSegment(sourcePath, tc.File) {
			out = append(out, tc)
		}
	}
	return out
}

// ForModule returns the tests whose file has module as a path segment, or
// whose describe label contains module ignoring case. kind only decides which
// check runs first. Results are in corpus order and never nil.
func (c *Correlator) ForModule(module string, kind model.Kind, corpus []model.TestCase) []model.TestCase {
	out := []model.TestCase{}
	if module == "" {
		return out
	}
	lower := strings.ToLower(module)
	byPath := func(tc model.TestCase) bool { return c.namer.HasSegment(tc.File, module) }
	byLabel := func(tc model.TestCase) bool { return strings.Contains(strings.ToLower(tc.Describe), lower) }

	globs := c.hintGlobs(kind)
	for _, tc := range corpus {
		first, second := byLabel, byPath
		if matchAny(globs, tc.File) {
			first, second = byPath, byLabel
		}
		if first(tc) || second(tc) {
			out = append(out, tc)
		}
	}
	return out
}

func (c *Correlator) hintGlobs(kind model.Kind) []string {
	switch kind {
	case model.Action:
		return c.actionGlobs
	case model.Screen:
		return c.screenGlobs
	}
	return nil
}

func matchAny(globs []string, file string) bool {
	file = strings.ReplaceAll(file, `\`, "/")
	for _, g := range globs {
		if ok, _ := doublestar.Match(g, file); ok {
			return true
		}
	}
	return false
}
