// Package corpus produces the flat list of test cases correlated against the
// entity graph, either from a JSON file or by extracting it from test sources.
package corpus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/phobologic/annodoc/internal/config"
	"github.com/phobologic/annodoc/internal/discover"
	"github.com/phobologic/annodoc/internal/lang"
	"github.com/phobologic/annodoc/internal/model"
	"github.com/phobologic/annodoc/internal/parse"
)

// ErrNoTests is returned by Extract when no test files match the patterns.
var ErrNoTests = errors.New("no test files found")

// DefaultMaxFileSize bounds the test files Extract will parse.
const DefaultMaxFileSize = 1_000_000 // 1 MB

// Load reads a JSON array of test cases. Entries without a file or title are
// dropped; a missing framework defaults to unit.
func Load(path string) ([]model.TestCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading test corpus: %w", err)
	}
	var raw []model.TestCase
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing test corpus %s: %w", path, err)
	}
	out := make([]model.TestCase, 0, len(raw))
	for _, tc := range raw {
		if tc.File == "" || tc.It == "" {
			continue
		}
		if tc.Framework == "" {
			tc.Framework = model.Unit
		}
		tc.File = filepath.ToSlash(tc.File)
		out = append(out, tc)
	}
	return out, nil
}

// Options controls Extract.
type Options struct {
	Tests config.TestsConfig
	// Workers bounds concurrent parses; 0 means GOMAXPROCS.
	Workers int
	// MaxFileSize skips larger files; 0 means DefaultMaxFileSize.
	MaxFileSize int64
	Logger      *slog.Logger
}

// Extract discovers test files under root and returns their test cases in
// file path order, then source order within each file.
func Extract(ctx context.Context, root string, opts Options) ([]model.TestCase, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	files, err := discover.TestFiles(root, opts.Tests.Patterns)
	if err != nil {
		return nil, fmt.Errorf("discovering test files: %w", err)
	}
	files = filterBySize(root, files, maxSize, logger)
	if len(files) == 0 {
		return nil, ErrNoTests
	}
	logger.Debug("extracting tests", "files", len(files))

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	// Each file writes only its own slot, so results need no lock and keep
	// discovery order.
	perFile := make([][]model.TestCase, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tests, err := extractFile(root, f, frameworkFor(f.Path, opts.Tests.E2EGlobs))
			if err != nil {
				logger.Warn("skipping test file", "path", f.Path, "error", err)
				return nil
			}
			perFile[i] = tests
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []model.TestCase
	for _, tests := range perFile {
		out = append(out, tests...)
	}
	return out, nil
}

func extractFile(root string, f discover.FileEntry, fw model.Framework) ([]model.TestCase, error) {
	l := lang.Languages[f.Language]
	if l == nil {
		return nil, fmt.Errorf("unsupported language %q", f.Language)
	}
	q, err := l.GetCallQuery()
	if err != nil {
		return nil, err
	}
	source, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(f.Path)))
	if err != nil {
		return nil, err
	}
	// Parsers are not safe for concurrent use; one per file.
	p := l.NewParser()
	defer p.Close()
	return parse.ExtractTests(p, q, source, f.Path, fw), nil
}

func frameworkFor(path string, e2eGlobs []string) model.Framework {
	for _, g := range e2eGlobs {
		if ok, _ := doublestar.Match(g, path); ok {
			return model.E2E
		}
	}
	return model.Unit
}

func filterBySize(root string, files []discover.FileEntry, maxSize int64, logger *slog.Logger) []discover.FileEntry {
	var kept []discover.FileEntry
	for _, f := range files {
		fi, err := os.Stat(filepath.Join(root, filepath.FromSlash(f.Path)))
		if err != nil {
			kept = append(kept, f) // keep if can't stat
			continue
		}
		if fi.Size() > maxSize {
			logger.Warn("skipping large test file", "path", f.Path, "bytes", fi.Size(), "limit", maxSize)
			continue
		}
		kept = append(kept, f)
	}
	return kept
}
