// Package pipeline holds the per-run context: configuration, the assembled
// graph and the test corpus, threaded explicitly through every stage.
package pipeline

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/phobologic/annodoc/internal/categorize"
	"github.com/phobologic/annodoc/internal/config"
	"github.com/phobologic/annodoc/internal/correlate"
	"github.com/phobologic/annodoc/internal/coverage"
	"github.com/phobologic/annodoc/internal/graph"
	"github.com/phobologic/annodoc/internal/model"
	"github.com/phobologic/annodoc/internal/pathseg"
)

// Run is constructed once per invocation. Nothing in it is global.
type Run struct {
	ID         string
	Config     *config.Config
	Namer      *pathseg.Namer
	Correlator *correlate.Correlator
	Analyzer   *coverage.Analyzer
	Logger     *slog.Logger

	// Set by Build.
	Graph  *graph.Graph
	Corpus []model.TestCase
}

// New prepares a run from cfg. A nil logger uses slog.Default.
func New(cfg *config.Config, logger *slog.Logger) *Run {
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.NewString()[:8]
	namer := pathseg.New(cfg.Paths, cfg.Tests)
	return &Run{
		ID:         id,
		Config:     cfg,
		Namer:      namer,
		Correlator: correlate.New(namer, cfg.Tests),
		Analyzer:   coverage.NewAnalyzer(coverage.WeightsFrom(cfg.Coverage)),
		Logger:     logger.With("run", id),
	}
}

// Build assembles the graph from features and computes coverage for every
// entity against corpus.
func (r *Run) Build(ctx context.Context, features []model.FeatureCollection, corpus []model.TestCase) error {
	start := time.Now()
	r.Corpus = corpus
	r.Graph = graph.Assemble(features, r.Namer)
	r.Logger.Info("assembled graph",
		"modules", len(r.Graph.ByModule), "entities", len(r.Graph.Export), "tests", len(corpus))

	if err := r.cover(ctx); err != nil {
		return err
	}
	r.Logger.Debug("coverage computed", "elapsed", time.Since(start))
	return nil
}

// cover fills Coverage on every export record. Entities are independent, so
// the work fans out; each goroutine writes only its own result slot.
func (r *Run) cover(ctx context.Context) error {
	keys := r.Graph.Keys()
	results := make([]*model.CoverageAnalysis, len(keys))

	workers := r.Config.Output.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, key := range keys {
		rec := r.Graph.Export[key]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = r.Analyze(rec)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	uncovered := 0
	for i, key := range keys {
		r.Graph.Export[key].Coverage = results[i]
		if results[i].TotalTests == 0 {
			uncovered++
		}
	}
	if uncovered > 0 {
		r.Logger.Debug("entities without tests", "count", uncovered)
	}
	return nil
}

// Analyze correlates, categorizes and scores the tests for one record.
// It reads only the corpus and the assembled graph.
func (r *Run) Analyze(rec *model.ExportRecord) *model.CoverageAnalysis {
	tests := r.Correlator.ForEntity(rec.Name, rec.Path, r.Corpus)
	categorized := categorize.ApplyAll(tests)
	return r.Analyzer.Analyze(categorized,
		coverage.TouchesAuth(rec),
		coverage.TouchesStorage(rec, r.moduleCategory(rec.Module)))
}

// ModuleTests returns the tests for a module overview page. The module's
// dominant entity kind picks which path conventions are checked first.
func (r *Run) ModuleTests(module string) []model.TestCase {
	kind := model.Module
	if grp := r.Graph.ByModule[module]; grp != nil {
		switch {
		case len(grp.Entities[model.Action]) > 0:
			kind = model.Action
		case len(grp.Entities[model.Screen]) > 0:
			kind = model.Screen
		}
	}
	return r.Correlator.ForModule(module, kind, r.Corpus)
}

// Modules returns the overview of every module in name order. A non-empty
// name restricts the result to that module; ok is false when it is unknown.
func (r *Run) Modules(name string) (mods []model.ModuleOverview, ok bool) {
	names := r.Graph.Modules()
	if name != "" {
		if _, found := r.Graph.ByModule[name]; !found {
			return nil, false
		}
		names = []string{name}
	}
	mods = make([]model.ModuleOverview, 0, len(names))
	for _, n := range names {
		info := r.Graph.ByModule[n].Module
		info.Name = n
		mods = append(mods, model.ModuleOverview{ModuleInfo: info, Tests: r.ModuleTests(n)})
	}
	return mods, true
}

// Snapshot returns the export as the hand-off artifact stamped with now.
func (r *Run) Snapshot(now time.Time) *model.Snapshot {
	return &model.Snapshot{GeneratedAt: now.UTC(), Entities: r.Graph.Export}
}

func (r *Run) moduleCategory(module string) string {
	if grp := r.Graph.ByModule[module]; grp != nil {
		return grp.Module.Category
	}
	return ""
}
