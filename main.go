// annodoc builds the cross-referenced entity graph of an annotated web
// application, correlates it with the test suite and writes a coverage
// snapshot for the documentation renderer.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/phobologic/annodoc/internal/config"
	"github.com/phobologic/annodoc/internal/corpus"
	"github.com/phobologic/annodoc/internal/ingest"
	"github.com/phobologic/annodoc/internal/model"
	"github.com/phobologic/annodoc/internal/pipeline"
	"github.com/phobologic/annodoc/internal/ranking"
	"github.com/phobologic/annodoc/internal/snapshot"
	"github.com/phobologic/annodoc/internal/toon"
)

var version = "dev"

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "annodoc",
		Short:         "Entity graph and test coverage for annotated web apps",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.SetVersionTemplate("annodoc {{.Version}}\n")
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.AddCommand(newBuildCmd(stdout, stderr))
	root.AddCommand(newModulesCmd(stdout, stderr))
	root.AddCommand(newInitCmd(stdout, stderr))
	return root
}

// sourceOptions are the inputs shared by every command that builds the graph.
type sourceOptions struct {
	entities string
	tests    string
	format   string
	verbose  bool
}

func (o *sourceOptions) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&o.entities, "entities", "e", "", "scanner output (JSON, or YAML by extension)")
	f.StringVarP(&o.tests, "tests", "t", "", "test corpus JSON (default: extract from test files)")
	f.StringVarP(&o.format, "format", "f", "", "stdout format: json|toon (default: output.format from config)")
	f.BoolVarP(&o.verbose, "verbose", "v", false, "debug logging")
	_ = cmd.MarkFlagRequired("entities")
}

type buildOptions struct {
	sourceOptions
	out    string
	top    int
	entity string
	path   string
}

type modulesOptions struct {
	sourceOptions
	module string
}

func newBuildCmd(stdout, stderr io.Writer) *cobra.Command {
	var opts buildOptions
	cmd := &cobra.Command{
		Use:   "build [root]",
		Short: "Assemble the entity graph and write the coverage snapshot",
		Long: `Reads the annotation scanner's output, assembles the entity graph, correlates
every entity with the test suite and writes the snapshot. A focused view of the
result is printed to stdout.

Tests are read from --tests (a JSON array of test cases) when given, otherwise
extracted from the JavaScript/TypeScript test files under root.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd.Context(), rootArg(args), opts, stdout, stderr)
		},
	}

	opts.register(cmd)
	f := cmd.Flags()
	f.StringVarP(&opts.out, "out", "o", "", "snapshot path (default: output.snapshot from config)")
	f.IntVarP(&opts.top, "top", "n", 0, "limit the printed view to the top N entities by rank")
	f.StringVar(&opts.entity, "entity", "", "print only entities whose name contains this substring, with their neighbors")
	f.StringVar(&opts.path, "path", "", "print only entities whose source path contains this substring")
	return cmd
}

func newModulesCmd(stdout, stderr io.Writer) *cobra.Command {
	var opts modulesOptions
	cmd := &cobra.Command{
		Use:   "modules [root]",
		Short: "Print module overviews with their merged records and tests",
		Long: `Assembles the entity graph like build and prints one overview per module:
the module record merged across application roots (description, category and
the union of its members' relations) and the tests correlated with the module
as a whole. Nothing is written to disk.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runModules(cmd.Context(), rootArg(args), opts, stdout, stderr)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.module, "module", "m", "", "print only this module")
	return cmd
}

func rootArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}

// session is a built run plus the settings the commands print with.
type session struct {
	root   string
	cfg    *config.Config
	format string
	run    *pipeline.Run
}

// prepare validates root, loads config and inputs, and builds the graph with
// coverage.
func prepare(ctx context.Context, root string, opts sourceOptions, stderr io.Writer) (*session, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("root path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: not a directory", root)
	}

	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}
	format := cfg.Output.Format
	if opts.format != "" {
		format = opts.format
	}
	if !slices.Contains(config.ValidFormats, format) {
		return nil, fmt.Errorf("unsupported format %q (want one of %v)", format, config.ValidFormats)
	}

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	scanned, err := ingest.Load(opts.entities, logger)
	if err != nil {
		return nil, err
	}
	if n := len(scanned.Exclusions); n > 0 {
		logger.Warn("records excluded from the graph", "count", n)
	}

	tests, err := loadTests(ctx, root, opts.tests, cfg, logger)
	if err != nil {
		return nil, err
	}

	r := pipeline.New(cfg, logger)
	if err := r.Build(ctx, scanned.Features, tests); err != nil {
		return nil, fmt.Errorf("building graph: %w", err)
	}
	return &session{root: root, cfg: cfg, format: format, run: r}, nil
}

func runBuild(ctx context.Context, root string, opts buildOptions, stdout, stderr io.Writer) error {
	s, err := prepare(ctx, root, opts.sourceOptions, stderr)
	if err != nil {
		return err
	}
	snap := s.run.Snapshot(time.Now())

	out := opts.out
	if out == "" {
		out = s.cfg.Output.Snapshot
		if !filepath.IsAbs(out) {
			out = filepath.Join(s.root, out)
		}
	}
	if err := snapshot.Write(out, snap); err != nil {
		return err
	}
	s.run.Logger.Info("wrote snapshot", "path", out, "entities", len(snap.Entities))

	view := &model.Snapshot{GeneratedAt: snap.GeneratedAt, Entities: focus(snap.Entities, opts)}
	if s.format == "toon" {
		_, err := fmt.Fprintln(stdout, toon.Encode(view, filepath.Base(s.root)))
		return err
	}
	return printJSON(stdout, view)
}

func runModules(ctx context.Context, root string, opts modulesOptions, stdout, stderr io.Writer) error {
	s, err := prepare(ctx, root, opts.sourceOptions, stderr)
	if err != nil {
		return err
	}
	mods, ok := s.run.Modules(opts.module)
	if !ok {
		return fmt.Errorf("unknown module %q", opts.module)
	}
	if s.format == "toon" {
		_, err := fmt.Fprintln(stdout, toon.EncodeModules(mods, filepath.Base(s.root)))
		return err
	}
	return printJSON(stdout, mods)
}

// loadTests returns the corpus from path, or extracts it under root. A root
// without test files yields an empty corpus: every entity then reports zero
// coverage.
func loadTests(ctx context.Context, root, path string, cfg *config.Config, logger *slog.Logger) ([]model.TestCase, error) {
	if path != "" {
		return corpus.Load(path)
	}
	tests, err := corpus.Extract(ctx, root, corpus.Options{
		Tests:   cfg.Tests,
		Workers: cfg.Output.Workers,
		Logger:  logger,
	})
	if errors.Is(err, corpus.ErrNoTests) {
		logger.Warn("no test files found", "root", root)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("extracting tests: %w", err)
	}
	return tests, nil
}

// focus applies the --entity, --path and --top filters in that order.
func focus(export model.ExportMap, opts buildOptions) model.ExportMap {
	if opts.entity != "" {
		export = ranking.FilterByName(export, opts.entity)
	}
	if opts.path != "" {
		export = ranking.FilterByPath(export, opts.path)
	}
	if opts.top > 0 {
		export = ranking.SelectTop(export, opts.top)
	}
	return export
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
