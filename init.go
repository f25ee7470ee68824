package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phobologic/annodoc/internal/config"
)

const (
	sentinelStart = "<!-- annodoc:start -->"
	sentinelEnd   = "<!-- annodoc:end -->"
)

type initOptions struct {
	force  bool
	docs   string
	dryRun bool
}

func newInitCmd(stdout, stderr io.Writer) *cobra.Command {
	var opts initOptions
	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write the default config and an optional docs section",
		Long: `Writes .annodoc/config.yaml with the default settings into dir (default: the
current directory).

With --docs, an annodoc usage section is also written to the given markdown
file. The section is wrapped in sentinel comments so it can be updated in place
on subsequent runs without touching surrounding content. The file is created
if it does not exist.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return runInit(dir, opts, stdout, stderr)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&opts.force, "force", false, "overwrite an existing config file")
	f.StringVar(&opts.docs, "docs", "", "markdown file to receive the annodoc usage section")
	f.BoolVar(&opts.dryRun, "dry-run", false, "print what would be written without modifying any file")
	return cmd
}

func runInit(dir string, opts initOptions, stdout, stderr io.Writer) error {
	section := generateSection()

	if opts.dryRun {
		if opts.docs == "" {
			_, _ = fmt.Fprintln(stdout, section)
			return nil
		}
		existing, _ := os.ReadFile(opts.docs)
		_, _ = fmt.Fprint(stdout, applySection(string(existing), section))
		return nil
	}

	path, err := config.SaveDefault(dir, opts.force)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(stderr, "wrote config to %s\n", path)

	if opts.docs == "" {
		return nil
	}
	existing, _ := os.ReadFile(opts.docs)
	updated := applySection(string(existing), section)
	if err := os.WriteFile(opts.docs, []byte(updated), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", opts.docs, err)
	}
	_, _ = fmt.Fprintf(stderr, "wrote annodoc section to %s\n", opts.docs)
	return nil
}

// generateSection returns the sentinel-wrapped annodoc usage block.
func generateSection() string {
	body := `## annodoc: Entity Graph and Test Coverage

Run ` + "`annodoc build`" + ` after the annotation scanner to refresh the entity
snapshot consumed by the documentation site.

**Run it:**
` + "```" + `bash
annodoc build --entities scan.json                  # current directory
annodoc build --entities scan.json --tests t.json   # prepared test corpus
annodoc build --entities scan.json -f toon -n 20    # top 20 entities as TOON
annodoc build --entities scan.json --entity login   # one entity and its neighbors
` + "```" + `

**All flags:** ` + "`annodoc build --help`" + `

**Reading the output:**

1. **Entities are ranked.** Records are ordered by PageRank over the link
   graph; the most referenced screens, actions and tables come first.

2. **Check ` + "`gaps`" + ` before writing tests.** Each row names the test
   patterns an entity is missing (auth, error-handling, validation, edge-case).

3. **Unresolved references are listed separately.** A reference the graph could
   not match stays plain text; fix the annotation rather than the snapshot.`

	return sentinelStart + "\n" + body + "\n" + sentinelEnd
}

// applySection inserts section into content, replacing an existing sentinel
// block if present or appending if not.
func applySection(content, section string) string {
	start := strings.Index(content, sentinelStart)
	end := strings.Index(content, sentinelEnd)

	if start >= 0 && end > start {
		return content[:start] + section + content[end+len(sentinelEnd):]
	}

	if len(content) > 0 && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + "\n" + section + "\n"
}
