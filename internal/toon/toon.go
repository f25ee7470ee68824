// Package toon implements TOON (Token-Oriented Object Notation) encoding of
// an entity snapshot.
package toon

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/phobologic/annodoc/internal/model"
	"github.com/phobologic/annodoc/internal/ranking"
)

var (
	needsQuoting = regexp.MustCompile(`[,:"\\{}\[\]]`)
	looksNumeric = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?$`)
	keywords     = map[string]struct{}{
		"true":  {},
		"false": {},
		"null":  {},
	}
)

// Encode converts a snapshot into TOON format. Entities are listed by
// descending rank; links and gaps follow the same order.
func Encode(snap *model.Snapshot, project string) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("project: %s", encodeValue(project)))
	parts = append(parts, fmt.Sprintf("generated: %s", encodeValue(snap.GeneratedAt.UTC().Format(time.RFC3339))))

	records := ranking.Ordered(snap.Entities)

	var entityRows [][]string
	for _, rec := range records {
		tests, score := 0, 0
		if rec.Coverage != nil {
			tests, score = rec.Coverage.TotalTests, rec.Coverage.CoverageScore
		}
		entityRows = append(entityRows, []string{
			string(rec.Kind),
			rec.Module,
			rec.Name,
			rec.Path,
			fmt.Sprintf("%.4f", rec.Rank),
			fmt.Sprintf("%d", tests),
			fmt.Sprintf("%d", score),
		})
	}
	parts = append(parts, formatTabular("entities",
		[]string{"kind", "module", "name", "path", "rank", "tests", "score"}, entityRows))

	var linkRows, plainRows [][]string
	for _, rec := range records {
		for _, rel := range model.Relations {
			for _, l := range rec.Links[rel] {
				if l.Linked() {
					linkRows = append(linkRows, []string{rec.Key(), string(rel), model.ExportKey(l.Kind, *l.Address)})
				} else {
					plainRows = append(plainRows, []string{rec.Key(), string(rel), l.Text})
				}
			}
		}
	}
	parts = append(parts, formatTabular("links", []string{"from", "relation", "to"}, linkRows))

	if len(plainRows) > 0 {
		parts = append(parts, formatTabular("unresolved", []string{"from", "relation", "text"}, plainRows))
	}

	var gapRows [][]string
	for _, rec := range records {
		if rec.Coverage == nil || len(rec.Coverage.MissingPatterns) == 0 {
			continue
		}
		gapRows = append(gapRows, []string{rec.Key(), strings.Join(rec.Coverage.MissingPatterns, " ")})
	}
	parts = append(parts, formatTabular("gaps", []string{"entity", "missing"}, gapRows))

	return strings.Join(parts, "\n")
}

// EncodeModules renders module overviews: one row per module, the merged
// relation references, then every correlated test.
func EncodeModules(mods []model.ModuleOverview, project string) string {
	parts := []string{fmt.Sprintf("project: %s", encodeValue(project))}

	var modRows, relRows, testRows [][]string
	for _, m := range mods {
		modRows = append(modRows, []string{m.Name, m.Category, m.Description, fmt.Sprintf("%d", len(m.Tests))})
		for _, rel := range model.Relations {
			for _, ref := range m.Relations[rel] {
				relRows = append(relRows, []string{m.Name, string(rel), ref})
			}
		}
		for _, tc := range m.Tests {
			testRows = append(testRows, []string{m.Name, tc.File, tc.Describe, tc.It, fmt.Sprintf("%d", tc.Line)})
		}
	}
	parts = append(parts, formatTabular("modules", []string{"name", "category", "description", "tests"}, modRows))
	parts = append(parts, formatTabular("relations", []string{"module", "relation", "ref"}, relRows))
	parts = append(parts, formatTabular("tests", []string{"module", "file", "describe", "it", "line"}, testRows))
	return strings.Join(parts, "\n")
}

func formatTabular(name string, columns []string, rows [][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]{%s}:", name, len(rows), strings.Join(columns, ","))
	for _, row := range rows {
		encoded := make([]string, len(row))
		for i, cell := range row {
			encoded[i] = encodeValue(cell)
		}
		fmt.Fprintf(&b, "\n  %s", strings.Join(encoded, ","))
	}
	return b.String()
}

func encodeValue(value string) string {
	if value == "" {
		return `""`
	}

	if value != strings.TrimSpace(value) {
		return quote(value)
	}

	if strings.ContainsAny(value, "\n\r\t") {
		return quote(value)
	}

	if _, ok := keywords[strings.ToLower(value)]; ok {
		return quote(value)
	}

	if looksNumeric.MatchString(value) {
		return value
	}

	if needsQuoting.MatchString(value) {
		return quote(value)
	}

	if strings.HasPrefix(value, "-") {
		return quote(value)
	}

	return value
}

func quote(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	escaped = strings.ReplaceAll(escaped, "\r", `\r`)
	escaped = strings.ReplaceAll(escaped, "\t", `\t`)
	return `"` + escaped + `"`
}
