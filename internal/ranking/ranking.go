// Package ranking selects focused views of an export map.
package ranking

import (
	"sort"
	"strings"

	"github.com/phobologic/annodoc/internal/model"
)

// Ordered returns the records sorted by descending rank, ties broken by key.
func Ordered(export model.ExportMap) []*model.ExportRecord {
	out := make([]*model.ExportRecord, 0, len(export))
	for _, rec := range export {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rank != out[j].Rank {
			return out[i].Rank > out[j].Rank
		}
		return out[i].Key() < out[j].Key()
	})
	return out
}

// SelectTop returns a new ExportMap with only the n highest-ranked records.
// If n is <= 0 or >= len(export), export is returned unchanged.
func SelectTop(export model.ExportMap, n int) model.ExportMap {
	if n <= 0 || n >= len(export) {
		return export
	}
	out := make(model.ExportMap, n)
	for _, rec := range Ordered(export)[:n] {
		out[rec.Key()] = rec
	}
	return out
}

// FilterByName returns a new ExportMap containing the records whose name
// contains substr (case-insensitive), plus the records they link to and the
// records that link to them.
func FilterByName(export model.ExportMap, substr string) model.ExportMap {
	lower := strings.ToLower(substr)

	matched := make(map[string]struct{})
	for key, rec := range export {
		if strings.Contains(strings.ToLower(rec.Name), lower) {
			matched[key] = struct{}{}
		}
	}

	// Expand to direct neighbors in both directions.
	related := make(map[string]struct{})
	for key, rec := range export {
		_, isMatched := matched[key]
		for _, target := range linkedKeys(rec) {
			if isMatched {
				related[target] = struct{}{}
			}
			if _, ok := matched[target]; ok {
				related[key] = struct{}{}
			}
		}
	}

	out := make(model.ExportMap, len(matched)+len(related))
	for _, set := range []map[string]struct{}{matched, related} {
		for key := range set {
			if rec, ok := export[key]; ok {
				out[key] = rec
			}
		}
	}
	return out
}

// FilterByPath returns a new ExportMap containing only records whose source
// path contains substr (case-insensitive).
func FilterByPath(export model.ExportMap, substr string) model.ExportMap {
	lower := strings.ToLower(substr)
	out := make(model.ExportMap)
	for key, rec := range export {
		if strings.Contains(strings.ToLower(rec.Path), lower) {
			out[key] = rec
		}
	}
	return out
}

// linkedKeys returns the export keys of every resolved link on rec.
func linkedKeys(rec *model.ExportRecord) []string {
	var keys []string
	for _, links := range rec.Links {
		for _, l := range links {
			if l.Linked() {
				keys = append(keys, model.ExportKey(l.Kind, *l.Address))
			}
		}
	}
	return keys
}
