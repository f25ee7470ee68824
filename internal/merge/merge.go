// Package merge folds records discovered more than once (the same module
// scanned from several application roots) into a single record. Every
// function returns new values and leaves its inputs untouched.
package merge

import (
	"slices"

	"github.com/phobologic/annodoc/internal/model"
)

// Union returns existing followed by the items of incoming not already
// present, comparing by exact string. Duplicates inside existing are kept out
// of the result as well, so Union(x, x) is x with repeats removed.
func Union(existing, incoming []string) []string {
	out := make([]string, 0, len(existing)+len(incoming))
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	for _, list := range [][]string{existing, incoming} {
		for _, s := range list {
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

// Relations returns the per-relation union of a and b.
func Relations(a, b model.RelationSet) model.RelationSet {
	out := make(model.RelationSet)
	for _, rel := range model.Relations {
		u := Union(a.Get(rel), b.Get(rel))
		if len(u) > 0 {
			out[rel] = u
		}
	}
	return out
}

// Module combines two records for the same module name. Relation lists are
// unioned; description and category keep the first non-empty value.
func Module(a, b model.ModuleInfo) model.ModuleInfo {
	return model.ModuleInfo{
		Name:        a.Name,
		Description: firstNonEmpty(a.Description, b.Description),
		Category:    firstNonEmpty(a.Category, b.Category),
		Relations:   Relations(a.Relations, b.Relations),
	}
}

// Modules folds records left to right keyed by name, returning one record per
// unique name in order of first appearance.
func Modules(records []model.ModuleInfo) []model.ModuleInfo {
	return fold(records, func(m model.ModuleInfo) string { return m.Name }, Module)
}

// Entity combines two records describing the same entity. Relations are
// unioned and scalar attributes are first-write-wins.
func Entity(a, b model.Entity) model.Entity {
	return model.Entity{
		Kind:        a.Kind,
		Name:        a.Name,
		Path:        firstNonEmpty(a.Path, b.Path),
		Description: firstNonEmpty(a.Description, b.Description),
		Module:      firstNonEmpty(a.Module, b.Module),
		Feature:     firstNonEmpty(a.Feature, b.Feature),
		Relations:   Relations(a.Relations, b.Relations),
		Detail:      Detail(a.Detail, b.Detail),
	}
}

// Entities folds entities sharing the same key into one, in order of first
// appearance.
func Entities(entities []model.Entity, key func(model.Entity) string) []model.Entity {
	return fold(entities, key, Entity)
}

// Detail combines two payloads of the same kind. Strings keep the first
// non-empty value, lists are unioned and auth flags are OR-ed. A payload of a
// different kind than a is ignored.
func Detail(a, b model.Detail) model.Detail {
	switch {
	case a == nil && b == nil:
		return nil
	case a == nil:
		a = zeroDetail(b.DetailKind())
	case b == nil:
		b = zeroDetail(a.DetailKind())
	}
	if a.DetailKind() != b.DetailKind() {
		return a
	}
	switch x := a.(type) {
	case model.ScreenDetail:
		y := b.(model.ScreenDetail)
		return model.ScreenDetail{
			Route:        firstNonEmpty(x.Route, y.Route),
			RequiresAuth: x.RequiresAuth || y.RequiresAuth,
		}
	case model.FragmentDetail:
		y := b.(model.FragmentDetail)
		return model.FragmentDetail{Props: nilIfEmpty(Union(x.Props, y.Props))}
	case model.ActionDetail:
		y := b.(model.ActionDetail)
		return model.ActionDetail{
			Method:       firstNonEmpty(x.Method, y.Method),
			RequiresAuth: x.RequiresAuth || y.RequiresAuth,
		}
	case model.ModuleDetail:
		y := b.(model.ModuleDetail)
		return model.ModuleDetail{Category: firstNonEmpty(x.Category, y.Category)}
	case model.TableDetail:
		y := b.(model.TableDetail)
		return model.TableDetail{Columns: nilIfEmpty(Union(x.Columns, y.Columns))}
	}
	return a
}

func fold[T any](items []T, key func(T) string, combine func(a, b T) T) []T {
	index := make(map[string]int, len(items))
	var out []T
	for _, it := range items {
		k := key(it)
		if i, ok := index[k]; ok {
			out[i] = combine(out[i], it)
			continue
		}
		index[k] = len(out)
		// Combining with the zero value copies the record, so the result never
		// aliases the caller's slices.
		var zero T
		out = append(out, combine(it, zero))
	}
	return out
}

func zeroDetail(kind model.Kind) model.Detail {
	d, _ := model.DecodeDetail(kind, nil)
	return d
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func nilIfEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return slices.Clip(s)
}
