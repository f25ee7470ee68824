// Package graph assembles scanned entities into the module-grouped entity
// graph, the address registry and the export map, and ranks the result.
package graph

import (
	"sort"

	"github.com/phobologic/annodoc/internal/address"
	"github.com/phobologic/annodoc/internal/merge"
	"github.com/phobologic/annodoc/internal/model"
	"github.com/phobologic/annodoc/internal/pathseg"
)

// Graph is the assembled output of one run.
type Graph struct {
	// ByModule groups every entity under its inferred module.
	ByModule map[string]*model.EntityGroup
	// Registry answers whether a link target exists.
	Registry *address.Registry
	// Export holds one record per entity keyed by kind/module/name. Coverage
	// is a placeholder until the pipeline fills it in.
	Export model.ExportMap
}

// Modules returns the module names in sorted order.
func (g *Graph) Modules() []string {
	return sortedKeys(g.ByModule)
}

// Keys returns the export keys in sorted order.
func (g *Graph) Keys() []string {
	return sortedKeys(g.Export)
}

// Assemble builds the graph from the scanner's feature collections.
// The namer decides which module each entity path belongs to.
func Assemble(features []model.FeatureCollection, namer *pathseg.Namer) *Graph {
	flat := flatten(features, namer)

	// Module-kind entities are rediscovered verbatim across application
	// roots; fold them before grouping.
	flat[model.Module] = merge.Entities(flat[model.Module], func(e model.Entity) string {
		return e.Feature + "\x00" + e.Module + "\x00" + e.Name
	})

	byModule := group(flat)

	reg := address.NewRegistry()
	for _, mod := range sortedKeys(byModule) {
		g := byModule[mod]
		for _, k := range model.Kinds {
			for _, e := range g.Entities[k] {
				reg.Register(k, e.Module, e.Name)
			}
		}
	}

	export := make(model.ExportMap)
	for _, mod := range sortedKeys(byModule) {
		g := byModule[mod]
		for _, k := range model.Kinds {
			for i := range g.Entities[k] {
				e := &g.Entities[k][i]
				rec := &model.ExportRecord{
					Kind:        e.Kind,
					Module:      e.Module,
					Name:        e.Name,
					Path:        e.Path,
					Description: e.Description,
					Feature:     e.Feature,
					Detail:      e.Detail,
					Relations:   e.Relations.Clone(),
					Links:       reg.ResolveAll(e.Relations),
					Coverage:    model.EmptyCoverage(),
				}
				export[rec.Key()] = rec
			}
		}
	}

	Rank(export)

	return &Graph{ByModule: byModule, Registry: reg, Export: export}
}

// flatten lists every entity per kind in feature order, stamping each with
// its feature label and inferred module.
func flatten(features []model.FeatureCollection, namer *pathseg.Namer) map[model.Kind][]model.Entity {
	flat := make(map[model.Kind][]model.Entity, len(model.Kinds))
	for fi := range features {
		f := &features[fi]
		for _, k := range model.Kinds {
			for _, e := range f.Entities[k] {
				e.Kind = k
				if e.Feature == "" {
					e.Feature = f.Name
				}
				e.Module = namer.ModuleName(e.Path)
				if e.Module == "" {
					e.Module = model.Uncategorized
				}
				if e.Detail == nil {
					e.Detail, _ = model.DecodeDetail(k, nil)
				}
				flat[k] = append(flat[k], e)
			}
		}
	}
	return flat
}

// group files entities under their module. Entities of the same kind and
// name within one module are folded so that names stay unique per module;
// every entity passes through the fold, so repeated references collapse
// even for a lone entity.
func group(flat map[model.Kind][]model.Entity) map[string]*model.EntityGroup {
	byModule := make(map[string]*model.EntityGroup)
	for _, k := range model.Kinds {
		for _, e := range flat[k] {
			g, ok := byModule[e.Module]
			if !ok {
				g = &model.EntityGroup{Entities: make(map[model.Kind][]model.Entity)}
				byModule[e.Module] = g
			}
			g.Entities[k] = append(g.Entities[k], e)
		}
	}

	for name, g := range byModule {
		for _, k := range model.Kinds {
			if len(g.Entities[k]) == 0 {
				continue
			}
			g.Entities[k] = merge.Entities(g.Entities[k], func(e model.Entity) string { return e.Name })
		}
		g.Module = aggregate(name, g)
	}
	return byModule
}

// aggregate builds the module record: relation lists are the union of every
// member's lists; description and category come from module-kind members
// first, falling back to the first member's feature for the category.
func aggregate(name string, g *model.EntityGroup) model.ModuleInfo {
	var records []model.ModuleInfo
	for _, e := range g.Entities[model.Module] {
		records = append(records, model.ModuleInfo{
			Name:        name,
			Description: e.Description,
			Category:    e.Category(),
			Relations:   e.Relations,
		})
	}
	feature := ""
	for _, k := range model.Kinds {
		for _, e := range g.Entities[k] {
			if feature == "" {
				feature = e.Feature
			}
			if k == model.Module {
				continue
			}
			records = append(records, model.ModuleInfo{Name: name, Relations: e.Relations})
		}
	}
	records = append(records, model.ModuleInfo{Name: name, Category: feature})

	merged := merge.Modules(records)
	return merged[0]
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
