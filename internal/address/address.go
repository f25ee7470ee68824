// Package address maintains the registries of linkable entities, one per
// entity kind, and resolves relation references against them.
package address

import (
	"github.com/phobologic/annodoc/internal/model"
)

// Registry holds one table per entity kind. The same name may exist once per
// kind without collision. Population is expected to finish before queries
// begin; after that a Registry is safe for concurrent readers.
type Registry struct {
	tables map[model.Kind]*table
}

type table struct {
	modules map[model.Address]string
	byName  map[string]model.Address // first registration wins
	order   []model.Address
}

// NewRegistry returns an empty registry with a table for every kind.
func NewRegistry() *Registry {
	r := &Registry{tables: make(map[model.Kind]*table, len(model.Kinds))}
	for _, k := range model.Kinds {
		r.tables[k] = &table{
			modules: make(map[model.Address]string),
			byName:  make(map[string]model.Address),
		}
	}
	return r
}

// Register records (module, name) under kind and returns its address.
// Registering the same pair twice is a no-op.
func (r *Registry) Register(kind model.Kind, module, name string) model.Address {
	addr := model.Address{Module: module, Name: name}
	t := r.tables[kind]
	if t == nil {
		return addr
	}
	if _, ok := t.modules[addr]; ok {
		return addr
	}
	t.modules[addr] = module
	t.order = append(t.order, addr)
	if _, ok := t.byName[name]; !ok {
		t.byName[name] = addr
	}
	return addr
}

// Exists reports whether addr was registered under kind.
func (r *Registry) Exists(kind model.Kind, addr model.Address) bool {
	t := r.tables[kind]
	if t == nil {
		return false
	}
	_, ok := t.modules[addr]
	return ok
}

// ModuleOf returns the owning module of addr under kind.
func (r *Registry) ModuleOf(kind model.Kind, addr model.Address) (string, bool) {
	t := r.tables[kind]
	if t == nil {
		return "", false
	}
	m, ok := t.modules[addr]
	return m, ok
}

// Find returns the first address registered under kind for a bare entity name.
func (r *Registry) Find(kind model.Kind, name string) (model.Address, bool) {
	t := r.tables[kind]
	if t == nil {
		return model.Address{}, false
	}
	a, ok := t.byName[name]
	return a, ok
}

// Addresses returns every address registered under kind, in registration order.
func (r *Registry) Addresses(kind model.Kind) []model.Address {
	t := r.tables[kind]
	if t == nil {
		return nil
	}
	return append([]model.Address(nil), t.order...)
}

// Len returns the number of addresses registered under kind.
func (r *Registry) Len(kind model.Kind) int {
	t := r.tables[kind]
	if t == nil {
		return 0
	}
	return len(t.order)
}

// Resolve turns a relation reference into a Link. The reference is either a
// "module/name" address or a bare entity name of the relation's target kind.
// References absent from the registry come back as plain text.
func (r *Registry) Resolve(rel model.Relation, ref string) model.Link {
	kind := rel.Target()
	link := model.Link{Text: ref, Kind: kind}

	if addr, ok := model.ParseAddress(ref); ok && r.Exists(kind, addr) {
		link.Text = addr.Name
		link.Address = &addr
		return link
	}
	if addr, ok := r.Find(kind, ref); ok {
		link.Address = &addr
	}
	return link
}

// ResolveAll resolves every reference of every relation in rs.
// Relations with no references are omitted.
func (r *Registry) ResolveAll(rs model.RelationSet) map[model.Relation][]model.Link {
	out := make(map[model.Relation][]model.Link)
	for _, rel := range model.Relations {
		refs := rs.Get(rel)
		if len(refs) == 0 {
			continue
		}
		links := make([]model.Link, len(refs))
		for i, ref := range refs {
			links[i] = r.Resolve(rel, ref)
		}
		out[rel] = links
	}
	return out
}
