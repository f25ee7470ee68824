// Package model defines core data structures for annodoc.
package model

// Kind discriminates the five entity variants.
type Kind string

const (
	Screen   Kind = "screen"
	Fragment Kind = "fragment"
	Action   Kind = "action"
	Module   Kind = "module"
	Table    Kind = "table"
)

// Kinds lists every entity kind in canonical order.
var Kinds = []Kind{Screen, Fragment, Action, Module, Table}

// Valid reports whether k is one of the five known kinds.
func (k Kind) Valid() bool {
	switch k {
	case Screen, Fragment, Action, Module, Table:
		return true
	}
	return false
}

// Uncategorized is the module name used when none can be inferred from a path.
const Uncategorized = "uncategorized"

// Relation names a typed relation list on an entity.
type Relation string

const (
	UsedInScreens    Relation = "usedInScreens"
	UsedInComponents Relation = "usedInComponents"
	UsedInActions    Relation = "usedInActions"
	UsedInModules    Relation = "usedInModules"
	UsesComponents   Relation = "usesComponents"
	UsesActions      Relation = "usesActions"
	UsesModules      Relation = "usesModules"
	UsesTables       Relation = "usesTables"
)

// Relations lists every relation in canonical order.
var Relations = []Relation{
	UsedInScreens,
	UsedInComponents,
	UsedInActions,
	UsedInModules,
	UsesComponents,
	UsesActions,
	UsesModules,
	UsesTables,
}

// Target returns the entity kind a relation points at.
func (r Relation) Target() Kind {
	switch r {
	case UsedInScreens:
		return Screen
	case UsedInComponents, UsesComponents:
		return Fragment
	case UsedInActions, UsesActions:
		return Action
	case UsedInModules, UsesModules:
		return Module
	case UsesTables:
		return Table
	}
	return ""
}

// RelationSet maps a relation to its ordered list of references.
// Absent and empty lists are equivalent.
type RelationSet map[Relation][]string

// Get returns the list for r (nil when absent).
func (rs RelationSet) Get(r Relation) []string {
	if rs == nil {
		return nil
	}
	return rs[r]
}

// Clone returns a deep copy.
func (rs RelationSet) Clone() RelationSet {
	out := make(RelationSet, len(rs))
	for r, refs := range rs {
		if len(refs) == 0 {
			continue
		}
		out[r] = append([]string(nil), refs...)
	}
	return out
}

// Detail is the per-kind payload of an Entity. The set of implementations is
// closed: only types in this package satisfy it.
type Detail interface {
	DetailKind() Kind
	sealed()
}

// ScreenDetail carries screen-only attributes.
type ScreenDetail struct {
	Route        string `json:"route,omitempty"`
	RequiresAuth bool   `json:"requiresAuth,omitempty"`
}

// FragmentDetail carries UI-fragment attributes.
type FragmentDetail struct {
	Props []string `json:"props,omitempty"`
}

// ActionDetail carries server-action attributes.
type ActionDetail struct {
	Method       string `json:"method,omitempty"`
	RequiresAuth bool   `json:"requiresAuth,omitempty"`
}

// ModuleDetail carries shared-module attributes.
type ModuleDetail struct {
	Category string `json:"category,omitempty"`
}

// TableDetail carries table-schema attributes.
type TableDetail struct {
	Columns []string `json:"columns,omitempty"`
}

func (ScreenDetail) DetailKind() Kind   { return Screen }
func (FragmentDetail) DetailKind() Kind { return Fragment }
func (ActionDetail) DetailKind() Kind   { return Action }
func (ModuleDetail) DetailKind() Kind   { return Module }
func (TableDetail) DetailKind() Kind    { return Table }

func (ScreenDetail) sealed()   {}
func (FragmentDetail) sealed() {}
func (ActionDetail) sealed()   {}
func (ModuleDetail) sealed()   {}
func (TableDetail) sealed()    {}

// Entity is one documented code unit.
type Entity struct {
	Kind        Kind
	Name        string
	Path        string
	Description string
	// Module is the inferred module name; never empty once assembled.
	Module string
	// Feature is the scanner feature label the entity was found under.
	Feature   string
	Relations RelationSet
	Detail    Detail
}

// Category returns the module category of a module-kind entity, or "".
func (e *Entity) Category() string {
	if d, ok := e.Detail.(ModuleDetail); ok {
		return d.Category
	}
	return ""
}

// RequiresAuth reports whether the entity's payload declares an auth requirement.
func (e *Entity) RequiresAuth() bool {
	switch d := e.Detail.(type) {
	case ScreenDetail:
		return d.RequiresAuth
	case ActionDetail:
		return d.RequiresAuth
	}
	return false
}

// ModuleInfo is the aggregate record for one inferred module.
type ModuleInfo struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Category    string      `json:"category,omitempty"`
	Relations   RelationSet `json:"relations,omitempty"`
}

// EntityGroup holds every entity filed under one module, per kind.
type EntityGroup struct {
	Module   ModuleInfo
	Entities map[Kind][]Entity
}

// ModuleOverview feeds a module page: the merged module record plus the tests
// correlated with the module as a whole.
type ModuleOverview struct {
	ModuleInfo
	Tests []TestCase `json:"tests"`
}

// Count returns the number of entities in the group across all kinds.
func (g *EntityGroup) Count() int {
	n := 0
	for _, es := range g.Entities {
		n += len(es)
	}
	return n
}
