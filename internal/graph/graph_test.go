package graph

import (
	"math"
	"testing"

	"github.com/phobologic/annodoc/internal/model"
	"github.com/phobologic/annodoc/internal/pathseg"
)

func sampleFeatures() []model.FeatureCollection {
	return []model.FeatureCollection{
		{
			Name: "core",
			Entities: map[model.Kind][]model.Entity{
				model.Screen: {
					{Name: "UserList", Path: "app/(dashboard)/users/page.tsx",
						Detail:    model.ScreenDetail{Route: "/users"},
						Relations: model.RelationSet{model.UsesActions: {"createUser"}, model.UsesComponents: {"UserCard"}}},
				},
				model.Fragment: {
					{Name: "UserCard", Path: "components/users/UserCard.tsx",
						Relations: model.RelationSet{model.UsedInScreens: {"UserList"}}},
				},
				model.Action: {
					{Name: "createUser", Path: "lib/actions/users.ts",
						Relations: model.RelationSet{model.UsesTables: {"users"}, model.UsedInScreens: {"UserList"}}},
				},
				model.Module: {
					{Name: "entities", Path: "apps/web/lib/modules/entities.ts",
						Relations: model.RelationSet{model.UsedInActions: {"createUser"}}},
					{Name: "entities", Path: "apps/admin/lib/modules/entities.ts",
						Description: "Entity helpers",
						Relations:   model.RelationSet{model.UsedInActions: {"createUser", "deleteUser"}}},
				},
				model.Table: {
					{Name: "users", Path: "db/schema/users.ts"},
				},
			},
		},
		{
			Name: model.Uncategorized,
			Entities: map[model.Kind][]model.Entity{
				model.Screen: {
					{Name: "Home", Path: "app/page.tsx"},
				},
			},
		},
	}
}

func TestAssembleAddressBijection(t *testing.T) {
	t.Parallel()

	g := Assemble(sampleFeatures(), pathseg.Default())

	total := 0
	for mod, grp := range g.ByModule {
		for _, k := range model.Kinds {
			for _, e := range grp.Entities[k] {
				total++
				addr := model.Address{Module: e.Module, Name: e.Name}
				if e.Module != mod {
					t.Errorf("%s filed under %q but module is %q", e.Name, mod, e.Module)
				}
				if !g.Registry.Exists(k, addr) {
					t.Errorf("%s %s not registered", k, addr)
				}
				got, ok := g.Registry.ModuleOf(k, addr)
				if !ok || got != mod {
					t.Errorf("ModuleOf(%s) = %q, %v; want %q", addr, got, ok, mod)
				}
				if _, ok := g.Export[model.ExportKey(k, addr)]; !ok {
					t.Errorf("export missing %s/%s", k, addr)
				}
			}
		}
	}

	if total != len(g.Export) {
		t.Errorf("graph has %d entities, export has %d", total, len(g.Export))
	}
	if g.Registry.Exists(model.Screen, model.Address{Module: "users", Name: "Nope"}) {
		t.Error("unregistered address reported as existing")
	}
}

func TestAssembleMergesModuleAcrossRoots(t *testing.T) {
	t.Parallel()

	g := Assemble(sampleFeatures(), pathseg.Default())

	rec, ok := g.Export["module/entities/entities"]
	if !ok {
		t.Fatalf("merged module missing; keys: %v", keys(g.Export))
	}
	got := rec.Relations[model.UsedInActions]
	if len(got) != 2 || got[0] != "createUser" || got[1] != "deleteUser" {
		t.Errorf("usedInActions = %v, want [createUser deleteUser]", got)
	}
	if rec.Path != "apps/web/lib/modules/entities.ts" {
		t.Errorf("path = %q, want first root's path", rec.Path)
	}
	if n := len(g.ByModule["entities"].Entities[model.Module]); n != 1 {
		t.Errorf("expected 1 module entity, got %d", n)
	}

	info := g.ByModule["entities"].Module
	if info.Description != "Entity helpers" {
		t.Errorf("module description = %q", info.Description)
	}
	if info.Category != "core" {
		t.Errorf("module category = %q, want feature fallback", info.Category)
	}
}

func TestAssembleFilesUncategorized(t *testing.T) {
	t.Parallel()

	g := Assemble(sampleFeatures(), pathseg.Default())

	grp, ok := g.ByModule[model.Uncategorized]
	if !ok {
		t.Fatal("uncategorized module missing")
	}
	if len(grp.Entities[model.Screen]) != 1 || grp.Entities[model.Screen][0].Name != "Home" {
		t.Errorf("uncategorized screens = %+v", grp.Entities[model.Screen])
	}
}

func TestAssembleModuleRelationsAreUnion(t *testing.T) {
	t.Parallel()

	g := Assemble(sampleFeatures(), pathseg.Default())

	users := g.ByModule["users"]
	if users == nil {
		t.Fatalf("users module missing; modules: %v", g.Modules())
	}
	screens := users.Module.Relations[model.UsedInScreens]
	if len(screens) != 1 || screens[0] != "UserList" {
		t.Errorf("usedInScreens = %v, want [UserList] once", screens)
	}
	if users.Count() != 4 {
		t.Errorf("users module has %d entities, want 4", users.Count())
	}
}

func TestAssembleResolvesLinks(t *testing.T) {
	t.Parallel()

	g := Assemble(sampleFeatures(), pathseg.Default())

	action := g.Export["action/users/createUser"]
	if action == nil {
		t.Fatalf("action missing; keys: %v", keys(g.Export))
	}
	tables := action.Links[model.UsesTables]
	if len(tables) != 1 || !tables[0].Linked() || tables[0].Address.String() != "users/users" {
		t.Errorf("usesTables links = %+v", tables)
	}

	mod := g.Export["module/entities/entities"]
	links := mod.Links[model.UsedInActions]
	if len(links) != 2 {
		t.Fatalf("links = %+v", links)
	}
	if !links[0].Linked() {
		t.Error("createUser should link")
	}
	if links[1].Linked() {
		t.Error("deleteUser is not in the graph and must stay plain text")
	}
}

func TestAssembleDedupsLoneEntityRelations(t *testing.T) {
	t.Parallel()

	create := model.Entity{Name: "createUser", Path: "lib/actions/users.ts",
		Relations: model.RelationSet{model.UsesTables: {"users", "users"}}}
	table := model.Entity{Name: "users", Path: "db/schema/users.ts"}
	sibling := model.Entity{Name: "deleteUser", Path: "lib/actions/users.ts"}

	tests := []struct {
		name    string
		actions []model.Entity
	}{
		{"alone", []model.Entity{create}},
		{"with sibling", []model.Entity{create, sibling}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g := Assemble([]model.FeatureCollection{{
				Name: "core",
				Entities: map[model.Kind][]model.Entity{
					model.Action: tt.actions,
					model.Table:  {table},
				},
			}}, pathseg.Default())

			rec := g.Export["action/users/createUser"]
			if rec == nil {
				t.Fatalf("createUser missing: %v", keys(g.Export))
			}
			if got := rec.Relations[model.UsesTables]; len(got) != 1 || got[0] != "users" {
				t.Errorf("usesTables = %v, want [users]", got)
			}
			if got := len(rec.Links[model.UsesTables]); got != 1 {
				t.Errorf("expected 1 link, got %d", got)
			}
		})
	}
}

func TestAssembleIsDeterministic(t *testing.T) {
	t.Parallel()

	a := Assemble(sampleFeatures(), pathseg.Default())
	b := Assemble(sampleFeatures(), pathseg.Default())

	if len(a.Export) != len(b.Export) {
		t.Fatalf("export sizes differ: %d vs %d", len(a.Export), len(b.Export))
	}
	for k, ra := range a.Export {
		rb := b.Export[k]
		if rb == nil {
			t.Fatalf("%s missing from second run", k)
		}
		if ra.Rank != rb.Rank {
			t.Errorf("%s rank %v vs %v", k, ra.Rank, rb.Rank)
		}
	}
}

func TestAssembleEmpty(t *testing.T) {
	t.Parallel()

	g := Assemble(nil, pathseg.Default())
	if len(g.Export) != 0 || len(g.ByModule) != 0 {
		t.Errorf("expected empty graph, got %d records", len(g.Export))
	}
}

func TestRankUniformWithoutLinks(t *testing.T) {
	t.Parallel()

	export := model.ExportMap{
		"screen/a/A": {Kind: model.Screen, Module: "a", Name: "A"},
		"screen/b/B": {Kind: model.Screen, Module: "b", Name: "B"},
	}
	Rank(export)
	for k, rec := range export {
		if math.Abs(rec.Rank-0.5) > 1e-9 {
			t.Errorf("%s rank = %f, want 0.5", k, rec.Rank)
		}
	}
}

func TestRankFavorsUsedEntities(t *testing.T) {
	t.Parallel()

	tbl := &model.Address{Module: "db", Name: "users"}
	export := model.ExportMap{
		"action/a/create": {Kind: model.Action, Module: "a", Name: "create",
			Links: map[model.Relation][]model.Link{model.UsesTables: {{Text: "users", Kind: model.Table, Address: tbl}}}},
		"action/b/delete": {Kind: model.Action, Module: "b", Name: "delete",
			Links: map[model.Relation][]model.Link{model.UsesTables: {{Text: "users", Kind: model.Table, Address: tbl}}}},
		"table/db/users": {Kind: model.Table, Module: "db", Name: "users"},
	}
	Rank(export)

	table := export["table/db/users"].Rank
	if table <= export["action/a/create"].Rank || table <= export["action/b/delete"].Rank {
		t.Errorf("table rank %f should exceed both actions", table)
	}

	var sum float64
	for _, rec := range export {
		sum += rec.Rank
	}
	if math.Abs(sum-1.0) > 0.01 {
		t.Errorf("ranks sum to %f, expected ~1.0", sum)
	}
}

func TestRankEmpty(t *testing.T) {
	t.Parallel()
	Rank(nil) // should not panic
}

func keys(m model.ExportMap) []string {
	return sortedKeys(m)
}
