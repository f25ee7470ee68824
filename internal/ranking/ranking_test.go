package ranking

import (
	"testing"

	"github.com/phobologic/annodoc/internal/model"
)

func link(kind model.Kind, module, name string) model.Link {
	return model.Link{Text: name, Kind: kind, Address: &model.Address{Module: module, Name: name}}
}

func makeExport() model.ExportMap {
	return model.ExportMap{
		"screen/users/UserList": {Kind: model.Screen, Module: "users", Name: "UserList",
			Path: "app/users/page.tsx", Rank: 0.2,
			Links: map[model.Relation][]model.Link{model.UsesActions: {link(model.Action, "users", "createUser")}}},
		"action/users/createUser": {Kind: model.Action, Module: "users", Name: "createUser",
			Path: "lib/actions/users.ts", Rank: 0.3,
			Links: map[model.Relation][]model.Link{model.UsesTables: {
				link(model.Table, "users", "users"),
				{Text: "audit", Kind: model.Table},
			}}},
		"table/users/users": {Kind: model.Table, Module: "users", Name: "users",
			Path: "db/schema/users.ts", Rank: 0.4},
		"fragment/billing/Invoice": {Kind: model.Fragment, Module: "billing", Name: "Invoice",
			Path: "components/billing/Invoice.tsx", Rank: 0.1},
	}
}

func TestOrdered(t *testing.T) {
	t.Parallel()

	got := Ordered(makeExport())
	want := []string{"users", "createUser", "UserList", "Invoice"}
	if len(got) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(got))
	}
	for i, w := range want {
		if got[i].Name != w {
			t.Errorf("position %d = %s, want %s", i, got[i].Name, w)
		}
	}
}

func TestOrderedTieBreaksByKey(t *testing.T) {
	t.Parallel()

	export := model.ExportMap{
		"screen/b/B": {Kind: model.Screen, Module: "b", Name: "B", Rank: 0.5},
		"screen/a/A": {Kind: model.Screen, Module: "a", Name: "A", Rank: 0.5},
	}
	got := Ordered(export)
	if got[0].Name != "A" || got[1].Name != "B" {
		t.Errorf("tie order = %s, %s", got[0].Name, got[1].Name)
	}
}

func TestSelectTopAll(t *testing.T) {
	t.Parallel()

	export := makeExport()
	for _, n := range []int{0, 4, 10} {
		got := SelectTop(export, n)
		if len(got) != len(export) {
			t.Errorf("n=%d: expected all %d records, got %d", n, len(export), len(got))
		}
	}
}

func TestSelectTopSubset(t *testing.T) {
	t.Parallel()

	got := SelectTop(makeExport(), 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if _, ok := got["table/users/users"]; !ok {
		t.Error("highest-ranked table missing")
	}
	if _, ok := got["action/users/createUser"]; !ok {
		t.Error("second-ranked action missing")
	}
}

func TestFilterByName(t *testing.T) {
	t.Parallel()

	got := FilterByName(makeExport(), "CREATEUSER")

	// createUser itself, the table it uses and the screen that uses it.
	for _, key := range []string{"action/users/createUser", "table/users/users", "screen/users/UserList"} {
		if _, ok := got[key]; !ok {
			t.Errorf("%s missing", key)
		}
	}
	if _, ok := got["fragment/billing/Invoice"]; ok {
		t.Error("unrelated record included")
	}
	if len(got) != 3 {
		t.Errorf("expected 3 records, got %d", len(got))
	}
}

func TestFilterByNameNoMatch(t *testing.T) {
	t.Parallel()

	if got := FilterByName(makeExport(), "nothing"); len(got) != 0 {
		t.Errorf("expected empty, got %d", len(got))
	}
}

func TestFilterByPath(t *testing.T) {
	t.Parallel()

	got := FilterByPath(makeExport(), "Billing/")
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	if _, ok := got["fragment/billing/Invoice"]; !ok {
		t.Error("Invoice missing")
	}
}
