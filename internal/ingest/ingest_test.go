package ingest

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/annodoc/internal/model"
)

const sampleJSON = `{
  "features": [
    {
      "name": "users",
      "screens": [
        {"name": "UserList", "path": "app/users/page.tsx", "route": "/users", "requiresAuth": true,
         "usesActions": ["createUser"]}
      ],
      "actions": [
        {"name": "createUser", "path": "lib/actions/users.ts", "method": "POST", "usesTables": ["users"]},
        {"name": "broken", "path": ""}
      ],
      "tables": [
        {"name": "users", "path": "db/schema/users.ts", "columns": ["id", "email"]}
      ]
    }
  ],
  "uncategorized": {
    "components": [{"name": "Logo", "path": "components/Logo.tsx", "props": ["size"]}]
  }
}`

func TestConvertJSON(t *testing.T) {
	t.Parallel()

	doc, err := Decode([]byte(sampleJSON), false)
	require.NoError(t, err)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	res := Convert(doc, logger)

	require.Len(t, res.Features, 2)
	assert.Equal(t, 4, res.Count())

	users := res.Features[0]
	assert.Equal(t, "users", users.Name)
	require.Len(t, users.Entities[model.Screen], 1)
	screen := users.Entities[model.Screen][0]
	assert.Equal(t, model.ScreenDetail{Route: "/users", RequiresAuth: true}, screen.Detail)
	assert.Equal(t, []string{"createUser"}, screen.Relations.Get(model.UsesActions))
	assert.NotContains(t, screen.Relations, model.UsesTables, "empty relations are dropped")

	require.Len(t, users.Entities[model.Action], 1)
	assert.Equal(t, model.ActionDetail{Method: "POST"}, users.Entities[model.Action][0].Detail)
	assert.Equal(t, model.TableDetail{Columns: []string{"id", "email"}}, users.Entities[model.Table][0].Detail)

	unc := res.Features[1]
	assert.Equal(t, model.Uncategorized, unc.Name)
	require.Len(t, unc.Entities[model.Fragment], 1)
	assert.Equal(t, model.FragmentDetail{Props: []string{"size"}}, unc.Entities[model.Fragment][0].Detail)

	require.Len(t, res.Exclusions, 1)
	ex := res.Exclusions[0]
	assert.Equal(t, Exclusion{Feature: "users", Kind: model.Action, Name: "broken", Reason: "path required"}, ex)
	assert.True(t, errors.Is(ex, ErrMalformedRecord))
	assert.Contains(t, buf.String(), "excluding record")
	assert.Contains(t, buf.String(), "name=broken")
}

func TestExclusionExplainsMissingName(t *testing.T) {
	t.Parallel()

	doc := &Document{Features: []Feature{{Name: "core", Bucket: Bucket{
		Modules: []Record{{Path: "lib/modules/x.ts"}, {}},
	}}}}
	res := Convert(doc, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))

	require.Len(t, res.Exclusions, 2)
	assert.Equal(t, "name required", res.Exclusions[0].Reason)
	assert.Equal(t, "name required, path required", res.Exclusions[1].Reason)
	assert.Contains(t, res.Exclusions[0].Error(), "<unnamed>")
	assert.Equal(t, 0, res.Count())
}

func TestExclusionRejectsBlankFields(t *testing.T) {
	t.Parallel()

	doc := &Document{Features: []Feature{{Name: "core", Bucket: Bucket{
		Actions: []Record{
			{Name: "createUser", Path: "  "},
			{Name: "\t", Path: "lib/actions/users.ts"},
			{Name: "deleteUser", Path: "lib/actions/users.ts"},
		},
	}}}}
	res := Convert(doc, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))

	require.Len(t, res.Exclusions, 2)
	assert.Equal(t, "path required", res.Exclusions[0].Reason)
	assert.Equal(t, "name required", res.Exclusions[1].Reason)
	require.Equal(t, 1, res.Count())
	assert.Equal(t, "deleteUser", res.Features[0].Entities[model.Action][0].Name)
}

func TestBlankFeatureNameIsUncategorized(t *testing.T) {
	t.Parallel()

	doc := &Document{Features: []Feature{{Name: "  ", Bucket: Bucket{
		Tables: []Record{{Name: "users", Path: "db/users.ts"}},
	}}}}
	res := Convert(doc, nil)
	require.Len(t, res.Features, 1)
	assert.Equal(t, model.Uncategorized, res.Features[0].Name)
	assert.Equal(t, model.Uncategorized, res.Features[0].Entities[model.Table][0].Feature)
}

func TestLoadYAML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "entities.yaml")
	data := `features:
  - name: core
    modules:
      - name: entities
        path: lib/modules/entities.ts
        category: core
        usedInActions: [createUser]
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	res, err := Load(path, nil)
	require.NoError(t, err)
	require.Len(t, res.Features, 1)
	mods := res.Features[0].Entities[model.Module]
	require.Len(t, mods, 1)
	assert.Equal(t, model.ModuleDetail{Category: "core"}, mods[0].Detail)
	assert.Equal(t, []string{"createUser"}, mods[0].Relations.Get(model.UsedInActions))
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.json"), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o644))
	_, err = Load(bad, nil)
	assert.Error(t, err)
}
