package coverage

import (
	"strings"

	"github.com/phobologic/annodoc/internal/model"
)

var authWords = []string{"auth", "login", "logout", "session", "signin", "signup", "password"}

var storageCategories = map[string]bool{"db": true, "database": true, "storage": true}

// TouchesAuth reports whether rec is expected to carry authentication tests.
func TouchesAuth(rec *model.ExportRecord) bool {
	switch d := rec.Detail.(type) {
	case model.ScreenDetail:
		if d.RequiresAuth {
			return true
		}
	case model.ActionDetail:
		if d.RequiresAuth {
			return true
		}
	}
	text := strings.ToLower(rec.Name + " " + rec.Path)
	for _, w := range authWords {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// TouchesStorage reports whether rec reads or writes persisted data.
// moduleCategory is the category of the module rec is filed under.
func TouchesStorage(rec *model.ExportRecord, moduleCategory string) bool {
	if rec.Kind == model.Table || len(rec.Relations.Get(model.UsesTables)) > 0 {
		return true
	}
	if d, ok := rec.Detail.(model.ModuleDetail); ok && storageCategories[strings.ToLower(d.Category)] {
		return true
	}
	return storageCategories[strings.ToLower(moduleCategory)]
}
