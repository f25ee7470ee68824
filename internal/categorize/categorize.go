// Package categorize classifies test cases by intent using an ordered list of
// keyword rules, first match wins.
package categorize

import (
	"strings"

	"github.com/phobologic/annodoc/internal/model"
)

// Rule assigns Category when any keyword occurs in the lower-cased text.
type Rule struct {
	Category model.Category
	Keywords []string
}

// Matches reports whether text (already lower-cased) contains a keyword.
func (r Rule) Matches(text string) bool {
	for _, kw := range r.Keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// Rules is evaluated top to bottom. Authentication precedes error handling so
// that "should return unauthorized for invalid token" is an auth test.
var Rules = []Rule{
	{model.Auth, []string{"login", "logout", "auth", "session", "token", "unauthorized", "permission"}},
	{model.ErrorHandling, []string{"error", "throw", "fail", "exception", "reject"}},
	{model.Validation, []string{"validate", "invalid", "required", "format"}},
	{model.EdgeCase, []string{"edge case", "boundary", "limit", "empty", "null", "maximum", "minimum"}},
	{model.Integration, []string{"integration", "end-to-end", "e2e", "workflow"}},
}

// Fallback is the category used when no rule matches.
const Fallback = model.HappyPath

// Result is the outcome of categorizing one test.
type Result struct {
	Category model.Category
	Summary  string
}

// Categorize classifies a test by its title and enclosing group label.
// A test with neither is Other.
func Categorize(title, group string) Result {
	return Result{Category: category(title, group), Summary: Summarize(title)}
}

func category(title, group string) model.Category {
	if strings.TrimSpace(title) == "" && strings.TrimSpace(group) == "" {
		return model.Other
	}
	text := strings.ToLower(title + " " + group)
	for _, r := range Rules {
		if r.Matches(text) {
			return r.Category
		}
	}
	return Fallback
}

// Summarize strips a leading "should " from title. Nothing else is touched so
// the summary stays recognizable against the original title.
func Summarize(title string) string {
	return strings.TrimPrefix(title, "should ")
}

// Apply categorizes tc and returns the annotated copy.
func Apply(tc model.TestCase) model.CategorizedTestCase {
	r := Categorize(tc.It, tc.Describe)
	return model.CategorizedTestCase{TestCase: tc, Category: r.Category, Summary: r.Summary}
}

// ApplyAll categorizes every test case, preserving order.
func ApplyAll(tcs []model.TestCase) []model.CategorizedTestCase {
	out := make([]model.CategorizedTestCase, len(tcs))
	for i, tc := range tcs {
		out[i] = Apply(tc)
	}
	return out
}
