package categorize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/annodoc/internal/model"
)

func TestCategorize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		title string
		group string
		want  model.Category
	}{
		{"should create entity", "createEntity", model.HappyPath},
		{"should redirect to login", "Dashboard", model.Auth},
		{"should throw when id missing", "deleteUser", model.ErrorHandling},
		{"should reject invalid email", "signupForm", model.ErrorHandling},
		{"should mark name as required", "UserForm", model.Validation},
		{"handles empty list", "UserList", model.EdgeCase},
		{"respects the maximum page size", "paginate", model.EdgeCase},
		{"completes the checkout workflow", "Checkout", model.Integration},
		{"renders", "Session banner", model.Auth},
		{"", "", model.Other},
		{"  ", "\t", model.Other},
	}

	for _, tt := range tests {
		t.Run(tt.title+"|"+tt.group, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Categorize(tt.title, tt.group).Category)
		})
	}
}

func TestAuthTakesPrecedenceOverError(t *testing.T) {
	t.Parallel()

	titles := []string{
		"should return unauthorized for invalid token",
		"should throw when session expired",
		"fails with permission error",
		"rejects logout without auth",
	}
	for _, title := range titles {
		assert.Equal(t, model.Auth, Categorize(title, "").Category, title)
		assert.Equal(t, model.Auth, Categorize("", title).Category, "group label: %s", title)
	}
}

func TestRulesOrder(t *testing.T) {
	t.Parallel()

	require.NotEmpty(t, Rules)
	assert.Equal(t, model.Auth, Rules[0].Category, "auth must be checked first")
	assert.Equal(t, model.ErrorHandling, Rules[1].Category)
}

func TestCategorizeIsCaseInsensitive(t *testing.T) {
	t.Parallel()
	assert.Equal(t, model.ErrorHandling, Categorize("Should THROW", "X").Category)
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "create entity", Summarize("should create entity"))
	assert.Equal(t, "Should create entity", Summarize("Should create entity"), "prefix is case-sensitive")
	assert.Equal(t, "creates entity", Summarize("creates entity"))
	assert.Equal(t, "should", Summarize("should"))
	assert.Equal(t, "", Summarize(""))
}

func TestScenarioCreateEntity(t *testing.T) {
	t.Parallel()

	got := Categorize("should create entity", "createEntity")
	assert.Equal(t, Result{Category: model.HappyPath, Summary: "create entity"}, got)
}

func TestApplyAllPreservesOrder(t *testing.T) {
	t.Parallel()

	in := []model.TestCase{
		{File: "a.test.ts", Describe: "a", It: "should fail loudly"},
		{File: "b.test.ts", Describe: "b", It: "should work"},
	}
	out := ApplyAll(in)
	require.Len(t, out, 2)
	assert.Equal(t, in[0], out[0].TestCase)
	assert.Equal(t, model.ErrorHandling, out[0].Category)
	assert.Equal(t, "work", out[1].Summary)
	assert.Equal(t, model.HappyPath, out[1].Category)
}
