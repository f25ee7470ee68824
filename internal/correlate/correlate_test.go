package correlate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/annodoc/internal/config"
	"github.com/phobologic/annodoc/internal/model"
	"github.com/phobologic/annodoc/internal/pathseg"
)

func newCorrelator() *Correlator {
	return New(pathseg.Default(), config.DefaultConfig().Tests)
}

func TestForEntityScenario(t *testing.T) {
	t.Parallel()

	corpus := []model.TestCase{
		{File: "tests/actions/create.test.ts", Describe: "createEntity", It: "should create entity", Line: 3, Framework: model.Unit},
	}
	got := newCorrelator().ForEntity("createEntity", "lib/actions/entities.ts", corpus)
	require.Len(t, got, 1)
	assert.Equal(t, corpus[0], got[0])
}

func TestForEntityMatchesByPathSegment(t *testing.T) {
	t.Parallel()

	corpus := []model.TestCase{
		{File: "__tests__/users/list.test.tsx", Describe: "renders rows", It: "shows names"},
		{File: "tests/billing/invoice.test.ts", Describe: "Invoice", It: "totals"},
	}
	got := newCorrelator().ForEntity("UserList", "app/(dashboard)/users/page.tsx", corpus)
	require.Len(t, got, 1)
	assert.Equal(t, "__tests__/users/list.test.tsx", got[0].File)
}

func TestForEntityDescribeIsCaseSensitive(t *testing.T) {
	t.Parallel()

	corpus := []model.TestCase{{File: "x/y.test.ts", Describe: "createentity", It: "works"}}
	got := newCorrelator().ForEntity("createEntity", "lib/actions/other.ts", corpus)
	assert.Empty(t, got)
}

func TestForEntityPreservesCorpusOrder(t *testing.T) {
	t.Parallel()

	corpus := []model.TestCase{
		{File: "tests/entities/b.test.ts", Describe: "b", It: "1"},
		{File: "tests/misc/a.test.ts", Describe: "createEntity", It: "2"},
		{File: "tests/entities/c.test.ts", Describe: "c", It: "3"},
	}
	got := newCorrelator().ForEntity("createEntity", "lib/actions/entities.ts", corpus)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"1", "2", "3"}, []string{got[0].It, got[1].It, got[2].It})
}

func TestEmptyResultsAreNotNil(t *testing.T) {
	t.Parallel()

	c := newCorrelator()
	corpus := []model.TestCase{{File: "tests/billing/invoice.test.ts", Describe: "Invoice", It: "totals"}}

	for _, got := range [][]model.TestCase{
		c.ForEntity("createUser", "lib/actions/users.ts", corpus),
		c.ForEntity("createUser", "lib/actions/users.ts", nil),
		c.ForModule("users", model.Action, corpus),
		c.ForModule("users", model.Screen, nil),
		c.ForModule("", model.Module, corpus),
	} {
		assert.NotNil(t, got)
		assert.Empty(t, got)
	}
}

func TestForModule(t *testing.T) {
	t.Parallel()

	corpus := []model.TestCase{
		{File: "tests/actions/users/create.test.ts", Describe: "create", It: "a"},
		{File: "e2e/dashboard.spec.ts", Describe: "Users page", It: "b"},
		{File: "tests/billing/invoice.test.ts", Describe: "Invoice", It: "c"},
		{File: "tests/Users.test.ts", Describe: "x", It: "d"},
	}
	for _, kind := range []model.Kind{model.Action, model.Screen, model.Module} {
		got := newCorrelator().ForModule("users", kind, corpus)
		its := make([]string, len(got))
		for i, tc := range got {
			its[i] = tc.It
		}
		assert.Equal(t, []string{"a", "b", "d"}, its, "kind %s is a hint, not a filter", kind)
	}
}

func TestNilNamer(t *testing.T) {
	t.Parallel()

	c := New(nil, config.TestsConfig{})
	corpus := []model.TestCase{{File: "users.test.ts", Describe: "createUser", It: "x"}}
	assert.Len(t, c.ForEntity("createUser", "users.ts", corpus), 1)
}
