// Package coverage scores how well a set of categorized tests covers one
// entity and lists the conventional test patterns it is missing.
package coverage

import (
	"github.com/phobologic/annodoc/internal/config"
	"github.com/phobologic/annodoc/internal/model"
)

// Weights are the tunable score constants. Breadth must be worth more than
// count: PerCategory > PerTest.
type Weights struct {
	// PerTest points for each test up to TestCap tests.
	PerTest int
	TestCap int
	// PerCategory points for each distinct non-empty category.
	PerCategory int
	// MissingPenalty is subtracted per missing pattern.
	MissingPenalty int
}

// DefaultWeights returns the weights from the default configuration.
func DefaultWeights() Weights {
	return WeightsFrom(config.DefaultConfig().Coverage)
}

// WeightsFrom converts the coverage config section.
func WeightsFrom(c config.CoverageConfig) Weights {
	return Weights{
		PerTest:        c.PerTest,
		TestCap:        c.TestCap,
		PerCategory:    c.PerCategory,
		MissingPenalty: c.MissingPenalty,
	}
}

// MaxScore is the upper bound of CoverageScore.
const MaxScore = 100

// Analyzer computes coverage reports.
type Analyzer struct {
	weights Weights
}

// NewAnalyzer returns an Analyzer using w.
func NewAnalyzer(w Weights) *Analyzer {
	return &Analyzer{weights: w}
}

// gap is an expected pattern: required reports whether the entity is expected
// to have it, given its auth/storage flags.
type gap struct {
	category       model.Category
	required       func(touchesAuth, touchesStorage bool) bool
	recommendation string
}

// gaps is in the fixed order recommendations are emitted.
var gaps = []gap{
	{
		category:       model.Auth,
		required:       func(auth, _ bool) bool { return auth },
		recommendation: "Add authentication tests: cover signed-out access, expired sessions and insufficient permissions.",
	},
	{
		category:       model.ErrorHandling,
		required:       func(_, _ bool) bool { return true },
		recommendation: "Add error-handling tests: assert behavior when dependencies fail or throw.",
	},
	{
		category:       model.Validation,
		required:       func(_, _ bool) bool { return true },
		recommendation: "Add validation tests: reject malformed, missing and out-of-format input.",
	},
	{
		category:       model.EdgeCase,
		required:       func(_, storage bool) bool { return storage },
		recommendation: "Add edge-case tests for stored data: empty results, null fields and size limits.",
	},
}

// NoTestsRecommendation is emitted first whenever an entity has no tests.
const NoTestsRecommendation = "Add tests: no test cases were found for this entity."

// Analyze buckets tests by category and scores them. touchesAuth and
// touchesStorage raise the expectations for auth and edge-case tests.
func (a *Analyzer) Analyze(tests []model.CategorizedTestCase, touchesAuth, touchesStorage bool) *model.CoverageAnalysis {
	out := model.EmptyCoverage()
	for _, tc := range tests {
		c := tc.Category
		if _, ok := out.ByCategory[c]; !ok {
			c = model.Other
		}
		out.ByCategory[c] = append(out.ByCategory[c], tc)
	}
	out.TotalTests = len(tests)

	if out.TotalTests == 0 {
		out.Recommendations = append(out.Recommendations, NoTestsRecommendation)
	}
	for _, g := range gaps {
		if !g.required(touchesAuth, touchesStorage) || len(out.ByCategory[g.category]) > 0 {
			continue
		}
		out.MissingPatterns = append(out.MissingPatterns, string(g.category))
		out.Recommendations = append(out.Recommendations, g.recommendation)
	}

	out.CoverageScore = a.score(out)
	return out
}

// score is zero without tests. Otherwise count points (capped) plus breadth
// points, minus a penalty per missing pattern, clamped to [0, MaxScore].
// Adding a test never lowers any term, so the score is monotonic.
func (a *Analyzer) score(c *model.CoverageAnalysis) int {
	if c.TotalTests == 0 {
		return 0
	}
	w := a.weights

	counted := min(c.TotalTests, w.TestCap)
	distinct := 0
	for _, cat := range model.Categories {
		if len(c.ByCategory[cat]) > 0 {
			distinct++
		}
	}

	s := counted*w.PerTest + distinct*w.PerCategory - len(c.MissingPatterns)*w.MissingPenalty
	return max(0, min(MaxScore, s))
}
