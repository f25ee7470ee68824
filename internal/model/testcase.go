package model

// Framework tags the kind of test runner a test case belongs to.
type Framework string

const (
	Unit Framework = "unit"
	E2E  Framework = "e2e"
)

// TestCase is one test declaration from the corpus. Never mutated after load.
type TestCase struct {
	File        string    `json:"file"`
	Describe    string    `json:"describe"`
	It          string    `json:"it"`
	Line        int       `json:"line"`
	Framework   Framework `json:"framework"`
	Description string    `json:"description,omitempty"`
}

// Category is the intent a test case is classified under.
type Category string

const (
	Auth          Category = "auth"
	ErrorHandling Category = "error-handling"
	Validation    Category = "validation"
	EdgeCase      Category = "edge-case"
	Integration   Category = "integration"
	HappyPath     Category = "happy-path"
	Other         Category = "other"
)

// Categories lists the full taxonomy in report order.
var Categories = []Category{Auth, ErrorHandling, Validation, EdgeCase, Integration, HappyPath, Other}

// CategorizedTestCase is a TestCase annotated with its derived category and summary.
type CategorizedTestCase struct {
	TestCase
	Category Category `json:"category"`
	Summary  string   `json:"summary"`
}

// CoverageAnalysis is the per-entity test coverage report.
type CoverageAnalysis struct {
	TotalTests      int                                `json:"totalTests"`
	ByCategory      map[Category][]CategorizedTestCase `json:"byCategory"`
	MissingPatterns []string                           `json:"missingPatterns"`
	CoverageScore   int                                `json:"coverageScore"`
	Recommendations []string                           `json:"recommendations"`
}

// EmptyCoverage returns an analysis with every bucket present and no tests.
// Used as the placeholder before correlation runs.
func EmptyCoverage() *CoverageAnalysis {
	by := make(map[Category][]CategorizedTestCase, len(Categories))
	for _, c := range Categories {
		by[c] = []CategorizedTestCase{}
	}
	return &CoverageAnalysis{
		ByCategory:      by,
		MissingPatterns: []string{},
		Recommendations: []string{},
	}
}
