package model

import "strings"

// Fallback scores for assessments that never reached the page-quality
// provider.
const (
	// NoWebsiteScore is assigned when there is no website to analyze.
	// Absence of a usable website is itself evidence of poor SEO.
	NoWebsiteScore = 30
	// AnalysisFailedScore is assigned when the provider call fails.
	AnalysisFailedScore = 50
)

// Defaults used when the provider response omits a category.
const (
	DefaultSEOCategoryScore = 0.5
	DefaultPerformanceScore = 0.5
)

// Issue is a detected SEO problem. Its display text is resolved at render
// time by String.
type Issue int

const (
	IssueNone Issue = iota
	IssueNoWebsite
	IssueAnalysisFailed
	IssueSlowPageSpeed
	IssueSEOImprovements
	IssueMissingMetaDescription
	IssueNoMobileOptimization
	IssueMissingSchemaMarkup
)

var issueMessages = map[Issue]string{
	IssueNone:                   "No major issues detected",
	IssueNoWebsite:              "No website found",
	IssueAnalysisFailed:         "Could not analyze SEO",
	IssueSlowPageSpeed:          "Slow page speed",
	IssueSEOImprovements:        "SEO improvements needed",
	IssueMissingMetaDescription: "Missing meta descriptions",
	IssueNoMobileOptimization:   "No mobile optimization",
	IssueMissingSchemaMarkup:    "Missing schema markup",
}

func (i Issue) String() string {
	if msg, ok := issueMessages[i]; ok {
		return msg
	}
	return "unknown issue"
}

// SeoAssessment is the analyzer's verdict on one website.
type SeoAssessment struct {
	Score  int     `json:"score"`
	Issues []Issue `json:"issues"`
}

// NewAssessment builds an assessment, substituting IssueNone when no issue
// was detected so the list is never empty.
func NewAssessment(score int, issues []Issue) SeoAssessment {
	if len(issues) == 0 {
		issues = []Issue{IssueNone}
	}
	return SeoAssessment{Score: score, Issues: issues}
}

// NoWebsiteAssessment is the verdict for a business without a website.
func NoWebsiteAssessment() SeoAssessment {
	return SeoAssessment{Score: NoWebsiteScore, Issues: []Issue{IssueNoWebsite}}
}

// FailedAssessment is the verdict when the provider could not be reached.
func FailedAssessment() SeoAssessment {
	return SeoAssessment{Score: AnalysisFailedScore, Issues: []Issue{IssueAnalysisFailed}}
}

// Messages returns the display text of each issue, in order.
func (a SeoAssessment) Messages() []string {
	out := make([]string, len(a.Issues))
	for i, issue := range a.Issues {
		out[i] = issue.String()
	}
	return out
}

// Joined returns the issue messages joined by "; ".
func (a SeoAssessment) Joined() string {
	return strings.Join(a.Messages(), "; ")
}
