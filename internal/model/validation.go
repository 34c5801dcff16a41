package model

// IssueCategory drives the overall status verdict.
type IssueCategory string

const (
	CategoryError   IssueCategory = "error"
	CategoryWarning IssueCategory = "warning"
	CategoryInfo    IssueCategory = "info"
)

// IssueSeverity documents which rule tier fired. It is an axis independent
// of category: category decides the verdict, severity explains why.
type IssueSeverity string

const (
	SeverityBlocking    IssueSeverity = "blocking"
	SeverityLogical     IssueSeverity = "logical"
	SeverityConsistency IssueSeverity = "consistency"
	SeverityAnomaly     IssueSeverity = "anomaly"
)

// ValidationStatus is the single verdict over a report.
type ValidationStatus string

const (
	StatusPassed  ValidationStatus = "passed"
	StatusWarning ValidationStatus = "warning"
	StatusFailed  ValidationStatus = "failed"
)

// Issue is one business-rule finding against a report field.
type Issue struct {
	Category IssueCategory `json:"category"`
	Field    string        `json:"field"` // dotted path into Report
	Message  string        `json:"message"`
	Severity IssueSeverity `json:"severity"`
}

// ValidationResult summarizes all issues found for a report.
// Build it with NewValidationResult so status and counts stay consistent
// with the issue list.
type ValidationResult struct {
	Status       ValidationStatus `json:"status"`
	ErrorCount   int              `json:"error_count"`
	WarningCount int              `json:"warning_count"`
	InfoCount    int              `json:"info_count"`
	Issues       []Issue          `json:"issues"`
}

// NewValidationResult derives status and per-category counts from issues:
// failed if any error exists, else warning if any warning exists, else passed.
func NewValidationResult(issues []Issue) ValidationResult {
	res := ValidationResult{Status: StatusPassed, Issues: issues}
	for _, issue := range issues {
		switch issue.Category {
		case CategoryError:
			res.ErrorCount++
		case CategoryWarning:
			res.WarningCount++
		case CategoryInfo:
			res.InfoCount++
		}
	}
	if res.ErrorCount > 0 {
		res.Status = StatusFailed
	} else if res.WarningCount > 0 {
		res.Status = StatusWarning
	}
	return res
}
