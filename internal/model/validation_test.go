package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewValidationResult(t *testing.T) {
	errIssue := Issue{Category: CategoryError, Severity: SeverityBlocking}
	warnIssue := Issue{Category: CategoryWarning, Severity: SeverityLogical}
	infoIssue := Issue{Category: CategoryInfo, Severity: SeverityAnomaly}

	tests := []struct {
		name     string
		issues   []Issue
		status   ValidationStatus
		errors   int
		warnings int
		infos    int
	}{
		{"no issues", nil, StatusPassed, 0, 0, 0},
		{"info only", []Issue{infoIssue}, StatusPassed, 0, 0, 1},
		{"warning", []Issue{warnIssue, infoIssue}, StatusWarning, 0, 1, 1},
		{"error dominates", []Issue{errIssue, warnIssue, infoIssue}, StatusFailed, 1, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := NewValidationResult(tt.issues)
			assert.Equal(t, tt.status, res.Status)
			assert.Equal(t, tt.errors, res.ErrorCount)
			assert.Equal(t, tt.warnings, res.WarningCount)
			assert.Equal(t, tt.infos, res.InfoCount)
		})
	}
}

func TestReportRowLookup(t *testing.T) {
	report := Report{Rows: []ReportRow{
		{RowCode: "1", CurrentValue: 10},
		{RowCode: "1.1", CurrentValue: 5},
	}}

	row := report.Row("1.1")
	assert.NotNil(t, row)
	assert.Equal(t, 5.0, row.CurrentValue)
	assert.Nil(t, report.Row("9"))
}
