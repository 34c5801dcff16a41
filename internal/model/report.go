package model

import "time"

// ReportType identifies which azstat form layout a report came from.
type ReportType string

const (
	// ReportTypeAnnual is the 1-istehsal yearly production form.
	ReportTypeAnnual ReportType = "1-isth"
	// ReportTypeMonthly is the 12-istehsal monthly production form.
	ReportTypeMonthly ReportType = "12-isth"
	// ReportTypeUnknown means neither layout's vocabulary was found.
	ReportTypeUnknown ReportType = "unknown"
)

// Official azstat form codes embedded in the rendered pages.
const (
	FormCodeAnnual  = "03104055"
	FormCodeMonthly = "03104047"
)

// Organization is the reporting entity from the form header.
type Organization struct {
	Code             string `json:"code"` // VÖEN
	Name             string `json:"name"`
	Region           string `json:"region,omitempty"`
	PropertyType     string `json:"property_type"`
	ActivityCode     string `json:"activity_code"`
	OrganizationType string `json:"organization_type,omitempty"`
}

// ReportRow is a single Section I line item, keyed by its dotted row code.
// PreviousValue is the comparison baseline embedded in the same form; the
// monthly layout has no such column and it is always zero there.
type ReportRow struct {
	RowCode       string  `json:"row_code"`
	RowName       string  `json:"row_name"`
	CurrentValue  float64 `json:"current_value"`
	PreviousValue float64 `json:"previous_value"`
}

// Product is a single Section II line item. Code may be empty for
// unmatched rows, which excludes the row from code-keyed comparisons.
type Product struct {
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	Unit         string  `json:"unit"`
	Produced     float64 `json:"produced"`
	InternalUse  float64 `json:"internal_use"`
	SoldQuantity float64 `json:"sold_quantity"`
	SoldValue    float64 `json:"sold_value"`
	YearEndStock float64 `json:"year_end_stock"`
	ImportValue  float64 `json:"import_value"`
}

// Report is the canonical normalized form. Type and Period are always set,
// even when extraction found nothing, so downstream stages never branch on
// absence.
type Report struct {
	Organization Organization `json:"organization"`
	Type         ReportType   `json:"report_type"`
	Period       string       `json:"report_period"` // "2024" or "2024-12"
	Rows         []ReportRow  `json:"section_i"`
	Products     []Product    `json:"section_ii"`
	CapturedAt   time.Time    `json:"captured_at"`
}

// Row returns the Section I row with the given code, or nil.
func (r *Report) Row(code string) *ReportRow {
	for i := range r.Rows {
		if r.Rows[i].RowCode == code {
			return &r.Rows[i]
		}
	}
	return nil
}

// Record is the persisted form of a validated report.
// Keyed by (organization code, report type, period) with replace-on-conflict:
// re-submitting the same key overwrites the stored record.
type Record struct {
	ID       int64            `json:"id"`
	Report   Report           `json:"report"`
	Result   ValidationResult `json:"validation"`
	StoredAt time.Time        `json:"stored_at"`
}

// Stats summarizes stored records per validation status.
type Stats struct {
	OrganizationCode string  `json:"organization_code,omitempty"`
	Total            int     `json:"total"`
	Passed           int     `json:"passed"`
	Warnings         int     `json:"warnings"`
	Failed           int     `json:"failed"`
	LastRecord       *Record `json:"last_record,omitempty"`
}
