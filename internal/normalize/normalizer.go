// Package normalize assembles canonical reports from located form fields.
// This stage never fails: every absent or malformed field resolves to a
// typed default, and surfacing field-level problems is the validation
// engine's job.
package normalize

import (
	"strings"
	"time"
	"unicode"

	"github.com/azstat/report-cli/internal/form"
	"github.com/azstat/report-cli/internal/model"
)

// Minimum digit run treated as an organization code in the table-scan
// fallback (VÖEN identifiers are 10 digits, older codes 7+).
const minOrgCodeDigits = 7

// Normalizer turns indexed form documents into canonical reports.
type Normalizer struct {
	schemas map[model.ReportType]LayoutSchema
	now     func() time.Time
}

// New builds a Normalizer from the embedded layout schema.
func New() (*Normalizer, error) {
	schemas, err := loadSchemas()
	if err != nil {
		return nil, err
	}
	return &Normalizer{schemas: schemas, now: time.Now}, nil
}

// WithClock overrides the capture timestamp source. Tests use it to make
// normalization fully deterministic.
func (n *Normalizer) WithClock(now func() time.Time) *Normalizer {
	n.now = now
	return n
}

// Normalize extracts a canonical report from the document. Type and Period
// are always set, even when nothing else could be found.
func (n *Normalizer) Normalize(doc *form.Document) *model.Report {
	layout := form.DetectLayout(doc)

	report := &model.Report{
		Organization: n.organization(doc),
		Type:         layout,
		Period:       n.period(doc, layout),
		CapturedAt:   n.now().UTC(),
	}

	switch layout {
	case model.ReportTypeAnnual:
		report.Rows = n.sectionI(doc, n.schemas[model.ReportTypeAnnual])
		report.Products = n.sectionII(doc, n.schemas[model.ReportTypeAnnual])
	case model.ReportTypeMonthly:
		report.Rows = n.sectionI(doc, n.schemas[model.ReportTypeMonthly])
		report.Products = n.sectionII(doc, n.schemas[model.ReportTypeMonthly])
	default:
		// Unknown layout: degrade to the annual skeleton so downstream
		// stages still see a fully shaped report, and try both product
		// tables in case only the Section II vocabulary survived.
		report.Rows = n.sectionI(doc, n.schemas[model.ReportTypeAnnual])
		report.Products = n.sectionII(doc, n.schemas[model.ReportTypeAnnual])
		if len(report.Products) == 0 {
			report.Products = n.sectionII(doc, n.schemas[model.ReportTypeMonthly])
		}
	}

	return report
}

// organization extracts the reporting entity, preferring named
// organization.* fields and falling back to a table scan for a long digit
// run with the name in the adjacent cell. The fallback is best-effort and
// may mispair on unexpected table shapes.
func (n *Normalizer) organization(doc *form.Document) model.Organization {
	var org model.Organization

	for _, name := range doc.InputNames() {
		lower := strings.ToLower(name)
		if !strings.Contains(lower, "organization") {
			continue
		}
		value, _ := doc.Field(name)
		switch {
		// Activity first: its field name also carries "code".
		case strings.Contains(lower, "activity"):
			org.ActivityCode = value
		case strings.Contains(lower, "code") && !strings.Contains(lower, "property"):
			org.Code = value
		case strings.Contains(lower, "name"):
			org.Name = value
		case strings.Contains(lower, "region"):
			org.Region = value
		case strings.Contains(lower, "property"):
			org.PropertyType = value
		case strings.Contains(lower, "type"):
			org.OrganizationType = value
		}
	}

	if org.Code == "" {
		for _, cells := range doc.TableRows() {
			for i, cell := range cells {
				if !allDigits(cell) || len(cell) < minOrgCodeDigits {
					continue
				}
				org.Code = cell
				if i+1 < len(cells) {
					org.Name = cells[i+1]
				}
				return org
			}
		}
	}

	return org
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// sectionI iterates the layout's fixed row sequence, reading the current
// and previous value columns per index. The monthly layout has no previous
// column; those values stay zero.
func (n *Normalizer) sectionI(doc *form.Document, schema LayoutSchema) []model.ReportRow {
	si := schema.SectionI
	rows := make([]model.ReportRow, 0, si.RowCount)

	for i := 0; i < si.RowCount; i++ {
		code := si.RowCode(i)
		row := model.ReportRow{RowCode: code, RowName: si.RowName(code)}

		if raw, ok := doc.Cell(si.Table, i, si.CurrentField); ok {
			row.CurrentValue = form.ParseNumber(raw).Value
		}
		if row.CurrentValue == 0 && si.CurrentAlt != "" {
			if raw, ok := doc.Cell(si.Table, i, si.CurrentAlt); ok {
				row.CurrentValue = form.ParseNumber(raw).Value
			}
		}
		if row.CurrentValue == 0 && si.CurrentLoose != "" {
			if raw, ok := doc.CellContaining(si.Table, i, si.CurrentLoose); ok {
				row.CurrentValue = form.ParseNumber(raw).Value
			}
		}
		if si.PreviousField != "" {
			if raw, ok := doc.Cell(si.Table, i, si.PreviousField); ok {
				row.PreviousValue = form.ParseNumber(raw).Value
			}
		}

		rows = append(rows, row)
	}

	return rows
}

// sectionII discovers product rows by sequential scan and reads the eight
// fixed-offset columns after the code/name pair. Every numeric field
// defaults independently.
func (n *Normalizer) sectionII(doc *form.Document, schema LayoutSchema) []model.Product {
	sii := schema.SectionII
	base := sii.CodeOffset()

	var products []model.Product
	doc.ScanProductRows(sii.Table, sii.CodeField, func(row int) {
		var p model.Product
		if code, ok := doc.Cell(sii.Table, row, sii.CodeField); ok {
			p.Code = code
		}
		if name, ok := doc.Cell(sii.Table, row, sii.CodeField+"_input"); ok {
			p.Name = name
		}
		if unit, ok := doc.Cell(sii.Table, row, form.Column(base+3)); ok {
			p.Unit = unit
		}
		p.Produced = numericCell(doc, sii.Table, row, base+4)
		p.InternalUse = numericCell(doc, sii.Table, row, base+5)
		p.SoldQuantity = numericCell(doc, sii.Table, row, base+6)
		p.SoldValue = numericCell(doc, sii.Table, row, base+7)
		p.YearEndStock = numericCell(doc, sii.Table, row, base+8)
		p.ImportValue = numericCell(doc, sii.Table, row, base+9)
		products = append(products, p)
	})

	return products
}

func numericCell(doc *form.Document, table string, row, offset int) float64 {
	raw, ok := doc.Cell(table, row, form.Column(offset))
	if !ok {
		return 0
	}
	return form.ParseNumber(raw).Value
}

// period resolves the reporting period: bare year for annual, year-month
// for monthly. Unresolvable parts take explicit defaults; a defaulted
// period still flows through validation.
func (n *Normalizer) period(doc *form.Document, layout model.ReportType) string {
	switch layout {
	case model.ReportTypeMonthly:
		year, month := "", ""
		for _, name := range doc.InputNames() {
			lower := strings.ToLower(name)
			value, _ := doc.Field(name)
			if strings.Contains(lower, "year") || strings.Contains(lower, "il") {
				year = value
			} else if strings.Contains(lower, "month") || strings.Contains(lower, "ay") {
				month = value
			}
		}
		if year == "" {
			for _, sel := range doc.Selects() {
				lower := strings.ToLower(sel.Name)
				if strings.Contains(lower, "year") {
					year = sel.Selected
				} else if strings.Contains(lower, "month") {
					month = sel.Selected
				}
			}
		}
		if month == "" {
			month = "12"
		} else if len(month) < 2 {
			month = "0" + month
		}
		if year == "" {
			return "2024-12"
		}
		return year + "-" + month

	default:
		year := ""
		for _, name := range doc.InputNames() {
			lower := strings.ToLower(name)
			if strings.Contains(lower, "year") || strings.Contains(lower, "il") {
				year, _ = doc.Field(name)
				break
			}
		}
		if year == "" {
			for _, sel := range doc.Selects() {
				if strings.Contains(strings.ToLower(sel.Name), "year") {
					year = sel.Selected
					break
				}
			}
		}
		if year == "" {
			return "2024"
		}
		return year
	}
}
