package form

import (
	"fmt"
	"strings"

	"github.com/azstat/report-cli/internal/model"
)

// maxProductRows bounds the sequential product-row scan. Real forms top out
// well below this; the ceiling only guards against pathological markup.
const maxProductRows = 100

// DetectLayout decides which form layout the markup belongs to.
// Order matters: the embedded form code is authoritative, the marketing name
// of the form is next, and the field-name vocabulary is the last resort.
func DetectLayout(doc *Document) model.ReportType {
	text := doc.Text()
	lower := strings.ToLower(text)

	switch {
	case strings.Contains(text, model.FormCodeAnnual) || strings.Contains(lower, "1-istehsal"):
		return model.ReportTypeAnnual
	case strings.Contains(text, model.FormCodeMonthly) || strings.Contains(lower, "12-istehsal"):
		return model.ReportTypeMonthly
	}

	for _, name := range doc.InputNames() {
		if strings.HasPrefix(name, "tab1:") {
			return model.ReportTypeAnnual
		}
		if strings.HasPrefix(name, "ng_i1:") {
			return model.ReportTypeMonthly
		}
	}

	return model.ReportTypeUnknown
}

// Column composes a JSF positional column name from its numeric offset.
func Column(offset int) string {
	return fmt.Sprintf("j_idt%d", offset)
}

// Cell returns the raw value at (table, rowIndex, column). Absence is a
// normal outcome, never an error.
func (d *Document) Cell(table string, rowIndex int, column string) (string, bool) {
	return d.Field(fmt.Sprintf("%s:%d:%s", table, rowIndex, column))
}

// CellContaining returns the first field whose name carries the positional
// "{table}:{rowIndex}:" prefix and contains the column fragment. The annual
// layout sometimes nests the value column under an extra wrapper id, so an
// exact-name miss falls back to this looser match.
func (d *Document) CellContaining(table string, rowIndex int, column string) (string, bool) {
	prefix := fmt.Sprintf("%s:%d:", table, rowIndex)
	for _, name := range d.inputOrder {
		if strings.HasPrefix(name, prefix) && strings.Contains(name, column) {
			return d.fields[name], true
		}
	}
	return "", false
}

// ProductRowPresent reports whether a product row exists at the given index:
// either its code field or its autocomplete name field must be present.
func (d *Document) ProductRowPresent(table, colPrefix string, rowIndex int) bool {
	if _, ok := d.Cell(table, rowIndex, colPrefix); ok {
		return true
	}
	_, ok := d.Cell(table, rowIndex, colPrefix+"_input")
	return ok
}

// ScanProductRows walks dense 0-based row indices and calls fn for every
// index where a product row is present. The scan stops at the first absent
// index, with a hard ceiling so worst-case markup stays bounded.
func (d *Document) ScanProductRows(table, colPrefix string, fn func(rowIndex int)) {
	for row := 0; row < maxProductRows; row++ {
		if !d.ProductRowPresent(table, colPrefix, row) {
			return
		}
		fn(row)
	}
}
