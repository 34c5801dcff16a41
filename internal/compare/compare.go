// Package compare produces structural diffs between two canonical reports
// of the same organization and type.
package compare

import (
	"context"
	"math"

	"github.com/rotisserie/eris"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/azstat/report-cli/internal/model"
)

// Names surfaced per added/removed product list in the default summary.
const maxNamedProducts = 5

// ErrNotFound marks a comparison whose current or previous record does not
// exist. Callers surface it as a 404-equivalent rather than a crash.
var ErrNotFound = eris.New("record not found")

// RecordSource is the slice of the record store the resolver needs.
// Missing records are reported as (nil, nil).
type RecordSource interface {
	Get(ctx context.Context, id int64) (*model.Record, error)
	GetLatestBefore(ctx context.Context, orgCode string, reportType model.ReportType, period string) (*model.Record, error)
}

// Resolve loads the two records and diffs them. With previousID zero the
// previous record is resolved automatically as the latest stored record for
// the same organization and type with a strictly earlier period.
func Resolve(ctx context.Context, src RecordSource, currentID, previousID int64) (*model.Comparison, error) {
	current, err := src.Get(ctx, currentID)
	if err != nil {
		return nil, eris.Wrapf(err, "compare: load record %d", currentID)
	}
	if current == nil {
		return nil, eris.Wrapf(ErrNotFound, "record %d", currentID)
	}

	var previous *model.Record
	if previousID != 0 {
		previous, err = src.Get(ctx, previousID)
		if err != nil {
			return nil, eris.Wrapf(err, "compare: load record %d", previousID)
		}
		if previous == nil {
			return nil, eris.Wrapf(ErrNotFound, "record %d", previousID)
		}
	} else {
		previous, err = src.GetLatestBefore(ctx,
			current.Report.Organization.Code, current.Report.Type, current.Report.Period)
		if err != nil {
			return nil, eris.Wrap(err, "compare: resolve previous record")
		}
		if previous == nil {
			return nil, eris.Wrap(ErrNotFound, "no previous record for comparison")
		}
	}

	return &model.Comparison{
		Current:    current,
		Previous:   previous,
		Comparison: Diff(&current.Report, &previous.Report),
	}, nil
}

// Diff computes the structural diff. Pure function of its inputs; diffing
// a report against itself yields an empty result.
func Diff(current, previous *model.Report) *model.ComparisonResult {
	result := &model.ComparisonResult{
		SectionIChanges: sectionIChanges(current, previous),
	}

	currentByCode := productsByCode(current.Products)
	previousByCode := productsByCode(previous.Products)

	for _, p := range current.Products {
		if p.Code == "" {
			continue
		}
		if _, ok := previousByCode[p.Code]; !ok {
			result.ProductsAdded = append(result.ProductsAdded, nameOrCode(p))
		}
	}
	for _, p := range previous.Products {
		if p.Code == "" {
			continue
		}
		if _, ok := currentByCode[p.Code]; !ok {
			result.ProductsRemoved = append(result.ProductsRemoved, nameOrCode(p))
		}
	}
	if len(result.ProductsAdded) > maxNamedProducts {
		result.ProductsAdded = result.ProductsAdded[:maxNamedProducts]
	}
	if len(result.ProductsRemoved) > maxNamedProducts {
		result.ProductsRemoved = result.ProductsRemoved[:maxNamedProducts]
	}

	for _, p := range current.Products {
		prev, ok := previousByCode[p.Code]
		if p.Code == "" || !ok || p.SoldValue == prev.SoldValue {
			continue
		}
		result.ProductsChanged = append(result.ProductsChanged, model.ProductChange{
			Code:              p.Code,
			Name:              nameOr(p.Name, prev.Name, p.Code),
			CurrentSoldValue:  p.SoldValue,
			PreviousSoldValue: prev.SoldValue,
		})
	}
	result.ChangedCount = len(result.ProductsChanged)

	return result
}

// sectionIChanges diffs the union of row codes, keeping only rows whose
// current value differs between the two reports. Codes are ordered
// numerically so "1.2" sorts before "1.10".
func sectionIChanges(current, previous *model.Report) []model.SectionIChange {
	currentRows := rowsByCode(current.Rows)
	previousRows := rowsByCode(previous.Rows)

	codes := make([]string, 0, len(currentRows)+len(previousRows))
	seen := make(map[string]bool)
	for _, r := range current.Rows {
		if !seen[r.RowCode] {
			seen[r.RowCode] = true
			codes = append(codes, r.RowCode)
		}
	}
	for _, r := range previous.Rows {
		if !seen[r.RowCode] {
			seen[r.RowCode] = true
			codes = append(codes, r.RowCode)
		}
	}
	collate.New(language.Und, collate.Numeric).SortStrings(codes)

	var changes []model.SectionIChange
	for _, code := range codes {
		var curVal, prevVal float64
		var curName, prevName string
		if r, ok := currentRows[code]; ok {
			curVal, curName = r.CurrentValue, r.RowName
		}
		if r, ok := previousRows[code]; ok {
			prevVal, prevName = r.CurrentValue, r.RowName
		}
		if curVal == prevVal {
			continue
		}

		change := prevVal - curVal
		var pct float64
		if prevVal > 0 {
			pct = math.Round(math.Abs(change)/prevVal*100*100) / 100
		}
		changes = append(changes, model.SectionIChange{
			RowCode:   code,
			RowName:   nameOr(curName, prevName, ""),
			Current:   curVal,
			Previous:  prevVal,
			Change:    change,
			ChangePct: pct,
		})
	}
	return changes
}

func rowsByCode(rows []model.ReportRow) map[string]model.ReportRow {
	m := make(map[string]model.ReportRow, len(rows))
	for _, r := range rows {
		m[r.RowCode] = r
	}
	return m
}

func productsByCode(products []model.Product) map[string]model.Product {
	m := make(map[string]model.Product, len(products))
	for _, p := range products {
		if p.Code != "" {
			m[p.Code] = p
		}
	}
	return m
}

func nameOrCode(p model.Product) string {
	if p.Name != "" {
		return p.Name
	}
	return p.Code
}

func nameOr(primary, fallback, last string) string {
	if primary != "" {
		return primary
	}
	if fallback != "" {
		return fallback
	}
	return last
}
