package validate

import (
	"fmt"
	"strings"

	"github.com/azstat/report-cli/internal/config"
	"github.com/azstat/report-cli/internal/model"
)

// blockingErrors verifies the report is structurally submittable: no
// negative values anywhere, a known organization, a recognized layout.
func blockingErrors(report, _ *model.Report, _ config.ValidationConfig) []model.Issue {
	var issues []model.Issue

	for _, row := range report.Rows {
		if row.CurrentValue < 0 {
			issues = append(issues, model.Issue{
				Category: model.CategoryError,
				Field:    fmt.Sprintf("section_i.%s.current_value", row.RowCode),
				Message:  fmt.Sprintf("Mənfi dəyər: %v", row.CurrentValue),
				Severity: model.SeverityBlocking,
			})
		}
		if row.PreviousValue < 0 {
			issues = append(issues, model.Issue{
				Category: model.CategoryError,
				Field:    fmt.Sprintf("section_i.%s.previous_value", row.RowCode),
				Message:  fmt.Sprintf("Mənfi dəyər (əvvəlki il): %v", row.PreviousValue),
				Severity: model.SeverityBlocking,
			})
		}
	}

	if report.Organization.Code == "" {
		issues = append(issues, model.Issue{
			Category: model.CategoryError,
			Field:    "organization.code",
			Message:  "Təşkilat kodu boşdur",
			Severity: model.SeverityBlocking,
		})
	}

	if report.Type == "" || report.Type == model.ReportTypeUnknown {
		issues = append(issues, model.Issue{
			Category: model.CategoryError,
			Field:    "report_type",
			Message:  "Hesabat növü təyin edilə bilmir",
			Severity: model.SeverityBlocking,
		})
	}

	for _, p := range report.Products {
		for _, f := range []struct {
			name    string
			value   float64
			message string
		}{
			{"produced", p.Produced, "Mənfi istehsal"},
			{"internal_use", p.InternalUse, "Mənfi daxili istifadə"},
			{"sold_quantity", p.SoldQuantity, "Mənfi satış miqdarı"},
			{"sold_value", p.SoldValue, "Mənfi satış dəyəri"},
			{"year_end_stock", p.YearEndStock, "Mənfi anbar qalığı"},
			{"import_value", p.ImportValue, "Mənfi idxal dəyəri"},
		} {
			if f.value < 0 {
				issues = append(issues, model.Issue{
					Category: model.CategoryError,
					Field:    fmt.Sprintf("section_ii.%s.%s", p.Code, f.name),
					Message:  fmt.Sprintf("%s: %v", f.message, f.value),
					Severity: model.SeverityBlocking,
				})
			}
		}
	}

	return issues
}

// logicalWarnings checks internal arithmetic relationships within the
// current period.
func logicalWarnings(report, _ *model.Report, cfg config.ValidationConfig) []model.Issue {
	var issues []model.Issue

	// Total sales must cover own-production sales.
	row1, row11 := report.Row("1"), report.Row("1.1")
	if row1 != nil && row11 != nil && row1.CurrentValue < row11.CurrentValue {
		issues = append(issues, model.Issue{
			Category: model.CategoryWarning,
			Field:    "section_i.1",
			Message:  fmt.Sprintf("Ümumi satış (%v) < Öz istehsal satışı (%v)", row1.CurrentValue, row11.CurrentValue),
			Severity: model.SeverityLogical,
		})
	}

	for _, p := range report.Products {
		if p.Produced > 0 && p.InternalUse > p.Produced {
			issues = append(issues, model.Issue{
				Category: model.CategoryWarning,
				Field:    fmt.Sprintf("section_ii.%s.internal_use", p.Code),
				Message:  fmt.Sprintf("Daxili istifadə (%v) > İstehsal (%v)", p.InternalUse, p.Produced),
				Severity: model.SeverityLogical,
			})
		}
		// Beginning stock is not on the form, so allow a tolerance band
		// above production before flagging sold quantity.
		if p.Produced > 0 && p.SoldQuantity > p.Produced*cfg.SoldOverageRatio {
			issues = append(issues, model.Issue{
				Category: model.CategoryWarning,
				Field:    fmt.Sprintf("section_ii.%s.sold_quantity", p.Code),
				Message:  fmt.Sprintf("Satış miqdarı (%v) istehsalı (%v) 10%%-dən çox üstələyir", p.SoldQuantity, p.Produced),
				Severity: model.SeverityLogical,
			})
		}
	}

	return issues
}

// consistencyWarnings cross-checks related fields. These are soft checks:
// the form lacks beginning-of-period stock, so they are necessarily
// approximate.
func consistencyWarnings(report, _ *model.Report, cfg config.ValidationConfig) []model.Issue {
	var issues []model.Issue

	row2, row21, row22 := report.Row("2"), report.Row("2.1"), report.Row("2.2")
	if row2 != nil && row21 != nil && row22 != nil {
		expected := row22.CurrentValue - row21.CurrentValue
		if diff := row2.CurrentValue - expected; diff > cfg.StockBalanceAbsTol || diff < -cfg.StockBalanceAbsTol {
			issues = append(issues, model.Issue{
				Category: model.CategoryWarning,
				Field:    "section_i.2",
				Message: fmt.Sprintf("Satış üçün hazır məhsul qalığı (%v) ilkin (%v) və son (%v) fərqi ilə uyğun deyil",
					row2.CurrentValue, row21.CurrentValue, row22.CurrentValue),
				Severity: model.SeverityConsistency,
			})
		}
	}

	for _, p := range report.Products {
		if p.SoldQuantity > 0 && p.YearEndStock > 0 && p.Produced > 0 &&
			p.SoldQuantity+p.YearEndStock > p.Produced*cfg.OvercommitRatio {
			issues = append(issues, model.Issue{
				Category: model.CategoryWarning,
				Field:    fmt.Sprintf("section_ii.%s", p.Code),
				Message: fmt.Sprintf("Satış (%v) + Anbar (%v) istehsalı (%v) çox üstələyir",
					p.SoldQuantity, p.YearEndStock, p.Produced),
				Severity: model.SeverityConsistency,
			})
		}
	}

	return issues
}

// anomalies compares against the previous period and flags informational
// oddities. The whole tier is inert without a previous report.
func anomalies(report, previous *model.Report, cfg config.ValidationConfig) []model.Issue {
	if previous == nil {
		return nil
	}

	var issues []model.Issue
	issues = append(issues, revenueSwing(report, previous, cfg)...)
	issues = append(issues, zeroedRows(report, previous, cfg)...)
	issues = append(issues, productDrift(report, previous, cfg)...)
	issues = append(issues, productDominance(report, cfg)...)
	return issues
}

func revenueSwing(report, previous *model.Report, cfg config.ValidationConfig) []model.Issue {
	cur, prev := report.Row("1"), previous.Row("1")
	if cur == nil || prev == nil || prev.CurrentValue <= 0 {
		return nil
	}

	change := cur.CurrentValue - prev.CurrentValue
	if change < 0 {
		change = -change
	}
	rel := change / prev.CurrentValue
	if rel <= cfg.AnomalyThreshold {
		return nil
	}

	direction := "artım"
	if cur.CurrentValue < prev.CurrentValue {
		direction = "azalma"
	}
	return []model.Issue{{
		Category: model.CategoryInfo,
		Field:    "section_i.1",
		Message:  fmt.Sprintf("Gəlir dəyişikliyi: %.1f%% %s (əvvəlki dövr: %v)", rel*100, direction, prev.CurrentValue),
		Severity: model.SeverityAnomaly,
	}}
}

func zeroedRows(report, previous *model.Report, cfg config.ValidationConfig) []model.Issue {
	var issues []model.Issue
	for _, row := range report.Rows {
		prev := previous.Row(row.RowCode)
		if prev != nil && prev.CurrentValue > cfg.ZeroedRowFloor && row.CurrentValue == 0 {
			issues = append(issues, model.Issue{
				Category: model.CategoryInfo,
				Field:    "section_i." + row.RowCode,
				Message:  fmt.Sprintf("Əvvəlki dövrdə dəyər var idi (%v), indi 0-dır", prev.CurrentValue),
				Severity: model.SeverityAnomaly,
			})
		}
	}
	return issues
}

// productDrift reports product codes added since, or dropped from, the
// previous period. Rows without a code are ignored.
func productDrift(report, previous *model.Report, cfg config.ValidationConfig) []model.Issue {
	var issues []model.Issue

	added := missingCodes(report.Products, previous.Products)
	if len(added) > 0 {
		issues = append(issues, model.Issue{
			Category: model.CategoryInfo,
			Field:    "section_ii",
			Message:  "Yeni məhsullar əlavə olunub: " + joinNames(added, report.Products, cfg.AnomalyProductsShown),
			Severity: model.SeverityAnomaly,
		})
	}

	removed := missingCodes(previous.Products, report.Products)
	if len(removed) > 0 {
		issues = append(issues, model.Issue{
			Category: model.CategoryInfo,
			Field:    "section_ii",
			Message:  "Məhsullar silinib: " + joinNames(removed, previous.Products, cfg.AnomalyProductsShown),
			Severity: model.SeverityAnomaly,
		})
	}

	return issues
}

// missingCodes returns, in order of appearance, the coded products of a
// that have no counterpart in b.
func missingCodes(a, b []model.Product) []string {
	have := make(map[string]bool, len(b))
	for _, p := range b {
		if p.Code != "" {
			have[p.Code] = true
		}
	}
	var out []string
	seen := make(map[string]bool)
	for _, p := range a {
		if p.Code != "" && !have[p.Code] && !seen[p.Code] {
			seen[p.Code] = true
			out = append(out, p.Code)
		}
	}
	return out
}

// joinNames renders up to max product names for the given codes, falling
// back to the code itself for unnamed products.
func joinNames(codes []string, products []model.Product, max int) string {
	if max > 0 && len(codes) > max {
		codes = codes[:max]
	}
	names := make([]string, 0, len(codes))
	for _, code := range codes {
		name := code
		for _, p := range products {
			if p.Code == code && p.Name != "" {
				name = p.Name
				break
			}
		}
		names = append(names, name)
	}
	return strings.Join(names, ", ")
}

// productDominance flags the first product whose sold value exceeds the
// configured share of total sales; the scan stops at the first match.
func productDominance(report *model.Report, cfg config.ValidationConfig) []model.Issue {
	var total float64
	for _, p := range report.Products {
		total += p.SoldValue
	}
	if total <= 0 {
		return nil
	}

	for _, p := range report.Products {
		if p.SoldValue > total*cfg.DominanceShare {
			return []model.Issue{{
				Category: model.CategoryInfo,
				Field:    fmt.Sprintf("section_ii.%s", p.Code),
				Message:  fmt.Sprintf("Məhsul ümumi satışın 80%%-dən çoxunu təşkil edir (%.1f%%)", p.SoldValue/total*100),
				Severity: model.SeverityAnomaly,
			}}
		}
	}
	return nil
}
