package main

import (
	"fmt"

	"github.com/azstat/report-cli/internal/model"
)

func printValidateResult(res *validateResult) {
	fmt.Printf("=== %s ===\n", res.File)
	printReportHeader(&res.Report.Organization, res.Report)
	if res.ID != 0 {
		fmt.Printf("Record ID:    %d\n", res.ID)
	}
	printValidation(res.Validation)
	if res.Comparison != nil {
		printComparison(res.Comparison)
	}
	fmt.Println()
}

func printReportHeader(org *model.Organization, report *model.Report) {
	fmt.Printf("Organization: %s", org.Code)
	if org.Name != "" {
		fmt.Printf(" (%s)", org.Name)
	}
	fmt.Println()
	fmt.Printf("Report:       %s / %s\n", report.Type, report.Period)
}

func printValidation(result model.ValidationResult) {
	fmt.Printf("Status:       %s (errors: %d, warnings: %d, info: %d)\n",
		result.Status, result.ErrorCount, result.WarningCount, result.InfoCount)
	for _, issue := range result.Issues {
		field := issue.Field
		if field == "" {
			field = "-"
		}
		fmt.Printf("  [%s] %-12s %s: %s\n", issue.Category, issue.Severity, field, issue.Message)
	}
}

func printComparison(cmp *model.ComparisonResult) {
	fmt.Printf("Comparison:   %d row changes, +%d/-%d products, %d sold-value changes\n",
		len(cmp.SectionIChanges), len(cmp.ProductsAdded), len(cmp.ProductsRemoved), cmp.ChangedCount)
	for _, ch := range cmp.SectionIChanges {
		fmt.Printf("  row %-5s %-30s %.1f -> %.1f (%.2f%%)\n",
			ch.RowCode, ch.RowName, ch.Previous, ch.Current, ch.ChangePct)
	}
	if len(cmp.ProductsAdded) > 0 {
		fmt.Printf("  added:   %v\n", cmp.ProductsAdded)
	}
	if len(cmp.ProductsRemoved) > 0 {
		fmt.Printf("  removed: %v\n", cmp.ProductsRemoved)
	}
}

func printRecord(rec *model.Record) {
	fmt.Printf("=== record %d (stored %s) ===\n", rec.ID, rec.StoredAt.Format("2006-01-02 15:04"))
	printReportHeader(&rec.Report.Organization, &rec.Report)
	printValidation(rec.Result)
}

func printRecordLine(rec model.Record) {
	fmt.Printf("%6d  %-10s  %-8s  %-7s  %-8s  %s\n",
		rec.ID, rec.Report.Organization.Code, rec.Report.Type,
		rec.Report.Period, rec.Result.Status, rec.StoredAt.Format("2006-01-02"))
}
