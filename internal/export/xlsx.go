// Package export writes stored report records to XLSX workbooks.
package export

import (
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/azstat/report-cli/internal/model"
)

// WriteXLSX renders a stored record as a three-sheet workbook: organization
// header with Section I, the product table, and the validation issues.
func WriteXLSX(rec *model.Record, path string) error {
	f := xlsx.NewFile()

	if err := sectionISheet(f, rec); err != nil {
		return err
	}
	if err := sectionIISheet(f, rec); err != nil {
		return err
	}
	if err := issuesSheet(f, rec); err != nil {
		return err
	}

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "export: save workbook")
	}
	return nil
}

func sectionISheet(f *xlsx.File, rec *model.Record) error {
	sheet, err := f.AddSheet("Hesabat")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	org := rec.Report.Organization
	addStringRow(sheet, "Təşkilat kodu", org.Code)
	addStringRow(sheet, "Təşkilat adı", org.Name)
	addStringRow(sheet, "Region", org.Region)
	addStringRow(sheet, "Hesabat növü", string(rec.Report.Type))
	addStringRow(sheet, "Hesabat dövrü", rec.Report.Period)
	addStringRow(sheet, "Status", string(rec.Result.Status))
	sheet.AddRow()

	addStringRow(sheet, "Sətir kodu", "Sətir adı", "Cari dəyər", "Əvvəlki dəyər")
	for _, row := range rec.Report.Rows {
		r := sheet.AddRow()
		r.AddCell().SetString(row.RowCode)
		r.AddCell().SetString(row.RowName)
		r.AddCell().SetFloat(row.CurrentValue)
		r.AddCell().SetFloat(row.PreviousValue)
	}
	return nil
}

func sectionIISheet(f *xlsx.File, rec *model.Record) error {
	sheet, err := f.AddSheet("Məhsullar")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	addStringRow(sheet, "Kod", "Ad", "Vahid", "İstehsal", "Daxili istifadə",
		"Satılan miqdar", "Satış dəyəri", "İlin sonuna qalıq", "İdxal dəyəri")
	for _, p := range rec.Report.Products {
		r := sheet.AddRow()
		r.AddCell().SetString(p.Code)
		r.AddCell().SetString(p.Name)
		r.AddCell().SetString(p.Unit)
		r.AddCell().SetFloat(p.Produced)
		r.AddCell().SetFloat(p.InternalUse)
		r.AddCell().SetFloat(p.SoldQuantity)
		r.AddCell().SetFloat(p.SoldValue)
		r.AddCell().SetFloat(p.YearEndStock)
		r.AddCell().SetFloat(p.ImportValue)
	}
	return nil
}

func issuesSheet(f *xlsx.File, rec *model.Record) error {
	sheet, err := f.AddSheet("Yoxlama")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	addStringRow(sheet, "Ümumi", strconv.Itoa(len(rec.Result.Issues)))
	sheet.AddRow()

	addStringRow(sheet, "Kateqoriya", "Səviyyə", "Sahə", "Mesaj")
	for _, issue := range rec.Result.Issues {
		addStringRow(sheet, string(issue.Category), string(issue.Severity), issue.Field, issue.Message)
	}
	return nil
}

func addStringRow(sheet *xlsx.Sheet, cells ...string) {
	row := sheet.AddRow()
	for _, c := range cells {
		row.AddCell().SetString(c)
	}
}
