package export

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/azstat/report-cli/internal/model"
)

func sampleRecord() *model.Record {
	return &model.Record{
		ID: 7,
		Report: model.Report{
			Organization: model.Organization{Code: "1234567", Name: "Test MMC", Region: "Bakı"},
			Type:         model.ReportTypeAnnual,
			Period:       "2024",
			Rows: []model.ReportRow{
				{RowCode: "1", RowName: "Malların satışı (cəmi)", CurrentValue: 1500.5, PreviousValue: 1200},
			},
			Products: []model.Product{
				{Code: "0101", Name: "Buğda", Unit: "ton", Produced: 100, SoldValue: 4000.5},
			},
			CapturedAt: time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC),
		},
		Result: model.NewValidationResult([]model.Issue{{
			Category: model.CategoryWarning,
			Field:    "section_i.1",
			Message:  "Test xəbərdarlığı",
			Severity: model.SeverityLogical,
		}}),
		StoredAt: time.Now(),
	}
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, WriteXLSX(sampleRecord(), path))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 3)
	assert.Equal(t, "Hesabat", f.Sheets[0].Name)
	assert.Equal(t, "Məhsullar", f.Sheets[1].Name)
	assert.Equal(t, "Yoxlama", f.Sheets[2].Name)

	header := f.Sheets[0].Rows[0]
	require.Len(t, header.Cells, 2)
	assert.Equal(t, "1234567", header.Cells[1].String())

	products := f.Sheets[1]
	require.True(t, len(products.Rows) >= 2)
	assert.Equal(t, "0101", products.Rows[1].Cells[0].String())
	assert.Equal(t, "Buğda", products.Rows[1].Cells[1].String())

	issues := f.Sheets[2]
	last := issues.Rows[len(issues.Rows)-1]
	assert.Equal(t, "warning", last.Cells[0].String())
	assert.Equal(t, "Test xəbərdarlığı", last.Cells[3].String())
}
