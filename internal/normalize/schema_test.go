package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azstat/report-cli/internal/model"
)

func TestLoadSchemas(t *testing.T) {
	schemas, err := loadSchemas()
	require.NoError(t, err)

	annual := schemas[model.ReportTypeAnnual]
	assert.Equal(t, "tab1", annual.SectionI.Table)
	assert.Equal(t, 16, annual.SectionI.RowCount)
	assert.Equal(t, "tab2", annual.SectionII.Table)
	assert.Equal(t, 155, annual.SectionII.CodeOffset())
	assert.NotEmpty(t, annual.SectionI.PreviousField)

	monthly := schemas[model.ReportTypeMonthly]
	assert.Equal(t, "ng_i1", monthly.SectionI.Table)
	assert.Equal(t, 12, monthly.SectionI.RowCount)
	assert.Equal(t, 151, monthly.SectionII.CodeOffset())
	assert.Empty(t, monthly.SectionI.PreviousField, "monthly layout has no previous-year column")
	assert.NotEmpty(t, monthly.SectionI.CurrentAlt)
}

func TestRowCodeFallback(t *testing.T) {
	s := SectionISchema{RowCodes: []string{"1", "1.1"}}
	assert.Equal(t, "1", s.RowCode(0))
	assert.Equal(t, "1.1", s.RowCode(1))
	assert.Equal(t, "2", s.RowCode(2), "past the code list the index itself is used")
}

func TestRowNameFallback(t *testing.T) {
	s := SectionISchema{RowNames: map[string]string{"1": "Cəmi"}}
	assert.Equal(t, "Cəmi", s.RowName("1"))
	assert.Equal(t, "Row 9", s.RowName("9"))
}
