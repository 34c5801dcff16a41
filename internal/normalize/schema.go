package normalize

import (
	_ "embed"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/azstat/report-cli/internal/model"
)

//go:embed schema.yaml
var schemaYAML []byte

// LayoutSchema describes how one form layout maps positional fields to the
// canonical report structure.
type LayoutSchema struct {
	SectionI  SectionISchema  `yaml:"section_i"`
	SectionII SectionIISchema `yaml:"section_ii"`
}

// SectionISchema fixes the row sequence and value columns of Section I.
type SectionISchema struct {
	Table         string            `yaml:"table"`
	RowCount      int               `yaml:"row_count"`
	CurrentField  string            `yaml:"current_field"`
	PreviousField string            `yaml:"previous_field"` // absent on the monthly layout
	CurrentAlt    string            `yaml:"current_alt"`    // exact alternative column
	CurrentLoose  string            `yaml:"current_loose"`  // contains-match fallback fragment
	RowCodes      []string          `yaml:"row_codes"`
	RowNames      map[string]string `yaml:"row_names"`
}

// SectionIISchema fixes the product table prefix and its code column.
// The remaining columns sit at fixed offsets after the code column.
type SectionIISchema struct {
	Table     string `yaml:"table"`
	CodeField string `yaml:"code_field"`
}

// CodeOffset returns the numeric offset of the code column, from which the
// unit and numeric columns are derived.
func (s SectionIISchema) CodeOffset() int {
	n, _ := strconv.Atoi(strings.TrimPrefix(s.CodeField, "j_idt"))
	return n
}

// RowCode returns the dotted code for a 0-based row index, falling back to
// the bare index for rows past the official code list.
func (s SectionISchema) RowCode(index int) string {
	if index < len(s.RowCodes) {
		return s.RowCodes[index]
	}
	return strconv.Itoa(index)
}

// RowName resolves the human label for a row code, with a generic
// placeholder for codes missing from the lookup table.
func (s SectionISchema) RowName(code string) string {
	if name, ok := s.RowNames[code]; ok {
		return name
	}
	return "Row " + code
}

func loadSchemas() (map[model.ReportType]LayoutSchema, error) {
	var wrapper struct {
		Layouts map[string]LayoutSchema `yaml:"layouts"`
	}
	if err := yaml.Unmarshal(schemaYAML, &wrapper); err != nil {
		return nil, eris.Wrap(err, "normalize: parse layout schema")
	}

	schemas := make(map[model.ReportType]LayoutSchema, len(wrapper.Layouts))
	for key, layout := range wrapper.Layouts {
		schemas[model.ReportType(key)] = layout
	}
	for _, rt := range []model.ReportType{model.ReportTypeAnnual, model.ReportTypeMonthly} {
		if _, ok := schemas[rt]; !ok {
			return nil, eris.Errorf("normalize: layout schema missing %s", rt)
		}
	}
	return schemas, nil
}
