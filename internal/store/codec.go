package store

import (
	"encoding/json"

	"github.com/rotisserie/eris"

	"github.com/azstat/report-cli/internal/model"
)

// encodedRecord holds the JSON columns of a record row, shared by both
// drivers.
type encodedRecord struct {
	organization string
	sectionI     string
	sectionII    string
	validation   string
}

func encodeRecord(report *model.Report, result model.ValidationResult) (*encodedRecord, error) {
	orgJSON, err := json.Marshal(report.Organization)
	if err != nil {
		return nil, eris.Wrap(err, "store: marshal organization")
	}
	sectionI, err := json.Marshal(report.Rows)
	if err != nil {
		return nil, eris.Wrap(err, "store: marshal section I")
	}
	sectionII, err := json.Marshal(report.Products)
	if err != nil {
		return nil, eris.Wrap(err, "store: marshal section II")
	}
	validation, err := json.Marshal(result)
	if err != nil {
		return nil, eris.Wrap(err, "store: marshal validation result")
	}
	return &encodedRecord{
		organization: string(orgJSON),
		sectionI:     string(sectionI),
		sectionII:    string(sectionII),
		validation:   string(validation),
	}, nil
}

func decodeRecord(rec *model.Record, orgJSON, reportType, sectionI, sectionII, validation string) error {
	rec.Report.Type = model.ReportType(reportType)
	if err := json.Unmarshal([]byte(orgJSON), &rec.Report.Organization); err != nil {
		return eris.Wrap(err, "store: unmarshal organization")
	}
	if err := json.Unmarshal([]byte(sectionI), &rec.Report.Rows); err != nil {
		return eris.Wrap(err, "store: unmarshal section I")
	}
	if err := json.Unmarshal([]byte(sectionII), &rec.Report.Products); err != nil {
		return eris.Wrap(err, "store: unmarshal section II")
	}
	if err := json.Unmarshal([]byte(validation), &rec.Result); err != nil {
		return eris.Wrap(err, "store: unmarshal validation result")
	}
	return nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 100
	}
	return limit
}
