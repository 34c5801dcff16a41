// Package store persists validated report records keyed by
// (organization code, report type, period) with replace-on-conflict
// semantics: re-submitting a key overwrites the stored record.
package store

import (
	"context"

	"github.com/azstat/report-cli/internal/model"
)

// Filter specifies criteria for listing records.
type Filter struct {
	OrgCode    string                 `json:"org_code,omitempty"`
	ReportType model.ReportType       `json:"report_type,omitempty"`
	Status     model.ValidationStatus `json:"status,omitempty"`
	Limit      int                    `json:"limit,omitempty"`
}

// Store defines the persistence contract for the validation pipeline.
// Lookup misses return (nil, nil); errors are reserved for store failures.
type Store interface {
	// Save inserts or replaces the record for the report's natural key and
	// returns the record id.
	Save(ctx context.Context, report *model.Report, result model.ValidationResult) (int64, error)
	Get(ctx context.Context, id int64) (*model.Record, error)
	// GetLatestBefore returns the stored record for the same organization
	// and type with the greatest period strictly before the given one.
	GetLatestBefore(ctx context.Context, orgCode string, reportType model.ReportType, period string) (*model.Record, error)
	History(ctx context.Context, filter Filter) ([]model.Record, error)
	Search(ctx context.Context, query string, limit int) ([]model.Record, error)
	Stats(ctx context.Context, orgCode string) (*model.Stats, error)
	Delete(ctx context.Context, id int64) (bool, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
