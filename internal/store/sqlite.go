package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/azstat/report-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL
// mode. WAL gives the single-writer, multi-reader serialization the record
// store relies on.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS reports (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	org_code      TEXT NOT NULL,
	org_name      TEXT,
	organization  TEXT NOT NULL,
	report_type   TEXT NOT NULL,
	report_period TEXT NOT NULL,
	section_i     TEXT NOT NULL,
	section_ii    TEXT NOT NULL,
	validation    TEXT NOT NULL,
	status        TEXT NOT NULL,
	captured_at   DATETIME NOT NULL,
	stored_at     DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE(org_code, report_type, report_period)
);

CREATE INDEX IF NOT EXISTS idx_reports_org_period ON reports(org_code, report_type, report_period);
CREATE INDEX IF NOT EXISTS idx_reports_stored_at ON reports(stored_at DESC);
CREATE INDEX IF NOT EXISTS idx_reports_status ON reports(status);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const sqliteRecordColumns = `id, organization, report_type, report_period, section_i, section_ii, validation, captured_at, stored_at`

func (s *SQLiteStore) Save(ctx context.Context, report *model.Report, result model.ValidationResult) (int64, error) {
	enc, err := encodeRecord(report, result)
	if err != nil {
		return 0, err
	}

	var id int64
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO reports (
			org_code, org_name, organization, report_type, report_period,
			section_i, section_ii, validation, status, captured_at, stored_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(org_code, report_type, report_period) DO UPDATE SET
			org_name    = excluded.org_name,
			organization = excluded.organization,
			section_i   = excluded.section_i,
			section_ii  = excluded.section_ii,
			validation  = excluded.validation,
			status      = excluded.status,
			captured_at = excluded.captured_at,
			stored_at   = excluded.stored_at
		RETURNING id`,
		report.Organization.Code, report.Organization.Name, enc.organization,
		string(report.Type), report.Period,
		enc.sectionI, enc.sectionII, enc.validation,
		string(result.Status), report.CapturedAt, time.Now().UTC(),
	).Scan(&id)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: save report")
	}
	return id, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id int64) (*model.Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sqliteRecordColumns+` FROM reports WHERE id = ?`, id)
	return scanRecord(row)
}

func (s *SQLiteStore) GetLatestBefore(ctx context.Context, orgCode string, reportType model.ReportType, period string) (*model.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+sqliteRecordColumns+` FROM reports
		WHERE org_code = ? AND report_type = ? AND report_period < ?
		ORDER BY report_period DESC
		LIMIT 1`,
		orgCode, string(reportType), period)
	return scanRecord(row)
}

func (s *SQLiteStore) History(ctx context.Context, filter Filter) ([]model.Record, error) {
	query := `SELECT ` + sqliteRecordColumns + ` FROM reports WHERE 1=1`
	var args []any

	if filter.OrgCode != "" {
		query += ` AND org_code = ?`
		args = append(args, filter.OrgCode)
	}
	if filter.ReportType != "" {
		query += ` AND report_type = ?`
		args = append(args, string(filter.ReportType))
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY stored_at DESC LIMIT ?`
	args = append(args, normalizeLimit(filter.Limit))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: history")
	}
	defer rows.Close()
	return collectRecords(rows, "sqlite: history")
}

func (s *SQLiteStore) Search(ctx context.Context, query string, limit int) ([]model.Record, error) {
	term := "%" + query + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+sqliteRecordColumns+` FROM reports
		WHERE org_code LIKE ? OR org_name LIKE ?
		ORDER BY stored_at DESC
		LIMIT ?`,
		term, term, normalizeLimit(limit))
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: search")
	}
	defer rows.Close()
	return collectRecords(rows, "sqlite: search")
}

func (s *SQLiteStore) Stats(ctx context.Context, orgCode string) (*model.Stats, error) {
	query := `
		SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN status = 'passed' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'warning' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0)
		FROM reports`
	var args []any
	if orgCode != "" {
		query += ` WHERE org_code = ?`
		args = append(args, orgCode)
	}

	stats := &model.Stats{OrganizationCode: orgCode}
	err := s.db.QueryRowContext(ctx, query, args...).
		Scan(&stats.Total, &stats.Passed, &stats.Warnings, &stats.Failed)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: stats")
	}

	if orgCode != "" && stats.Total > 0 {
		row := s.db.QueryRowContext(ctx, `
			SELECT `+sqliteRecordColumns+` FROM reports
			WHERE org_code = ? ORDER BY stored_at DESC LIMIT 1`, orgCode)
		last, err := scanRecord(row)
		if err != nil {
			return nil, err
		}
		stats.LastRecord = last
	}

	return stats, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reports WHERE id = ?`, id)
	if err != nil {
		return false, eris.Wrapf(err, "sqlite: delete record %d", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, eris.Wrap(err, "sqlite: rows affected")
	}
	return n > 0, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRecord(row scannable) (*model.Record, error) {
	var rec model.Record
	var orgJSON, sectionI, sectionII, validation, reportType string

	err := row.Scan(&rec.ID, &orgJSON, &reportType, &rec.Report.Period,
		&sectionI, &sectionII, &validation, &rec.Report.CapturedAt, &rec.StoredAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "store: scan record")
	}

	if err := decodeRecord(&rec, orgJSON, reportType, sectionI, sectionII, validation); err != nil {
		return nil, err
	}
	return &rec, nil
}

func collectRecords(rows *sql.Rows, op string) ([]model.Record, error) {
	var records []model.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, eris.Wrap(rows.Err(), op)
}
