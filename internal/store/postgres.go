package store

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/azstat/report-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it
// for unit tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

const pgRecordColumns = `id, organization, report_type, report_period, section_i, section_ii, validation, captured_at, stored_at`

// preparedStatements lists queries to prepare on each new connection for
// the hot paths of the pipeline.
var preparedStatements = map[string]string{
	"save_report": `INSERT INTO reports (
			org_code, org_name, organization, report_type, report_period,
			section_i, section_ii, validation, status, captured_at, stored_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (org_code, report_type, report_period) DO UPDATE SET
			org_name = excluded.org_name, organization = excluded.organization,
			section_i = excluded.section_i, section_ii = excluded.section_ii,
			validation = excluded.validation, status = excluded.status,
			captured_at = excluded.captured_at, stored_at = excluded.stored_at
		RETURNING id`,
	"get_report": `SELECT ` + pgRecordColumns + ` FROM reports WHERE id = $1`,
	"get_latest_before": `SELECT ` + pgRecordColumns + ` FROM reports
		WHERE org_code = $1 AND report_type = $2 AND report_period < $3
		ORDER BY report_period DESC LIMIT 1`,
	"delete_report": `DELETE FROM reports WHERE id = $1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const pgMigration = `
CREATE TABLE IF NOT EXISTS reports (
	id            BIGSERIAL PRIMARY KEY,
	org_code      TEXT NOT NULL,
	org_name      TEXT,
	organization  TEXT NOT NULL,
	report_type   TEXT NOT NULL,
	report_period TEXT NOT NULL,
	section_i     TEXT NOT NULL,
	section_ii    TEXT NOT NULL,
	validation    TEXT NOT NULL,
	status        TEXT NOT NULL,
	captured_at   TIMESTAMPTZ NOT NULL,
	stored_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (org_code, report_type, report_period)
);

CREATE INDEX IF NOT EXISTS idx_reports_org_period ON reports (org_code, report_type, report_period);
CREATE INDEX IF NOT EXISTS idx_reports_stored_at ON reports (stored_at DESC);
CREATE INDEX IF NOT EXISTS idx_reports_status ON reports (status);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, pgMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, report *model.Report, result model.ValidationResult) (int64, error) {
	enc, err := encodeRecord(report, result)
	if err != nil {
		return 0, err
	}

	var id int64
	err = s.pool.QueryRow(ctx, preparedStatements["save_report"],
		report.Organization.Code, report.Organization.Name, enc.organization,
		string(report.Type), report.Period,
		enc.sectionI, enc.sectionII, enc.validation,
		string(result.Status), report.CapturedAt, time.Now().UTC(),
	).Scan(&id)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: save report")
	}
	return id, nil
}

func (s *PostgresStore) Get(ctx context.Context, id int64) (*model.Record, error) {
	return s.scanOne(s.pool.QueryRow(ctx, preparedStatements["get_report"], id))
}

func (s *PostgresStore) GetLatestBefore(ctx context.Context, orgCode string, reportType model.ReportType, period string) (*model.Record, error) {
	return s.scanOne(s.pool.QueryRow(ctx, preparedStatements["get_latest_before"],
		orgCode, string(reportType), period))
}

func (s *PostgresStore) History(ctx context.Context, filter Filter) ([]model.Record, error) {
	query := `SELECT ` + pgRecordColumns + ` FROM reports WHERE true`
	var args []any

	if filter.OrgCode != "" {
		args = append(args, filter.OrgCode)
		query += ` AND org_code = $` + strconv.Itoa(len(args))
	}
	if filter.ReportType != "" {
		args = append(args, string(filter.ReportType))
		query += ` AND report_type = $` + strconv.Itoa(len(args))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += ` AND status = $` + strconv.Itoa(len(args))
	}
	args = append(args, normalizeLimit(filter.Limit))
	query += ` ORDER BY stored_at DESC LIMIT $` + strconv.Itoa(len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: history")
	}
	defer rows.Close()
	return pgCollectRecords(rows, "postgres: history")
}

func (s *PostgresStore) Search(ctx context.Context, query string, limit int) ([]model.Record, error) {
	term := "%" + query + "%"
	rows, err := s.pool.Query(ctx, `
		SELECT `+pgRecordColumns+` FROM reports
		WHERE org_code ILIKE $1 OR org_name ILIKE $2
		ORDER BY stored_at DESC
		LIMIT $3`,
		term, term, normalizeLimit(limit))
	if err != nil {
		return nil, eris.Wrap(err, "postgres: search")
	}
	defer rows.Close()
	return pgCollectRecords(rows, "postgres: search")
}

func (s *PostgresStore) Stats(ctx context.Context, orgCode string) (*model.Stats, error) {
	query := `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE status = 'passed'),
			COUNT(*) FILTER (WHERE status = 'warning'),
			COUNT(*) FILTER (WHERE status = 'failed')
		FROM reports`
	var args []any
	if orgCode != "" {
		query += ` WHERE org_code = $1`
		args = append(args, orgCode)
	}

	stats := &model.Stats{OrganizationCode: orgCode}
	err := s.pool.QueryRow(ctx, query, args...).
		Scan(&stats.Total, &stats.Passed, &stats.Warnings, &stats.Failed)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: stats")
	}

	if orgCode != "" && stats.Total > 0 {
		last, err := s.scanOne(s.pool.QueryRow(ctx, `
			SELECT `+pgRecordColumns+` FROM reports
			WHERE org_code = $1 ORDER BY stored_at DESC LIMIT 1`, orgCode))
		if err != nil {
			return nil, err
		}
		stats.LastRecord = last
	}

	return stats, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := s.pool.Exec(ctx, preparedStatements["delete_report"], id)
	if err != nil {
		return false, eris.Wrapf(err, "postgres: delete record %d", id)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) scanOne(row pgx.Row) (*model.Record, error) {
	var rec model.Record
	var orgJSON, sectionI, sectionII, validation, reportType string

	err := row.Scan(&rec.ID, &orgJSON, &reportType, &rec.Report.Period,
		&sectionI, &sectionII, &validation, &rec.Report.CapturedAt, &rec.StoredAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan record")
	}

	if err := decodeRecord(&rec, orgJSON, reportType, sectionI, sectionII, validation); err != nil {
		return nil, err
	}
	return &rec, nil
}

func pgCollectRecords(rows pgx.Rows, op string) ([]model.Record, error) {
	var records []model.Record
	for rows.Next() {
		var rec model.Record
		var orgJSON, sectionI, sectionII, validation, reportType string
		if err := rows.Scan(&rec.ID, &orgJSON, &reportType, &rec.Report.Period,
			&sectionI, &sectionII, &validation, &rec.Report.CapturedAt, &rec.StoredAt); err != nil {
			return nil, eris.Wrap(err, op)
		}
		if err := decodeRecord(&rec, orgJSON, reportType, sectionI, sectionII, validation); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, eris.Wrap(rows.Err(), op)
}

