package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azstat/report-cli/internal/model"
)

func newMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return &PostgresStore{pool: mock}, mock
}

func mockRecordRows(t *testing.T, id int64, report *model.Report, result model.ValidationResult) *pgxmock.Rows {
	t.Helper()
	enc, err := encodeRecord(report, result)
	require.NoError(t, err)
	return pgxmock.NewRows([]string{
		"id", "organization", "report_type", "report_period",
		"section_i", "section_ii", "validation", "captured_at", "stored_at",
	}).AddRow(id, enc.organization, string(report.Type), report.Period,
		enc.sectionI, enc.sectionII, enc.validation, report.CapturedAt, time.Now().UTC())
}

func TestPostgres_Save(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery("INSERT INTO reports").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(7)))

	id, err := st.Save(context.Background(), testReport("1234567", "2024"), passedResult())
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Get(t *testing.T) {
	st, mock := newMockStore(t)
	report := testReport("1234567", "2024")

	mock.ExpectQuery("SELECT (.+) FROM reports WHERE id").
		WithArgs(int64(7)).
		WillReturnRows(mockRecordRows(t, 7, report, passedResult()))

	rec, err := st.Get(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, int64(7), rec.ID)
	assert.Equal(t, "1234567", rec.Report.Organization.Code)
	assert.Equal(t, model.ReportTypeAnnual, rec.Report.Type)
	require.Len(t, rec.Report.Rows, 1)
	assert.Equal(t, 1000.0, rec.Report.Rows[0].CurrentValue)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetMissing(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery("SELECT (.+) FROM reports WHERE id").
		WithArgs(int64(99)).
		WillReturnError(pgx.ErrNoRows)

	rec, err := st.Get(context.Background(), 99)
	require.NoError(t, err)
	assert.Nil(t, rec)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetLatestBefore(t *testing.T) {
	st, mock := newMockStore(t)
	report := testReport("1234567", "2023")

	mock.ExpectQuery("SELECT (.+) FROM reports").
		WithArgs("1234567", "1-isth", "2024").
		WillReturnRows(mockRecordRows(t, 3, report, passedResult()))

	rec, err := st.GetLatestBefore(context.Background(), "1234567", model.ReportTypeAnnual, "2024")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "2023", rec.Report.Period)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_History(t *testing.T) {
	st, mock := newMockStore(t)
	report := testReport("1234567", "2024")

	mock.ExpectQuery("SELECT (.+) FROM reports WHERE true AND org_code").
		WithArgs("1234567", 100).
		WillReturnRows(mockRecordRows(t, 1, report, passedResult()))

	records, err := st.History(context.Background(), Filter{OrgCode: "1234567"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "1234567", records[0].Report.Organization.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Stats(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(pgxmock.NewRows([]string{"count", "passed", "warning", "failed"}).
			AddRow(5, 3, 1, 1))

	stats, err := st.Stats(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 3, stats.Passed)
	assert.Equal(t, 1, stats.Warnings)
	assert.Equal(t, 1, stats.Failed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Delete(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectExec("DELETE FROM reports").
		WithArgs(int64(7)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	deleted, err := st.Delete(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, deleted)

	mock.ExpectExec("DELETE FROM reports").
		WithArgs(int64(8)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	deleted, err = st.Delete(context.Background(), 8)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Migrate(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS reports").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, st.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
