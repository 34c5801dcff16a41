package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azstat/report-cli/internal/config"
	"github.com/azstat/report-cli/internal/model"
	"github.com/azstat/report-cli/internal/store"
)

func testConfig() config.Config {
	return config.Config{
		Server: config.ServerConfig{Port: 0, UploadRateLimit: 100, UploadBurst: 100},
		Upload: config.UploadConfig{MaxFileSizeMB: 1},
		Validation: config.ValidationConfig{
			AnomalyThreshold:     0.5,
			SoldOverageRatio:     1.1,
			OvercommitRatio:      1.5,
			StockBalanceAbsTol:   1.0,
			DominanceShare:       0.8,
			ZeroedRowFloor:       1000.0,
			AnomalyProductsShown: 3,
		},
	}
}

func newTestServer(t *testing.T, cfg config.Config) (*Server, store.Store) {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "reports.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))

	srv, err := New(cfg, st)
	require.NoError(t, err)
	return srv, st
}

const annualPage = `<html><body>
<p>Forma 03104055</p>
<input name="organization.code" value="1234567"/>
<input name="organization.name" value="Test MMC"/>
<input name="reportYear" value="2024"/>
<input name="tab1:0:j_idt51:j_idt55" value="1500,5"/>
</body></html>`

func annualPageFor(year, rowValue string) string {
	return fmt.Sprintf(`<html><body>
<p>Forma 03104055</p>
<input name="organization.code" value="1234567"/>
<input name="organization.name" value="Test MMC"/>
<input name="reportYear" value="%s"/>
<input name="tab1:0:j_idt51:j_idt55" value="%s"/>
</body></html>`, year, rowValue)
}

func multipartUpload(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &body, w.FormDataContentType()
}

func doUpload(t *testing.T, srv *Server, filename, content, query string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartUpload(t, filename, content)
	req := httptest.NewRequest(http.MethodPost, "/api/upload"+query, body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestServer_Health(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestServer_Upload(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	rec := doUpload(t, srv, "report.html", annualPage, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp uploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotZero(t, resp.ID)
	assert.Equal(t, "1234567", resp.Report.Organization.Code)
	assert.Equal(t, model.ReportTypeAnnual, resp.Report.Type)
	assert.Equal(t, model.StatusPassed, resp.Validation.Status)
	assert.Nil(t, resp.Comparison)
}

func TestServer_UploadRejectsExtension(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	rec := doUpload(t, srv, "report.pdf", "not html", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_UploadMissingFile(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_UploadWithExplicitComparison(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	first := doUpload(t, srv, "report.html", annualPage, "")
	require.Equal(t, http.StatusOK, first.Code)
	var firstResp uploadResponse
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &firstResp))

	second := doUpload(t, srv, "report.html", annualPage, fmt.Sprintf("?compare_with=%d", firstResp.ID))
	require.Equal(t, http.StatusOK, second.Code)
	var secondResp uploadResponse
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &secondResp))
	require.NotNil(t, secondResp.Comparison)
	assert.Empty(t, secondResp.Comparison.SectionIChanges, "identical uploads diff empty")
}

func TestServer_UploadCompareMissingRecord(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	rec := doUpload(t, srv, "report.html", annualPage, "?compare_with=999")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_UploadCompareFlagAutoResolves(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	first := doUpload(t, srv, "report.html", annualPageFor("2023", "500"), "")
	require.Equal(t, http.StatusOK, first.Code)

	second := doUpload(t, srv, "report.html", annualPage, "?compare=true")
	require.Equal(t, http.StatusOK, second.Code, second.Body.String())
	var resp uploadResponse
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &resp))
	require.NotNil(t, resp.Comparison, "flag resolves the latest earlier period")
	assert.NotEmpty(t, resp.Comparison.SectionIChanges)
	assert.Greater(t, resp.Validation.InfoCount, 0, "resolved baseline feeds the anomaly checks")

	// Without the flag the same upload gets no baseline at all.
	third := doUpload(t, srv, "report.html", annualPage, "")
	require.Equal(t, http.StatusOK, third.Code)
	var plain uploadResponse
	require.NoError(t, json.Unmarshal(third.Body.Bytes(), &plain))
	assert.Nil(t, plain.Comparison)
	assert.Zero(t, plain.Validation.InfoCount)
}

func TestServer_UploadCompareFlagNoPrevious(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	rec := doUpload(t, srv, "report.html", annualPage, "?compare=1")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp uploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Nil(t, resp.Comparison, "nothing stored to compare against")
}

func TestServer_UploadCompareFlagMalformed(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	rec := doUpload(t, srv, "report.html", annualPage, "?compare=maybe")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_UploadRateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.Server.UploadRateLimit = 0
	cfg.Server.UploadBurst = 1
	srv, _ := newTestServer(t, cfg)

	first := doUpload(t, srv, "report.html", annualPage, "")
	require.Equal(t, http.StatusOK, first.Code)

	second := doUpload(t, srv, "report.html", annualPage, "")
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestServer_GetReport(t *testing.T) {
	srv, st := newTestServer(t, testConfig())

	report := &model.Report{
		Organization: model.Organization{Code: "1234567"},
		Type:         model.ReportTypeAnnual,
		Period:       "2024",
	}
	id, err := st.Save(context.Background(), report, model.NewValidationResult(nil))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/reports/%d", id), nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got model.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, id, got.ID)
}

func TestServer_GetReportNotFound(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/reports/999", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_CompareNotFound(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/reports/compare?current=999", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_ListReports(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	rec := doUpload(t, srv, "report.html", annualPage, "")
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/reports?org_code=1234567", nil)
	out := httptest.NewRecorder()
	srv.Handler().ServeHTTP(out, req)

	require.Equal(t, http.StatusOK, out.Code)
	var records []model.Record
	require.NoError(t, json.Unmarshal(out.Body.Bytes(), &records))
	assert.Len(t, records, 1)
}

func TestServer_SearchRequiresQuery(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/search", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_Stats(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	rec := doUpload(t, srv, "report.html", annualPage, "")
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	out := httptest.NewRecorder()
	srv.Handler().ServeHTTP(out, req)

	require.Equal(t, http.StatusOK, out.Code)
	var stats model.Stats
	require.NoError(t, json.Unmarshal(out.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.Passed)
}

func TestServer_DeleteReport(t *testing.T) {
	srv, st := newTestServer(t, testConfig())

	id, err := st.Save(context.Background(), &model.Report{
		Organization: model.Organization{Code: "1234567"},
		Type:         model.ReportTypeAnnual,
		Period:       "2024",
	}, model.NewValidationResult(nil))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/reports/%d", id), nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/reports/%d", id), nil)
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
