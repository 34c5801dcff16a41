package server

import (
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/azstat/report-cli/internal/compare"
	"github.com/azstat/report-cli/internal/form"
	"github.com/azstat/report-cli/internal/model"
	"github.com/azstat/report-cli/internal/store"
)

type errorResponse struct {
	Error string `json:"error"`
}

type uploadResponse struct {
	ID         int64                   `json:"id"`
	Report     *model.Report           `json:"report"`
	Validation model.ValidationResult  `json:"validation"`
	Comparison *model.ComparisonResult `json:"comparison,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "azstat-report-api",
		"docs":    "/api/health",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	maxBytes := int64(s.cfg.Upload.MaxFileSizeMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "fayl tapılmadı")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".html" && ext != ".htm" {
		writeError(w, http.StatusBadRequest, "yalnız .html və .htm faylları qəbul olunur")
		return
	}

	doc, err := form.Parse(io.LimitReader(file, maxBytes))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "HTML faylı oxuna bilmədi")
		return
	}

	report := s.normalizer.Normalize(doc)

	var previous *model.Report
	var comparison *model.ComparisonResult
	q := r.URL.Query()
	switch {
	case q.Get("compare_with") != "":
		prevID, err := strconv.ParseInt(q.Get("compare_with"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "compare_with parametri tam ədəd olmalıdır")
			return
		}
		prevRec, err := s.store.Get(r.Context(), prevID)
		if err != nil {
			zap.L().Error("load comparison record", zap.Int64("id", prevID), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "daxili xəta")
			return
		}
		if prevRec == nil {
			writeError(w, http.StatusNotFound, "müqayisə üçün hesabat tapılmadı")
			return
		}
		previous = &prevRec.Report
		comparison = compare.Diff(report, previous)
	case q.Get("compare") != "":
		wantCompare, err := strconv.ParseBool(q.Get("compare"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "compare parametri true və ya false olmalıdır")
			return
		}
		if wantCompare && report.Organization.Code != "" {
			prevRec, err := s.store.GetLatestBefore(r.Context(), report.Organization.Code, report.Type, report.Period)
			if err != nil {
				zap.L().Error("resolve previous record", zap.Error(err))
				writeError(w, http.StatusInternalServerError, "daxili xəta")
				return
			}
			if prevRec != nil {
				previous = &prevRec.Report
				comparison = compare.Diff(report, previous)
			}
		}
	}

	result := s.engine.Validate(report, previous)

	id, err := s.store.Save(r.Context(), report, result)
	if err != nil {
		zap.L().Error("save report", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "hesabat saxlanıla bilmədi")
		return
	}

	zap.L().Info("report uploaded",
		zap.Int64("id", id),
		zap.String("org_code", report.Organization.Code),
		zap.String("type", string(report.Type)),
		zap.String("period", report.Period),
		zap.String("status", string(result.Status)))

	writeJSON(w, http.StatusOK, uploadResponse{
		ID:         id,
		Report:     report,
		Validation: result,
		Comparison: comparison,
	})
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.Filter{
		OrgCode:    q.Get("org_code"),
		ReportType: model.ReportType(q.Get("report_type")),
		Status:     model.ValidationStatus(q.Get("status")),
	}
	if limit := q.Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit parametri tam ədəd olmalıdır")
			return
		}
		filter.Limit = n
	}

	records, err := s.store.History(r.Context(), filter)
	if err != nil {
		zap.L().Error("list reports", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "daxili xəta")
		return
	}
	if records == nil {
		records = []model.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "id parametri tam ədəd olmalıdır")
		return
	}

	rec, err := s.store.Get(r.Context(), id)
	if err != nil {
		zap.L().Error("get report", zap.Int64("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "daxili xəta")
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "hesabat tapılmadı")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteReport(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "id parametri tam ədəd olmalıdır")
		return
	}

	deleted, err := s.store.Delete(r.Context(), id)
	if err != nil {
		zap.L().Error("delete report", zap.Int64("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "daxili xəta")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "hesabat tapılmadı")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	currentID, err := strconv.ParseInt(q.Get("current"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "current parametri tam ədəd olmalıdır")
		return
	}
	var previousID int64
	if prev := q.Get("previous"); prev != "" {
		previousID, err = strconv.ParseInt(prev, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "previous parametri tam ədəd olmalıdır")
			return
		}
	}

	cmp, err := compare.Resolve(r.Context(), s.store, currentID, previousID)
	if eris.Is(err, compare.ErrNotFound) {
		writeError(w, http.StatusNotFound, "hesabat tapılmadı")
		return
	}
	if err != nil {
		zap.L().Error("compare reports", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "daxili xəta")
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats(r.Context(), r.URL.Query().Get("org_code"))
	if err != nil {
		zap.L().Error("stats", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "daxili xəta")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := strings.TrimSpace(q.Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "q parametri boş ola bilməz")
		return
	}
	limit := 0
	if l := q.Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit parametri tam ədəd olmalıdır")
			return
		}
		limit = n
	}

	records, err := s.store.Search(r.Context(), query, limit)
	if err != nil {
		zap.L().Error("search", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "daxili xəta")
		return
	}
	if records == nil {
		records = []model.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}
