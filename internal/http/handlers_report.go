package http

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"saveyourmoney/internal/report"
)

const reportParamsRequired = "mes e ano são obrigatórios."

func (s *Server) reportPeriod(r *http.Request) (month, year int, ok bool) {
	m := queryInt(r, "mes")
	y := queryInt(r, "ano")
	if m == nil || y == nil {
		return 0, 0, false
	}
	return *m, *y, true
}

func (s *Server) handleMonthReport(w http.ResponseWriter, r *http.Request) {
	month, year, ok := s.reportPeriod(r)
	if !ok {
		writeErrorMessage(w, http.StatusBadRequest, reportParamsRequired)
		return
	}
	rep, err := s.reports.BuildMonthReport(r.Context(), month, year)
	if err != nil {
		writeError(w, r, err, reportParamsRequired)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleMonthReportCSV(w http.ResponseWriter, r *http.Request) {
	month, year, ok := s.reportPeriod(r)
	if !ok {
		writeErrorMessage(w, http.StatusBadRequest, reportParamsRequired)
		return
	}
	rep, err := s.reports.BuildMonthReport(r.Context(), month, year)
	if err != nil {
		writeError(w, r, err, reportParamsRequired)
		return
	}

	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, rep); err != nil {
		writeError(w, r, err, reportParamsRequired)
		return
	}
	sendAttachment(w, "text/csv; charset=utf-8", report.FileName(month, year, "csv"), buf.Bytes())
}

func (s *Server) handleMonthReportPDF(w http.ResponseWriter, r *http.Request) {
	month, year, ok := s.reportPeriod(r)
	if !ok {
		writeErrorMessage(w, http.StatusBadRequest, reportParamsRequired)
		return
	}
	rep, err := s.reports.BuildMonthReport(r.Context(), month, year)
	if err != nil {
		writeError(w, r, err, reportParamsRequired)
		return
	}

	var buf bytes.Buffer
	if err := report.WritePDF(&buf, rep, time.Now()); err != nil {
		writeError(w, r, err, reportParamsRequired)
		return
	}
	sendAttachment(w, "application/pdf", report.FileName(month, year, "pdf"), buf.Bytes())
}

func sendAttachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
