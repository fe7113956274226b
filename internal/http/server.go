// Package http exposes the JSON API: CRUD for the seven entities, month
// reports in three formats, and backup export/restore.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"saveyourmoney/internal/services"
)

type Server struct {
	http.Server
	finance      *services.FinanceService
	reports      *services.ReportService
	backups      *services.BackupService
	rateLimiter  *rateLimiter
	shutdownOnce sync.Once
}

// NewServer configures all routes and returns a ready-to-run server.
func NewServer(addr string, finance *services.FinanceService, reports *services.ReportService, backups *services.BackupService) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		finance:     finance,
		reports:     reports,
		backups:     backups,
		rateLimiter: newRateLimiter(),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /categorias", s.with(s.handleListCategories))
	mux.HandleFunc("POST /categorias", s.with(s.handleCreateCategory))
	mux.HandleFunc("PUT /categorias/{id}", s.with(s.handleUpdateCategory))
	mux.HandleFunc("DELETE /categorias/{id}", s.with(s.handleDeleteCategory))

	mux.HandleFunc("GET /gastos", s.with(s.handleListExpenses))
	mux.HandleFunc("POST /gastos", s.with(s.handleCreateExpense))
	mux.HandleFunc("PUT /gastos/{id}", s.with(s.handleUpdateExpense))
	mux.HandleFunc("DELETE /gastos/{id}", s.with(s.handleDeleteExpense))

	mux.HandleFunc("GET /entradas", s.with(s.handleListIncomes))
	mux.HandleFunc("POST /entradas", s.with(s.handleCreateIncome))
	mux.HandleFunc("PUT /entradas/{id}", s.with(s.handleUpdateIncome))
	mux.HandleFunc("DELETE /entradas/{id}", s.with(s.handleDeleteIncome))

	mux.HandleFunc("GET /cartoes", s.with(s.handleListCards))
	mux.HandleFunc("POST /cartoes", s.with(s.handleCreateCard))
	mux.HandleFunc("PUT /cartoes/{id}", s.with(s.handleUpdateCard))
	mux.HandleFunc("DELETE /cartoes/{id}", s.with(s.handleDeleteCard))

	mux.HandleFunc("GET /parcelas", s.with(s.handleListInstallments))
	mux.HandleFunc("GET /faturas", s.with(s.handleInvoice))

	mux.HandleFunc("GET /metas", s.with(s.handleListGoals))
	mux.HandleFunc("POST /metas", s.with(s.handleCreateGoal))
	mux.HandleFunc("PUT /metas/{id}", s.with(s.handleUpdateGoal))
	mux.HandleFunc("DELETE /metas/{id}", s.with(s.handleDeleteGoal))

	mux.HandleFunc("GET /recorrencias", s.with(s.handleListRecurrences))
	mux.HandleFunc("POST /recorrencias", s.with(s.handleCreateRecurrence))
	mux.HandleFunc("PUT /recorrencias/{id}", s.with(s.handleUpdateRecurrence))
	mux.HandleFunc("DELETE /recorrencias/{id}", s.with(s.handleDeleteRecurrence))
	mux.HandleFunc("POST /recorrencias/aplicar", s.with(s.handleApplyRecurrence))

	mux.HandleFunc("GET /relatorios/mes", s.with(s.handleMonthReport))
	mux.HandleFunc("GET /relatorios/mes/csv", s.with(s.handleMonthReportCSV))
	mux.HandleFunc("GET /relatorios/mes/pdf", s.with(s.handleMonthReportPDF))

	mux.HandleFunc("GET /backup/exportar", s.with(s.handleBackupExport))
	mux.HandleFunc("POST /backup/restaurar", s.with(s.handleBackupRestore))

	return s
}

// with adds security headers, rate limiting, and request logging.
func (s *Server) with(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		// Rate limit mutations only; reads stay cheap and unthrottled.
		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", clientIP)
	}
}

type requestIDKey struct{}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Shutdown stops the rate limiter cleanup goroutine, then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
