package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"saveyourmoney/internal/services"
	"saveyourmoney/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	finance := services.NewFinanceService(store, nil)
	reports := services.NewReportService(store.Expenses(), store.Incomes(), store.Categories(), store.Goals())
	backups := services.NewBackupService(store)

	srv := NewServer(":0", finance, reports, backups)
	t.Cleanup(func() { srv.rateLimiter.stop() })
	return srv
}

func do(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []any {
	t.Helper()
	var out []any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestHealthAndReady(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /healthz status = %d", rec.Code)
	}
	if got := decode(t, rec)["status"]; got != "ok" {
		t.Errorf("health status = %v, want ok", got)
	}

	rec = do(t, srv, http.MethodGet, "/readyz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /readyz status = %d", rec.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer(t)
	rec := do(t, srv, http.MethodGet, "/categorias", nil)
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q", got)
	}
}

func TestCategoryLifecycle(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/categorias", map[string]any{"nome": "Casa", "descricao": "moradia"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /categorias status = %d: %s", rec.Code, rec.Body.String())
	}
	created := decode(t, rec)
	if created["id"] != 1.0 {
		t.Errorf("created id = %v", created["id"])
	}
	if created["name"] != "Casa" {
		t.Errorf("created name = %v", created["name"])
	}

	rec = do(t, srv, http.MethodGet, "/categorias", nil)
	if items := decodeList(t, rec); len(items) != 1 {
		t.Fatalf("GET /categorias returned %d items", len(items))
	}

	rec = do(t, srv, http.MethodPut, "/categorias/1", map[string]any{"name": "Moradia"})
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT /categorias/1 status = %d: %s", rec.Code, rec.Body.String())
	}
	if decode(t, rec)["name"] != "Moradia" {
		t.Errorf("updated name = %v", decode(t, rec)["name"])
	}

	rec = do(t, srv, http.MethodDelete, "/categorias/1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("DELETE /categorias/1 status = %d", rec.Code)
	}
	if decode(t, rec)["message"] != "Categoria excluída com sucesso." {
		t.Errorf("delete message = %v", decode(t, rec)["message"])
	}
}

func TestCategoryValidationAndNotFound(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/categorias", map[string]any{"descricao": "sem nome"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("POST without name status = %d", rec.Code)
	}
	if decode(t, rec)["error"] != "Nome da categoria é obrigatório." {
		t.Errorf("error = %v", decode(t, rec)["error"])
	}

	rec = do(t, srv, http.MethodPut, "/categorias/99", map[string]any{"name": "X"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("PUT missing category status = %d", rec.Code)
	}
	if decode(t, rec)["error"] != "Categoria não encontrada." {
		t.Errorf("error = %v", decode(t, rec)["error"])
	}
}

func TestCategoryDeleteConflict(t *testing.T) {
	srv := newTestServer(t)

	do(t, srv, http.MethodPost, "/categorias", map[string]any{"nome": "Casa"})
	rec := do(t, srv, http.MethodPost, "/gastos", map[string]any{
		"nome": "Aluguel", "valor": 1500, "mes": 3, "ano": 2026, "categoria_id": 1,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /gastos status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, srv, http.MethodDelete, "/categorias/1", nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("DELETE linked category status = %d", rec.Code)
	}
	if decode(t, rec)["error"] != "Não é possível excluir categoria com itens vinculados." {
		t.Errorf("error = %v", decode(t, rec)["error"])
	}
}

func TestExpenseCreateWithInlineRecurrence(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/gastos", map[string]any{
		"nome": "Academia", "valor": 120.0, "mes": 1, "ano": 2026,
		"recurring": map[string]any{"enabled": true, "frequency": "mensal", "occurrences": 6},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /gastos status = %d: %s", rec.Code, rec.Body.String())
	}
	created := decode(t, rec)
	if created["recurrence_id"] == nil {
		t.Fatal("inline recurring expense should carry recurrence_id")
	}

	rec = do(t, srv, http.MethodGet, "/gastos?recorrente=sim", nil)
	if items := decodeList(t, rec); len(items) != 1 {
		t.Errorf("recorrente=sim returned %d items", len(items))
	}
	rec = do(t, srv, http.MethodGet, "/gastos?recorrente=nao", nil)
	if items := decodeList(t, rec); len(items) != 0 {
		t.Errorf("recorrente=nao returned %d items", len(items))
	}
}

func TestExpenseValidationWrapped(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/gastos", map[string]any{
		"nome": "Teste", "valor": "abc", "mes": 1, "ano": 2026,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("POST invalid value status = %d", rec.Code)
	}
	if got := decode(t, rec)["error"]; got != "Dados inválidos para gasto. Valor inválido." {
		t.Errorf("error = %v", got)
	}

	rec = do(t, srv, http.MethodPost, "/gastos", map[string]any{
		"nome": "Teste", "valor": 10, "mes": 1, "ano": 2026, "categoria_id": 42,
	})
	if got := decode(t, rec)["error"]; got != "Dados inválidos para gasto. Categoria não encontrada." {
		t.Errorf("error = %v", got)
	}
}

func TestExpenseInstallmentErrorsUnwrapped(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/gastos", map[string]any{
		"nome": "Notebook", "valor": 3000, "mes": 1, "ano": 2026,
		"parcelas": map[string]any{"total": 10},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("POST installment without card status = %d", rec.Code)
	}
	if got := decode(t, rec)["error"]; got != "cartao_id é obrigatório para parcelas." {
		t.Errorf("error = %v", got)
	}
}

func TestExpenseDeleteCascadeMessage(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/gastos", map[string]any{
		"nome": "Streaming", "valor": 40, "mes": 1, "ano": 2026,
		"recurring": map[string]any{"enabled": true, "occurrences": 3},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, srv, http.MethodDelete, "/gastos/1", map[string]any{"scope": "all"})
	if rec.Code != http.StatusOK {
		t.Fatalf("DELETE status = %d: %s", rec.Code, rec.Body.String())
	}
	if got := decode(t, rec)["message"]; got != "Recorrência cancelada com sucesso." {
		t.Errorf("message = %v", got)
	}

	rec = do(t, srv, http.MethodGet, "/recorrencias", nil)
	if items := decodeList(t, rec); len(items) != 0 {
		t.Errorf("cancelled rule still listed: %d items", len(items))
	}
}

func TestExpenseDeleteInvalidScope(t *testing.T) {
	srv := newTestServer(t)
	do(t, srv, http.MethodPost, "/gastos", map[string]any{"nome": "Café", "valor": 8, "mes": 1, "ano": 2026})

	rec := do(t, srv, http.MethodDelete, "/gastos/1", map[string]any{"scope": "everything"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decode(t, rec)["error"]; got != "Escopo de cancelamento inválido. Use 'this', 'future' ou 'all'." {
		t.Errorf("error = %v", got)
	}
}

func TestIncomeAliasesAndDefaults(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/entradas", map[string]any{
		"nome": "Salário", "valor": "5200.50", "mes": 2, "ano": 2026,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /entradas status = %d: %s", rec.Code, rec.Body.String())
	}
	created := decode(t, rec)
	if created["confirmed"] != true {
		t.Errorf("confirmed default = %v, want true", created["confirmed"])
	}
	if created["value"] != 5200.50 {
		t.Errorf("value = %v", created["value"])
	}

	rec = do(t, srv, http.MethodPut, "/entradas/1", map[string]any{"confirmado": "nao"})
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT /entradas/1 status = %d: %s", rec.Code, rec.Body.String())
	}
	if decode(t, rec)["confirmed"] != false {
		t.Errorf("confirmed after update = %v", decode(t, rec)["confirmed"])
	}

	rec = do(t, srv, http.MethodDelete, "/entradas/1", nil)
	if decode(t, rec)["message"] != "Entrada excluída com sucesso." {
		t.Errorf("message = %v", decode(t, rec)["message"])
	}
}

func TestInvoiceRequiresParams(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/faturas?cartao_id=1", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("GET /faturas status = %d", rec.Code)
	}
	if got := decode(t, rec)["error"]; got != "cartao_id, mes e ano são obrigatórios." {
		t.Errorf("error = %v", got)
	}
}

func TestInvoiceTotals(t *testing.T) {
	srv := newTestServer(t)

	do(t, srv, http.MethodPost, "/cartoes", map[string]any{"nome": "Nubank", "limite": 3000})
	rec := do(t, srv, http.MethodPost, "/gastos", map[string]any{
		"nome": "Notebook", "valor": 100, "mes": 11, "ano": 2026,
		"parcelas": map[string]any{"cartao_id": 1, "total": 3},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, srv, http.MethodGet, "/faturas?cartao_id=1&mes=11&ano=2026", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /faturas status = %d: %s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	if body["total"] != 33.33 {
		t.Errorf("invoice total = %v, want 33.33", body["total"])
	}
	if len(body["parcelas"].([]any)) != 1 {
		t.Errorf("parcelas = %v", body["parcelas"])
	}

	rec = do(t, srv, http.MethodDelete, "/cartoes/1", nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("DELETE card with installments status = %d", rec.Code)
	}
}

func TestApplyRecurrenceEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/recorrencias/aplicar", map[string]any{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("apply without id status = %d", rec.Code)
	}
	if got := decode(t, rec)["error"]; got != "ID da recorrência é obrigatório." {
		t.Errorf("error = %v", got)
	}

	rec = do(t, srv, http.MethodPost, "/recorrencias/aplicar", map[string]any{"id": 42})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("apply missing rule status = %d", rec.Code)
	}

	do(t, srv, http.MethodPost, "/recorrencias", map[string]any{
		"tipo": "expense", "nome": "Aluguel", "valor": 1500,
		"mes_inicio": 1, "ano_inicio": 2026, "ocorrencias": 3,
	})
	rec = do(t, srv, http.MethodPost, "/recorrencias/aplicar", map[string]any{"id": 1})
	if rec.Code != http.StatusOK {
		t.Fatalf("apply status = %d: %s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	if len(body["expenses"].([]any)) != 3 {
		t.Errorf("expenses = %v", body["expenses"])
	}
	if len(body["incomes"].([]any)) != 0 {
		t.Errorf("incomes = %v", body["incomes"])
	}
}

func TestMonthReportEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/relatorios/mes", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("report without params status = %d", rec.Code)
	}
	if got := decode(t, rec)["error"]; got != "mes e ano são obrigatórios." {
		t.Errorf("error = %v", got)
	}

	do(t, srv, http.MethodPost, "/gastos", map[string]any{"nome": "Mercado", "valor": 300, "mes": 3, "ano": 2026})
	do(t, srv, http.MethodPost, "/entradas", map[string]any{"nome": "Salário", "valor": 5000, "mes": 3, "ano": 2026})

	rec = do(t, srv, http.MethodGet, "/relatorios/mes?mes=3&ano=2026", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("report status = %d: %s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	if body["total_expenses"] != 300.0 || body["total_incomes"] != 5000.0 || body["balance"] != 4700.0 {
		t.Errorf("report totals = %v", body)
	}

	rec = do(t, srv, http.MethodGet, "/relatorios/mes/csv?mes=3&ano=2026", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("csv status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("csv content type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "relatorio_03_2026.csv") {
		t.Errorf("csv disposition = %q", cd)
	}

	rec = do(t, srv, http.MethodGet, "/relatorios/mes/pdf?mes=3&ano=2026", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("pdf status = %d", rec.Code)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Error("pdf body missing %PDF header")
	}
}

func TestBackupRoundTripOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	do(t, srv, http.MethodPost, "/categorias", map[string]any{"nome": "Casa"})
	do(t, srv, http.MethodPost, "/gastos", map[string]any{"nome": "Aluguel", "valor": 1500, "mes": 1, "ano": 2026, "categoria_id": 1})

	rec := do(t, srv, http.MethodGet, "/backup/exportar", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("export status = %d", rec.Code)
	}
	var snapshot map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &snapshot); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if snapshot["version"] != "1.0" {
		t.Errorf("export version = %v", snapshot["version"])
	}

	rec = do(t, srv, http.MethodPost, "/backup/restaurar", snapshot)
	if rec.Code != http.StatusOK {
		t.Fatalf("restore status = %d: %s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	if body["message"] != "Backup restaurado com sucesso." {
		t.Errorf("restore message = %v", body["message"])
	}
	imported := body["imported"].(map[string]any)
	if imported["expenses"] != 1.0 || imported["categories"] != 1.0 {
		t.Errorf("imported counts = %v", imported)
	}
}

func TestBackupRestoreRejectsInvalidBody(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/backup/restaurar", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("restore invalid body status = %d", rec.Code)
	}
	if got := decode(t, rec)["error"]; got != "Envie um JSON de backup válido." {
		t.Errorf("error = %v", got)
	}

	rec = do(t, srv, http.MethodPost, "/backup/restaurar", map[string]any{
		"version": "2.0", "cards": []any{}, "expenses": []any{}, "categories": []any{},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("restore incompatible version status = %d", rec.Code)
	}
}

func TestGoalLifecycle(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/metas", map[string]any{
		"nome": "Teto", "valor_limite": 2000, "mes": 3, "ano": 2026,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /metas status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, srv, http.MethodPost, "/metas", map[string]any{
		"nome": "Inválida", "valor_limite": 100, "mes": 3, "ano": 2026, "categoria_id": 9,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("goal with missing category status = %d", rec.Code)
	}
	if got := decode(t, rec)["error"]; got != "Dados inválidos para meta. Categoria não encontrada." {
		t.Errorf("error = %v", got)
	}

	rec = do(t, srv, http.MethodDelete, "/metas/1", nil)
	if decode(t, rec)["message"] != "Meta excluída com sucesso." {
		t.Errorf("message = %v", decode(t, rec)["message"])
	}
}
