package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"saveyourmoney/internal/core"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func writeErrorMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeError maps domain errors onto HTTP statuses. notFound is the
// entity-specific message emitted when the record does not exist.
func writeError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		writeErrorMessage(w, http.StatusNotFound, notFound)
	case core.IsValidation(err), core.IsBackup(err):
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
	case core.IsConflict(err):
		writeErrorMessage(w, http.StatusConflict, err.Error())
	default:
		slog.ErrorContext(r.Context(), "Request failed",
			"error", err, "method", r.Method, "url", r.URL.Path)
		writeErrorMessage(w, http.StatusInternalServerError, "Erro interno do servidor.")
	}
}

// writeInvalidData answers validation failures with the entity-specific
// "Dados inválidos para ..." prefix; any other error keeps the plain mapping.
func writeInvalidData(w http.ResponseWriter, r *http.Request, err error, entity, notFound string) {
	if core.IsValidation(err) {
		writeErrorMessage(w, http.StatusBadRequest, "Dados inválidos para "+entity+". "+err.Error())
		return
	}
	writeError(w, r, err, notFound)
}

// pathID reads the {id} segment. A non-numeric id behaves like a missing
// record, so callers answer with their own not-found message.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, core.ErrNotFound
	}
	return id, nil
}

// queryInt returns the first of the named query parameters that parses as a
// positive integer, or nil.
func queryInt(r *http.Request, names ...string) *int {
	for _, name := range names {
		raw := strings.TrimSpace(r.URL.Query().Get(name))
		if raw == "" {
			continue
		}
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			return &v
		}
	}
	return nil
}

// decodeBody parses the request body as a JSON object. Missing or malformed
// bodies yield an empty map, mirroring lenient clients that send no payload
// on deletes.
func decodeBody(r *http.Request) map[string]any {
	var data map[string]any
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil || data == nil {
		return map[string]any{}
	}
	return data
}
