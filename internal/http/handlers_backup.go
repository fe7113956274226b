package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"saveyourmoney/internal/core"
)

func (s *Server) handleBackupExport(w http.ResponseWriter, r *http.Request) {
	snap, err := s.backups.Export(r.Context())
	if err != nil {
		writeError(w, r, err, "Backup não encontrado.")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleBackupRestore(w http.ResponseWriter, r *http.Request) {
	var payload any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload == nil {
		writeErrorMessage(w, http.StatusBadRequest, "Envie um JSON de backup válido.")
		return
	}

	counts, err := s.backups.Restore(r.Context(), payload)
	if err != nil {
		if core.IsBackup(err) || core.IsValidation(err) {
			writeErrorMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Backup restore failed", "error", err)
		writeErrorMessage(w, http.StatusInternalServerError, "Não foi possível restaurar o backup. Verifique se o arquivo é válido.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "Backup restaurado com sucesso.",
		"imported": counts,
	})
}
