package http

import (
	"net/http"

	"saveyourmoney/internal/core"
	"saveyourmoney/internal/storage"
)

const cardNotFound = "Cartão não encontrado."

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	cards, err := s.finance.ListCards(r.Context())
	if err != nil {
		writeError(w, r, err, cardNotFound)
		return
	}
	if cards == nil {
		cards = []core.Card{}
	}
	writeJSON(w, http.StatusOK, cards)
}

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	card, err := cardCreateFromPayload(decodeBody(r))
	if err != nil {
		writeInvalidData(w, r, err, "cartão", cardNotFound)
		return
	}
	created, err := s.finance.CreateCard(r.Context(), card)
	if err != nil {
		writeInvalidData(w, r, err, "cartão", cardNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateCard(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err, cardNotFound)
		return
	}
	existing, err := s.finance.GetCard(r.Context(), id)
	if err != nil {
		writeError(w, r, err, cardNotFound)
		return
	}
	card, err := cardUpdateFromPayload(decodeBody(r), existing)
	if err != nil {
		writeInvalidData(w, r, err, "cartão", cardNotFound)
		return
	}
	updated, err := s.finance.UpdateCard(r.Context(), card)
	if err != nil {
		writeInvalidData(w, r, err, "cartão", cardNotFound)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err, cardNotFound)
		return
	}
	if err := s.finance.DeleteCard(r.Context(), id); err != nil {
		writeError(w, r, err, cardNotFound)
		return
	}
	writeMessage(w, http.StatusOK, "Cartão excluído com sucesso.")
}

// installments and invoices

func (s *Server) handleListInstallments(w http.ResponseWriter, r *http.Request) {
	filter := storage.InstallmentFilter{
		Month: queryInt(r, "mes"),
		Year:  queryInt(r, "ano"),
	}
	if cardID := queryInt(r, "cartao_id", "card_id"); cardID != nil {
		id := int64(*cardID)
		filter.CardID = &id
	}
	installments, err := s.finance.ListInstallments(r.Context(), filter)
	if err != nil {
		writeError(w, r, err, cardNotFound)
		return
	}
	if installments == nil {
		installments = []core.Installment{}
	}
	writeJSON(w, http.StatusOK, installments)
}

func (s *Server) handleInvoice(w http.ResponseWriter, r *http.Request) {
	cardID := queryInt(r, "cartao_id", "card_id")
	month := queryInt(r, "mes")
	year := queryInt(r, "ano")
	if cardID == nil || month == nil || year == nil {
		writeErrorMessage(w, http.StatusBadRequest, "cartao_id, mes e ano são obrigatórios.")
		return
	}

	total, installments, err := s.finance.Invoice(r.Context(), int64(*cardID), *month, *year)
	if err != nil {
		writeError(w, r, err, cardNotFound)
		return
	}
	if installments == nil {
		installments = []core.Installment{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total":    total,
		"parcelas": installments,
	})
}
