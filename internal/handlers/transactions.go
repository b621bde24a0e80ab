package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"bookkeeping/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
)

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	query := r.URL.Query()
	source := query.Get("source")
	page := parseInt(query.Get("page"), 1)
	limit := parseInt(query.Get("limit"), 20)
	offset := (page - 1) * limit
	transactions, err := h.transactions.ListByUser(r.Context(), userID, source, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load transactions")
		return
	}
	respondJSON(w, http.StatusOK, transactions)
}

func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	transactionID := chi.URLParam(r, "id")
	transaction, err := h.transactions.GetByID(r.Context(), transactionID)
	if err != nil {
		if err == sql.ErrNoRows {
			respondError(w, http.StatusNotFound, "transaction not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load transaction")
		return
	}
	if transaction.UserID != userID {
		respondError(w, http.StatusForbidden, "access denied")
		return
	}
	lines, err := h.ledger.ListByTransaction(r.Context(), transactionID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load lines")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"transaction": transaction,
		"lines":       lines,
	})
}

type updateNoteRequest struct {
	Note string `json:"note"`
}

func (h *Handler) UpdateTransactionNote(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	transactionID := chi.URLParam(r, "id")
	var req updateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	transaction, err := h.transactions.GetByID(r.Context(), transactionID)
	if err != nil {
		if err == sql.ErrNoRows {
			respondError(w, http.StatusNotFound, "transaction not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load transaction")
		return
	}
	if transaction.UserID != userID {
		respondError(w, http.StatusForbidden, "access denied")
		return
	}
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		return h.transactions.UpdateNote(r.Context(), tx, transactionID, req.Note)
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update note")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"id": transactionID})
}
