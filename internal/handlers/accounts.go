package handlers

import (
	"encoding/json"
	"net/http"

	"bookkeeping/internal/models"
	"bookkeeping/internal/store"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accounts.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load accounts")
		return
	}
	normalized := make([]map[string]any, 0, len(accounts))
	for _, account := range accounts {
		normalized = append(normalized, map[string]any{
			"id":          account.ID,
			"code":        account.Code(),
			"element":     account.Element,
			"number":      account.Number,
			"name":        account.Name,
			"special":     account.Special,
			"tags":        account.Tags,
			"description": account.Description,
		})
	}
	respondJSON(w, http.StatusOK, normalized)
}

type createAccountRequest struct {
	Element     string   `json:"element"`
	Number      string   `json:"number"`
	Name        string   `json:"name"`
	Special     string   `json:"special"`
	Tags        []string `json:"tags"`
	Description string   `json:"description"`
}

func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	element := models.Element(req.Element)
	if !element.Valid() {
		respondError(w, http.StatusBadRequest, "invalid element")
		return
	}
	if len(req.Number) != 4 || req.Name == "" {
		respondError(w, http.StatusBadRequest, "number and name are required")
		return
	}
	accountID := uuid.NewString()
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		return h.accounts.Create(r.Context(), tx, store.AccountInput{
			ID:          accountID,
			Element:     element,
			Number:      req.Number,
			Name:        req.Name,
			Special:     models.SpecialAccount(req.Special),
			Tags:        req.Tags,
			Description: req.Description,
		})
	})
	if err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			respondError(w, http.StatusConflict, "account code already exists")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to create account")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"id": accountID})
}
