package handlers

import (
	"encoding/json"
	"net/http"

	"bookkeeping/internal/services"
	"bookkeeping/internal/validator"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

func (h *Handler) ListEntities(w http.ResponseWriter, r *http.Request) {
	entities, err := h.entities.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load entities")
		return
	}
	respondJSON(w, http.StatusOK, entities)
}

type createEntityRequest struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

func (h *Handler) CreateEntity(w http.ResponseWriter, r *http.Request) {
	var req createEntityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	code := services.CleanCode(req.Code)
	if err := validator.ValidateEntityCode(code); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	entityID := uuid.NewString()
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		return h.entities.Create(r.Context(), tx, entityID, req.Name, code)
	})
	if err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			respondError(w, http.StatusConflict, "entity code already exists")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to create entity")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"id": entityID, "code": code})
}
