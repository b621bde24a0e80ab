package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"bookkeeping/internal/chart"
	"bookkeeping/internal/middleware"
	"bookkeeping/internal/services"
	"bookkeeping/internal/subledgers"
	"bookkeeping/internal/tabular"
)

type importRequest struct {
	Dump string `json:"dump"`
	Type string `json:"type"`
}

// Import turns a pasted tabular dump into subledger records. The whole dump
// is one batch: any bad row rejects every row.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	created, err := h.importer.ImportDump(r.Context(), req.Dump, userID, req.Type)
	if err != nil {
		status, payload := importErrorResponse(err)
		respondJSON(w, status, payload)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{
		"created": created,
	})
}

func importErrorResponse(err error) (int, map[string]any) {
	var parseErr *tabular.ParseError
	if errors.As(err, &parseErr) {
		return http.StatusBadRequest, map[string]any{
			"error":  "invalid_dump",
			"detail": parseErr.Error(),
			"row":    parseErr.Row,
		}
	}
	var unknownType *subledgers.UnknownTypeError
	if errors.As(err, &unknownType) {
		return http.StatusBadRequest, map[string]any{
			"error":  "unknown_type",
			"detail": unknownType.Error(),
		}
	}
	if errors.Is(err, services.ErrMissingType) {
		return http.StatusBadRequest, map[string]any{
			"error":  "missing_type",
			"detail": err.Error(),
		}
	}
	var notFound *services.RelationNotFoundError
	if errors.As(err, &notFound) {
		return http.StatusBadRequest, map[string]any{
			"error":  "unknown_relation",
			"detail": err.Error(),
			"code":   notFound.Code,
		}
	}
	var missing *services.MissingFieldsError
	if errors.As(err, &missing) {
		return http.StatusBadRequest, map[string]any{
			"error":  "missing_fields",
			"detail": err.Error(),
			"fields": missing.Fields,
		}
	}
	var unbalanced *services.UnbalancedEntryError
	if errors.As(err, &unbalanced) {
		return http.StatusBadRequest, map[string]any{
			"error":    "unbalanced_entry",
			"detail":   err.Error(),
			"declared": unbalanced.Declared.String(),
			"computed": unbalanced.Computed.String(),
		}
	}
	var unknownAccount *chart.UnknownAccountError
	if errors.As(err, &unknownAccount) {
		return http.StatusBadRequest, map[string]any{
			"error":  "unknown_account",
			"detail": err.Error(),
		}
	}
	var persistence *services.PersistenceError
	if errors.As(err, &persistence) {
		return http.StatusInternalServerError, map[string]any{
			"error":  "persistence_failed",
			"detail": err.Error(),
		}
	}
	return http.StatusInternalServerError, map[string]any{
		"error": "import_failed",
	}
}
