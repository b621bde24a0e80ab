package handlers

import (
	"net/http"
	"strings"

	"bookkeeping/internal/auth"
	"bookkeeping/internal/websocket"
)

// WSEntries streams created-entry notifications for the authenticated user.
// Browsers cannot set headers on websocket upgrades, so a query token is
// accepted too.
func (h *Handler) WSEntries(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		authHeader := r.Header.Get("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			token = strings.TrimPrefix(authHeader, "Bearer ")
		}
	}
	if token == "" {
		respondError(w, http.StatusUnauthorized, "missing token")
		return
	}
	claims, err := auth.ParseToken(h.cfg.JWTSecret, token)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	websocket.ServeWS(w, r, h.hub, claims.UserID)
}
