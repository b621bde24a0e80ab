package middleware

import (
	"context"
	"net/http"
)

type StaffStore interface {
	IsStaff(ctx context.Context, userID string) (bool, error)
}

// RequireStaff guards routes that change the chart of accounts or
// entity registry. Must run after Auth.
func RequireStaff(staffStore StaffStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserIDFromContext(r.Context())
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			isStaff, err := staffStore.IsStaff(r.Context(), userID)
			if err != nil {
				http.Error(w, "unable to verify staff access", http.StatusInternalServerError)
				return
			}
			if !isStaff {
				http.Error(w, "staff privileges required", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
