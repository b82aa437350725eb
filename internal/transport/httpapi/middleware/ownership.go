package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nexfin/nexfin/internal/platform/account"
)

// AccountIDKey is the context key for the verified account ID
const AccountIDKey ContextKey = "account_id"

// AccountOwnership verifies that the account named by the {accountID} URL
// parameter belongs to the authenticated user, and stores the parsed ID in
// the request context. Must run after JWTMiddleware.
func AccountOwnership(accounts *account.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := GetUserIDFromContext(r.Context())
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			accountID, err := uuid.Parse(chi.URLParam(r, "accountID"))
			if err != nil {
				http.Error(w, "invalid account ID", http.StatusBadRequest)
				return
			}

			if _, err := accounts.GetOwned(r.Context(), accountID, userID); err != nil {
				switch {
				case errors.Is(err, account.ErrAccountNotFound):
					http.Error(w, "account not found", http.StatusNotFound)
				case errors.Is(err, account.ErrNotOwner):
					http.Error(w, "forbidden", http.StatusForbidden)
				default:
					http.Error(w, "internal server error", http.StatusInternalServerError)
				}
				return
			}

			ctx := context.WithValue(r.Context(), AccountIDKey, accountID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetAccountIDFromContext extracts the verified account ID from the request
// context
func GetAccountIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	accountID, ok := ctx.Value(AccountIDKey).(uuid.UUID)
	return accountID, ok
}
