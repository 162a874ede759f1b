package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/UkralStul/yatube-service/internal/auth"
	"github.com/UkralStul/yatube-service/internal/domain"
	"github.com/UkralStul/yatube-service/internal/storage"
)

type contextKey string

const viewerKey = contextKey("viewer")

// requireUser пропускает только запросы с токеном существующего пользователя.
func (h *Handler) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.FromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		user, err := h.Storage.GetUserByUsername(r.Context(), claims.Username)
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "unknown user")
			return
		}
		if err != nil {
			writeStorageError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), viewerKey, user)))
	})
}

func requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.FromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if !claims.Admin {
			writeError(w, http.StatusForbidden, "admin rights required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// viewer возвращает пользователя, установленного requireUser.
func viewer(ctx context.Context) *domain.User {
	u, _ := ctx.Value(viewerKey).(*domain.User)
	return u
}

// optionalViewer определяет пользователя на публичных страницах.
// Анонимный запрос и токен неизвестного пользователя дают nil.
func (h *Handler) optionalViewer(ctx context.Context) (*domain.User, error) {
	claims, ok := auth.FromContext(ctx)
	if !ok {
		return nil, nil
	}
	user, err := h.Storage.GetUserByUsername(ctx, claims.Username)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	return user, err
}
