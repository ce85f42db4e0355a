package rest

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/James-Mirambel/Terratrade-sub001/internal/core/domain"
)

// Кастомный тип для ключа контекста, чтобы избежать коллизий.
type contextKey string

const actorKey = contextKey("actor")

// AuthMiddleware извлекает аутентифицированного пользователя из заголовков,
// которые проставляет API Gateway после проверки токена.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userIDStr := r.Header.Get("X-User-ID")
		if userIDStr == "" {
			WriteJSONError(w, http.StatusUnauthorized, "X-User-ID header is missing")
			return
		}

		userID, err := uuid.Parse(userIDStr)
		if err != nil {
			WriteJSONError(w, http.StatusUnauthorized, "Invalid X-User-ID header format")
			return
		}

		actor := domain.Actor{
			ID:    userID,
			Admin: r.Header.Get("X-User-Role") == "admin",
		}

		ctx := context.WithValue(r.Context(), actorKey, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ActorFromRequest достает пользователя, положенного AuthMiddleware.
func ActorFromRequest(r *http.Request) (domain.Actor, bool) {
	actor, ok := r.Context().Value(actorKey).(domain.Actor)
	return actor, ok
}
