package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/UkralStul/blog-service/internal/auth"
	"github.com/UkralStul/blog-service/internal/domain"
)

type contextKey string

const identityKey = contextKey("identity")

// identity определяет текущего вызывающего и кладет его в контекст запроса.
func (h *Handler) identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		who, err := h.svc.CurrentIdentity(r.Context(), h.token(r))
		if err != nil {
			// Сессия ссылается на несуществующего пользователя.
			// Запрос прерывается, но cookie сбрасываем, чтобы клиент не застрял.
			if errors.Is(err, domain.ErrInconsistentSession) {
				h.clearCookie(w)
			}
			h.writeError(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), identityKey, who)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAdmin отвечает 403 до того, как обработчик что-либо загрузит.
func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := auth.RequireAdmin(identityFrom(r.Context())); err != nil {
			h.writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func identityFrom(ctx context.Context) domain.Identity {
	who, _ := ctx.Value(identityKey).(domain.Identity)
	return who
}

// token берет токен из cookie или заголовка Authorization.
func (h *Handler) token(r *http.Request) string {
	if c, err := r.Cookie(h.opts.CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
