package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/UkralStul/blog-service/internal/domain"

	"github.com/go-chi/chi/v5/middleware"
)

type errorResponse struct {
	Error string `json:"error"`
}

// statusFor сопоставляет доменную ошибку и HTTP-статус.
func statusFor(err error) int {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthenticated), errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrDuplicateEmail), errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := h.message(err)
	if status == http.StatusInternalServerError {
		log.Printf("[%s] %s %s: %v", middleware.GetReqID(r.Context()), r.Method, r.URL.Path, err)
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

// message формирует текст для клиента. Ошибки входа по умолчанию не
// раскрывают, что именно не совпало.
func (h *Handler) message(err error) string {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Error()
	case errors.Is(err, domain.ErrInvalidCredentials):
		if h.opts.DetailedLoginErrors {
			return strings.TrimPrefix(err.Error(), domain.ErrInvalidCredentials.Error()+": ")
		}
		return domain.ErrInvalidCredentials.Error()
	case errors.Is(err, domain.ErrNotFound):
		return domain.ErrNotFound.Error()
	case errors.Is(err, domain.ErrForbidden):
		return domain.ErrForbidden.Error()
	case errors.Is(err, domain.ErrConflict):
		return domain.ErrConflict.Error()
	case errors.Is(err, domain.ErrDuplicateEmail):
		return domain.ErrDuplicateEmail.Error()
	case errors.Is(err, domain.ErrUnauthenticated):
		return domain.ErrUnauthenticated.Error()
	}
	return err.Error()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}
