package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/UkralStul/blog-service/internal/domain"
	"github.com/UkralStul/blog-service/internal/session"
	"github.com/UkralStul/blog-service/internal/users"
)

// registerRequest несет теги валидации формы регистрации.
type registerRequest = users.Registration

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type meResponse struct {
	Authenticated bool         `json:"authenticated"`
	User          *domain.User `json:"user,omitempty"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decode(w, r, &req) {
		return
	}

	sess, err := h.svc.Register(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.setCookie(w, sess)
	writeJSON(w, http.StatusCreated, sess)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, &req) {
		return
	}

	sess, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.setCookie(w, sess)
	writeJSON(w, http.StatusOK, sess)
}

// logout всегда успешен, даже для анонима.
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	h.svc.Logout(r.Context(), h.token(r))
	h.clearCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	who := identityFrom(r.Context())
	writeJSON(w, http.StatusOK, meResponse{Authenticated: who.Authenticated(), User: who.User})
}

func (h *Handler) myComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.svc.MyComments(r.Context(), identityFrom(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

func (h *Handler) setCookie(w http.ResponseWriter, sess *session.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.opts.CookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   h.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.opts.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}
