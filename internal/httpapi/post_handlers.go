package httpapi

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/UkralStul/blog-service/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

type commentRequest struct {
	Text string `json:"text"`
}

func (h *Handler) listPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.svc.ListPosts(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (h *Handler) getPost(w http.ResponseWriter, r *http.Request) {
	id, ok := h.postID(w, r)
	if !ok {
		return
	}
	detail, err := h.svc.GetPost(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *Handler) createPost(w http.ResponseWriter, r *http.Request) {
	var fields domain.PostFields
	if !decode(w, r, &fields) {
		return
	}
	post, err := h.svc.CreatePost(r.Context(), identityFrom(r.Context()), fields)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

func (h *Handler) updatePost(w http.ResponseWriter, r *http.Request) {
	id, ok := h.postID(w, r)
	if !ok {
		return
	}
	var fields domain.PostFields
	if !decode(w, r, &fields) {
		return
	}
	post, err := h.svc.UpdatePost(r.Context(), identityFrom(r.Context()), id, fields)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *Handler) deletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := h.postID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeletePost(r.Context(), identityFrom(r.Context()), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addComment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.postID(w, r)
	if !ok {
		return
	}
	var req commentRequest
	if !decode(w, r, &req) {
		return
	}
	comment, err := h.svc.AddComment(r.Context(), identityFrom(r.Context()), id, req.Text)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

// liveComments отдает новые комментарии поста по websocket.
func (h *Handler) liveComments(w http.ResponseWriter, r *http.Request) {
	id, ok := h.postID(w, r)
	if !ok {
		return
	}
	// Проверяем, существует ли пост, прежде чем подписываться
	if _, err := h.svc.Content.GetPost(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	comments, cancel := h.feed.Subscribe(id)
	defer cancel()

	// Читаем из соединения только чтобы заметить отключение клиента
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(keepAlivePingInterval)
	defer ping.Stop()

	for {
		select {
		case c, ok := <-comments:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(c); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}

// postID разбирает {postID}; нечисловой ID дает 404, как отсутствующий маршрут.
func (h *Handler) postID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "postID"), 10, 64)
	if err != nil || id == 0 {
		h.writeError(w, r, domain.ErrNotFound)
		return 0, false
	}
	return uint(id), true
}
