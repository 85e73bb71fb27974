package httpapi

import (
	"net/http"
	"time"

	"github.com/UkralStul/blog-service/internal/blog"
	"github.com/UkralStul/blog-service/internal/dataloader"
	"github.com/UkralStul/blog-service/internal/feed"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
)

const (
	defaultCookieName     = "session"
	keepAlivePingInterval = 10 * time.Second
	writeWait             = 5 * time.Second
)

// Options - настройки транспортного слоя.
type Options struct {
	CookieName   string
	CookieSecure bool
	// DetailedLoginErrors показывает, что именно не так: email или пароль.
	DetailedLoginErrors bool
}

// Handler - JSON API блога поверх blog.Service.
type Handler struct {
	svc      *blog.Service
	feed     *feed.Observer
	loaders  dataloader.UserStore
	opts     Options
	upgrader websocket.Upgrader
}

func NewHandler(svc *blog.Service, observer *feed.Observer, users dataloader.UserStore, opts Options) *Handler {
	if opts.CookieName == "" {
		opts.CookieName = defaultCookieName
	}
	return &Handler{
		svc:     svc,
		feed:    observer,
		loaders: users,
		opts:    opts,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Routes собирает роутер со всеми маршрутами.
func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	// Выход не зависит от состояния сессии и всегда успешен
	router.Post("/logout", h.logout)

	router.Group(func(router chi.Router) {
		router.Use(h.identity)
		router.Use(dataloader.Middleware(h.loaders))

		router.Post("/register", h.register)
		router.Post("/login", h.login)
		router.Get("/me", h.me)
		router.Get("/me/comments", h.myComments)

		router.Route("/posts", func(r chi.Router) {
			r.Get("/", h.listPosts)
			r.With(h.requireAdmin).Post("/", h.createPost)

			r.Route("/{postID}", func(r chi.Router) {
				r.Get("/", h.getPost)
				r.With(h.requireAdmin).Put("/", h.updatePost)
				r.With(h.requireAdmin).Delete("/", h.deletePost)
				r.Post("/comments", h.addComment)
				r.Get("/comments/live", h.liveComments)
			})
		})
	})

	return router
}
