package commands

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UkralStul/blog-service/internal/blog"
	"github.com/UkralStul/blog-service/internal/config"
	"github.com/UkralStul/blog-service/internal/content"
	"github.com/UkralStul/blog-service/internal/domain"
	"github.com/UkralStul/blog-service/internal/feed"
	"github.com/UkralStul/blog-service/internal/httpapi"
	"github.com/UkralStul/blog-service/internal/session"
	"github.com/UkralStul/blog-service/internal/users"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (default command)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func addServeFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&cfg.Port, "port", cfg.Port, "HTTP port")
	flags.StringVar(&cfg.SessionSecret, "session-secret", cfg.SessionSecret, "HMAC secret for session tokens")
	flags.DurationVar(&cfg.SessionTTL, "session-ttl", cfg.SessionTTL, "Session lifetime")
	flags.BoolVar(&cfg.CookieSecure, "cookie-secure", cfg.CookieSecure, "Send the session cookie over HTTPS only")
	flags.BoolVar(&cfg.DetailedLoginErrors, "detailed-login-errors", cfg.DetailedLoginErrors, "Tell apart unknown email and wrong password")
	flags.BoolVar(&cfg.Seed, "seed", cfg.Seed, "Fill in-memory storage with demo data")
}

func init() {
	addServeFlags(serveCmd)
}

func runServe(cmd *cobra.Command) error {
	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	observer := feed.NewObserver()
	dir := newDirectory(store)
	sessions := session.NewManager(dir, session.NewJWTCodec([]byte(cfg.SessionSecret), cfg.SessionTTL))
	posts := content.NewService(store, observer)
	svc := blog.New(dir, sessions, posts)

	if cfg.Seed {
		if cfg.Storage != config.StorageInMemory {
			return fmt.Errorf("--seed works only with %s storage", config.StorageInMemory)
		}
		// Заполним данными для тестов
		if err := fillWithMockData(cmd.Context(), dir, posts); err != nil {
			return err
		}
	}

	handler := httpapi.NewHandler(svc, observer, store, httpapi.Options{
		CookieSecure:        cfg.CookieSecure,
		DetailedLoginErrors: cfg.DetailedLoginErrors,
	})
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on http://localhost:%s/", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed to start: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// fillWithMockData создает администратора, пост и комментарий к нему.
func fillWithMockData(ctx context.Context, dir *users.Directory, posts *content.Service) error {
	// 1. Первый пользователь становится администратором
	admin, err := dir.Register(ctx, "admin@example.com", "Admin", "adminpassword")
	if err != nil {
		return fmt.Errorf("fillWithMockData: failed to create admin: %w", err)
	}
	who := domain.AuthenticatedAs(admin)

	// 2. Пост от имени администратора
	post, err := posts.CreatePost(ctx, who, domain.PostFields{
		Title:    "The Life of Cactus",
		Subtitle: "Who knew that cacti lived such interesting lives.",
		Author:   admin.Name,
		ImgURL:   "https://images.unsplash.com/photo-1530482054429-cc491f61333b",
		Body:     "<p>Nori grape silver beet broccoli kombu beet greens fava bean potato quandong celery.</p>",
	})
	if err != nil {
		return fmt.Errorf("fillWithMockData: failed to create post: %w", err)
	}

	// 3. Комментарий к посту
	if _, err := posts.AddComment(ctx, who, post.ID, "First!"); err != nil {
		return fmt.Errorf("fillWithMockData: failed to create comment: %w", err)
	}

	log.Printf("Mock data filled successfully. Admin: %s / adminpassword, post ID: %d", admin.Email, post.ID)
	return nil
}
