// Package blog собирает компоненты ядра в набор операций для транспорта.
package blog

import (
	"context"

	"github.com/UkralStul/blog-service/internal/content"
	"github.com/UkralStul/blog-service/internal/domain"
	"github.com/UkralStul/blog-service/internal/session"
	"github.com/UkralStul/blog-service/internal/users"
)

// Service - точка входа для транспортного слоя. Текущий вызывающий
// передается явно в каждую операцию.
type Service struct {
	Users    *users.Directory
	Sessions *session.Manager
	Content  *content.Service
}

func New(dir *users.Directory, sessions *session.Manager, posts *content.Service) *Service {
	return &Service{Users: dir, Sessions: sessions, Content: posts}
}

// Register создает пользователя и сразу открывает для него сессию.
func (s *Service) Register(ctx context.Context, email, name, password string) (*session.Session, error) {
	user, err := s.Users.Register(ctx, email, name, password)
	if err != nil {
		return nil, err
	}
	return s.Sessions.Start(user)
}

func (s *Service) Login(ctx context.Context, email, password string) (*session.Session, error) {
	return s.Sessions.Login(ctx, email, password)
}

func (s *Service) Logout(ctx context.Context, token string) {
	s.Sessions.Logout(token)
}

func (s *Service) CurrentIdentity(ctx context.Context, token string) (domain.Identity, error) {
	return s.Sessions.Resolve(ctx, token)
}

func (s *Service) ListPosts(ctx context.Context) ([]*domain.Post, error) {
	return s.Content.ListPosts(ctx)
}

func (s *Service) GetPost(ctx context.Context, id uint) (*domain.PostDetail, error) {
	return s.Content.PostDetail(ctx, id)
}

func (s *Service) CreatePost(ctx context.Context, who domain.Identity, fields domain.PostFields) (*domain.Post, error) {
	return s.Content.CreatePost(ctx, who, fields)
}

func (s *Service) UpdatePost(ctx context.Context, who domain.Identity, id uint, fields domain.PostFields) (*domain.Post, error) {
	return s.Content.UpdatePost(ctx, who, id, fields)
}

func (s *Service) DeletePost(ctx context.Context, who domain.Identity, id uint) error {
	return s.Content.DeletePost(ctx, who, id)
}

func (s *Service) AddComment(ctx context.Context, who domain.Identity, postID uint, text string) (*domain.Comment, error) {
	return s.Content.AddComment(ctx, who, postID, text)
}

func (s *Service) MyComments(ctx context.Context, who domain.Identity) ([]*domain.CommentView, error) {
	return s.Content.UserComments(ctx, who)
}
