package content

import (
	"context"
	"fmt"
	"time"

	"github.com/UkralStul/blog-service/internal/auth"
	"github.com/UkralStul/blog-service/internal/dataloader"
	"github.com/UkralStul/blog-service/internal/domain"
	"github.com/UkralStul/blog-service/internal/validation"
)

// Store - часть хранилища, нужная сервису контента.
type Store interface {
	GetPosts(ctx context.Context) ([]*domain.Post, error)
	GetPostByID(ctx context.Context, id uint) (*domain.Post, error)
	CreatePost(ctx context.Context, post *domain.Post) (*domain.Post, error)
	UpdatePost(ctx context.Context, id uint, fields domain.PostFields) (*domain.Post, error)
	DeletePost(ctx context.Context, id uint) error

	CreateComment(ctx context.Context, comment *domain.Comment) (*domain.Comment, error)
	GetCommentsByPostID(ctx context.Context, postID uint) ([]*domain.Comment, error)
	GetCommentsByAuthorID(ctx context.Context, authorID uint) ([]*domain.Comment, error)
	GetUsersByIDs(ctx context.Context, ids []uint) (map[uint]*domain.User, error)
}

type commentInput struct {
	Text string `json:"text" validate:"notblank"`
}

// Publisher получает каждый новый комментарий.
type Publisher interface {
	Publish(c *domain.CommentView)
}

// Service - посты и комментарии с проверкой прав.
type Service struct {
	store Store
	feed  Publisher
	now   func() time.Time
}

// NewService создает сервис. feed может быть nil.
func NewService(store Store, feed Publisher) *Service {
	return &Service{store: store, feed: feed, now: time.Now}
}

// === Post Methods ===

func (s *Service) ListPosts(ctx context.Context) ([]*domain.Post, error) {
	return s.store.GetPosts(ctx)
}

func (s *Service) GetPost(ctx context.Context, id uint) (*domain.Post, error) {
	return s.store.GetPostByID(ctx, id)
}

// PostDetail возвращает пост с комментариями и именами их авторов.
func (s *Service) PostDetail(ctx context.Context, id uint) (*domain.PostDetail, error) {
	post, err := s.store.GetPostByID(ctx, id)
	if err != nil {
		return nil, err
	}
	comments, err := s.Comments(ctx, id)
	if err != nil {
		return nil, err
	}
	return &domain.PostDetail{Post: post, Comments: comments}, nil
}

func (s *Service) CreatePost(ctx context.Context, who domain.Identity, fields domain.PostFields) (*domain.Post, error) {
	if _, err := auth.RequireAdmin(who); err != nil {
		return nil, err
	}
	if err := validatePost(fields); err != nil {
		return nil, err
	}

	post := &domain.Post{Date: s.now().Format(domain.DateLayout)}
	fields.Apply(post)
	return s.store.CreatePost(ctx, post)
}

// UpdatePost заменяет все поля, кроме ID и даты создания.
func (s *Service) UpdatePost(ctx context.Context, who domain.Identity, id uint, fields domain.PostFields) (*domain.Post, error) {
	if _, err := auth.RequireAdmin(who); err != nil {
		return nil, err
	}
	if err := validatePost(fields); err != nil {
		return nil, err
	}
	return s.store.UpdatePost(ctx, id, fields)
}

// DeletePost удаляет пост каскадно вместе с комментариями.
func (s *Service) DeletePost(ctx context.Context, who domain.Identity, id uint) error {
	if _, err := auth.RequireAdmin(who); err != nil {
		return err
	}
	return s.store.DeletePost(ctx, id)
}

// === Comment Methods ===

func (s *Service) AddComment(ctx context.Context, who domain.Identity, postID uint, text string) (*domain.Comment, error) {
	author, err := auth.RequireUser(who)
	if err != nil {
		return nil, err
	}
	if err := validation.Struct(commentInput{Text: text}); err != nil {
		return nil, err
	}

	comment, err := s.store.CreateComment(ctx, &domain.Comment{
		Text:     text,
		AuthorID: author.ID,
		PostID:   postID,
	})
	if err != nil {
		return nil, err
	}

	if s.feed != nil {
		s.feed.Publish(&domain.CommentView{Comment: comment, AuthorName: author.Name})
	}
	return comment, nil
}

// Comments возвращает комментарии поста в порядке создания.
func (s *Service) Comments(ctx context.Context, postID uint) ([]*domain.CommentView, error) {
	comments, err := s.store.GetCommentsByPostID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to get post comments: %w", err)
	}
	return s.withAuthors(ctx, comments)
}

// UserComments возвращает все комментарии пользователя.
func (s *Service) UserComments(ctx context.Context, who domain.Identity) ([]*domain.CommentView, error) {
	user, err := auth.RequireUser(who)
	if err != nil {
		return nil, err
	}
	comments, err := s.store.GetCommentsByAuthorID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user comments: %w", err)
	}
	return s.withAuthors(ctx, comments)
}

func (s *Service) withAuthors(ctx context.Context, comments []*domain.Comment) ([]*domain.CommentView, error) {
	ids := make([]uint, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.AuthorID)
	}

	var authors map[uint]*domain.User
	var err error
	if loaders := dataloader.For(ctx); loaders != nil {
		authors, err = loaders.LoadUsers(ctx, ids)
	} else {
		authors, err = s.store.GetUsersByIDs(ctx, ids)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load comment authors: %w", err)
	}

	views := make([]*domain.CommentView, len(comments))
	for i, c := range comments {
		view := &domain.CommentView{Comment: c}
		if u, ok := authors[c.AuthorID]; ok {
			view.AuthorName = u.Name
		}
		views[i] = view
	}
	return views, nil
}

func validatePost(f domain.PostFields) error {
	return validation.Struct(f)
}
