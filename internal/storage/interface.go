package storage

import (
	"context"

	"github.com/UkralStul/blog-service/internal/domain"
)

// Storage определяет контракт для хранилищ.
//
// Ошибки возвращаются в терминах domain: ErrNotFound, ErrDuplicateEmail,
// ErrConflict. Нарушение уникальности на уровне хранилища всегда
// переводится в соответствующую доменную ошибку.
type Storage interface {
	// Пользователи. CreateUser выставляет IsAdmin для AdminUserID.
	CreateUser(ctx context.Context, user *domain.User) (*domain.User, error)
	GetUserByID(ctx context.Context, id uint) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	CountUsers(ctx context.Context) (int64, error)

	// Посты. GetPosts возвращает посты в порядке возрастания ID.
	GetPosts(ctx context.Context) ([]*domain.Post, error)
	GetPostByID(ctx context.Context, id uint) (*domain.Post, error)
	CreatePost(ctx context.Context, post *domain.Post) (*domain.Post, error)
	UpdatePost(ctx context.Context, id uint, fields domain.PostFields) (*domain.Post, error)
	// DeletePost удаляет пост вместе с его комментариями.
	DeletePost(ctx context.Context, id uint) error

	// Комментарии.
	CreateComment(ctx context.Context, comment *domain.Comment) (*domain.Comment, error)
	GetCommentsByPostID(ctx context.Context, postID uint) ([]*domain.Comment, error)
	GetCommentsByAuthorID(ctx context.Context, authorID uint) ([]*domain.Comment, error)
	CountComments(ctx context.Context) (int64, error)

	// Метод для Dataloader'а
	GetUsersByIDs(ctx context.Context, ids []uint) (map[uint]*domain.User, error)
}
