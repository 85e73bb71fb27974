package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/UkralStul/blog-service/internal/domain"
)

// Store реализует интерфейс Storage в памяти.
// Все записи хранятся по значению, наружу отдаются копии.
type Store struct {
	mu sync.RWMutex

	users       map[uint]domain.User
	usersByMail map[string]uint // уникальный индекс по email
	posts       map[uint]domain.Post
	postsByName map[string]uint // уникальный индекс по заголовку
	comments    map[uint]domain.Comment

	commentsByPost   map[uint][]uint // map[postID][]commentID
	commentsByAuthor map[uint][]uint // map[authorID][]commentID

	nextUserID, nextPostID, nextCommentID uint
}

// New создает новый экземпляр in-memory хранилища.
func New() *Store {
	return &Store{
		users:            make(map[uint]domain.User),
		usersByMail:      make(map[string]uint),
		posts:            make(map[uint]domain.Post),
		postsByName:      make(map[string]uint),
		comments:         make(map[uint]domain.Comment),
		commentsByPost:   make(map[uint][]uint),
		commentsByAuthor: make(map[uint][]uint),
		nextUserID:       1,
		nextPostID:       1,
		nextCommentID:    1,
	}
}

// === User Methods ===

func (s *Store) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.usersByMail[user.Email]; taken {
		return nil, domain.ErrDuplicateEmail
	}

	u := *user
	u.ID = s.nextUserID
	u.IsAdmin = u.ID == domain.AdminUserID
	s.nextUserID++

	s.users[u.ID] = u
	s.usersByMail[u.Email] = u.ID
	return &u, nil
}

func (s *Store) GetUserByID(ctx context.Context, id uint) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user with id %d: %w", id, domain.ErrNotFound)
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usersByMail[email]
	if !ok {
		return nil, fmt.Errorf("user with email %q: %w", email, domain.ErrNotFound)
	}
	u := s.users[id]
	return &u, nil
}

func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.users)), nil
}

// === Post Methods ===

func (s *Store) CreatePost(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.postsByName[post.Title]; taken {
		return nil, domain.ErrConflict
	}

	p := *post
	p.ID = s.nextPostID
	s.nextPostID++

	s.posts[p.ID] = p
	s.postsByName[p.Title] = p.ID
	return &p, nil
}

func (s *Store) GetPostByID(ctx context.Context, id uint) (*domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.posts[id]
	if !ok {
		return nil, fmt.Errorf("post with id %d: %w", id, domain.ErrNotFound)
	}
	return &p, nil
}

func (s *Store) GetPosts(ctx context.Context) ([]*domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	allPosts := make([]*domain.Post, 0, len(s.posts))
	for _, p := range s.posts {
		allPosts = append(allPosts, &p)
	}

	sort.Slice(allPosts, func(i, j int) bool {
		return allPosts[i].ID < allPosts[j].ID
	})
	return allPosts, nil
}

func (s *Store) UpdatePost(ctx context.Context, id uint, fields domain.PostFields) (*domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		return nil, fmt.Errorf("post with id %d: %w", id, domain.ErrNotFound)
	}
	if owner, taken := s.postsByName[fields.Title]; taken && owner != id {
		return nil, domain.ErrConflict
	}

	delete(s.postsByName, p.Title)
	fields.Apply(&p)
	s.posts[id] = p
	s.postsByName[p.Title] = id
	return &p, nil
}

func (s *Store) DeletePost(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		return fmt.Errorf("post with id %d: %w", id, domain.ErrNotFound)
	}

	// Каскадное удаление комментариев поста
	for _, cID := range s.commentsByPost[id] {
		c := s.comments[cID]
		s.commentsByAuthor[c.AuthorID] = without(s.commentsByAuthor[c.AuthorID], cID)
		delete(s.comments, cID)
	}
	delete(s.commentsByPost, id)
	delete(s.postsByName, p.Title)
	delete(s.posts, id)
	return nil
}

// === Comment Methods ===

func (s *Store) CreateComment(ctx context.Context, comment *domain.Comment) (*domain.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Проверка ссылок: аналог внешних ключей
	if _, ok := s.posts[comment.PostID]; !ok {
		return nil, fmt.Errorf("post with id %d: %w", comment.PostID, domain.ErrNotFound)
	}
	if _, ok := s.users[comment.AuthorID]; !ok {
		return nil, fmt.Errorf("user with id %d: %w", comment.AuthorID, domain.ErrNotFound)
	}

	c := *comment
	c.ID = s.nextCommentID
	c.Author, c.Post = nil, nil
	s.nextCommentID++

	s.comments[c.ID] = c
	s.commentsByPost[c.PostID] = append(s.commentsByPost[c.PostID], c.ID)
	s.commentsByAuthor[c.AuthorID] = append(s.commentsByAuthor[c.AuthorID], c.ID)
	return &c, nil
}

func (s *Store) GetCommentsByPostID(ctx context.Context, postID uint) ([]*domain.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectComments(s.commentsByPost[postID]), nil
}

func (s *Store) GetCommentsByAuthorID(ctx context.Context, authorID uint) ([]*domain.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectComments(s.commentsByAuthor[authorID]), nil
}

func (s *Store) CountComments(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.comments)), nil
}

// collectComments - вспомогательная функция, ID идут в порядке вставки
func (s *Store) collectComments(ids []uint) []*domain.Comment {
	result := make([]*domain.Comment, 0, len(ids))
	for _, id := range ids {
		if c, ok := s.comments[id]; ok {
			result = append(result, &c)
		}
	}
	return result
}

// === Dataloader Methods ===

func (s *Store) GetUsersByIDs(ctx context.Context, ids []uint) (map[uint]*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make(map[uint]*domain.User, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			results[id] = &u
		}
	}
	return results, nil
}

func without(ids []uint, id uint) []uint {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
