package content

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/UkralStul/blog-service/internal/dataloader"
	"github.com/UkralStul/blog-service/internal/domain"
	"github.com/UkralStul/blog-service/internal/feed"
	"github.com/UkralStul/blog-service/internal/storage/inmemory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, time.October, 9, 15, 4, 0, 0, time.UTC)

type fixture struct {
	svc   *Service
	store *inmemory.Store
	feed  *feed.Observer
	admin domain.Identity
	user  domain.Identity
}

func newFixture(t *testing.T) *fixture {
	store := inmemory.New()
	ctx := context.Background()

	admin, err := store.CreateUser(ctx, &domain.User{Email: "admin@x.com", Name: "Admin", PasswordHash: "h"})
	require.NoError(t, err)
	user, err := store.CreateUser(ctx, &domain.User{Email: "a@x.com", Name: "A", PasswordHash: "h"})
	require.NoError(t, err)

	observer := feed.NewObserver()
	svc := NewService(store, observer)
	svc.now = func() time.Time { return fixedNow }

	return &fixture{
		svc:   svc,
		store: store,
		feed:  observer,
		admin: domain.AuthenticatedAs(admin),
		user:  domain.AuthenticatedAs(user),
	}
}

func fields(title string) domain.PostFields {
	return domain.PostFields{
		Title:    title,
		Subtitle: "Subtitle",
		Author:   "Angela Yu",
		ImgURL:   "https://images.example.com/cover.jpg",
		Body:     "<p>Body</p>",
	}
}

func postCount(t *testing.T, s *inmemory.Store) int {
	posts, err := s.GetPosts(context.Background())
	require.NoError(t, err)
	return len(posts)
}

func TestService_CreatePost(t *testing.T) {
	f := newFixture(t)

	post, err := f.svc.CreatePost(context.Background(), f.admin, fields("First"))
	require.NoError(t, err)
	assert.Equal(t, uint(1), post.ID)
	assert.Equal(t, "October 09, 2026", post.Date)
	assert.Equal(t, "Angela Yu", post.Author)
}

func TestService_CreatePost_DuplicateTitle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreatePost(ctx, f.admin, fields("Same"))
	require.NoError(t, err)

	_, err = f.svc.CreatePost(ctx, f.admin, fields("Same"))
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 1, postCount(t, f.store))
}

func TestService_AdminOnlyOperations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	existing, err := f.svc.CreatePost(ctx, f.admin, fields("Existing"))
	require.NoError(t, err)

	for name, who := range map[string]domain.Identity{"anonymous": domain.Anonymous, "user": f.user} {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.CreatePost(ctx, who, fields("Sneaky"))
			assert.ErrorIs(t, err, domain.ErrForbidden)

			_, err = f.svc.UpdatePost(ctx, who, existing.ID, fields("Hijacked"))
			assert.ErrorIs(t, err, domain.ErrForbidden)

			assert.ErrorIs(t, f.svc.DeletePost(ctx, who, existing.ID), domain.ErrForbidden)

			// Несуществующий пост тоже дает Forbidden, а не NotFound
			_, err = f.svc.UpdatePost(ctx, who, 999, fields("X"))
			assert.ErrorIs(t, err, domain.ErrForbidden)
			assert.ErrorIs(t, f.svc.DeletePost(ctx, who, 999), domain.ErrForbidden)

			// Невалидные поля тоже не раскрываются до проверки прав
			_, err = f.svc.CreatePost(ctx, who, domain.PostFields{})
			assert.ErrorIs(t, err, domain.ErrForbidden)
		})
	}

	post, err := f.svc.GetPost(ctx, existing.ID)
	require.NoError(t, err)
	assert.Equal(t, "Existing", post.Title)
	assert.Equal(t, 1, postCount(t, f.store))
}

func TestService_UpdatePost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	post, err := f.svc.CreatePost(ctx, f.admin, fields("Original"))
	require.NoError(t, err)

	// Дата не меняется даже на следующий день
	f.svc.now = func() time.Time { return fixedNow.AddDate(0, 0, 1) }

	updated, err := f.svc.UpdatePost(ctx, f.admin, post.ID, fields("Edited"))
	require.NoError(t, err)
	assert.Equal(t, "Edited", updated.Title)
	assert.Equal(t, "October 09, 2026", updated.Date)

	_, err = f.svc.UpdatePost(ctx, f.admin, 999, fields("Ghost"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_DeletePost_CascadesComments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	post, err := f.svc.CreatePost(ctx, f.admin, fields("Doomed"))
	require.NoError(t, err)
	_, err = f.svc.AddComment(ctx, f.user, post.ID, "first")
	require.NoError(t, err)
	_, err = f.svc.AddComment(ctx, f.admin, post.ID, "second")
	require.NoError(t, err)

	require.NoError(t, f.svc.DeletePost(ctx, f.admin, post.ID))

	count, err := f.store.CountComments(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = f.svc.GetPost(ctx, post.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, f.svc.DeletePost(ctx, f.admin, post.ID), domain.ErrNotFound)
}

func TestService_PostValidation(t *testing.T) {
	f := newFixture(t)

	cases := map[string]func(*domain.PostFields){
		"title":    func(p *domain.PostFields) { p.Title = " " },
		"subtitle": func(p *domain.PostFields) { p.Subtitle = "" },
		"author":   func(p *domain.PostFields) { p.Author = "" },
		"body":     func(p *domain.PostFields) { p.Body = "" },
		"imgUrl":   func(p *domain.PostFields) { p.ImgURL = "cover.jpg" },
	}
	long := map[string]func(*domain.PostFields){
		"title":    func(p *domain.PostFields) { p.Title = strings.Repeat("t", 251) },
		"subtitle": func(p *domain.PostFields) { p.Subtitle = strings.Repeat("s", 251) },
		"author":   func(p *domain.PostFields) { p.Author = strings.Repeat("a", 251) },
		"imgUrl":   func(p *domain.PostFields) { p.ImgURL = "https://example.com/" + strings.Repeat("i", 240) },
	}
	for field, mutate := range cases {
		in := fields("Valid")
		mutate(&in)
		_, err := f.svc.CreatePost(context.Background(), f.admin, in)
		var verr *domain.ValidationError
		require.True(t, errors.As(err, &verr), field)
		assert.Equal(t, field, verr.Field)
	}
	// Длиннее колонки varchar(250): ошибка валидации, а не ошибка базы
	for field, mutate := range long {
		in := fields("Valid")
		mutate(&in)
		_, err := f.svc.CreatePost(context.Background(), f.admin, in)
		var verr *domain.ValidationError
		require.True(t, errors.As(err, &verr), field)
		assert.Equal(t, field, verr.Field)
		assert.Equal(t, "must be at most 250 characters", verr.Message)
	}
	assert.Zero(t, postCount(t, f.store))
}

func TestService_AddComment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	post, err := f.svc.CreatePost(ctx, f.admin, fields("Commented"))
	require.NoError(t, err)

	live, cancel := f.feed.Subscribe(post.ID)
	defer cancel()

	comment, err := f.svc.AddComment(ctx, f.user, post.ID, "Nice post")
	require.NoError(t, err)
	assert.Equal(t, f.user.User.ID, comment.AuthorID)
	assert.Equal(t, post.ID, comment.PostID)

	select {
	case got := <-live:
		assert.Equal(t, comment.ID, got.ID)
		assert.Equal(t, "A", got.AuthorName)
	default:
		t.Fatal("comment was not published")
	}

	views, err := f.svc.Comments(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "A", views[0].AuthorName)
}

func TestService_AddComment_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	post, err := f.svc.CreatePost(ctx, f.admin, fields("Post"))
	require.NoError(t, err)

	_, err = f.svc.AddComment(ctx, domain.Anonymous, post.ID, "anon")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	// Аноним получает Unauthenticated даже для несуществующего поста
	_, err = f.svc.AddComment(ctx, domain.Anonymous, 999, "anon")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = f.svc.AddComment(ctx, f.user, 999, "lost")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.AddComment(ctx, f.user, post.ID, "   ")
	var verr *domain.ValidationError
	assert.True(t, errors.As(err, &verr))

	count, err := f.store.CountComments(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestService_PostDetailUsesLoaders(t *testing.T) {
	f := newFixture(t)
	ctx := dataloader.WithLoaders(context.Background(), dataloader.NewLoaders(f.store))

	post, err := f.svc.CreatePost(ctx, f.admin, fields("Detailed"))
	require.NoError(t, err)
	for _, who := range []domain.Identity{f.user, f.admin, f.user} {
		_, err := f.svc.AddComment(ctx, who, post.ID, "comment")
		require.NoError(t, err)
	}

	detail, err := f.svc.PostDetail(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Detailed", detail.Title)
	require.Len(t, detail.Comments, 3)
	assert.Equal(t, []string{"A", "Admin", "A"}, []string{
		detail.Comments[0].AuthorName,
		detail.Comments[1].AuthorName,
		detail.Comments[2].AuthorName,
	})

	_, err = f.svc.PostDetail(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_UserComments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	post, err := f.svc.CreatePost(ctx, f.admin, fields("Post"))
	require.NoError(t, err)
	_, err = f.svc.AddComment(ctx, f.user, post.ID, "mine")
	require.NoError(t, err)
	_, err = f.svc.AddComment(ctx, f.admin, post.ID, "not mine")
	require.NoError(t, err)

	mine, err := f.svc.UserComments(ctx, f.user)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "mine", mine[0].Text)

	_, err = f.svc.UserComments(ctx, domain.Anonymous)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}
