// Package storagetest содержит общий набор тестов для реализаций storage.Storage.
package storagetest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/UkralStul/blog-service/internal/domain"
	"github.com/UkralStul/blog-service/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory создает пустое хранилище для одного теста.
type Factory func(t *testing.T) storage.Storage

// Run прогоняет все проверки контракта Storage.
func Run(t *testing.T, newStore Factory) {
	tests := map[string]func(t *testing.T, s storage.Storage){
		"CreateUser_AssignsIDsAndAdmin":  testCreateUserAssignsIDs,
		"CreateUser_DuplicateEmail":      testCreateUserDuplicateEmail,
		"CreateUser_ConcurrentDuplicate": testCreateUserConcurrent,
		"GetUser_NotFound":               testGetUserNotFound,
		"CreatePost_DuplicateTitle":      testCreatePostDuplicateTitle,
		"GetPosts_IDOrder":               testGetPostsOrder,
		"UpdatePost_KeepsDate":           testUpdatePostKeepsDate,
		"UpdatePost_NotFoundAndConflict": testUpdatePostErrors,
		"DeletePost_CascadesComments":    testDeletePostCascades,
		"CreateComment_UnknownPost":      testCreateCommentUnknownPost,
		"Comments_ByAuthor":              testCommentsByAuthor,
		"GetUsersByIDs":                  testGetUsersByIDs,
	}
	for name, fn := range tests {
		t.Run(name, func(t *testing.T) {
			fn(t, newStore(t))
		})
	}
}

func mustUser(t *testing.T, s storage.Storage, email string) *domain.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), &domain.User{Email: email, Name: email, PasswordHash: "pbkdf2:sha256:1$salt$00"})
	require.NoError(t, err)
	return u
}

func mustPost(t *testing.T, s storage.Storage, title string) *domain.Post {
	t.Helper()
	p, err := s.CreatePost(context.Background(), &domain.Post{
		Title:    title,
		Subtitle: "Subtitle",
		Date:     "October 19, 2026",
		Body:     "Body",
		Author:   "Angela",
		ImgURL:   "https://example.com/img.jpg",
	})
	require.NoError(t, err)
	return p
}

func testCreateUserAssignsIDs(t *testing.T, s storage.Storage) {
	admin := mustUser(t, s, "admin@x.com")
	user := mustUser(t, s, "a@x.com")

	assert.Equal(t, domain.AdminUserID, admin.ID)
	assert.True(t, admin.IsAdmin)
	assert.Equal(t, uint(2), user.ID)
	assert.False(t, user.IsAdmin)

	// Флаг нельзя выставить снаружи
	forged, err := s.CreateUser(context.Background(), &domain.User{Email: "f@x.com", Name: "F", PasswordHash: "h", IsAdmin: true})
	require.NoError(t, err)
	assert.False(t, forged.IsAdmin)

	got, err := s.GetUserByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func testCreateUserDuplicateEmail(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	mustUser(t, s, "a@x.com")

	_, err := s.CreateUser(ctx, &domain.User{Email: "a@x.com", Name: "Other", PasswordHash: "h"})
	require.ErrorIs(t, err, domain.ErrDuplicateEmail)

	// Регистр учитывается: это другой адрес
	_, err = s.CreateUser(ctx, &domain.User{Email: "A@x.com", Name: "Upper", PasswordHash: "h"})
	require.NoError(t, err)

	count, err := s.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func testCreateUserConcurrent(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	const workers = 8

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.CreateUser(ctx, &domain.User{Email: "race@x.com", Name: fmt.Sprint(i), PasswordHash: "h"})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
	}
	assert.Equal(t, 1, succeeded)

	count, err := s.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func testGetUserNotFound(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	_, err := s.GetUserByID(ctx, 42)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.GetUserByEmail(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testCreatePostDuplicateTitle(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	first := mustPost(t, s, "Hello")
	assert.Equal(t, uint(1), first.ID)

	_, err := s.CreatePost(ctx, &domain.Post{Title: "Hello", Subtitle: "s", Date: "d", Body: "b", Author: "a", ImgURL: "u"})
	require.ErrorIs(t, err, domain.ErrConflict)

	posts, err := s.GetPosts(ctx)
	require.NoError(t, err)
	assert.Len(t, posts, 1)
}

func testGetPostsOrder(t *testing.T, s storage.Storage) {
	for _, title := range []string{"C", "A", "B"} {
		mustPost(t, s, title)
	}

	posts, err := s.GetPosts(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, []string{"C", "A", "B"}, []string{posts[0].Title, posts[1].Title, posts[2].Title})
}

func testUpdatePostKeepsDate(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	post := mustPost(t, s, "Original")

	updated, err := s.UpdatePost(ctx, post.ID, domain.PostFields{
		Title:    "Renamed",
		Subtitle: "New subtitle",
		Author:   "Someone",
		ImgURL:   "https://example.com/new.jpg",
		Body:     "New body",
	})
	require.NoError(t, err)
	assert.Equal(t, post.ID, updated.ID)
	assert.Equal(t, post.Date, updated.Date)
	assert.Equal(t, "Renamed", updated.Title)

	reloaded, err := s.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "New body", reloaded.Body)
	assert.Equal(t, post.Date, reloaded.Date)

	// Старый заголовок освободился
	mustPost(t, s, "Original")
}

func testUpdatePostErrors(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	mustPost(t, s, "First")
	second := mustPost(t, s, "Second")

	_, err := s.UpdatePost(ctx, 99, domain.PostFields{Title: "X"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = s.UpdatePost(ctx, second.ID, domain.PostFields{Title: "First", Subtitle: "s", Author: "a", ImgURL: "u", Body: "b"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	// Сохранение с тем же заголовком - не конфликт
	_, err = s.UpdatePost(ctx, second.ID, domain.PostFields{Title: "Second", Subtitle: "s", Author: "a", ImgURL: "u", Body: "b"})
	assert.NoError(t, err)
}

func testDeletePostCascades(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	user := mustUser(t, s, "a@x.com")
	doomed := mustPost(t, s, "Doomed")
	kept := mustPost(t, s, "Kept")

	for _, p := range []*domain.Post{doomed, doomed, kept} {
		_, err := s.CreateComment(ctx, &domain.Comment{Text: "hi", AuthorID: user.ID, PostID: p.ID})
		require.NoError(t, err)
	}

	require.NoError(t, s.DeletePost(ctx, doomed.ID))

	_, err := s.GetPostByID(ctx, doomed.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	left, err := s.GetCommentsByPostID(ctx, doomed.ID)
	require.NoError(t, err)
	assert.Empty(t, left)

	count, err := s.CountComments(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	byAuthor, err := s.GetCommentsByAuthorID(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, byAuthor, 1)
	assert.Equal(t, kept.ID, byAuthor[0].PostID)

	assert.ErrorIs(t, s.DeletePost(ctx, doomed.ID), domain.ErrNotFound)
}

func testCreateCommentUnknownPost(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	user := mustUser(t, s, "a@x.com")

	_, err := s.CreateComment(ctx, &domain.Comment{Text: "hi", AuthorID: user.ID, PostID: 7})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	count, err := s.CountComments(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func testCommentsByAuthor(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	alice := mustUser(t, s, "alice@x.com")
	bob := mustUser(t, s, "bob@x.com")
	post := mustPost(t, s, "Post")

	first, err := s.CreateComment(ctx, &domain.Comment{Text: "one", AuthorID: alice.ID, PostID: post.ID})
	require.NoError(t, err)
	_, err = s.CreateComment(ctx, &domain.Comment{Text: "two", AuthorID: bob.ID, PostID: post.ID})
	require.NoError(t, err)
	third, err := s.CreateComment(ctx, &domain.Comment{Text: "three", AuthorID: alice.ID, PostID: post.ID})
	require.NoError(t, err)

	comments, err := s.GetCommentsByAuthorID(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, first.ID, comments[0].ID)
	assert.Equal(t, third.ID, comments[1].ID)

	onPost, err := s.GetCommentsByPostID(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, onPost, 3)
	assert.Equal(t, "two", onPost[1].Text)
}

func testGetUsersByIDs(t *testing.T, s storage.Storage) {
	alice := mustUser(t, s, "alice@x.com")
	bob := mustUser(t, s, "bob@x.com")

	users, err := s.GetUsersByIDs(context.Background(), []uint{alice.ID, bob.ID, 99})
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, "bob@x.com", users[bob.ID].Email)
	assert.NotContains(t, users, uint(99))
}
