package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/UkralStul/blog-service/internal/auth"
	"github.com/UkralStul/blog-service/internal/domain"
	"github.com/UkralStul/blog-service/internal/storage/inmemory"
	"github.com/UkralStul/blog-service/internal/users"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*Manager, *users.Directory, *JWTCodec) {
	dir := users.NewDirectory(inmemory.New(), auth.NewHasher(1000))
	codec := NewJWTCodec(testSecret, time.Hour)
	return NewManager(dir, codec), dir, codec
}

func TestManager_LoginResolveLogout(t *testing.T) {
	m, dir, _ := newTestManager(t)
	ctx := context.Background()

	registered, err := dir.Register(ctx, "a@x.com", "A", "longpw123")
	require.NoError(t, err)

	sess, err := m.Login(ctx, "a@x.com", "longpw123")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, sess.User.ID)

	// Повторное разрешение возвращает того же пользователя
	for i := 0; i < 3; i++ {
		who, err := m.Resolve(ctx, sess.Token)
		require.NoError(t, err)
		require.True(t, who.Authenticated())
		assert.Equal(t, registered.ID, who.User.ID)
	}

	m.Logout(sess.Token)

	who, err := m.Resolve(ctx, sess.Token)
	require.NoError(t, err)
	assert.False(t, who.Authenticated())
}

func TestManager_LogoutDoesNotAffectOtherSessions(t *testing.T) {
	m, dir, _ := newTestManager(t)
	ctx := context.Background()

	_, err := dir.Register(ctx, "a@x.com", "A", "longpw123")
	require.NoError(t, err)

	first, err := m.Login(ctx, "a@x.com", "longpw123")
	require.NoError(t, err)
	second, err := m.Login(ctx, "a@x.com", "longpw123")
	require.NoError(t, err)

	m.Logout(first.Token)

	who, err := m.Resolve(ctx, second.Token)
	require.NoError(t, err)
	assert.True(t, who.Authenticated())
}

func TestManager_LogoutAnonymousIsNoop(t *testing.T) {
	m, _, _ := newTestManager(t)

	m.Logout("")
	m.Logout("garbage")
	assert.Zero(t, m.revoked.len())

	who, err := m.Resolve(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, domain.Anonymous, who)
}

func TestManager_LoginFailures(t *testing.T) {
	m, dir, _ := newTestManager(t)
	ctx := context.Background()

	_, err := dir.Register(ctx, "a@x.com", "A", "longpw123")
	require.NoError(t, err)

	_, err = m.Login(ctx, "nobody@x.com", "longpw123")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	assert.ErrorIs(t, err, domain.ErrUnknownEmail)

	_, err = m.Login(ctx, "a@x.com", "wrong-password")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	assert.ErrorIs(t, err, domain.ErrWrongPassword)
}

func TestManager_ResolveInvalidTokenIsAnonymous(t *testing.T) {
	m, _, _ := newTestManager(t)

	other := NewJWTCodec([]byte("other-secret"), time.Hour)
	forged, err := other.Mint(domain.AdminUserID, "stamp")
	require.NoError(t, err)

	who, err := m.Resolve(context.Background(), forged.Value)
	require.NoError(t, err)
	assert.False(t, who.Authenticated())
}

func TestManager_ResolveMissingUserIsFatal(t *testing.T) {
	m, _, codec := newTestManager(t)

	tok, err := codec.Mint(99, "stamp")
	require.NoError(t, err)

	_, err = m.Resolve(context.Background(), tok.Value)
	require.ErrorIs(t, err, domain.ErrInconsistentSession)
	assert.True(t, domain.IsFatal(err))
}

func TestManager_ResolveRejectsTokenOfPreviousIDHolder(t *testing.T) {
	ctx := context.Background()
	codec := NewJWTCodec(testSecret, time.Hour)

	// Токен выпущен до сброса хранилища
	before := users.NewDirectory(inmemory.New(), auth.NewHasher(1000))
	mallory, err := before.Register(ctx, "mallory@x.com", "Mallory", "longpw123")
	require.NoError(t, err)
	old, err := NewManager(before, codec).Start(mallory)
	require.NoError(t, err)

	// После сброса тот же ID 1 получает другой пользователь
	after := users.NewDirectory(inmemory.New(), auth.NewHasher(1000))
	alice, err := after.Register(ctx, "alice@x.com", "Alice", "longpw123")
	require.NoError(t, err)
	require.Equal(t, mallory.ID, alice.ID)

	m := NewManager(after, codec)
	who, err := m.Resolve(ctx, old.Token)
	require.NoError(t, err)
	assert.False(t, who.Authenticated())
	assert.False(t, who.IsAdmin())

	// Повторная регистрация с тем же email тоже не оживляет старый токен
	again := users.NewDirectory(inmemory.New(), auth.NewHasher(1000))
	_, err = again.Register(ctx, "mallory@x.com", "Mallory", "longpw123")
	require.NoError(t, err)
	who, err = NewManager(again, codec).Resolve(ctx, old.Token)
	require.NoError(t, err)
	assert.False(t, who.Authenticated())

	fresh, err := m.Start(alice)
	require.NoError(t, err)
	who, err = m.Resolve(ctx, fresh.Token)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, who.User.ID)
}

func TestManager_ConcurrentResolve(t *testing.T) {
	m, dir, _ := newTestManager(t)
	ctx := context.Background()

	user, err := dir.Register(ctx, "a@x.com", "A", "longpw123")
	require.NoError(t, err)
	sess, err := m.Start(user)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			who, err := m.Resolve(ctx, sess.Token)
			assert.NoError(t, err)
			assert.True(t, who.Authenticated())
		}()
	}
	wg.Wait()
}

func TestRevocationList_PrunesExpired(t *testing.T) {
	l := newRevocationList()
	now := time.Now()

	l.revoke("old", now.Add(-time.Minute), now)
	l.revoke("fresh", now.Add(time.Hour), now)

	assert.False(t, l.isRevoked("old"))
	assert.True(t, l.isRevoked("fresh"))
	assert.Equal(t, 1, l.len())
}
